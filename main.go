package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/spencer-p/tidewire/pkg/handlers"
	"github.com/spencer-p/tidewire/pkg/metrics"
	"github.com/spencer-p/tidewire/pkg/middleware"
	"github.com/spencer-p/tidewire/pkg/noaa"
	"github.com/spencer-p/tidewire/pkg/report"
)

const unmatchedRoute = "unmatched"

type Config struct {
	Port     string `default:"8080"`
	Prefix   string `default:"/"`
	LogLevel string `default:"info" split_words:"true"`

	NOAADataURL     string `envconfig:"NOAA_DATA_URL" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"`
	NOAAMetadataURL string `envconfig:"NOAA_METADATA_URL" default:"https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi"`
	WindRangeHours  int    `split_words:"true" default:"1"`

	// Advertised per-call prices, e.g. PRICES=tides:0.001,forecast:0.002.
	Prices map[string]string `default:"tides:0.001,forecast:0.002,stations:0.001,wind:0.001"`
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("bad configuration")
	}

	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("service", "tidewire").
		Logger()

	client := noaa.NewClient(noaa.ClientConfig{
		DataURL:     env.NOAADataURL,
		MetadataURL: env.NOAAMetadataURL,
		Logger:      log,
	})
	svc := report.NewService(report.Config{
		Upstream:  client,
		Logger:    log,
		WindHours: env.WindRangeHours,
	})

	srv := &http.Server{
		Handler:      newRouter(env, svc, log),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", env.Prefix).Msg("listening and serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}

func newRouter(env Config, rep handlers.Reporter, log zerolog.Logger) *mux.Router {
	observe := func(h http.Handler) http.Handler {
		return middleware.RequestID(log)(middleware.Logger(metrics.LatencyHandler(routeTemplate)(h)))
	}

	r := mux.NewRouter().StrictSlash(true)
	r.Use(observe)
	// Middleware only runs on matched routes, so 404s get it here.
	r.NotFoundHandler = observe(http.NotFoundHandler())
	r.Handle("/metrics", promhttp.Handler())
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, rep, env.Prices, log)
	return r
}

// routeTemplate labels latency metrics by route rather than raw URL. Requests
// no route matched share one label.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return unmatchedRoute
}
