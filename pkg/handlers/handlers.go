package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/spencer-p/tidewire/pkg/metrics"
	"github.com/spencer-p/tidewire/pkg/report"
)

// Reporter produces entrypoint outputs; *report.Service satisfies it.
type Reporter interface {
	Tides(ctx context.Context, stationID string) report.TideReport
	Forecast(ctx context.Context, stationID string, days int) report.ForecastReport
	Stations(ctx context.Context, state string, limit int) report.StationList
	Wind(ctx context.Context, stationID string) report.WindReport
}

var _ Reporter = (*report.Service)(nil)

// Entrypoint is one priced operation.
type Entrypoint struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price,omitempty"`

	invoke func(ctx context.Context, in Input) (output any, failed bool)
}

// entrypoints lists the operations in manifest order.
func entrypoints(rep Reporter) []*Entrypoint {
	return []*Entrypoint{{
		Name:        "tides",
		Description: "Today's high and low tides, the next tide, and current wind at a station.",
		invoke: func(ctx context.Context, in Input) (any, bool) {
			out := rep.Tides(ctx, in.Station)
			return out, out.Error != ""
		},
	}, {
		Name:        "forecast",
		Description: "High and low tides grouped by day for 1 to 7 days, with sun times.",
		invoke: func(ctx context.Context, in Input) (any, bool) {
			out := rep.Forecast(ctx, in.Station, *in.Days)
			return out, out.Error != ""
		},
	}, {
		Name:        "stations",
		Description: "Tide prediction stations in a US state.",
		invoke: func(ctx context.Context, in Input) (any, bool) {
			out := rep.Stations(ctx, in.State, *in.Limit)
			return out, out.Error != ""
		},
	}, {
		Name:        "wind",
		Description: "Latest wind observation at a station.",
		invoke: func(ctx context.Context, in Input) (any, bool) {
			out := rep.Wind(ctx, in.Station)
			return out, out.Error != ""
		},
	}}
}

// Register mounts the entrypoints on r. prices maps entrypoint names to the
// price advertised in the manifest; metering itself happens upstream of this
// service.
func Register(r *mux.Router, rep Reporter, prices map[string]string, log zerolog.Logger) {
	eps := entrypoints(rep)
	byName := make(map[string]*Entrypoint, len(eps))
	for _, ep := range eps {
		ep.Price = prices[ep.Name]
		byName[ep.Name] = ep
	}

	r.Handle("/entrypoints", makeManifestHandler(eps, log)).Methods(http.MethodGet)
	r.Handle("/entrypoints/{name}/invoke", makeInvokeHandler(byName, log)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "text/plain")
		fmt.Fprintf(w, "ok\n")
	})
}

func makeManifestHandler(eps []*Entrypoint, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"entrypoints": eps}, &log)
	})
}

type invokeRequest struct {
	Input json.RawMessage `json:"input"`
}

type invokeResponse struct {
	Output any `json:"output"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func makeInvokeHandler(byName map[string]*Entrypoint, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		ep, ok := byName[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{fmt.Sprintf("no entrypoint %q", name)}, &log)
			return
		}

		var req invokeRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{fmt.Sprintf("malformed request: %v", err)}, &log)
				return
			}
		}

		in, err := decodeInput(req.Input)
		if err == nil {
			err = in.validateFor(name)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()}, &log)
			return
		}

		out, failed := ep.invoke(r.Context(), in)
		metrics.ObserveInvocation(name, failed)
		if failed {
			log.Warn().Str("entrypoint", name).Msg("entrypoint returned an error output")
		}

		// Failures are part of the output, so the status is always 200.
		writeJSON(w, http.StatusOK, invokeResponse{out}, &log)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any, log *zerolog.Logger) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON result")
	}
}
