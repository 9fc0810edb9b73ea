package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "tidewire",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "upstream_requests_total",
			Subsystem: "tidewire",
			Help:      "NOAA requests by product and outcome.",
		},
		[]string{"product", "outcome"},
	)

	entrypointInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "entrypoint_invocations_total",
			Subsystem: "tidewire",
			Help:      "Entrypoint invocations by name and whether the output carried an error.",
		},
		[]string{"entrypoint", "failed"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		upstreamRequests,
		entrypointInvocations,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveUpstream counts one NOAA fetch.
func ObserveUpstream(product, outcome string) {
	upstreamRequests.With(prometheus.Labels{
		"product": product,
		"outcome": outcome,
	}).Inc()
}

func ObserveInvocation(entrypoint string, failed bool) {
	entrypointInvocations.With(prometheus.Labels{
		"entrypoint": entrypoint,
		"failed":     strconv.FormatBool(failed),
	}).Inc()
}

// LatencyHandler observes request latency by verb, path and status code. Path
// should be a route template rather than the raw URL to keep cardinality low;
// pathOf extracts it.
func LatencyHandler(pathOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := time.Now()
			verb := r.Method
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

			// Defer metric observing. Any panics in next are reported as 500
			// errors and then re-thrown.
			defer func() {
				path := pathOf(r)
				if err := recover(); err != nil {
					ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
					panic(err)
				}
				ObserveRequestLatency(verb, path, strconv.Itoa(sw.code), time.Since(t).Seconds())
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
