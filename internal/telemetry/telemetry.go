// Package telemetry unifies OpenTelemetry tracing (Google Cloud) and
// Prometheus metrics for the loaders and the read API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitescout_fetches_total",
			Help: "Total outbound source fetches, labeled by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	fetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitescout_fetch_bytes_total",
			Help: "Total bytes fetched from external sources.",
		},
		[]string{"source"},
	)

	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitescout_rows_total",
			Help: "Rows handled by the upsert writer, labeled by table and outcome (inserted, skipped, failed).",
		},
		[]string{"table", "outcome"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitescout_runs_total",
			Help: "Loader runs, labeled by source and final status.",
		},
		[]string{"source", "status"},
	)

	rateLimitDelaysSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitescout_rate_limit_delays_seconds",
			Help:    "Histogram of rate limit wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns the standard Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.statusCode, time.Since(start))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// ObserveFetch records one outbound fetch against a source.
func ObserveFetch(source, outcome string, bytesFetched int) {
	fetchesTotal.WithLabelValues(source, outcome).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(source).Add(float64(bytesFetched))
	}
}

// ObserveRow records the outcome of one row through the upsert writer.
func ObserveRow(table, outcome string) {
	rowsTotal.WithLabelValues(table, outcome).Inc()
}

// ObserveRun records a finished loader run.
func ObserveRun(source, status string) {
	runsTotal.WithLabelValues(source, status).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(source string, duration time.Duration) {
	rateLimitDelaysSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveHTTPRequest records metrics for an API request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
