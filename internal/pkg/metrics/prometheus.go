package metrics

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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hostwatch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hostwatch",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Ingestion metrics
	reportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "ingest",
			Name:      "reports_total",
			Help:      "Total number of metric reports received",
		},
		[]string{"result"},
	)

	samplesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "ingest",
			Name:      "samples_written_total",
			Help:      "Total number of samples persisted",
		},
	)

	// Evaluation metrics
	evaluationPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "evaluation",
			Name:      "passes_total",
			Help:      "Total number of evaluation passes",
		},
		[]string{"result"},
	)

	evaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hostwatch",
			Subsystem: "evaluation",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a full evaluation pass in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	checksRun = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "evaluation",
			Name:      "checks_run_total",
			Help:      "Total number of checks evaluated",
		},
	)

	alertsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "evaluation",
			Name:      "alerts_opened_total",
			Help:      "Total number of alerts opened",
		},
	)

	alertsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostwatch",
			Subsystem: "evaluation",
			Name:      "alerts_resolved_total",
			Help:      "Total number of alerts resolved",
		},
	)
)

// RecordReport counts an ingestion attempt by result ("accepted" or an error code).
func RecordReport(result string) {
	reportsTotal.WithLabelValues(result).Inc()
}

// RecordSampleWritten counts one persisted sample.
func RecordSampleWritten() {
	samplesWritten.Inc()
}

// RecordPass records the outcome and duration of an evaluation pass.
func RecordPass(result string, d time.Duration) {
	evaluationPasses.WithLabelValues(result).Inc()
	evaluationDuration.Observe(d.Seconds())
}

// RecordCheck counts one evaluated check.
func RecordCheck() {
	checksRun.Inc()
}

// RecordAlertOpened counts one opened alert.
func RecordAlertOpened() {
	alertsOpened.Inc()
}

// RecordAlertResolved counts one resolved alert.
func RecordAlertResolved() {
	alertsResolved.Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// Use the chi route pattern to keep label cardinality bounded
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := strconv.Itoa(wrapped.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
