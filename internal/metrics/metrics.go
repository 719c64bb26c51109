// Package metrics exposes Prometheus collectors for the HTTP service, the
// converters, the trial harness and SSE streams.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geodetic"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Coordinate conversions by direction, solver and resulting status.",
		},
		[]string{"direction", "solver", "status"},
	)

	conversionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent inside a single conversion.",
			Buckets:   prometheus.ExponentialBuckets(25e-9, 4, 10), // 25ns .. ~6.5ms
		},
		[]string{"direction", "solver"},
	)

	trialRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trial_runs_total",
			Help:      "Trial harness runs by solver and outcome.",
		},
		[]string{"solver", "outcome"},
	)

	trialMaxLatitudeError = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_max_latitude_error_microarcseconds",
			Help:      "Maximum latitude error of the last completed trial run.",
		},
		[]string{"solver"},
	)

	trialMaxAltitudeError = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_max_altitude_error_nanometers",
			Help:      "Maximum altitude error of the last completed trial run.",
		},
		[]string{"solver"},
	)

	trialAverageSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_average_seconds",
			Help:      "Average converter time per trial of the last completed run.",
		},
		[]string{"solver"},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_connections_total",
			Help:      "SSE connection events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "streams_active",
		Help:      "Currently open SSE streams.",
	})

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_errors_total",
			Help:      "SSE stream errors by reason.",
		},
		[]string{"reason"},
	)

	streamMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_messages_total",
		Help:      "SSE data messages sent.",
	})

	streamBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_bytes_total",
		Help:      "Bytes written to SSE streams.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		conversionsTotal,
		conversionDurationSeconds,
		trialRunsTotal,
		trialMaxLatitudeError,
		trialMaxAltitudeError,
		trialAverageSeconds,
		streamConnectionsTotal,
		streamsActive,
		streamErrorsTotal,
		streamMessagesTotal,
		streamBytesTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveConversion records one conversion. status is the String() of the
// resulting geodetic.Status.
func ObserveConversion(direction, solver, status string, d time.Duration) {
	conversionsTotal.WithLabelValues(direction, solver, status).Inc()
	conversionDurationSeconds.WithLabelValues(direction, solver).Observe(d.Seconds())
}

// ObserveTrialRun records the outcome of a harness run.
func ObserveTrialRun(solver, outcome string, maxLatUAS, maxAltNM float64, avg time.Duration) {
	trialRunsTotal.WithLabelValues(solver, outcome).Inc()
	if outcome != "ok" {
		return
	}
	trialMaxLatitudeError.WithLabelValues(solver).Set(maxLatUAS)
	trialMaxAltitudeError.WithLabelValues(solver).Set(maxAltNM)
	trialAverageSeconds.WithLabelValues(solver).Set(avg.Seconds())
}

// IncStreamConnections counts a connect or disconnect event.
func IncStreamConnections(event string) { streamConnectionsTotal.WithLabelValues(event).Inc() }

func IncStreamsActive() { streamsActive.Inc() }

func DecStreamsActive() { streamsActive.Dec() }

func IncStreamErrors(reason string) { streamErrorsTotal.WithLabelValues(reason).Inc() }

func IncStreamMessages() { streamMessagesTotal.Inc() }

func AddStreamBytes(n int64) { streamBytesTotal.Add(float64(n)) }

// knownRoutes are reported verbatim; everything else collapses to "other" so
// scanners cannot blow up label cardinality.
var knownRoutes = map[string]bool{
	"/":                     true,
	"/healthz":              true,
	"/readyz":               true,
	"/metrics":              true,
	"/api/v1/ellipsoid":     true,
	"/api/v1/solvers":       true,
	"/api/v1/geodetic":      true,
	"/api/v1/ecef":          true,
	"/api/v1/subpoint":      true,
	"/api/v1/trials":        true,
	"/api/v1/trials/stream": true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE handlers behind the middleware keep streaming.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := normalizeRoute(r.URL.Path)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
