// Package api exposes the geodetic converters, SGP4 sub-satellite points and
// the trial harness over HTTP/JSON.
package api

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/auth"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/health"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/httputil"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/metrics"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/stream"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

// Config holds the service configuration assembled in main.
type Config struct {
	Addr          string
	EllipsoidName string
	Ellipsoid     geodetic.Ellipsoid
	Solver        geodetic.Solver
	TrialMaxCount int
	TrustProxy    bool
	Auth          auth.Config
	Verbose       bool // include purpose/usage text in conversion diagnostics
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, runner *trial.Runner, streamHandler *stream.Handler, logger *slog.Logger) *Server {
	if cfg.Solver == nil {
		cfg.Solver = geodetic.DefaultSolver
	}
	if cfg.TrialMaxCount <= 0 {
		cfg.TrialMaxCount = trial.DefaultCount
	}

	h := &handlers{
		cfg:      cfg,
		runner:   runner,
		logger:   logger.With("component", "api"),
		reporter: geodetic.NewLogReporter(logger, cfg.Verbose),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() error { return selfTest(cfg.Ellipsoid, cfg.Solver) }))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/ellipsoid", h.ellipsoid)
	mux.HandleFunc("GET /api/v1/solvers", h.solvers)
	mux.HandleFunc("GET /api/v1/geodetic", h.toGeodetic)
	mux.HandleFunc("GET /api/v1/ecef", h.toECEF)
	mux.HandleFunc("GET /api/v1/subpoint", h.subPoint)
	mux.HandleFunc("POST /api/v1/trials", h.runTrials)
	if streamHandler != nil {
		mux.HandleFunc("GET /api/v1/trials/stream", streamHandler.HandleTrials)
	}

	// metrics -> request id -> logging -> auth -> mux
	var handler http.Handler = mux
	handler = auth.Middleware(cfg.Auth, logger)(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = httputil.RequestIDMiddleware(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		handler: handler,
		logger:  logger,
	}
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// selfTest round-trips a fixed point through the configured ellipsoid and
// solver.
func selfTest(e geodetic.Ellipsoid, solver geodetic.Solver) error {
	if !e.Valid() {
		return fmt.Errorf("ellipsoid not configured")
	}
	want := geodetic.FromDegrees(45, 45, 1000)
	p, status := geodetic.Forward(e, want)
	if status != geodetic.Success {
		return fmt.Errorf("forward conversion: %v", status)
	}
	got := solver.Solve(e, p)
	if math.Abs(got.Latitude-want.Latitude) > 1e-11 || math.Abs(got.Altitude-want.Altitude) > 1e-6 {
		return fmt.Errorf("%s round trip drifted: %+v", solver.Name(), got)
	}
	return nil
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"request_id", httputil.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
