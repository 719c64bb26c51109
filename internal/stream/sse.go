// Package stream implements a Server-Sent Events feed of trial harness
// progress. Clients connect to GET /api/v1/trials/stream and receive one
// message per completed trial followed by a summary.
//
// SSE message format:
//
//	data: {"type":"metadata","solver":"fukushima","count":1440,"grid_size":40,...}\n\n
//	data: {"type":"trial","index":0,"longitude_deg":0,"max_latitude_error_uas":0.61,...}\n\n
//	data: {"type":"summary","summary":{...}}\n\n
//
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval while no
// trial completes.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/httputil"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/metrics"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // default 2
	MaxConcurrent      int           // global cap, default 64
	KeepaliveInterval  time.Duration // default 15s
	MaxCount           int           // upper bound on ?count
	TrustProxy         bool
}

// Handler serves trial progress streams.
type Handler struct {
	runner    *trial.Runner
	ellipsoid geodetic.Ellipsoid
	config    Config
	limiter   *streamLimiter
	logger    *slog.Logger
}

// NewHandler creates a streaming handler running trials on ellipsoid e.
func NewHandler(runner *trial.Runner, e geodetic.Ellipsoid, config Config, logger *slog.Logger) *Handler {
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 2
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 15 * time.Second
	}
	if config.MaxCount <= 0 {
		config.MaxCount = trial.DefaultCount
	}
	return &Handler{
		runner:    runner,
		ellipsoid: e,
		config:    config,
		limiter:   newStreamLimiter(config.MaxConcurrentPerIP, config.MaxConcurrent),
		logger:    logger,
	}
}

// SSE payloads.

type metadataMessage struct {
	Type      string  `json:"type"`
	Solver    string  `json:"solver"`
	Count     int     `json:"count"`
	GridSize  int     `json:"grid_size"`
	Radius    float64 `json:"equatorial_radius_m"`
	Flat      float64 `json:"flattening"`
	StartedAt string  `json:"started_at"`
}

type trialMessage struct {
	Type                        string  `json:"type"`
	Index                       int     `json:"index"`
	LongitudeDeg                float64 `json:"longitude_deg"`
	MaxLatitudeErrorMicroArcsec float64 `json:"max_latitude_error_uas"`
	MaxAltitudeErrorNanometers  float64 `json:"max_altitude_error_nm"`
	ElapsedNanos                int64   `json:"elapsed_ns"`
	Failures                    int     `json:"failures"`
}

type summaryMessage struct {
	Type    string        `json:"type"`
	Summary trial.Summary `json:"summary"`
}

func newTrialMessage(r trial.Result) trialMessage {
	return trialMessage{
		Type:                        "trial",
		Index:                       r.Index,
		LongitudeDeg:                r.LongitudeDeg,
		MaxLatitudeErrorMicroArcsec: r.MaxLatitudeErrorMicroArcsec,
		MaxAltitudeErrorNanometers:  r.MaxAltitudeErrorNanometers,
		ElapsedNanos:                r.Elapsed.Nanoseconds(),
		Failures:                    r.Failures,
	}
}

// parseQuery reads ?count= and ?solver=.
func (h *Handler) parseQuery(r *http.Request) (int, geodetic.Solver, error) {
	q := r.URL.Query()

	count := trial.DefaultCount
	if count > h.config.MaxCount {
		count = h.config.MaxCount
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > h.config.MaxCount {
			return 0, nil, fmt.Errorf("invalid count parameter, must be 1-%d", h.config.MaxCount)
		}
		count = n
	}

	solver, ok := geodetic.SolverByName(q.Get("solver"))
	if !ok {
		return 0, nil, fmt.Errorf("unknown solver %q", q.Get("solver"))
	}
	return count, solver, nil
}

// HandleTrials serves the SSE trial stream.
// GET /api/v1/trials/stream?count=360&solver=olson
func (h *Handler) HandleTrials(w http.ResponseWriter, r *http.Request) {
	count, solver, err := h.parseQuery(r)
	if err != nil {
		httputil.WriteError(w, r, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Retry-After", "30")
		httputil.WriteError(w, r, h.logger, http.StatusTooManyRequests, "too many concurrent streams")
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"request_id", httputil.RequestID(r.Context()),
		"solver", solver.Name(),
		"count", count,
	)

	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, r, h.logger, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's WriteTimeout for this connection; client extends
	// the deadline per write.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{w: w, flusher: flusher, rc: rc, ip: ip, logger: h.logger}

	// Jittered retry (3-7s) spreads out reconnects after a restart.
	fmt.Fprintf(w, "retry: %d\n\n", 3000+rand.Intn(4000))
	flusher.Flush()

	meta := metadataMessage{
		Type:      "metadata",
		Solver:    solver.Name(),
		Count:     count,
		GridSize:  trial.DefaultGrid().Size(),
		Radius:    h.ellipsoid.EquatorialRadius(),
		Flat:      h.ellipsoid.Flattening(),
		StartedAt: startTime.UTC().Format(time.RFC3339),
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "remote_ip", ip, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// results is unbuffered so every trial is consumed before done fires.
	results := make(chan trial.Result)
	done := make(chan error, 1)
	var summary trial.Summary
	go func() {
		var err error
		summary, err = h.runner.Run(ctx, trial.Config{
			Ellipsoid: h.ellipsoid,
			Solver:    solver,
			Count:     count,
		}, func(res trial.Result) {
			select {
			case results <- res:
			case <-ctx.Done():
			}
		})
		done <- err
	}()

	keepalive := time.NewTicker(h.config.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			metrics.ObserveTrialRun(solver.Name(), "cancelled", 0, 0, 0)
			return

		case res := <-results:
			if err := c.sendJSON(newTrialMessage(res)); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}
			keepalive.Reset(h.config.KeepaliveInterval)

		case err := <-done:
			if err != nil {
				outcome := "error"
				if errors.Is(err, context.Canceled) {
					outcome = "cancelled"
				}
				metrics.ObserveTrialRun(solver.Name(), outcome, 0, 0, 0)
				return
			}
			metrics.ObserveTrialRun(solver.Name(), "ok", summary.MaxLatitudeErrorMicroArcsec, summary.MaxAltitudeErrorNanometers, summary.AveragePerTrial)
			if err := c.sendJSON(summaryMessage{Type: "summary", Summary: summary}); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error (summary)", "remote_ip", ip, "error", err)
			}
			return

		case <-keepalive.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}
