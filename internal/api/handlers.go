package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/httputil"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/metrics"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/orbit"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/transform"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

type handlers struct {
	cfg      Config
	runner   *trial.Runner
	logger   *slog.Logger
	reporter geodetic.Reporter
}

type ellipsoidResponse struct {
	Name                    string  `json:"name,omitempty"`
	EquatorialRadius        float64 `json:"equatorial_radius_m"`
	Flattening              float64 `json:"flattening"`
	InverseFlattening       float64 `json:"inverse_flattening,omitempty"`
	EccentricitySquared     float64 `json:"eccentricity_squared"`
	ComplementaryEccSquared float64 `json:"complementary_eccentricity_squared"`
	PolarRadius             float64 `json:"polar_radius_m"`
}

func newEllipsoidResponse(name string, e geodetic.Ellipsoid) ellipsoidResponse {
	resp := ellipsoidResponse{
		Name:                    name,
		EquatorialRadius:        e.EquatorialRadius(),
		Flattening:              e.Flattening(),
		EccentricitySquared:     e.EccentricitySquared(),
		ComplementaryEccSquared: e.ComplementaryEccentricitySquared(),
		PolarRadius:             e.PolarRadius(),
	}
	if e.Flattening() > 0 {
		resp.InverseFlattening = 1 / e.Flattening()
	}
	return resp
}

type geodeticResponse struct {
	Status       geodetic.Status `json:"status"`
	Solver       string          `json:"solver"`
	LatitudeDeg  float64         `json:"latitude_deg"`
	LongitudeDeg float64         `json:"longitude_deg"`
	LatitudeRad  float64         `json:"latitude_rad"`
	LongitudeRad float64         `json:"longitude_rad"`
	Altitude     float64         `json:"altitude_m"`
}

type ecefResponse struct {
	Status geodetic.Status `json:"status"`
	X      float64         `json:"x_m"`
	Y      float64         `json:"y_m"`
	Z      float64         `json:"z_m"`
}

type subPointResponse struct {
	NORADID int                   `json:"norad_id"`
	Time    string                `json:"time"`
	Solver  string                `json:"solver"`
	ECEF    [3]float64            `json:"ecef_m"`
	LatDeg  float64               `json:"latitude_deg"`
	LonDeg  float64               `json:"longitude_deg"`
	AltKm   float64               `json:"altitude_km"`
	Look    *transform.LookAngles `json:"look,omitempty"`
}

// errMissing marks a required query parameter that was not supplied.
var errMissing = errors.New("missing")

// queryFloat parses a finite float. def is returned when the parameter is
// absent; a NaN def makes the parameter required.
func queryFloat(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		if math.IsNaN(def) {
			return 0, fmt.Errorf("%s: %w", name, errMissing)
		}
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: not a finite number: %q", name, v)
	}
	return f, nil
}

func (h *handlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, h.logger, http.StatusBadRequest, err.Error())
}

func (h *handlers) unprocessable(w http.ResponseWriter, r *http.Request, status geodetic.Status, msg string) {
	httputil.WriteJSON(w, r, h.logger, http.StatusUnprocessableEntity, httputil.ErrorBody{
		Error:     msg,
		Status:    status.String(),
		RequestID: httputil.RequestID(r.Context()),
	})
}

func (h *handlers) solverParam(r *http.Request) (geodetic.Solver, error) {
	name := r.URL.Query().Get("solver")
	if name == "" {
		return h.cfg.Solver, nil
	}
	s, ok := geodetic.SolverByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown solver %q", name)
	}
	return s, nil
}

// ellipsoidParams reads ?a= and ?f=, defaulting to the configured ellipsoid.
func (h *handlers) ellipsoidParams(q url.Values) (a, f float64, err error) {
	if a, err = queryFloat(q, "a", h.cfg.Ellipsoid.EquatorialRadius()); err != nil {
		return 0, 0, err
	}
	if f, err = queryFloat(q, "f", h.cfg.Ellipsoid.Flattening()); err != nil {
		return 0, 0, err
	}
	return a, f, nil
}

// GET /api/v1/ellipsoid
func (h *handlers) ellipsoid(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, r, h.logger, http.StatusOK, newEllipsoidResponse(h.cfg.EllipsoidName, h.cfg.Ellipsoid))
}

// GET /api/v1/solvers
func (h *handlers) solvers(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, s := range geodetic.Solvers() {
		names = append(names, s.Name())
	}
	httputil.WriteJSON(w, r, h.logger, http.StatusOK, map[string]any{
		"solvers": names,
		"default": h.cfg.Solver.Name(),
	})
}

// GET /api/v1/geodetic?x=&y=&z=[&solver=][&a=&f=]
func (h *handlers) toGeodetic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p geodetic.Cartesian
	var err error
	if p.X, err = queryFloat(q, "x", math.NaN()); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if p.Y, err = queryFloat(q, "y", math.NaN()); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if p.Z, err = queryFloat(q, "z", math.NaN()); err != nil {
		h.badRequest(w, r, err)
		return
	}
	a, f, err := h.ellipsoidParams(q)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	solver, err := h.solverParam(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	conv := geodetic.NewConverter(solver, h.reporter)
	start := time.Now()
	g, status := conv.ToGeodetic(a, f, p)
	metrics.ObserveConversion(string(geodetic.OpToGeodetic), solver.Name(), status.String(), time.Since(start))

	if status != geodetic.Success {
		h.unprocessable(w, r, status, fmt.Sprintf("invalid ellipsoid parameters a=%v f=%v", a, f))
		return
	}
	httputil.WriteJSON(w, r, h.logger, http.StatusOK, geodeticResponse{
		Status:       status,
		Solver:       solver.Name(),
		LatitudeDeg:  g.LatitudeDegrees(),
		LongitudeDeg: g.LongitudeDegrees(),
		LatitudeRad:  g.Latitude,
		LongitudeRad: g.Longitude,
		Altitude:     g.Altitude,
	})
}

// GET /api/v1/ecef?lat=&lon=&alt=[&a=&f=]
func (h *handlers) toECEF(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := queryFloat(q, "lat", math.NaN())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	lon, err := queryFloat(q, "lon", math.NaN())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	alt, err := queryFloat(q, "alt", 0)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if lat < -90 || lat > 90 {
		h.badRequest(w, r, fmt.Errorf("lat: must be within [-90, 90], got %v", lat))
		return
	}
	a, f, err := h.ellipsoidParams(q)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// The forward converter is parameterized by eccentricity squared, which
	// cannot tell f > 1 from a valid flattening. Validate f on its own first.
	e, err := geodetic.NewEllipsoid(a, f)
	if err != nil {
		status := geodetic.StatusOf(err)
		metrics.ObserveConversion(string(geodetic.OpToECEF), "closed_form", status.String(), 0)
		h.reporter.Report(geodetic.DiagnosticFor(geodetic.OpToECEF, err))
		h.unprocessable(w, r, status, err.Error())
		return
	}

	conv := geodetic.NewConverter(h.cfg.Solver, h.reporter)
	start := time.Now()
	p, status := conv.ToECEF(e.EquatorialRadius(), e.EccentricitySquared(), geodetic.FromDegrees(lat, lon, alt))
	metrics.ObserveConversion(string(geodetic.OpToECEF), "closed_form", status.String(), time.Since(start))

	if status != geodetic.Success {
		h.unprocessable(w, r, status, fmt.Sprintf("altitude %v m is below the center of curvature", alt))
		return
	}
	httputil.WriteJSON(w, r, h.logger, http.StatusOK, ecefResponse{Status: status, X: p.X, Y: p.Y, Z: p.Z})
}

// GET /api/v1/subpoint?line1=&line2=[&time=][&solver=][&obs_lat=&obs_lon=&obs_alt=]
func (h *handlers) subPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prop, err := orbit.NewPropagator(q.Get("line1"), q.Get("line2"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	at := time.Now().UTC()
	if v := q.Get("time"); v != "" {
		if at, err = time.Parse(time.RFC3339, v); err != nil {
			h.badRequest(w, r, fmt.Errorf("time: %w", err))
			return
		}
	}

	solver, err := h.solverParam(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var obs *transform.Observer
	if q.Has("obs_lat") || q.Has("obs_lon") {
		lat, err := queryFloat(q, "obs_lat", math.NaN())
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		lon, err := queryFloat(q, "obs_lon", math.NaN())
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		alt, err := queryFloat(q, "obs_alt", 0)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		o, err := transform.NewObserver(h.cfg.Ellipsoid, geodetic.FromDegrees(lat, lon, alt))
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		obs = &o
	}

	start := time.Now()
	sp, err := prop.SubPoint(at, h.cfg.Ellipsoid, solver, obs)
	if err != nil {
		h.logger.Warn("sub-point failed", "norad_id", prop.NORADID(), "error", err)
		httputil.WriteError(w, r, h.logger, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metrics.ObserveConversion(string(geodetic.OpToGeodetic), solver.Name(), geodetic.Success.String(), time.Since(start))

	httputil.WriteJSON(w, r, h.logger, http.StatusOK, subPointResponse{
		NORADID: sp.NORADID,
		Time:    sp.Time.Format(time.RFC3339),
		Solver:  sp.Solver,
		ECEF:    [3]float64{sp.ECEF.X, sp.ECEF.Y, sp.ECEF.Z},
		LatDeg:  sp.Geodetic.LatitudeDegrees(),
		LonDeg:  sp.Geodetic.LongitudeDegrees(),
		AltKm:   sp.Geodetic.Altitude / 1000,
		Look:    sp.Look,
	})
}

// POST /api/v1/trials?count=&solver=
func (h *handlers) runTrials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	count := min(trial.DefaultCount, h.cfg.TrialMaxCount)
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > h.cfg.TrialMaxCount {
			h.badRequest(w, r, fmt.Errorf("invalid count parameter, must be 1-%d", h.cfg.TrialMaxCount))
			return
		}
		count = n
	}
	solver, err := h.solverParam(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	summary, err := h.runner.Run(r.Context(), trial.Config{
		Ellipsoid: h.cfg.Ellipsoid,
		Solver:    solver,
		Count:     count,
	}, nil)
	if err != nil {
		metrics.ObserveTrialRun(solver.Name(), "cancelled", 0, 0, 0)
		h.logger.Warn("trial run aborted", "request_id", httputil.RequestID(r.Context()), "error", err)
		httputil.WriteError(w, r, h.logger, http.StatusServiceUnavailable, "trial run aborted: "+err.Error())
		return
	}
	metrics.ObserveTrialRun(solver.Name(), "ok", summary.MaxLatitudeErrorMicroArcsec, summary.MaxAltitudeErrorNanometers, summary.AveragePerTrial)

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := trial.WriteSummary(w, summary); err != nil {
			h.logger.Warn("write summary failed", "error", err)
		}
		return
	}
	httputil.WriteJSON(w, r, h.logger, http.StatusOK, summary)
}
