package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/auth"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/httputil"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/stream"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testServer(authCfg auth.Config) http.Handler {
	logger := testLogger()
	runner := trial.NewRunner(2, logger)
	cfg := Config{
		EllipsoidName: "grs80",
		Ellipsoid:     geodetic.GRS80,
		TrialMaxCount: 100,
		Auth:          authCfg,
	}
	sh := stream.NewHandler(runner, cfg.Ellipsoid, stream.Config{MaxCount: 100}, logger)
	return NewServer(cfg, runner, sh, logger).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestProbes(t *testing.T) {
	h := testServer(auth.Config{})
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, path, nil)
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if rec.Header().Get(httputil.RequestIDHeader) == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestSelfTest(t *testing.T) {
	for _, s := range geodetic.Solvers() {
		if err := selfTest(geodetic.WGS84, s); err != nil {
			t.Errorf("%s: %v", s.Name(), err)
		}
	}
	if err := selfTest(geodetic.Ellipsoid{}, geodetic.DefaultSolver); err == nil {
		t.Error("zero ellipsoid should not be ready")
	}
}

func TestEllipsoidEndpoint(t *testing.T) {
	rec := do(t, testServer(auth.Config{}), http.MethodGet, "/api/v1/ellipsoid", nil)
	var resp ellipsoidResponse
	decode(t, rec, &resp)

	if resp.Name != "grs80" || resp.EquatorialRadius != 6378137.0 {
		t.Errorf("unexpected ellipsoid: %+v", resp)
	}
	if math.Abs(resp.InverseFlattening-298.257222101) > 1e-9 {
		t.Errorf("inverse flattening = %v", resp.InverseFlattening)
	}
	if math.Abs(resp.PolarRadius-6356752.314140) > 1e-6 {
		t.Errorf("polar radius = %v", resp.PolarRadius)
	}
}

func TestSolversEndpoint(t *testing.T) {
	rec := do(t, testServer(auth.Config{}), http.MethodGet, "/api/v1/solvers", nil)
	var resp struct {
		Solvers []string `json:"solvers"`
		Default string   `json:"default"`
	}
	decode(t, rec, &resp)
	if strings.Join(resp.Solvers, ",") != "fukushima,olson" || resp.Default != "fukushima" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGeodeticEndpoint(t *testing.T) {
	h := testServer(auth.Config{})

	want := geodetic.FromDegrees(-33.8688, 151.2093, 58)
	p, _ := geodetic.Forward(geodetic.GRS80, want)
	q := url.Values{}
	q.Set("x", formatFloat(p.X))
	q.Set("y", formatFloat(p.Y))
	q.Set("z", formatFloat(p.Z))

	for _, solver := range []string{"", "fukushima", "OLSON"} {
		t.Run("solver="+solver, func(t *testing.T) {
			q.Set("solver", solver)
			rec := do(t, h, http.MethodGet, "/api/v1/geodetic?"+q.Encode(), nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var resp geodeticResponse
			decode(t, rec, &resp)
			if resp.Status != geodetic.Success {
				t.Errorf("status = %v", resp.Status)
			}
			if math.Abs(resp.LatitudeDeg-(-33.8688)) > 1e-9 || math.Abs(resp.LongitudeDeg-151.2093) > 1e-9 {
				t.Errorf("lat/lon = %v, %v", resp.LatitudeDeg, resp.LongitudeDeg)
			}
			if math.Abs(resp.Altitude-58) > 1e-6 {
				t.Errorf("altitude = %v", resp.Altitude)
			}
		})
	}
}

func TestGeodeticEndpointNearGeocenter(t *testing.T) {
	h := testServer(auth.Config{})

	for _, solver := range []string{"fukushima", "olson"} {
		for _, point := range []string{"x=1000&y=0&z=1000", "x=10&y=0&z=5"} {
			t.Run(solver+"/"+point, func(t *testing.T) {
				rec := do(t, h, http.MethodGet, "/api/v1/geodetic?"+point+"&solver="+solver, nil)
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
				}
				var resp geodeticResponse
				decode(t, rec, &resp)
				if resp.Status != geodetic.Success || resp.Solver != solver {
					t.Errorf("status = %v, solver = %q", resp.Status, resp.Solver)
				}
				if resp.Altitude >= 0 || math.Abs(resp.LatitudeDeg) > 90 {
					t.Errorf("lat = %v, alt = %v", resp.LatitudeDeg, resp.Altitude)
				}
			})
		}
	}
}

func TestGeodeticEndpointErrors(t *testing.T) {
	h := testServer(auth.Config{})

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantStatus string
	}{
		{"missing z", "x=1&y=2", http.StatusBadRequest, ""},
		{"non-numeric", "x=1&y=two&z=3", http.StatusBadRequest, ""},
		{"nan", "x=NaN&y=0&z=0", http.StatusBadRequest, ""},
		{"unknown solver", "x=1&y=2&z=3&solver=bowring", http.StatusBadRequest, ""},
		{"bad flattening", "x=1&y=2&z=3&f=1", http.StatusUnprocessableEntity, "invalid_flattening_factor"},
		{"bad radius", "x=1&y=2&z=3&a=-1", http.StatusUnprocessableEntity, "invalid_equatorial_radius"},
		{"both bad reports flattening", "x=1&y=2&z=3&a=0&f=-0.1", http.StatusUnprocessableEntity, "invalid_flattening_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/v1/geodetic?"+tt.query, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var body httputil.ErrorBody
			decode(t, rec, &body)
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.RequestID == "" {
				t.Error("error body missing request_id")
			}
		})
	}
}

func TestECEFEndpoint(t *testing.T) {
	h := testServer(auth.Config{})

	rec := do(t, h, http.MethodGet, "/api/v1/ecef?lat=0&lon=90&alt=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp ecefResponse
	decode(t, rec, &resp)
	if math.Abs(resp.X) > 1e-6 || math.Abs(resp.Y-6378137.0) > 1e-6 || math.Abs(resp.Z) > 1e-6 {
		t.Errorf("ecef = %+v, want (0, a, 0)", resp)
	}

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantStatus string
	}{
		{"missing lon", "lat=10", http.StatusBadRequest, ""},
		{"latitude out of range", "lat=91&lon=0", http.StatusBadRequest, ""},
		{"flattening above one", "lat=10&lon=0&f=1.5", http.StatusUnprocessableEntity, "invalid_flattening_factor"},
		{"bad radius", "lat=10&lon=0&a=0", http.StatusUnprocessableEntity, "invalid_equatorial_radius"},
		{"below center", "lat=10&lon=0&alt=-7000000", http.StatusUnprocessableEntity, "invalid_altitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/v1/ecef?"+tt.query, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var body httputil.ErrorBody
			decode(t, rec, &body)
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}
}

func TestECEFEndpointReportsParameter(t *testing.T) {
	var diags []geodetic.Diagnostic
	h := &handlers{
		cfg:      Config{Ellipsoid: geodetic.GRS80, Solver: geodetic.DefaultSolver},
		logger:   testLogger(),
		reporter: geodetic.ReporterFunc(func(d geodetic.Diagnostic) { diags = append(diags, d) }),
	}

	rec := httptest.NewRecorder()
	h.toECEF(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ecef?lat=10&lon=0&f=1.5", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(diags) != 1 {
		t.Fatalf("reported %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Operation != geodetic.OpToECEF || d.Status != geodetic.InvalidFlatteningFactor {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Parameter != "flattening factor" || d.Value != 1.5 {
		t.Errorf("parameter = %q, value = %v", d.Parameter, d.Value)
	}
}

func TestSubPointEndpoint(t *testing.T) {
	h := testServer(auth.Config{})

	q := url.Values{}
	q.Set("line1", issLine1)
	q.Set("line2", issLine2)
	q.Set("time", "2024-04-10T12:00:00Z")
	q.Set("obs_lat", "0")
	q.Set("obs_lon", "0")

	rec := do(t, h, http.MethodGet, "/api/v1/subpoint?"+q.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp subPointResponse
	decode(t, rec, &resp)
	if resp.NORADID != 25544 || resp.Time != "2024-04-10T12:00:00Z" {
		t.Errorf("unexpected metadata: %+v", resp)
	}
	if math.Abs(resp.LatDeg) > 52 || resp.AltKm < 300 || resp.AltKm > 500 {
		t.Errorf("implausible ISS sub-point: %+v", resp)
	}
	if resp.Look == nil {
		t.Error("look angles missing with an observer")
	}

	bad := url.Values{}
	bad.Set("line1", "1 garbage")
	bad.Set("line2", issLine2)
	if rec := do(t, h, http.MethodGet, "/api/v1/subpoint?"+bad.Encode(), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid TLE: status = %d, want 400", rec.Code)
	}

	q.Set("time", "yesterday")
	if rec := do(t, h, http.MethodGet, "/api/v1/subpoint?"+q.Encode(), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid time: status = %d, want 400", rec.Code)
	}
}

func TestTrialsEndpoint(t *testing.T) {
	h := testServer(auth.Config{Enabled: true, Token: "s3cret"})

	if rec := do(t, h, http.MethodPost, "/api/v1/trials?count=8", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rec.Code)
	}

	authz := http.Header{"Authorization": {"Bearer s3cret"}}

	rec := do(t, h, http.MethodPost, "/api/v1/trials?count=8&solver=olson", authz)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var summary trial.Summary
	decode(t, rec, &summary)
	if summary.Trials != 8 || summary.Solver != "olson" || summary.Failures != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.MaxLatitudeErrorMicroArcsec > 1.5 {
		t.Errorf("max latitude error = %v µas", summary.MaxLatitudeErrorMicroArcsec)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/trials?count=4&format=text", authz)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "MAXIMUM ABSOLUTE ERRORS") {
		t.Errorf("text format: status = %d body = %q", rec.Code, rec.Body.String())
	}

	for _, q := range []string{"count=0", "count=101", "count=x", "solver=nope"} {
		if rec := do(t, h, http.MethodPost, "/api/v1/trials?"+q, authz); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/trials", authz); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/v1/trials: status = %d, want 405", rec.Code)
	}
}

func TestTrialsStreamRoute(t *testing.T) {
	rec := do(t, testServer(auth.Config{Enabled: true, Token: "s3cret"}), http.MethodGet, "/api/v1/trials/stream?count=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if n := strings.Count(rec.Body.String(), `"type":"trial"`); n != 3 {
		t.Errorf("got %d trial events, want 3", n)
	}
	if !strings.Contains(rec.Body.String(), `"type":"summary"`) {
		t.Error("missing summary event")
	}
}

func formatFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
