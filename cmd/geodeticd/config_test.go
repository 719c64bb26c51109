package main

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoadGeodeticConfigDefaults(t *testing.T) {
	t.Setenv("GEODETIC_ELLIPSOID", "")
	t.Setenv("GEODETIC_EQUATORIAL_RADIUS", "")
	t.Setenv("GEODETIC_INVERSE_FLATTENING", "")
	t.Setenv("GEODETIC_SOLVER", "")

	cfg, err := loadGeodeticConfig(testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "grs80" || cfg.Ellipsoid != geodetic.GRS80 || cfg.Solver.Name() != "fukushima" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadGeodeticConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  bool
		wantName string
		wantA    float64
	}{
		{"wgs84", map[string]string{"GEODETIC_ELLIPSOID": "WGS84"}, false, "wgs84", 6378137.0},
		{"custom radius", map[string]string{"GEODETIC_EQUATORIAL_RADIUS": "6378160", "GEODETIC_INVERSE_FLATTENING": "298.25"}, false, "custom", 6378160},
		{"olson solver", map[string]string{"GEODETIC_SOLVER": "olson"}, false, "grs80", 6378137.0},
		{"unknown ellipsoid", map[string]string{"GEODETIC_ELLIPSOID": "clarke1866"}, true, "", 0},
		{"unknown solver", map[string]string{"GEODETIC_SOLVER": "bowring"}, true, "", 0},
		{"negative radius", map[string]string{"GEODETIC_EQUATORIAL_RADIUS": "-1"}, true, "", 0},
		{"inverse flattening below one", map[string]string{"GEODETIC_INVERSE_FLATTENING": "0.5"}, true, "", 0},
		{"zero inverse flattening", map[string]string{"GEODETIC_INVERSE_FLATTENING": "0"}, true, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"GEODETIC_ELLIPSOID", "GEODETIC_EQUATORIAL_RADIUS", "GEODETIC_INVERSE_FLATTENING", "GEODETIC_SOLVER"} {
				t.Setenv(k, tt.env[k])
			}
			cfg, err := loadGeodeticConfig(testLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Name != tt.wantName || math.Abs(cfg.Ellipsoid.EquatorialRadius()-tt.wantA) > 0 {
				t.Errorf("got %s a=%v, want %s a=%v", cfg.Name, cfg.Ellipsoid.EquatorialRadius(), tt.wantName, tt.wantA)
			}
		})
	}
}

func TestLoadAuthConfig(t *testing.T) {
	t.Setenv("GEODETIC_AUTH_ENABLED", "true")
	t.Setenv("GEODETIC_AUTH_TOKEN", "")
	if _, err := loadAuthConfig(testLogger()); err == nil {
		t.Error("enabled auth without a token should fail")
	}

	t.Setenv("GEODETIC_AUTH_TOKEN", "s3cret")
	cfg, err := loadAuthConfig(testLogger())
	if err != nil || !cfg.Enabled || cfg.Token != "s3cret" {
		t.Errorf("cfg = %+v, err = %v", cfg, err)
	}

	t.Setenv("GEODETIC_AUTH_ENABLED", "maybe")
	if _, err := loadAuthConfig(testLogger()); err == nil {
		t.Error("non-boolean GEODETIC_AUTH_ENABLED should fail")
	}
}

func TestLoadTrialAndStreamConfigFallBack(t *testing.T) {
	t.Setenv("GEODETIC_TRIAL_WORKERS", "zero")
	t.Setenv("GEODETIC_TRIAL_MAX_COUNT", "-5")
	tc := loadTrialConfig(testLogger())
	if tc.Workers < 1 || tc.MaxCount != trial.DefaultCount {
		t.Errorf("trial config = %+v", tc)
	}

	t.Setenv("GEODETIC_STREAM_MAX_CONCURRENT", "4")
	t.Setenv("GEODETIC_STREAM_KEEPALIVE_INTERVAL", "nope")
	sc := loadStreamConfig(testLogger(), 99, true)
	if sc.MaxConcurrentPerIP != 4 || sc.KeepaliveInterval != 15*time.Second || sc.MaxCount != 99 || !sc.TrustProxy {
		t.Errorf("stream config = %+v", sc)
	}

	t.Setenv("GEODETIC_TRUST_PROXY", "yes")
	if loadTrustProxy(testLogger()) {
		t.Error("unparseable GEODETIC_TRUST_PROXY should default to false")
	}
}
