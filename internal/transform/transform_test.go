package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want float64
	}{
		{"J2000.0", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{"unix epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2440587.5},
		{"before unix epoch", time.Date(1969, 12, 31, 12, 0, 0, 0, time.UTC), 2440587.0},
		// Vallado Example 3-15.
		{"vallado 3-15", time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC), 2453101.827411875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			if diff := math.Abs(got - tt.want); diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.want, diff)
			}
		})
	}
}

// GMST must track go-satellite's GSTimeFromDate, which uses the same IAU-82 model.
func TestGMSTAgainstGoSatellite(t *testing.T) {
	times := []time.Time{
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC),
		time.Date(2026, 2, 6, 4, 1, 0, 0, time.UTC),
		time.Date(2026, 10, 17, 23, 59, 59, 0, time.UTC),
	}

	for _, tm := range times {
		t.Run(tm.Format(time.RFC3339), func(t *testing.T) {
			got := GMST(tm)
			want := satellite.GSTimeFromDate(tm.Year(), int(tm.Month()), tm.Day(), tm.Hour(), tm.Minute(), tm.Second())
			if diff := math.Abs(got - want); diff > 1e-8 {
				t.Errorf("GMST = %.12f, go-satellite = %.12f (diff=%.2e)", got, want, diff)
			}
			if got < 0 || got >= 2*math.Pi {
				t.Errorf("GMST = %v, outside [0, 2π)", got)
			}
		})
	}
}

func TestTEMEToECEFAgainstGoSatellite(t *testing.T) {
	tests := []struct {
		name string
		teme Vector
		time time.Time
	}{
		{"vallado 3-15", Vector{X: 5094.18016, Y: 6127.64465, Z: 6380.34453}, time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC)},
		{"leo equatorial", Vector{X: 6778.0}, time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)},
		{"leo polar", Vector{Z: 6978.0}, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gmst := GMST(tt.time)
			got := TEMEToECEF(tt.teme, gmst)
			ref := satellite.ECIToECEF(satellite.Vector3{X: tt.teme.X, Y: tt.teme.Y, Z: tt.teme.Z}, gmst)

			for _, c := range []struct {
				axis      string
				got, want float64
			}{
				{"x", got.X, ref.X * 1000},
				{"y", got.Y, ref.Y * 1000},
				{"z", got.Z, ref.Z * 1000},
			} {
				if math.Abs(c.got-c.want) > 1e-6 {
					t.Errorf("%s = %.6f m, go-satellite = %.6f m", c.axis, c.got, c.want)
				}
			}
		})
	}
}

func TestTEMEToECEFPreservesRadius(t *testing.T) {
	teme := Vector{X: 4000, Y: -3000, Z: 4500}
	want := math.Sqrt(4000*4000+3000*3000+4500*4500) * 1000
	for _, g := range []float64{0, 1, math.Pi, 5.5} {
		if got := TEMEToECEF(teme, g).Norm(); math.Abs(got-want) > 1e-6 {
			t.Errorf("gmst=%v: |r| = %v, want %v", g, got, want)
		}
	}
}

func TestPlausibleOrbit(t *testing.T) {
	tests := []struct {
		name string
		p    geodetic.Cartesian
		want bool
	}{
		{"leo", geodetic.Cartesian{X: 6778e3}, true},
		{"geo", geodetic.Cartesian{Y: 42164e3}, true},
		{"inside earth", geodetic.Cartesian{Z: 3000e3}, false},
		{"too far", geodetic.Cartesian{X: 60000e3}, false},
		{"nan", geodetic.Cartesian{X: math.NaN()}, false},
		{"inf", geodetic.Cartesian{Y: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlausibleOrbit(tt.p); got != tt.want {
				t.Errorf("PlausibleOrbit(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestLookAnglesZenith(t *testing.T) {
	obs, err := NewObserver(geodetic.WGS84, geodetic.FromDegrees(48.8566, 2.3522, 35))
	if err != nil {
		t.Fatal(err)
	}

	// A point 400 km along the ellipsoid normal is straight overhead.
	target, status := geodetic.Forward(geodetic.WGS84, geodetic.FromDegrees(48.8566, 2.3522, 400e3+35))
	if status != geodetic.Success {
		t.Fatalf("Forward status = %v", status)
	}

	la := obs.LookAngles(target)
	if la.ElevationDeg < 89.999 {
		t.Errorf("elevation = %.6f°, want ~90°", la.ElevationDeg)
	}
	if math.Abs(la.RangeKm-400) > 1e-6 {
		t.Errorf("range = %.9f km, want 400", la.RangeKm)
	}
}

func TestLookAnglesCardinal(t *testing.T) {
	obs, err := NewObserver(geodetic.WGS84, geodetic.FromDegrees(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		target geodetic.Geodetic
		wantAz float64
	}{
		{"north", geodetic.FromDegrees(5, 0, 500e3), 0},
		{"east", geodetic.FromDegrees(0, 5, 500e3), 90},
		{"south", geodetic.FromDegrees(-5, 0, 500e3), 180},
		{"west", geodetic.FromDegrees(0, -5, 500e3), 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := geodetic.Forward(geodetic.WGS84, tt.target)
			la := obs.LookAngles(p)
			if math.Abs(la.AzimuthDeg-tt.wantAz) > 1e-6 {
				t.Errorf("azimuth = %.6f°, want %v°", la.AzimuthDeg, tt.wantAz)
			}
			if la.ElevationDeg <= 0 {
				t.Errorf("elevation = %.3f°, want above horizon", la.ElevationDeg)
			}
		})
	}
}

func TestLookAnglesSelf(t *testing.T) {
	obs, err := NewObserver(geodetic.GRS80, geodetic.FromDegrees(10, 20, 0))
	if err != nil {
		t.Fatal(err)
	}
	la := obs.LookAngles(obs.ECEF)
	if la.RangeKm != 0 || la.ElevationDeg != 90 {
		t.Errorf("LookAngles(self) = %+v", la)
	}
}

func TestNewObserverInvalidAltitude(t *testing.T) {
	if _, err := NewObserver(geodetic.WGS84, geodetic.FromDegrees(0, 0, -7e6)); err == nil {
		t.Error("expected error for observer below the center of curvature")
	}
}
