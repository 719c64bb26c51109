package geodetic

import (
	"math"
	"testing"
)

func TestForwardMagnitudes(t *testing.T) {
	// Sea level on the equator sits at the equatorial radius.
	p, status := Forward(GRS80, FromDegrees(0, 0, 0))
	if status != Success {
		t.Fatalf("status = %v", status)
	}
	if math.Abs(p.X-6378137.0) > 1e-9 || p.Y != 0 || p.Z != 0 {
		t.Errorf("equator = %+v, want (6378137, 0, 0)", p)
	}

	// Sea level at the north pole sits at the polar radius.
	p, _ = Forward(GRS80, Geodetic{Latitude: math.Pi / 2})
	if math.Abs(p.Z-GRS80.PolarRadius()) > 1e-6 {
		t.Errorf("pole z = %.6f m, want %.6f m", p.Z, GRS80.PolarRadius())
	}
	if math.Hypot(p.X, p.Y) > 1e-6 {
		t.Errorf("pole axis distance = %.3e m, want ~0", math.Hypot(p.X, p.Y))
	}
}

func TestForwardAltitudeAlongNormal(t *testing.T) {
	g := FromDegrees(37.5, -122.25, 0)
	p0, _ := Forward(GRS80, g)
	g.Altitude = 100
	p100, _ := Forward(GRS80, g)

	d := math.Sqrt((p100.X-p0.X)*(p100.X-p0.X) + (p100.Y-p0.Y)*(p100.Y-p0.Y) + (p100.Z-p0.Z)*(p100.Z-p0.Z))
	if math.Abs(d-100) > 1e-6 {
		t.Errorf("displacement for 100 m altitude = %.9f m", d)
	}
}

func TestForwardQuadrantSigns(t *testing.T) {
	tests := []struct {
		lat, lon   float64
		sx, sy, sz float64
	}{
		{45, 45, 1, 1, 1},
		{45, 135, -1, 1, 1},
		{-45, -135, -1, -1, -1},
		{-45, -45, 1, -1, -1},
	}
	for _, tt := range tests {
		p, status := Forward(WGS84, FromDegrees(tt.lat, tt.lon, 1000))
		if status != Success {
			t.Fatalf("(%v, %v): status = %v", tt.lat, tt.lon, status)
		}
		if math.Signbit(p.X) != (tt.sx < 0) || math.Signbit(p.Y) != (tt.sy < 0) || math.Signbit(p.Z) != (tt.sz < 0) {
			t.Errorf("(%v, %v): signs of %+v do not match quadrant", tt.lat, tt.lon, p)
		}
	}
}

func TestForwardInvalidAltitude(t *testing.T) {
	// Deeper than the prime vertical radius: rho <= 0.
	p, status := Forward(GRS80, Geodetic{Latitude: 0.3, Altitude: -7.0e6})
	if status != InvalidAltitude {
		t.Errorf("status = %v, want %v", status, InvalidAltitude)
	}
	if !p.IsNaN() {
		t.Errorf("expected NaN triple, got %+v", p)
	}

	// rho > 0 but rhoz <= 0.
	_, status = Forward(GRS80, Geodetic{Latitude: 1.2, Altitude: -6.36e6})
	if status != InvalidAltitude {
		t.Errorf("rhoz case: status = %v, want %v", status, InvalidAltitude)
	}
}
