// Package transform holds the frame rotations and observer geometry that sit
// around the geodetic converters: sidereal time, TEME to ECEF, and look
// angles from a ground observer.
//
// TEME to ECEF is the simplified Vallado rotation by GMST only. Polar motion
// and the equation of the equinoxes are ignored (tens of meters at most).
package transform

import (
	"math"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

// Vector is a TEME position in kilometers, as produced by SGP4.
type Vector struct {
	X, Y, Z float64
}

// TEMEToECEF rotates a TEME position (km) about the z axis by the GMST angle
// (radians) and returns ECEF meters.
func TEMEToECEF(teme Vector, gmst float64) geodetic.Cartesian {
	sinG, cosG := math.Sincos(gmst)
	return geodetic.Cartesian{
		X: (teme.X*cosG + teme.Y*sinG) * 1000,
		Y: (-teme.X*sinG + teme.Y*cosG) * 1000,
		Z: teme.Z * 1000,
	}
}

// Orbit radius bounds accepted by PlausibleOrbit, in meters.
const (
	minOrbitRadius = 6200.0e3
	maxOrbitRadius = 50000.0e3
)

// PlausibleOrbit reports whether p is finite and lies between just under
// the Earth's surface and beyond geostationary altitude.
func PlausibleOrbit(p geodetic.Cartesian) bool {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	r := p.Norm()
	return r >= minOrbitRadius && r <= maxOrbitRadius
}
