// Package trial times the backward converters over a fixed latitude and
// altitude grid and measures their round-trip error against the forward
// converter.
package trial

import (
	"math"

	"github.com/golang/geo/s1"
)

// DefaultCount is the number of longitude trials in a full run: one every
// quarter degree.
const DefaultCount = 4 * 360

const (
	latitudeStepDeg = 15.0
	minLatitudeDeg  = 0.000000001
	maxLatitudeDeg  = 89.999999999

	microArcsecPerDegree = 3600.0 * 1e6
	nanometersPerMeter   = 1e9
)

// Grid is the set of true latitudes and altitudes visited in each trial.
type Grid struct {
	LatitudesDeg []float64
	Altitudes    []float64
}

// DefaultGrid covers latitudes -15°..90° in 15° steps clamped into
// [1e-9°, 89.999999999°] and altitudes from 10 km below the ellipsoid to
// 3000 km above it.
func DefaultGrid() Grid {
	var lats []float64
	for i := -1; i <= 6; i++ {
		lat := math.Min(maxLatitudeDeg, math.Max(float64(i)*latitudeStepDeg, minLatitudeDeg))
		lats = append(lats, lat)
	}
	return Grid{
		LatitudesDeg: lats,
		Altitudes:    []float64{-10e3, 0, 1e6, 2e6, 3e6},
	}
}

// Size is the number of conversions per trial.
func (g Grid) Size() int { return len(g.LatitudesDeg) * len(g.Altitudes) }

// Longitudes spaces count longitudes evenly over [0°, 360°).
func Longitudes(count int) []float64 {
	if count <= 0 {
		return nil
	}
	step := 360.0 / float64(count)
	lons := make([]float64, count)
	for i := range lons {
		lons[i] = float64(i) * step
	}
	return lons
}

func microArcsec(rad float64) float64 {
	return math.Abs(s1.Angle(rad).Degrees()) * microArcsecPerDegree
}

func nanometers(m float64) float64 {
	return math.Abs(m) * nanometersPerMeter
}

// angularGap is the smallest absolute difference between two angles, in radians.
func angularGap(a, b float64) float64 {
	return math.Abs(float64(s1.Angle(a - b).Normalized()))
}
