package geodetic

import (
	"math"

	"github.com/golang/geo/s1"
)

// Cartesian is a geocentric Earth-Centered Earth-Fixed position in meters.
type Cartesian struct {
	X, Y, Z float64
}

// Geodetic is a position relative to a reference ellipsoid.
// Latitude is north positive, longitude east positive, both in radians.
// Altitude is the signed height above the ellipsoid in meters.
type Geodetic struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// FromDegrees builds a Geodetic from latitude and longitude in degrees.
func FromDegrees(latDeg, lonDeg, altM float64) Geodetic {
	return Geodetic{
		Latitude:  (s1.Angle(latDeg) * s1.Degree).Radians(),
		Longitude: (s1.Angle(lonDeg) * s1.Degree).Radians(),
		Altitude:  altM,
	}
}

// LatitudeDegrees returns the latitude in degrees.
func (g Geodetic) LatitudeDegrees() float64 {
	return s1.Angle(g.Latitude).Degrees()
}

// LongitudeDegrees returns the longitude in degrees.
func (g Geodetic) LongitudeDegrees() float64 {
	return s1.Angle(g.Longitude).Degrees()
}

// IsNaN reports whether any component is NaN (the failure sentinel).
func (g Geodetic) IsNaN() bool {
	return math.IsNaN(g.Latitude) || math.IsNaN(g.Longitude) || math.IsNaN(g.Altitude)
}

// IsNaN reports whether any component is NaN (the failure sentinel).
func (c Cartesian) IsNaN() bool {
	return math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Z)
}

// Norm returns the geocentric distance in meters.
func (c Cartesian) Norm() float64 {
	return math.Sqrt(c.X*c.X + c.Y*c.Y + c.Z*c.Z)
}

var (
	nanGeodetic  = Geodetic{Latitude: math.NaN(), Longitude: math.NaN(), Altitude: math.NaN()}
	nanCartesian = Cartesian{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
)

// normalizeLongitude maps lon into (-π, π].
func normalizeLongitude(lon float64) float64 {
	return s1.Angle(lon).Normalized().Radians()
}

// longitudeOf returns the east longitude of the point, fixed to zero on the
// polar axis where it is undefined.
func longitudeOf(x, y float64) float64 {
	if x*x+y*y > 0 {
		return normalizeLongitude(math.Atan2(y, x))
	}
	return 0
}
