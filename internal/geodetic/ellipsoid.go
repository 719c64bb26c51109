package geodetic

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ParameterError describes an ellipsoid parameter that failed validation.
type ParameterError struct {
	Status    Status
	Parameter string
	Value     float64
	Reason    string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s %.6e: %s", e.Parameter, e.Value, e.Reason)
}

// StatusOf maps an error returned by this package to its Status.
// A nil error is Success; errors not produced by this package are Undetermined.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var pe *ParameterError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return Undetermined
}

// Ellipsoid holds a validated reference ellipsoid and the shape constants
// derived from it. The zero value is not usable; construct with NewEllipsoid.
type Ellipsoid struct {
	equatorialRadius float64
	flattening       float64
	e2               float64 // eccentricity squared
	ec2              float64 // complementary eccentricity squared, 1-e2
	ec               float64 // complementary eccentricity
	polarRadius      float64
}

// NewEllipsoid validates the equatorial radius (meters) and flattening
// factor and derives the remaining shape constants.
//
// The flattening must lie in [0, 1) and the radius must be strictly
// positive. The complementary eccentricity squared is checked again after
// derivation even though the flattening check already excludes a
// non-positive value; the algorithms below divide by and take roots of it.
func NewEllipsoid(equatorialRadiusMeters, flatteningFactor float64) (Ellipsoid, error) {
	if !(flatteningFactor >= 0 && flatteningFactor < 1) {
		return Ellipsoid{}, &ParameterError{
			Status:    InvalidFlatteningFactor,
			Parameter: "flattening factor",
			Value:     flatteningFactor,
			Reason:    "expected a value in the interval [0.0, 1.0)",
		}
	}
	if !(equatorialRadiusMeters > 0) {
		return Ellipsoid{}, &ParameterError{
			Status:    InvalidEquatorialRadius,
			Parameter: "equatorial radius",
			Value:     equatorialRadiusMeters,
			Reason:    "expected a strictly positive length in meters",
		}
	}
	return derive(equatorialRadiusMeters, flatteningFactor, (2-flatteningFactor)*flatteningFactor)
}

// NewEllipsoidFromEccentricity is NewEllipsoid for callers that hold the
// eccentricity squared instead of the flattening. An eccentricity squared
// outside [0, 1) is reported as InvalidFlatteningFactor.
func NewEllipsoidFromEccentricity(equatorialRadiusMeters, eccentricitySquared float64) (Ellipsoid, error) {
	if !(eccentricitySquared >= 0 && eccentricitySquared < 1) {
		return Ellipsoid{}, &ParameterError{
			Status:    InvalidFlatteningFactor,
			Parameter: "eccentricity squared",
			Value:     eccentricitySquared,
			Reason:    "expected a value in the interval [0.0, 1.0)",
		}
	}
	if !(equatorialRadiusMeters > 0) {
		return Ellipsoid{}, &ParameterError{
			Status:    InvalidEquatorialRadius,
			Parameter: "equatorial radius",
			Value:     equatorialRadiusMeters,
			Reason:    "expected a strictly positive length in meters",
		}
	}
	f := 1 - math.Sqrt(1-eccentricitySquared)
	return derive(equatorialRadiusMeters, f, eccentricitySquared)
}

func derive(a, f, e2 float64) (Ellipsoid, error) {
	ec2 := 1 - e2
	if !(ec2 > 0) {
		return Ellipsoid{}, &ParameterError{
			Status:    InvalidFlatteningFactor,
			Parameter: "complementary eccentricity squared",
			Value:     ec2,
			Reason:    "expected a strictly positive value",
		}
	}
	ec := math.Sqrt(ec2)
	return Ellipsoid{
		equatorialRadius: a,
		flattening:       f,
		e2:               e2,
		ec2:              ec2,
		ec:               ec,
		polarRadius:      ec * a,
	}, nil
}

// MustEllipsoid is NewEllipsoid for package-level constants. It panics on
// invalid parameters.
func MustEllipsoid(equatorialRadiusMeters, flatteningFactor float64) Ellipsoid {
	e, err := NewEllipsoid(equatorialRadiusMeters, flatteningFactor)
	if err != nil {
		panic(err)
	}
	return e
}

// EquatorialRadius returns the semi-major axis a in meters.
func (e Ellipsoid) EquatorialRadius() float64 { return e.equatorialRadius }

// Flattening returns f = (a-b)/a.
func (e Ellipsoid) Flattening() float64 { return e.flattening }

// EccentricitySquared returns e² = f(2-f).
func (e Ellipsoid) EccentricitySquared() float64 { return e.e2 }

// ComplementaryEccentricitySquared returns 1-e².
func (e Ellipsoid) ComplementaryEccentricitySquared() float64 { return e.ec2 }

// ComplementaryEccentricity returns sqrt(1-e²), which equals b/a.
func (e Ellipsoid) ComplementaryEccentricity() float64 { return e.ec }

// PolarRadius returns the semi-minor axis b in meters.
func (e Ellipsoid) PolarRadius() float64 { return e.polarRadius }

// Valid reports whether e was produced by a successful validation.
func (e Ellipsoid) Valid() bool { return e.equatorialRadius > 0 && e.ec2 > 0 }

// Reference ellipsoids.
var (
	GRS80 = MustEllipsoid(6378137.0, 1/298.257222101)
	WGS84 = MustEllipsoid(6378137.0, 1/298.257223563)
)

var namedEllipsoids = map[string]Ellipsoid{
	"grs80": GRS80,
	"wgs84": WGS84,
}

// EllipsoidByName looks up a reference ellipsoid by case-insensitive name.
func EllipsoidByName(name string) (Ellipsoid, bool) {
	e, ok := namedEllipsoids[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// EllipsoidNames lists the names accepted by EllipsoidByName.
func EllipsoidNames() []string {
	names := make([]string, 0, len(namedEllipsoids))
	for name := range namedEllipsoids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
