package geodetic

import "math"

// polarAxisEpsilon scales the equatorial radius to the distance from the
// polar axis below which a point is treated as lying on it.
const polarAxisEpsilon = 1.0e-16

// FukushimaHalley solves the geodetic equation with a single step of
// Halley's method in Fukushima's division-free formulation.
//
// Reference: T. Fukushima, "Transformation from Cartesian to geodetic
// coordinates accelerated by Halley's method", J. Geodesy 79 (2006) 689-693.
//
// The iteration is never repeated. Its cubic convergence from the chosen
// starting point is what delivers the accuracy, so there is no tolerance or
// iteration count to tune.
type FukushimaHalley struct{}

// Name implements Solver.
func (FukushimaHalley) Name() string { return "fukushima" }

// Solve implements Solver.
func (FukushimaHalley) Solve(e Ellipsoid, c Cartesian) Geodetic {
	a := e.equatorialRadius
	ec := e.ec
	e2 := e.e2

	axisDistanceSquared := c.X*c.X + c.Y*c.Y
	absZ := math.Abs(c.Z)

	g := Geodetic{Longitude: longitudeOf(c.X, c.Y)}

	aEps := a * polarAxisEpsilon
	if axisDistanceSquared <= aEps*aEps {
		// On the polar axis the Halley denominators vanish.
		g.Latitude = math.Pi / 2
		g.Altitude = absZ - e.polarRadius
	} else {
		axisDistance := math.Sqrt(axisDistanceSquared)

		// Normalized starting point.
		s0 := absZ / a
		pn := axisDistance / a
		zc := ec * s0
		c0 := ec * pn

		c0Squared := c0 * c0
		c0Cubed := c0 * c0Squared
		s0Squared := s0 * s0
		s0Cubed := s0 * s0Squared
		a0Squared := c0Squared + s0Squared
		a0 := math.Sqrt(a0Squared)
		a0Cubed := a0 * a0Squared

		// Newton numerator and denominator of the cubic residual.
		d0 := zc*a0Cubed + e2*s0Cubed
		f0 := pn*a0Cubed - e2*c0Cubed

		// Halley correction. (a0 - ec) stays accurate where a0 ≈ ec.
		b0 := 1.5 * e2 * e2 * s0Squared * c0Squared * pn * (a0 - ec)
		s1 := d0*f0 - b0*s0
		c1 := f0*f0 - b0*c0
		cc := ec * c1

		g.Latitude = math.Atan2(s1, cc)

		s1Squared := s1 * s1
		ccSquared := cc * cc
		a1 := math.Sqrt(e.ec2*s1Squared + ccSquared)

		// Single division, taken last.
		g.Altitude = (axisDistance*cc + absZ*s1 - a*a1) / math.Sqrt(ccSquared+s1Squared)
	}

	if c.Z < 0 {
		g.Latitude = -g.Latitude
	}
	return g
}
