package geodetic

import "math"

// olsonPivot is the squared cosine of the geocentric latitude above which
// the sine of the geodetic latitude is solved for, and below which the
// cosine is. The value is Olson's empirical choice.
const olsonPivot = 0.3

// olsonInnerRadius is the geocentric distance, in units of a·e², below which
// the series no longer converges and FukushimaHalley is used instead.
const olsonInnerRadius = 10.0

// Olson solves the geodetic equation with D. K. Olson's two-branch series
// followed by one second-order Newton correction.
//
// Reference: D. K. Olson, "Converting Earth-centered, Earth-fixed
// coordinates to geodetic coordinates", IEEE Trans. Aerospace and
// Electronic Systems 32 (1996) 473-476.
type Olson struct{}

// Name implements Solver.
func (Olson) Name() string { return "olson" }

// Solve implements Solver.
func (Olson) Solve(e Ellipsoid, c Cartesian) Geodetic {
	a := e.equatorialRadius
	e2 := e.e2

	axisDistanceSquared := c.X*c.X + c.Y*c.Y
	axisDistance := math.Sqrt(axisDistanceSquared)
	absZ := math.Abs(c.Z)
	r2 := c.Z*c.Z + axisDistanceSquared

	g := Geodetic{Longitude: longitudeOf(c.X, c.Y)}

	// Polynomial coefficients in the ellipticity.
	k1 := a * e2
	k2 := k1 * k1
	k3 := k1 * e2 / 2
	k4 := 2.5 * k2
	k5 := k1 + k3

	r := math.Sqrt(r2)
	if r == 0 || r < olsonInnerRadius*k1 {
		// Deep interior, geocenter included.
		return FukushimaHalley{}.Solve(e, c)
	}
	s2 := c.Z * c.Z / r2
	c2 := axisDistanceSquared / r2
	u := k2 / r
	v := k3 - k4/r

	var sinLat, cosLat, sinLatSquared float64
	if c2 > olsonPivot {
		sinLat = math.Min(math.Max((absZ/r)*(1+c2*(k1+u+s2*v)/r), 0), 1)
		g.Latitude = math.Asin(sinLat)
		sinLatSquared = sinLat * sinLat
		cosLat = math.Sqrt(1 - sinLatSquared)
	} else {
		cosLat = math.Min(math.Max((axisDistance/r)*(1-s2*(k5-u-c2*v)/r), 0), 1)
		g.Latitude = math.Acos(cosLat)
		sinLatSquared = 1 - cosLat*cosLat
		sinLat = math.Sqrt(sinLatSquared)
	}

	// Second-order correction from the residuals along and across the normal.
	w := 1 - e2*sinLatSquared
	rg := a / math.Sqrt(w)
	rf := e.ec2 * rg
	du := axisDistance - rg*cosLat
	dv := absZ - rf*sinLat
	f := cosLat*du + sinLat*dv
	m := -sinLat*du + cosLat*dv
	dLat := m / (rf/w + f)

	g.Latitude += dLat
	g.Altitude = f + m*dLat/2

	if c.Z < 0 {
		g.Latitude = -g.Latitude
	}
	return g
}
