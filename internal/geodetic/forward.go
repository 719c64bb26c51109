package geodetic

import "math"

// Forward converts geodetic coordinates to ECEF on the ellipsoid e.
// It is closed form; hemisphere and quadrant signs follow from the input
// angles directly.
//
// If the altitude places the point at or below the ellipsoid's center of
// curvature (rho or rhoz not strictly positive) the result is a NaN triple
// with status InvalidAltitude.
func Forward(e Ellipsoid, g Geodetic) (Cartesian, Status) {
	sinLat, cosLat := math.Sincos(g.Latitude)
	sinLon, cosLon := math.Sincos(g.Longitude)

	// Radius of curvature in the prime vertical.
	n := e.equatorialRadius / math.Sqrt(1-e.e2*sinLat*sinLat)

	rho := n + g.Altitude
	rhoz := e.ec2*n + g.Altitude
	if !(rho > 0 && rhoz > 0) {
		return nanCartesian, InvalidAltitude
	}

	r := rho * cosLat
	return Cartesian{
		X: r * cosLon,
		Y: r * sinLon,
		Z: rhoz * sinLat,
	}, Success
}

// radiiOfCurvature reports rho and rhoz for diagnostics of a failed Forward.
func radiiOfCurvature(e Ellipsoid, g Geodetic) (rho, rhoz float64) {
	sinLat := math.Sin(g.Latitude)
	n := e.equatorialRadius / math.Sqrt(1-e.e2*sinLat*sinLat)
	return n + g.Altitude, e.ec2*n + g.Altitude
}
