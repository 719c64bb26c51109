package geodetic

// Purpose returns a short description of what op computes and how.
func Purpose(op Operation) string {
	switch op {
	case OpToGeodetic:
		return "Convert Earth-Centered Earth-Fixed rectangular coordinates to geodetic " +
			"latitude, longitude and altitude on a reference ellipsoid. The default method " +
			"applies one iteration of Fukushima's third-order Halley formulation of the " +
			"geodetic equation and avoids division until the final altitude step."
	case OpToECEF:
		return "Convert geodetic latitude, longitude and altitude on a reference ellipsoid " +
			"to Earth-Centered Earth-Fixed rectangular coordinates in closed form."
	}
	return ""
}

// Usage returns the parameters op expects and their units.
func Usage(op Operation) string {
	switch op {
	case OpToGeodetic:
		return "inputs: equatorial radius [m] > 0, flattening factor in [0, 1), x y z [m]; " +
			"outputs: status, latitude [rad] north positive, longitude [rad] east positive " +
			"in (-pi, pi], altitude [m] above the ellipsoid"
	case OpToECEF:
		return "inputs: equatorial radius [m] > 0, eccentricity squared in [0, 1), " +
			"latitude [rad], longitude [rad], altitude [m]; outputs: status, x y z [m]"
	}
	return ""
}
