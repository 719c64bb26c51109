package transform

import (
	"math"
	"time"
)

const (
	// julianUnixEpoch is the Julian Date of 1970-01-01T00:00:00Z.
	julianUnixEpoch = 2440587.5
	// j2000 is the Julian Date of the J2000.0 epoch.
	j2000 = 2451545.0

	secondsPerDay = 86400.0
)

// OmegaEarth is Earth's rotation rate in rad/s (IAU value).
const OmegaEarth = 7.292115146706979e-5

// JulianDate converts t to a Julian Date. Leap seconds are ignored, as they
// are by time.Time.
func JulianDate(t time.Time) float64 {
	sec := t.Unix()
	frac := float64(t.Nanosecond()) / 1e9
	days := float64(sec/secondsPerDay) + (float64(sec%secondsPerDay)+frac)/secondsPerDay
	return julianUnixEpoch + days
}

// GMST returns Greenwich Mean Sidereal Time in radians, in [0, 2π), using
// the IAU-82 polynomial (Vallado Eq. 3-47) in UT1 ≈ UTC.
func GMST(t time.Time) float64 {
	tu := (JulianDate(t.UTC()) - j2000) / 36525.0

	// Seconds of time; 876600h = 3155760000 s.
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*tu +
		0.093104*tu*tu -
		6.2e-6*tu*tu*tu

	sec = math.Mod(sec, secondsPerDay)
	if sec < 0 {
		sec += secondsPerDay
	}
	return sec / secondsPerDay * 2 * math.Pi
}
