package transform

import (
	"fmt"
	"math"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

// Observer is a ground station with its ECEF position precomputed so it can
// be reused across many targets.
type Observer struct {
	Position geodetic.Geodetic
	ECEF     geodetic.Cartesian

	sinLat, cosLat, sinLon, cosLon float64
}

// LookAngles holds azimuth, elevation and range from an observer to a target.
type LookAngles struct {
	AzimuthDeg   float64 `json:"azimuth_deg"`   // 0 = North, clockwise
	ElevationDeg float64 `json:"elevation_deg"` // 0 = horizon, 90 = zenith
	RangeKm      float64 `json:"range_km"`
}

// NewObserver places an observer on ellipsoid e.
func NewObserver(e geodetic.Ellipsoid, pos geodetic.Geodetic) (Observer, error) {
	p, status := geodetic.Forward(e, pos)
	if status != geodetic.Success {
		return Observer{}, fmt.Errorf("observer position: %v", status)
	}
	sinLat, cosLat := math.Sincos(pos.Latitude)
	sinLon, cosLon := math.Sincos(pos.Longitude)
	return Observer{
		Position: pos,
		ECEF:     p,
		sinLat:   sinLat,
		cosLat:   cosLat,
		sinLon:   sinLon,
		cosLon:   cosLon,
	}, nil
}

// LookAngles computes azimuth, elevation and range to target (ECEF meters)
// through the South-East-Zenith rotation (Vallado §4.4).
func (o Observer) LookAngles(target geodetic.Cartesian) LookAngles {
	rx := target.X - o.ECEF.X
	ry := target.Y - o.ECEF.Y
	rz := target.Z - o.ECEF.Z

	south := o.sinLat*o.cosLon*rx + o.sinLat*o.sinLon*ry - o.cosLat*rz
	east := -o.sinLon*rx + o.cosLon*ry
	zenith := o.cosLat*o.cosLon*rx + o.cosLat*o.sinLon*ry + o.sinLat*rz

	rng := math.Sqrt(south*south + east*east + zenith*zenith)
	if rng == 0 {
		return LookAngles{ElevationDeg: 90}
	}

	el := math.Asin(zenith / rng)

	// North is -South in SEZ.
	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		AzimuthDeg:   az * 180 / math.Pi,
		ElevationDeg: el * 180 / math.Pi,
		RangeKm:      rng / 1000,
	}
}
