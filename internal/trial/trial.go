package trial

import (
	"math"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

// Sample is one grid point of a trial.
type Sample struct {
	LatitudeDeg float64 `json:"latitude_deg"`
	Altitude    float64 `json:"altitude_m"`

	LatitudeErrorMicroArcsec float64       `json:"latitude_error_uas"`
	AltitudeErrorNanometers  float64       `json:"altitude_error_nm"`
	LongitudeError           float64       `json:"longitude_error_rad"`
	Elapsed                  time.Duration `json:"elapsed_ns"`
	Failed                   bool          `json:"failed,omitempty"`
}

// Result is one trial: every grid point at a single longitude.
type Result struct {
	Index        int      `json:"index"`
	LongitudeDeg float64  `json:"longitude_deg"`
	Solver       string   `json:"solver"`
	Samples      []Sample `json:"samples,omitempty"`

	// Elapsed sums the time spent inside the backward converter only.
	Elapsed                     time.Duration `json:"elapsed_ns"`
	MaxLatitudeErrorMicroArcsec float64       `json:"max_latitude_error_uas"`
	MaxAltitudeErrorNanometers  float64       `json:"max_altitude_error_nm"`
	Failures                    int           `json:"failures"`
}

// RunTrial forward-converts each grid point at longitudeDeg, times the
// backward conversion of the result and records the errors against the
// true coordinates.
func RunTrial(e geodetic.Ellipsoid, solver geodetic.Solver, grid Grid, longitudeDeg float64) Result {
	res := Result{
		LongitudeDeg: longitudeDeg,
		Solver:       solver.Name(),
		Samples:      make([]Sample, 0, grid.Size()),
	}

	for _, latDeg := range grid.LatitudesDeg {
		for _, alt := range grid.Altitudes {
			truth := geodetic.FromDegrees(latDeg, longitudeDeg, alt)
			s := Sample{LatitudeDeg: latDeg, Altitude: alt}

			p, status := geodetic.Forward(e, truth)
			if status != geodetic.Success {
				s.Failed = true
				res.Failures++
				res.Samples = append(res.Samples, s)
				continue
			}

			start := time.Now()
			got := solver.Solve(e, p)
			s.Elapsed = time.Since(start)
			res.Elapsed += s.Elapsed

			if got.IsNaN() {
				s.Failed = true
				res.Failures++
				res.Samples = append(res.Samples, s)
				continue
			}

			s.LatitudeErrorMicroArcsec = microArcsec(got.Latitude - truth.Latitude)
			s.AltitudeErrorNanometers = nanometers(got.Altitude - truth.Altitude)
			s.LongitudeError = angularGap(got.Longitude, truth.Longitude)

			res.MaxLatitudeErrorMicroArcsec = math.Max(res.MaxLatitudeErrorMicroArcsec, s.LatitudeErrorMicroArcsec)
			res.MaxAltitudeErrorNanometers = math.Max(res.MaxAltitudeErrorNanometers, s.AltitudeErrorNanometers)
			res.Samples = append(res.Samples, s)
		}
	}
	return res
}
