package trial

import (
	"context"
	"math"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

// Comparison is the largest disagreement between two solvers over a grid.
type Comparison struct {
	A       string `json:"a"`
	B       string `json:"b"`
	Samples int    `json:"samples"`

	MaxLatitudeDiffMicroArcsec float64 `json:"max_latitude_diff_uas"`
	MaxLongitudeDiff           float64 `json:"max_longitude_diff_rad"`
	MaxAltitudeDiffNanometers  float64 `json:"max_altitude_diff_nm"`

	// Worst is the true position with the largest latitude disagreement.
	Worst geodetic.Geodetic `json:"worst"`
}

// CrossValidate runs solvers a and b on every grid point at each longitude
// and reports how far apart their answers are. Both hemispheres are covered
// by mirroring each latitude.
func CrossValidate(ctx context.Context, e geodetic.Ellipsoid, a, b geodetic.Solver, grid Grid, longitudesDeg []float64) (Comparison, error) {
	cmp := Comparison{A: a.Name(), B: b.Name()}

	for _, lon := range longitudesDeg {
		if err := ctx.Err(); err != nil {
			return cmp, err
		}
		for _, lat := range grid.LatitudesDeg {
			for _, sign := range []float64{1, -1} {
				for _, alt := range grid.Altitudes {
					truth := geodetic.FromDegrees(sign*lat, lon, alt)
					p, status := geodetic.Forward(e, truth)
					if status != geodetic.Success {
						continue
					}
					ga, gb := a.Solve(e, p), b.Solve(e, p)
					cmp.Samples++

					if d := microArcsec(ga.Latitude - gb.Latitude); d > cmp.MaxLatitudeDiffMicroArcsec {
						cmp.MaxLatitudeDiffMicroArcsec = d
						cmp.Worst = truth
					}
					cmp.MaxLongitudeDiff = math.Max(cmp.MaxLongitudeDiff, angularGap(ga.Longitude, gb.Longitude))
					cmp.MaxAltitudeDiffNanometers = math.Max(cmp.MaxAltitudeDiffNanometers, nanometers(ga.Altitude-gb.Altitude))
				}
			}
		}
	}
	return cmp, nil
}
