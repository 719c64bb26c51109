package orbit

import (
	"fmt"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/transform"
)

// SubPoint is a satellite position resolved to geodetic coordinates.
type SubPoint struct {
	NORADID  int
	Time     time.Time
	ECEF     geodetic.Cartesian
	Geodetic geodetic.Geodetic
	Solver   string

	// Look is set when an observer was supplied.
	Look *transform.LookAngles
}

// SubPoint propagates to t, rotates TEME into ECEF with GMST and converts
// the result with solver on ellipsoid e. A nil observer skips look angles.
func (p *Propagator) SubPoint(t time.Time, e geodetic.Ellipsoid, solver geodetic.Solver, obs *transform.Observer) (SubPoint, error) {
	if solver == nil {
		solver = geodetic.DefaultSolver
	}
	t = t.UTC().Truncate(time.Second)

	teme, err := p.Position(t)
	if err != nil {
		return SubPoint{}, err
	}

	ecef := transform.TEMEToECEF(teme, transform.GMST(t))
	if !transform.PlausibleOrbit(ecef) {
		return SubPoint{}, fmt.Errorf("NORAD %d: implausible ECEF position %+v", p.noradID, ecef)
	}

	sp := SubPoint{
		NORADID:  p.noradID,
		Time:     t,
		ECEF:     ecef,
		Geodetic: solver.Solve(e, ecef),
		Solver:   solver.Name(),
	}
	if obs != nil {
		la := obs.LookAngles(ecef)
		sp.Look = &la
	}
	return sp, nil
}
