package geodetic

import "fmt"

// Converter is the status-bearing conversion boundary. It validates the
// ellipsoid parameters of every call before any trigonometric work, reports
// failures to its Reporter, and returns NaN coordinates alongside any
// status other than Success. Callers must check the status first.
//
// A Converter holds no mutable state and may be shared between goroutines.
type Converter struct {
	solver   Solver
	reporter Reporter
}

// NewConverter returns a Converter using solver for the backward direction.
// A nil solver selects DefaultSolver, a nil reporter discards diagnostics.
func NewConverter(solver Solver, reporter Reporter) *Converter {
	if solver == nil {
		solver = DefaultSolver
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Converter{solver: solver, reporter: reporter}
}

// Solver returns the backward conversion method.
func (c *Converter) Solver() Solver {
	return c.solver
}

// ToGeodetic converts p to geodetic coordinates on the ellipsoid with the
// given equatorial radius (meters) and flattening factor.
func (c *Converter) ToGeodetic(equatorialRadiusMeters, flatteningFactor float64, p Cartesian) (Geodetic, Status) {
	e, err := NewEllipsoid(equatorialRadiusMeters, flatteningFactor)
	if err != nil {
		return nanGeodetic, c.fail(OpToGeodetic, err)
	}
	return c.solver.Solve(e, p), Success
}

// ToECEF converts g to ECEF on the ellipsoid with the given equatorial
// radius (meters) and eccentricity squared.
func (c *Converter) ToECEF(equatorialRadiusMeters, eccentricitySquared float64, g Geodetic) (Cartesian, Status) {
	e, err := NewEllipsoidFromEccentricity(equatorialRadiusMeters, eccentricitySquared)
	if err != nil {
		return nanCartesian, c.fail(OpToECEF, err)
	}
	p, status := Forward(e, g)
	switch status {
	case Success:
		return p, status
	case InvalidAltitude:
		rho, rhoz := radiiOfCurvature(e, g)
		c.reporter.Report(Diagnostic{
			Operation: OpToECEF,
			Status:    status,
			Parameter: "altitude",
			Value:     g.Altitude,
			Message:   "computed lengths rho and rhoz are not both positive",
			Extra:     map[string]float64{"rho": rho, "rhoz": rhoz},
		})
		return nanCartesian, status
	}
	panic(fmt.Sprintf("geodetic: forward conversion returned unexpected status %v", status))
}

// fail reports a validation error and returns its status.
func (c *Converter) fail(op Operation, err error) Status {
	status := StatusOf(err)
	if status == Undetermined || status == Success {
		panic(fmt.Sprintf("geodetic: validation error without a status: %v", err))
	}
	c.reporter.Report(DiagnosticFor(op, err))
	return status
}
