package geodetic

import (
	"sort"
	"strings"
)

// Solver converts ECEF coordinates to geodetic coordinates on an already
// validated ellipsoid. Implementations are pure and safe for concurrent use.
type Solver interface {
	// Name identifies the method, e.g. in metrics labels and query parameters.
	Name() string
	// Solve returns the geodetic position of c. The latitude sign follows z,
	// the longitude lies in (-π, π] and is zero on the polar axis.
	Solve(e Ellipsoid, c Cartesian) Geodetic
}

var solvers = map[string]Solver{
	FukushimaHalley{}.Name(): FukushimaHalley{},
	Olson{}.Name():           Olson{},
}

// DefaultSolver is the method used when none is requested.
var DefaultSolver Solver = FukushimaHalley{}

// SolverByName returns the solver registered under name (case-insensitive).
// An empty name selects DefaultSolver.
func SolverByName(name string) (Solver, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultSolver, true
	}
	s, ok := solvers[name]
	return s, ok
}

// Solvers returns every registered solver ordered by name.
func Solvers() []Solver {
	out := make([]Solver, 0, len(solvers))
	for _, s := range solvers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
