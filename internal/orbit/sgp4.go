// Package orbit propagates a two-line element set with SGP4 and resolves the
// satellite's position to a geodetic sub-satellite point.
package orbit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/transform"
)

// Propagator wraps go-satellite's SGP4 model for a single satellite.
//
// satellite.Propagate takes the Satellite by value, so SGP4 error codes never
// reach the caller. Failures are detected from NaN/Inf output and implausible
// radii instead.
type Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewPropagator parses a TLE and initializes SGP4 with WGS-84 gravity.
//
// The lines are validated first because go-satellite calls log.Fatal on
// malformed input.
func NewPropagator(line1, line2 string) (*Propagator, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE: %w", err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return nil, fmt.Errorf("invalid TLE: catalog number %q", line1[2:7])
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", id, sat.Error, sat.ErrorStr)
	}
	return &Propagator{sat: sat, noradID: id}, nil
}

func validateTLELines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("catalog numbers differ: %q and %q", line1[2:7], line2[2:7])
	}
	return nil
}

// NORADID returns the catalog number from the TLE.
func (p *Propagator) NORADID() int { return p.noradID }

// Position returns the TEME position in kilometers at t, truncated to whole
// seconds.
func (p *Propagator) Position(t time.Time) (transform.Vector, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	for _, v := range []float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return transform.Vector{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
		}
	}

	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return transform.Vector{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, mag)
	}

	return transform.Vector{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}
