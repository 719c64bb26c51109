package trial

import (
	"fmt"
	"io"
	"strings"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

const (
	ruleWide   = "=========================================================================================="
	ruleNarrow = "|-------------------+------------------+--------------------+--------------------"
)

// WritePurpose prints what the harness measures.
func WritePurpose(w io.Writer, solver geodetic.Solver) error {
	_, err := fmt.Fprintf(w, "%s\n|\n| PURPOSE:\n|   %s\n|\n|   Each trial fixes one longitude and converts every grid\n|   point forward and back, timing only the backward conversion\n|   with the %q solver.\n|\n%s\n",
		ruleWide,
		wrap(geodetic.Purpose(geodetic.OpToGeodetic), "|   "),
		solver.Name(),
		ruleWide,
	)
	return err
}

// WriteReport prints one trial as a table of per-sample errors.
func WriteReport(w io.Writer, r Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", ruleWide)
	fmt.Fprintf(&b, "| ECEF TO GEODETIC CONVERSION, SOLVER %q\n", r.Solver)
	fmt.Fprintf(&b, "| True Geocentric East Longitude:--> %+12.4f [degrees]\n", r.LongitudeDeg)
	fmt.Fprintf(&b, "%s\n", ruleWide)
	fmt.Fprintf(&b, "| %-17s | %-16s | %-18s | %s\n", "True Geodetic", "True Geodetic", "Delta Geodetic", "Delta Geodetic")
	fmt.Fprintf(&b, "| %-17s | %-16s | %-18s | %s\n", "North Latitude", "Altitude", "Latitude", "Altitude")
	fmt.Fprintf(&b, "%s\n", ruleNarrow)
	fmt.Fprintf(&b, "| %-17s | %-16s | %-18s | %s\n", "[degrees]", "[meters]", "[microArcSeconds]", "[nanoMeters]")
	fmt.Fprintf(&b, "%s\n", ruleNarrow)

	for _, s := range r.Samples {
		if s.Failed {
			fmt.Fprintf(&b, "| %+17.9f | %+16.3f | %18s | %s\n", s.LatitudeDeg, s.Altitude, "failed", "failed")
			continue
		}
		fmt.Fprintf(&b, "| %+17.9f | %+16.3f | %+18.6e | %+14.6e\n",
			s.LatitudeDeg, s.Altitude, s.LatitudeErrorMicroArcsec, s.AltitudeErrorNanometers)
	}

	fmt.Fprintf(&b, "%s\n", ruleNarrow)
	fmt.Fprintf(&b, "| Trial maximum: %+14.6e [microarcseconds]  %+14.6e [nanometers]\n",
		r.MaxLatitudeErrorMicroArcsec, r.MaxAltitudeErrorNanometers)
	fmt.Fprintf(&b, "| Time in converter: %+14.6e [microseconds]\n", float64(r.Elapsed.Nanoseconds())/1e3)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints the timing and maximum error footer of a run.
func WriteSummary(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n|\n| AVERAGE TRIAL TIMING RESULTS:\n|\n", ruleWide)
	fmt.Fprintf(&b, "|   Average execution time over %d trial(s) of\n", s.Trials)
	fmt.Fprintf(&b, "|     %q backward conversions:--> %+14.6e [microseconds]\n", s.Solver, float64(s.AveragePerTrial.Nanoseconds())/1e3)
	fmt.Fprintf(&b, "|\n%s\n", ruleWide)
	fmt.Fprintf(&b, "\n%s\n|\n|  MAXIMUM ABSOLUTE ERRORS OVER ALL TRIALS:\n|\n", ruleWide)
	fmt.Fprintf(&b, "|    Maximum geodetic north latitude absolute error\n|      over all trials is:--> %+14.6e [microarcseconds]\n|\n", s.MaxLatitudeErrorMicroArcsec)
	fmt.Fprintf(&b, "|    Maximum geodetic altitude absolute error\n|      over all trials is:--> %+14.6e [nanometers]\n|\n", s.MaxAltitudeErrorNanometers)
	if s.Failures > 0 {
		fmt.Fprintf(&b, "|    Failed conversions: %d\n|\n", s.Failures)
	}
	fmt.Fprintf(&b, "%s\n", ruleWide)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparison prints a cross-validation result.
func WriteComparison(w io.Writer, c Comparison) error {
	_, err := fmt.Fprintf(w, "%s\n| %s vs %s over %d points\n|   max latitude difference:  %+14.6e [microarcseconds]\n|   max longitude difference: %+14.6e [radians]\n|   max altitude difference:  %+14.6e [nanometers]\n|   worst latitude at: lat=%.9f° lon=%.4f° alt=%.1f m\n%s\n",
		ruleWide, c.A, c.B, c.Samples,
		c.MaxLatitudeDiffMicroArcsec, c.MaxLongitudeDiff, c.MaxAltitudeDiffNanometers,
		c.Worst.LatitudeDegrees(), c.Worst.LongitudeDegrees(), c.Worst.Altitude,
		ruleWide,
	)
	return err
}

// wrap breaks text at roughly 64 columns, prefixing continuation lines.
func wrap(text, prefix string) string {
	var b strings.Builder
	n := 0
	for i, word := range strings.Fields(text) {
		if i > 0 {
			if n+len(word) > 64 {
				b.WriteString("\n" + prefix)
				n = 0
			} else {
				b.WriteByte(' ')
				n++
			}
		}
		b.WriteString(word)
		n += len(word)
	}
	return b.String()
}
