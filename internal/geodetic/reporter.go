package geodetic

import (
	"context"
	"errors"
	"log/slog"
)

// Operation names a conversion direction for diagnostics.
type Operation string

const (
	OpToGeodetic Operation = "ecef_to_geodetic"
	OpToECEF     Operation = "geodetic_to_ecef"
)

// Diagnostic describes one failed conversion call.
type Diagnostic struct {
	Operation Operation
	Status    Status
	Parameter string
	Value     float64
	Message   string
	// Extra carries secondary values, e.g. rhoz next to rho.
	Extra map[string]float64
}

// DiagnosticFor describes a validation error returned by this package.
// Parameter and Value are filled in when err wraps a *ParameterError.
func DiagnosticFor(op Operation, err error) Diagnostic {
	d := Diagnostic{Operation: op, Status: StatusOf(err), Message: err.Error()}
	var pe *ParameterError
	if errors.As(err, &pe) {
		d.Parameter = pe.Parameter
		d.Value = pe.Value
	}
	return d
}

// Reporter receives diagnostics for failed conversions. It is never called
// for a successful conversion. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// NopReporter discards diagnostics.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Diagnostic) {}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report implements Reporter.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// LogReporter writes diagnostics to a structured logger at Error level.
// With Verbose set, the operation's purpose and usage text is attached too.
type LogReporter struct {
	Logger  *slog.Logger
	Verbose bool
}

// NewLogReporter returns a LogReporter writing to logger.
func NewLogReporter(logger *slog.Logger, verbose bool) *LogReporter {
	return &LogReporter{Logger: logger, Verbose: verbose}
}

// Report implements Reporter.
func (r *LogReporter) Report(d Diagnostic) {
	if r == nil || r.Logger == nil {
		return
	}
	attrs := []any{
		"component", "geodetic",
		"operation", string(d.Operation),
		"status", d.Status.String(),
		"parameter", d.Parameter,
		"value", d.Value,
	}
	for k, v := range d.Extra {
		attrs = append(attrs, k, v)
	}
	if r.Verbose {
		attrs = append(attrs, "purpose", Purpose(d.Operation), "usage", Usage(d.Operation))
	}
	r.Logger.Log(context.Background(), slog.LevelError, d.Message, attrs...)
}
