package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

type options struct {
	ellipsoid string
	solver    string
	count     int
	workers   int
	quiet     bool
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "trials",
		Short: "Time and validate ECEF to geodetic conversion",
		Long: geodetic.Purpose(geodetic.OpToGeodetic) + "\n\n" +
			"Each trial fixes one longitude, converts every grid point forward and back, " +
			"and records the latitude error in microarcseconds and the altitude error in nanometers.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTrials(ctx, cmd.OutOrStdout(), opts, logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ellipsoid, "ellipsoid", "e", envString("GEODETIC_ELLIPSOID", "grs80"), "reference ellipsoid (grs80|wgs84)")
	flags.StringVarP(&opts.solver, "solver", "s", envString("GEODETIC_SOLVER", geodetic.DefaultSolver.Name()), "backward conversion method (fukushima|olson)")
	flags.IntVarP(&opts.count, "count", "n", trial.DefaultCount, "number of longitude trials")
	flags.IntVarP(&opts.workers, "workers", "w", envInt("GEODETIC_TRIAL_WORKERS", runtime.NumCPU()), "concurrent trial workers")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the summary")

	root.AddCommand(newCompareCmd(opts))
	return root
}

func (o *options) resolve() (geodetic.Ellipsoid, geodetic.Solver, error) {
	e, ok := geodetic.EllipsoidByName(o.ellipsoid)
	if !ok {
		return geodetic.Ellipsoid{}, nil, fmt.Errorf("unknown ellipsoid %q (want one of %v)", o.ellipsoid, geodetic.EllipsoidNames())
	}
	s, ok := geodetic.SolverByName(o.solver)
	if !ok {
		return geodetic.Ellipsoid{}, nil, fmt.Errorf("unknown solver %q", o.solver)
	}
	if o.count < 1 {
		return geodetic.Ellipsoid{}, nil, fmt.Errorf("count must be positive, got %d", o.count)
	}
	return e, s, nil
}

func runTrials(ctx context.Context, out io.Writer, opts *options, logger *slog.Logger) error {
	e, solver, err := opts.resolve()
	if err != nil {
		return err
	}

	if err := trial.WritePurpose(out, solver); err != nil {
		return err
	}

	// Trials complete out of order; buffer them so tables print by longitude.
	var (
		mu      sync.Mutex
		results []trial.Result
	)
	if !opts.quiet {
		results = make([]trial.Result, opts.count)
	}

	runner := trial.NewRunner(opts.workers, logger)
	summary, err := runner.Run(ctx, trial.Config{Ellipsoid: e, Solver: solver, Count: opts.count}, func(r trial.Result) {
		if opts.quiet {
			return
		}
		mu.Lock()
		results[r.Index] = r
		mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("trials interrupted after %d of %d: %w", summary.Trials, opts.count, err)
	}

	for _, r := range results {
		if err := trial.WriteReport(out, r); err != nil {
			return err
		}
	}
	return trial.WriteSummary(out, summary)
}

func newCompareCmd(opts *options) *cobra.Command {
	var against string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Report the largest disagreement between two solvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, a, err := opts.resolve()
			if err != nil {
				return err
			}
			b, ok := geodetic.SolverByName(against)
			if !ok {
				return fmt.Errorf("unknown solver %q", against)
			}
			cmp, err := trial.CrossValidate(cmd.Context(), e, a, b, trial.DefaultGrid(), trial.Longitudes(opts.count))
			if err != nil {
				return err
			}
			return trial.WriteComparison(cmd.OutOrStdout(), cmp)
		},
	}
	cmd.Flags().StringVar(&against, "against", "olson", "solver to compare with")
	return cmd
}
