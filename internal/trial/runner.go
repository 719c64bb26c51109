package trial

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
)

// Config describes one run of the harness.
type Config struct {
	Ellipsoid geodetic.Ellipsoid
	Solver    geodetic.Solver
	Grid      Grid
	Count     int // number of longitude trials
}

// Summary aggregates a run.
type Summary struct {
	Solver string `json:"solver"`
	Trials int    `json:"trials"`

	Total                       time.Duration `json:"total_ns"`
	AveragePerTrial             time.Duration `json:"average_per_trial_ns"`
	MaxLatitudeErrorMicroArcsec float64       `json:"max_latitude_error_uas"`
	MaxAltitudeErrorNanometers  float64       `json:"max_altitude_error_nm"`
	MaxLongitudeError           float64       `json:"max_longitude_error_rad"`
	Failures                    int           `json:"failures"`
	Wall                        time.Duration `json:"wall_ns"`
}

func (s *Summary) add(r Result) {
	s.Trials++
	s.Total += r.Elapsed
	s.Failures += r.Failures
	s.MaxLatitudeErrorMicroArcsec = math.Max(s.MaxLatitudeErrorMicroArcsec, r.MaxLatitudeErrorMicroArcsec)
	s.MaxAltitudeErrorNanometers = math.Max(s.MaxAltitudeErrorNanometers, r.MaxAltitudeErrorNanometers)
	for _, smp := range r.Samples {
		s.MaxLongitudeError = math.Max(s.MaxLongitudeError, smp.LongitudeError)
	}
}

// Runner fans trials out over a fixed number of goroutines.
type Runner struct {
	workers int
	logger  *slog.Logger
}

// NewRunner creates a runner. workers <= 0 uses runtime.NumCPU().
func NewRunner(workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{workers: workers, logger: logger}
}

// Workers returns the pool size.
func (r *Runner) Workers() int { return r.workers }

type job struct {
	index        int
	longitudeDeg float64
}

// Run executes cfg.Count trials. onTrial, if non-nil, is called once per
// completed trial from a single goroutine, in completion order. When ctx is
// cancelled Run stops feeding trials and returns the partial summary together
// with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config, onTrial func(Result)) (Summary, error) {
	if cfg.Solver == nil {
		cfg.Solver = geodetic.DefaultSolver
	}
	if !cfg.Ellipsoid.Valid() {
		return Summary{}, fmt.Errorf("trial: ellipsoid not initialized")
	}
	if cfg.Grid.Size() == 0 {
		cfg.Grid = DefaultGrid()
	}
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}

	summary := Summary{Solver: cfg.Solver.Name()}
	began := time.Now()

	jobs := make(chan job, r.workers*2)
	results := make(chan Result, r.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := RunTrial(cfg.Ellipsoid, cfg.Solver, cfg.Grid, j.longitudeDeg)
				res.Index = j.index
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, lon := range Longitudes(cfg.Count) {
			select {
			case jobs <- job{index: i, longitudeDeg: lon}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		summary.add(res)
		if res.Failures > 0 {
			r.logger.Warn("trial had failed conversions",
				"index", res.Index,
				"longitude_deg", res.LongitudeDeg,
				"failures", res.Failures,
			)
		}
		if onTrial != nil {
			onTrial(res)
		}
	}

	summary.Wall = time.Since(began)
	if summary.Trials > 0 {
		summary.AveragePerTrial = summary.Total / time.Duration(summary.Trials)
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	r.logger.Info("trials complete",
		"solver", summary.Solver,
		"trials", summary.Trials,
		"max_latitude_error_uas", summary.MaxLatitudeErrorMicroArcsec,
		"max_altitude_error_nm", summary.MaxAltitudeErrorNanometers,
		"average_per_trial", summary.AveragePerTrial,
		"wall", summary.Wall,
	)
	return summary, nil
}
