package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/auth"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/geodetic"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/stream"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

type geodeticConfig struct {
	Name      string
	Ellipsoid geodetic.Ellipsoid
	Solver    geodetic.Solver
	Verbose   bool
}

type trialConfig struct {
	Workers  int
	MaxCount int
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	if v := os.Getenv("GEODETIC_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("GEODETIC_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("GEODETIC_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("GEODETIC_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// loadGeodeticConfig resolves the ellipsoid and solver. A named ellipsoid is
// the base; GEODETIC_EQUATORIAL_RADIUS and GEODETIC_INVERSE_FLATTENING
// override its parameters and are validated like any converter input.
func loadGeodeticConfig(logger *slog.Logger) (geodeticConfig, error) {
	cfg := geodeticConfig{Name: "grs80", Solver: geodetic.DefaultSolver}

	if v := os.Getenv("GEODETIC_ELLIPSOID"); v != "" {
		cfg.Name = strings.ToLower(strings.TrimSpace(v))
	}
	base, ok := geodetic.EllipsoidByName(cfg.Name)
	if !ok {
		return cfg, fmt.Errorf("GEODETIC_ELLIPSOID %q is not one of %v", cfg.Name, geodetic.EllipsoidNames())
	}

	a, f := base.EquatorialRadius(), base.Flattening()
	custom := false
	if v := os.Getenv("GEODETIC_EQUATORIAL_RADIUS"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("GEODETIC_EQUATORIAL_RADIUS: %w", err)
		}
		a, custom = n, true
	}
	if v := os.Getenv("GEODETIC_INVERSE_FLATTENING"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n == 0 {
			return cfg, fmt.Errorf("GEODETIC_INVERSE_FLATTENING: invalid value %q", v)
		}
		f, custom = 1/n, true
	}

	e, err := geodetic.NewEllipsoid(a, f)
	if err != nil {
		return cfg, fmt.Errorf("ellipsoid (status %v): %w", geodetic.StatusOf(err), err)
	}
	cfg.Ellipsoid = e
	if custom {
		cfg.Name = "custom"
	}

	if v := os.Getenv("GEODETIC_SOLVER"); v != "" {
		s, ok := geodetic.SolverByName(v)
		if !ok {
			return cfg, fmt.Errorf("GEODETIC_SOLVER %q is unknown", v)
		}
		cfg.Solver = s
	}

	if v := os.Getenv("GEODETIC_VERBOSE_DIAGNOSTICS"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid GEODETIC_VERBOSE_DIAGNOSTICS value, defaulting to false", "value", v)
		} else {
			cfg.Verbose = verbose
		}
	}

	logger.Info("geodetic config",
		"ellipsoid", cfg.Name,
		"equatorial_radius_m", cfg.Ellipsoid.EquatorialRadius(),
		"flattening", cfg.Ellipsoid.Flattening(),
		"solver", cfg.Solver.Name(),
	)

	return cfg, nil
}

func loadTrialConfig(logger *slog.Logger) trialConfig {
	cfg := trialConfig{
		Workers:  runtime.NumCPU(),
		MaxCount: trial.DefaultCount,
	}

	if v := os.Getenv("GEODETIC_TRIAL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GEODETIC_TRIAL_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("GEODETIC_TRIAL_MAX_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GEODETIC_TRIAL_MAX_COUNT value, using default", "value", v, "default", cfg.MaxCount)
		} else {
			cfg.MaxCount = n
		}
	}

	logger.Info("trial config", "workers", cfg.Workers, "max_count", cfg.MaxCount)

	return cfg
}

func loadStreamConfig(logger *slog.Logger, maxCount int, trustProxy bool) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 2,
		KeepaliveInterval:  15 * time.Second,
		MaxCount:           maxCount,
		TrustProxy:         trustProxy,
	}

	if v := os.Getenv("GEODETIC_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GEODETIC_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", cfg.MaxConcurrentPerIP)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("GEODETIC_STREAM_KEEPALIVE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GEODETIC_STREAM_KEEPALIVE_INTERVAL value, using default", "value", v, "default", 15)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
	)

	return cfg
}

func loadTrustProxy(logger *slog.Logger) bool {
	v := os.Getenv("GEODETIC_TRUST_PROXY")
	if v == "" {
		return false
	}
	trust, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid GEODETIC_TRUST_PROXY value, defaulting to false", "value", v)
		return false
	}
	return trust
}
