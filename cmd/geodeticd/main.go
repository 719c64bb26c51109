package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/api"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/stream"
	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/trial"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	addr := os.Getenv("GEODETIC_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	geoCfg, err := loadGeodeticConfig(logger)
	if err != nil {
		logger.Error("invalid geodetic configuration", "error", err)
		os.Exit(1)
	}

	trialCfg := loadTrialConfig(logger)
	runner := trial.NewRunner(trialCfg.Workers, logger.With("component", "trial"))

	trustProxy := loadTrustProxy(logger)
	streamCfg := loadStreamConfig(logger, trialCfg.MaxCount, trustProxy)
	streamHandler := stream.NewHandler(runner, geoCfg.Ellipsoid, streamCfg, logger.With("component", "stream"))

	srv := api.NewServer(api.Config{
		Addr:          addr,
		EllipsoidName: geoCfg.Name,
		Ellipsoid:     geoCfg.Ellipsoid,
		Solver:        geoCfg.Solver,
		TrialMaxCount: trialCfg.MaxCount,
		TrustProxy:    trustProxy,
		Auth:          authCfg,
		Verbose:       geoCfg.Verbose,
	}, runner, streamHandler, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"ellipsoid", geoCfg.Name,
			"solver", geoCfg.Solver.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
