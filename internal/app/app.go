package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/vinaypatel8092/VideoTube/internal/config"
	"github.com/vinaypatel8092/VideoTube/internal/db"
	"github.com/vinaypatel8092/VideoTube/internal/handlers"
	"github.com/vinaypatel8092/VideoTube/internal/httpserver"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
)

// Run bootstraps the VideoTube backend. args[0] selects serve, migrate or seed.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Env)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, cleanup, err := buildDependencies(ctx, pool, cfg, logger)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, handlers.NewRouter(deps), cfg.HTTP)
	logger.Info("starting http server", "port", cfg.AppPort, "env", cfg.Env)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down http server", "reason", context.Cause(ctx))
	case serveErr = <-srvErr:
		if serveErr != nil {
			logger.Error("http server stopped", "error", serveErr)
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("http server shutdown", "error", err)
		serveErr = errors.Join(serveErr, err)
	}

	drainTimeout := cfg.HTTP.ShutdownTimeout
	if drainTimeout <= 0 {
		drainTimeout = httpserver.DefaultShutdownTimeout
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := cleanup(drainCtx); err != nil {
		logger.Warn("asset janitor did not drain", "error", err)
	}

	return serveErr
}
