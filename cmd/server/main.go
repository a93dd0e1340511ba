// cmd/server/main.go
// This is the entry point for the task status API server.
// The cmd/server directory holds the executable; internal/ holds the packages it wires together.
package main

import (
	"context"
	"os"

	// graceful-shutdown waits for SIGINT/SIGTERM and runs our cleanup with a deadline
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/trentd187/task-status/internal/config"
	"github.com/trentd187/task-status/internal/database"
	"github.com/trentd187/task-status/internal/router"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	// cfg is built once here and handed to everything that needs it.
	cfg := config.Load()

	logger := zap.Must(zap.NewProduction())
	if cfg.Debug {
		logger = zap.Must(zap.NewDevelopment())
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	zap.L().Info("Starting task status service",
		zap.String("addr", cfg.Addr()),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("debug", cfg.Debug))

	// The store opens a fresh connection per operation, so nothing is dialed yet.
	store := database.NewStore(database.NewConnector(cfg), cfg.DBDriver)

	// Make sure the statuses table exists. A database that is down at boot is not
	// fatal: the service still starts, /api/health answers, and the status
	// endpoints report the connection failure until the database comes back.
	if err := store.Initialize(context.Background()); err != nil {
		zap.L().Error("Failed to initialize database", zap.Error(err))
	} else {
		zap.L().Info("Statuses table initialized")
	}

	app := router.New(cfg, store, logger)

	// Listen blocks, so it runs in a goroutine while the main goroutine waits for a signal.
	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			zap.L().Fatal("HTTP server stopped", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				zap.L().Info("Shutting down HTTP server...")
				// ShutdownWithContext lets in-flight requests finish until ctx expires.
				return app.ShutdownWithContext(ctx)
			},
		},
	)

	exitCode := <-wait
	zap.L().Info("Shutdown complete", zap.Int("exit_code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}
