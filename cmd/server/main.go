// Package main implements the entry point for the cleanapi server, a
// JWT-authenticated REST API for users, their devices and uploaded files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/platform/objectstore"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command (up, down, status, reset, version) and exit")
	seedClient := flag.String("seed-client", "",
		"create a user with the client credential id:secret unless the client id exists")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd, *seedClient); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects the database and either executes a
// migration command or serves HTTP until ctx is cancelled.
func run(ctx context.Context, migrateCmd, seedClient string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage_backend", cfg.Storage.Backend)

	if err := shared.CheckStatusTable(); err != nil {
		return fmt.Errorf("error status table is incomplete: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	if migrateCmd != "" {
		return handleMigrations(ctx, db, migrateCmd, log)
	}

	objects, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	app, err := newApplication(cfg, log, postgresDependencies(db, objects))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if seedClient != "" {
		if err := app.seed(ctx, seedClient); err != nil {
			return err
		}
	}

	return app.Run(ctx)
}
