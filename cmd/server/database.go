package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/platform/objectstore"
	"github.com/cleanapi/cleanapi/internal/platform/postgres"
	"github.com/cleanapi/cleanapi/internal/store"
)

// setupAppDatabase opens the connection pool and verifies it with a ping.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("database connection established",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns)
	return db, nil
}

// postgresDependencies builds the PostgreSQL-backed stores.
func postgresDependencies(db *sql.DB, objects objectstore.Store) dependencies {
	return dependencies{
		db:          db,
		users:       postgres.NewPostgresUserStore(db),
		credentials: postgres.NewPostgresCredentialStore(db),
		devices:     postgres.NewPostgresDeviceStore(db),
		files:       postgres.NewPostgresFileStore(db),
		runTx:       store.NewTxRunner(db),
		objects:     objects,
	}
}
