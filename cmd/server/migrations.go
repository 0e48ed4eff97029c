package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/cleanapi/cleanapi/internal/platform/postgres"
)

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"reset":   true,
	"version": true,
}

// handleMigrations runs a single migration command against db.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unknown migration command %q (want up, down, status, reset or version)", command)
	}

	logger.Info("executing migrations",
		"command", command,
		"table", postgres.MigrationTableName)

	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("migrations finished", "command", command)
	return nil
}
