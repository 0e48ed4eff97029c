//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// Timeout bounds connection setup and migrations.
const Timeout = 30 * time.Second

// urlEnvVars are checked in order for the test database URL.
var urlEnvVars = []string{"CLEANAPI_TEST_DATABASE_URL", "DATABASE_URL"}

var (
	sharedOnce sync.Once
	sharedDB   *sql.DB
	sharedErr  error
)

// DatabaseURL returns the configured test database URL, or "" when none is
// set.
func DatabaseURL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Open returns a migrated connection pool shared by every test in the
// package. The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("CLEANAPI_TEST_DATABASE_URL not set, skipping integration test")
	}

	sharedOnce.Do(func() {
		sharedDB, sharedErr = connect(url)
	})
	require.NoError(t, sharedErr, "failed to prepare test database")
	return sharedDB
}

func connect(url string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:                    url,
		MaxOpenConns:           10,
		MaxIdleConns:           5,
		ConnMaxLifetimeMinutes: 5,
	})
	if err != nil {
		return nil, err
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.Migrate(ctx, db, "up", quiet); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return db, nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin test transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
