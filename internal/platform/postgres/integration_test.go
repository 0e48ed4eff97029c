//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/postgres"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/cleanapi/cleanapi/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, ctx context.Context, tx *sql.Tx) *domain.User {
	t.Helper()
	name := "it-" + uuid.NewString()[:8]
	user, err := domain.NewUser(name, name+"@example.com", uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresUserStore(tx).Create(ctx, user))
	return user
}

func TestUserStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx)
		user := createUser(t, ctx, tx)

		got, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
		assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Millisecond)

		require.NoError(t, users.Delete(ctx, user.ID))
		_, err = users.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		// A unique violation aborts the transaction, so it is checked last.
		existing := createUser(t, ctx, tx)
		dup, err := domain.NewUser(existing.Username, "other-"+existing.Email, uuid.Nil)
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrUsernameExists)
	})
}

func TestCredentialStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		creds := postgres.NewPostgresCredentialStore(tx)
		owner := createUser(t, ctx, tx)
		other := createUser(t, ctx, tx)

		clientID := "client-" + uuid.NewString()[:8]
		cred := &domain.Credential{UserID: owner.ID, ClientID: clientID, SecretHash: "$2a$04$hash"}
		require.NoError(t, creds.Upsert(ctx, cred))

		got, err := creds.GetByClientID(ctx, clientID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.UserID)

		taken := &domain.Credential{UserID: other.ID, ClientID: clientID, SecretHash: "$2a$04$hash"}
		assert.ErrorIs(t, creds.Upsert(ctx, taken), store.ErrClientIDExists)
	})
}

func TestDeviceStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		devices := postgres.NewPostgresDeviceStore(tx)
		owner := createUser(t, ctx, tx)

		device, err := domain.NewDevice(owner.ID, "Sensor", "linux", "", owner.ID)
		require.NoError(t, err)
		require.NoError(t, devices.Create(ctx, device))

		device.Name = "Renamed"
		require.NoError(t, devices.Upsert(ctx, device))

		list, err := devices.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Renamed", list[0].Name)

		require.NoError(t, postgres.NewPostgresUserStore(tx).Delete(ctx, owner.ID))
		_, err = devices.GetByID(ctx, device.ID)
		assert.ErrorIs(t, err, store.ErrDeviceNotFound)
	})
}
