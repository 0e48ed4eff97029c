package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
)

// PostgresCredentialStore implements store.CredentialStore on the user_auth
// table.
type PostgresCredentialStore struct {
	db store.DBTX
}

// NewPostgresCredentialStore creates a credential store using db.
func NewPostgresCredentialStore(db store.DBTX) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

var _ store.CredentialStore = (*PostgresCredentialStore)(nil)

// WithTx implements store.CredentialStore.WithTx.
func (s *PostgresCredentialStore) WithTx(tx *sql.Tx) store.CredentialStore {
	return &PostgresCredentialStore{db: tx}
}

// GetByClientID implements store.CredentialStore.GetByClientID.
func (s *PostgresCredentialStore) GetByClientID(
	ctx context.Context,
	clientID string,
) (*domain.Credential, error) {
	var c domain.Credential
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, client_id, client_secret_hash, created_at, modified_at
		FROM user_auth
		WHERE client_id = $1`, clientID,
	).Scan(&c.UserID, &c.ClientID, &c.SecretHash, &c.CreatedAt, &c.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", MapError(err))
	}
	return &c, nil
}

// Upsert implements store.CredentialStore.Upsert.
func (s *PostgresCredentialStore) Upsert(ctx context.Context, cred *domain.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_auth (user_id, client_id, client_secret_hash, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET client_id = EXCLUDED.client_id,
			client_secret_hash = EXCLUDED.client_secret_hash,
			modified_at = EXCLUDED.modified_at`,
		cred.UserID, cred.ClientID, cred.SecretHash, cred.CreatedAt, cred.ModifiedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return MapUniqueViolation(err, map[string]error{
			userAuthClientIDKey: store.ErrClientIDExists,
		})
	}
	return nil
}
