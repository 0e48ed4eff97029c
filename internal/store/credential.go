package store

import (
	"context"
	"database/sql"

	"github.com/cleanapi/cleanapi/internal/domain"
)

// CredentialStore persists client credentials (client id + secret hash).
type CredentialStore interface {
	// GetByClientID returns the credential bound to clientID.
	// Returns ErrCredentialNotFound if none exists.
	GetByClientID(ctx context.Context, clientID string) (*domain.Credential, error)

	// Upsert creates or replaces the credential of cred.UserID.
	// Returns ErrClientIDExists if the client id belongs to another user.
	Upsert(ctx context.Context, cred *domain.Credential) error

	// WithTx returns a CredentialStore bound to the transaction.
	WithTx(tx *sql.Tx) CredentialStore
}
