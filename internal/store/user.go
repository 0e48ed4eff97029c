package store

import (
	"context"
	"database/sql"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrUsernameExists or ErrEmailExists on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// Update modifies username and email.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, through cascading keys, everything it owns.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the transaction.
	WithTx(tx *sql.Tx) UserStore
}
