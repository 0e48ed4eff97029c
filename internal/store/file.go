package store

import (
	"context"
	"database/sql"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/google/uuid"
)

// FileStore persists uploaded file metadata.
type FileStore interface {
	Create(ctx context.Context, file *domain.UploadedFile) error

	// GetByID returns ErrFileNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error)

	// ListByUser returns the files owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedFile, error)

	// Delete returns ErrFileNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) FileStore
}
