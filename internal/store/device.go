package store

import (
	"context"
	"database/sql"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/google/uuid"
)

// DeviceStore defines the interface for device persistence.
type DeviceStore interface {
	Create(ctx context.Context, device *domain.Device) error

	// GetByID returns ErrDeviceNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error)

	// ListByUser returns every device owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Device, error)

	// Update returns ErrDeviceNotFound if absent.
	Update(ctx context.Context, device *domain.Device) error

	// Upsert inserts the device or updates it when the id exists and is
	// owned by the same user.
	Upsert(ctx context.Context, device *domain.Device) error

	// Delete returns ErrDeviceNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) DeviceStore
}
