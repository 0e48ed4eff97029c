package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

const deviceColumns = `id, user_id, name, device_os, status, registered_at,
	created_by, created_at, modified_by, modified_at`

// PostgresDeviceStore implements store.DeviceStore on PostgreSQL.
type PostgresDeviceStore struct {
	db store.DBTX
}

// NewPostgresDeviceStore creates a device store using db.
func NewPostgresDeviceStore(db store.DBTX) *PostgresDeviceStore {
	return &PostgresDeviceStore{db: db}
}

var _ store.DeviceStore = (*PostgresDeviceStore)(nil)

// WithTx implements store.DeviceStore.WithTx.
func (s *PostgresDeviceStore) WithTx(tx *sql.Tx) store.DeviceStore {
	return &PostgresDeviceStore{db: tx}
}

// Create implements store.DeviceStore.Create.
func (s *PostgresDeviceStore) Create(ctx context.Context, d *domain.Device) error {
	if err := d.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.UserID, d.Name, d.DeviceOS, d.Status, d.RegisteredAt,
		d.CreatedBy, d.CreatedAt, d.ModifiedBy, d.ModifiedAt,
	)
	if err != nil {
		return mapDeviceWriteError(err)
	}
	return nil
}

// GetByID implements store.DeviceStore.GetByID.
func (s *PostgresDeviceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", MapError(err))
	}
	return d, nil
}

// ListByUser implements store.DeviceStore.ListByUser.
func (s *PostgresDeviceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var devices []*domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}

// Update implements store.DeviceStore.Update.
func (s *PostgresDeviceStore) Update(ctx context.Context, d *domain.Device) error {
	if err := d.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE devices
		SET name = $1, device_os = $2, status = $3, registered_at = $4,
			modified_by = $5, modified_at = $6
		WHERE id = $7`,
		d.Name, d.DeviceOS, d.Status, d.RegisteredAt, d.ModifiedBy, d.ModifiedAt, d.ID,
	)
	if err != nil {
		return mapDeviceWriteError(err)
	}
	return CheckRowsAffected(result, store.ErrDeviceNotFound)
}

// Upsert implements store.DeviceStore.Upsert. A row with the same id owned by
// another user is left untouched and reported as ErrDeviceNotFound.
func (s *PostgresDeviceStore) Upsert(ctx context.Context, d *domain.Device) error {
	if err := d.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			device_os = EXCLUDED.device_os,
			status = EXCLUDED.status,
			registered_at = EXCLUDED.registered_at,
			modified_by = EXCLUDED.modified_by,
			modified_at = EXCLUDED.modified_at
		WHERE devices.user_id = EXCLUDED.user_id`,
		d.ID, d.UserID, d.Name, d.DeviceOS, d.Status, d.RegisteredAt,
		d.CreatedBy, d.CreatedAt, d.ModifiedBy, d.ModifiedAt,
	)
	if err != nil {
		return mapDeviceWriteError(err)
	}
	return CheckRowsAffected(result, store.ErrDeviceNotFound)
}

// Delete implements store.DeviceStore.Delete.
func (s *PostgresDeviceStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrDeviceNotFound)
}

func mapDeviceWriteError(err error) error {
	if IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
	}
	return MapError(err)
}

func scanDevice(row rowScanner) (*domain.Device, error) {
	var (
		d            domain.Device
		status       string
		registeredAt sql.NullTime
	)
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.DeviceOS, &status, &registeredAt,
		&d.CreatedBy, &d.CreatedAt, &d.ModifiedBy, &d.ModifiedAt)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DeviceStatus(status)
	if registeredAt.Valid {
		t := registeredAt.Time
		d.RegisteredAt = &t
	}
	return &d, nil
}
