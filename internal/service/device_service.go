package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// MaxBatchSize bounds the number of devices in one batch upsert.
const MaxBatchSize = 100

// DeviceInput holds the fields of a device to create.
type DeviceInput struct {
	Name     string
	DeviceOS string
	Status   domain.DeviceStatus
}

// DeviceUpdate holds the fields to change. Nil fields are kept.
type DeviceUpdate struct {
	Name     *string
	DeviceOS *string
	Status   *domain.DeviceStatus
}

// BatchDeviceInput is one entry of a batch upsert. A nil ID creates a new
// device; otherwise the device with that ID is created or replaced.
type BatchDeviceInput struct {
	ID *uuid.UUID
	DeviceInput
}

// DeviceService manages the devices of the calling user. Every operation is
// scoped to owner and returns domain.ErrForbidden for other users' devices.
type DeviceService interface {
	CreateDevice(ctx context.Context, owner uuid.UUID, in DeviceInput) (*domain.Device, error)
	GetDevice(ctx context.Context, owner, id uuid.UUID) (*domain.Device, error)
	ListDevices(ctx context.Context, owner uuid.UUID) ([]*domain.Device, error)
	UpdateDevice(ctx context.Context, owner, id uuid.UUID, in DeviceUpdate) (*domain.Device, error)
	DeleteDevice(ctx context.Context, owner, id uuid.UUID) error
	BatchUpsert(ctx context.Context, owner uuid.UUID, items []BatchDeviceInput) ([]*domain.Device, error)
}

// DeviceServiceImpl implements DeviceService.
type DeviceServiceImpl struct {
	devices store.DeviceStore
	runTx   store.TxRunner
	logger  *slog.Logger
}

// NewDeviceService creates a DeviceService.
func NewDeviceService(devices store.DeviceStore, runTx store.TxRunner, logger *slog.Logger) *DeviceServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceServiceImpl{
		devices: devices,
		runTx:   runTx,
		logger:  logger.With("component", "device_service"),
	}
}

var _ DeviceService = (*DeviceServiceImpl)(nil)

// CreateDevice registers a device for owner.
func (s *DeviceServiceImpl) CreateDevice(
	ctx context.Context,
	owner uuid.UUID,
	in DeviceInput,
) (*domain.Device, error) {
	device, err := domain.NewDevice(owner, in.Name, in.DeviceOS, in.Status, owner)
	if err != nil {
		return nil, err
	}

	if err := s.devices.Create(ctx, device); err != nil {
		logFailure(s.logger, "failed to create device", err, "user_id", owner)
		return nil, translate(err, ErrDeviceNotFound)
	}

	s.logger.Info("device created", "device_id", device.ID, "user_id", owner)
	return device, nil
}

// GetDevice returns one of owner's devices.
func (s *DeviceServiceImpl) GetDevice(ctx context.Context, owner, id uuid.UUID) (*domain.Device, error) {
	device, err := s.owned(ctx, s.devices, owner, id)
	if err != nil {
		return nil, err
	}
	return device, nil
}

// ListDevices returns all of owner's devices.
func (s *DeviceServiceImpl) ListDevices(ctx context.Context, owner uuid.UUID) ([]*domain.Device, error) {
	devices, err := s.devices.ListByUser(ctx, owner)
	if err != nil {
		logFailure(s.logger, "failed to list devices", err, "user_id", owner)
		return nil, translate(err, nil)
	}
	if devices == nil {
		devices = []*domain.Device{}
	}
	return devices, nil
}

// UpdateDevice changes one of owner's devices.
func (s *DeviceServiceImpl) UpdateDevice(
	ctx context.Context,
	owner, id uuid.UUID,
	in DeviceUpdate,
) (*domain.Device, error) {
	var updated *domain.Device
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		devices := s.devices.WithTx(tx)

		device, err := s.owned(ctx, devices, owner, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			device.Name = strings.TrimSpace(*in.Name)
		}
		if in.DeviceOS != nil {
			device.DeviceOS = strings.TrimSpace(*in.DeviceOS)
		}
		if in.Status != nil {
			setStatus(device, *in.Status)
		}
		if err := device.Validate(); err != nil {
			return err
		}
		device.Touch(owner)

		if err := devices.Update(ctx, device); err != nil {
			return err
		}
		updated = device
		return nil
	})
	if err != nil {
		logFailure(s.logger, "failed to update device", err, "device_id", id)
		return nil, translate(err, ErrDeviceNotFound)
	}

	s.logger.Info("device updated", "device_id", id, "user_id", owner)
	return updated, nil
}

// DeleteDevice removes one of owner's devices.
func (s *DeviceServiceImpl) DeleteDevice(ctx context.Context, owner, id uuid.UUID) error {
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		devices := s.devices.WithTx(tx)
		if _, err := s.owned(ctx, devices, owner, id); err != nil {
			return err
		}
		return devices.Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete device", err, "device_id", id)
		return translate(err, ErrDeviceNotFound)
	}

	s.logger.Info("device deleted", "device_id", id, "user_id", owner)
	return nil
}

// BatchUpsert creates or replaces several devices in one transaction. Either
// all entries are stored or none.
func (s *DeviceServiceImpl) BatchUpsert(
	ctx context.Context,
	owner uuid.UUID,
	items []BatchDeviceInput,
) ([]*domain.Device, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("devices", "must not be empty", domain.ErrValidation)
	}
	if len(items) > MaxBatchSize {
		return nil, domain.NewValidationError("devices",
			fmt.Sprintf("must contain at most %d entries", MaxBatchSize), domain.ErrValidation)
	}

	seen := make(map[uuid.UUID]bool, len(items))
	for i, item := range items {
		if item.ID == nil {
			continue
		}
		if seen[*item.ID] {
			return nil, domain.NewValidationError(fmt.Sprintf("devices[%d].id", i), "is duplicated", domain.ErrValidation)
		}
		seen[*item.ID] = true
	}

	result := make([]*domain.Device, 0, len(items))
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		devices := s.devices.WithTx(tx)

		for i, item := range items {
			device, err := s.batchEntry(ctx, devices, owner, item)
			if err != nil {
				var de *domain.Error
				if errors.As(err, &de) && de.Kind == domain.KindValidationFailed && de.Field != "" {
					return domain.NewValidationError(fmt.Sprintf("devices[%d].%s", i, de.Field), de.Message, de.Err)
				}
				return err
			}
			if err := devices.Upsert(ctx, device); err != nil {
				return err
			}
			result = append(result, device)
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "failed to upsert devices", err, "user_id", owner, "count", len(items))
		return nil, translate(err, ErrDeviceNotFound)
	}

	s.logger.Info("devices upserted", "user_id", owner, "count", len(result))
	return result, nil
}

func (s *DeviceServiceImpl) batchEntry(
	ctx context.Context,
	devices store.DeviceStore,
	owner uuid.UUID,
	item BatchDeviceInput,
) (*domain.Device, error) {
	if item.ID == nil {
		return domain.NewDevice(owner, item.Name, item.DeviceOS, item.Status, owner)
	}

	existing, err := devices.GetByID(ctx, *item.ID)
	if store.IsNotFoundError(err) {
		device, err := domain.NewDevice(owner, item.Name, item.DeviceOS, item.Status, owner)
		if err != nil {
			return nil, err
		}
		device.ID = *item.ID
		return device, nil
	}
	if err != nil {
		return nil, err
	}
	if !existing.OwnedBy(owner) {
		return nil, domain.ErrForbidden
	}

	existing.Name = strings.TrimSpace(item.Name)
	existing.DeviceOS = strings.TrimSpace(item.DeviceOS)
	status := item.Status
	if status == "" {
		status = existing.Status
	}
	setStatus(existing, status)
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	existing.Touch(owner)
	return existing, nil
}

// owned loads a device and checks that owner may access it.
func (s *DeviceServiceImpl) owned(
	ctx context.Context,
	devices store.DeviceStore,
	owner, id uuid.UUID,
) (*domain.Device, error) {
	device, err := devices.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrDeviceNotFound)
	}
	if !device.OwnedBy(owner) {
		s.logger.Debug("device access denied", "device_id", id, "user_id", owner)
		return nil, domain.ErrForbidden
	}
	return device, nil
}

// setStatus applies a status change; a device becoming active for the first
// time is stamped as registered.
func setStatus(d *domain.Device, status domain.DeviceStatus) {
	d.Status = status
	if status == domain.DeviceStatusActive && d.RegisteredAt == nil {
		now := time.Now().UTC()
		d.RegisteredAt = &now
	}
}
