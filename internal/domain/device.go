package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceStatus represents the lifecycle state of a device.
type DeviceStatus string

// Valid device statuses.
const (
	DeviceStatusActive         DeviceStatus = "active"
	DeviceStatusInactive       DeviceStatus = "inactive"
	DeviceStatusDecommissioned DeviceStatus = "decommissioned"
)

// IsValid reports whether s is a known status.
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceStatusActive, DeviceStatusInactive, DeviceStatusDecommissioned:
		return true
	}
	return false
}

// Device is a piece of hardware registered by a user.
type Device struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Name         string        `json:"name"`
	DeviceOS     string        `json:"device_os"`
	Status       DeviceStatus  `json:"status"`
	RegisteredAt *time.Time    `json:"registered_at,omitempty"`
	CreatedBy    uuid.NullUUID `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	ModifiedBy   uuid.NullUUID `json:"modified_by"`
	ModifiedAt   time.Time     `json:"modified_at"`
}

// NewDevice creates a device owned by userID. An empty status defaults to
// active, in which case the device is registered now.
func NewDevice(userID uuid.UUID, name, deviceOS string, status DeviceStatus, actor uuid.UUID) (*Device, error) {
	now := time.Now().UTC()
	if status == "" {
		status = DeviceStatusActive
	}

	device := &Device{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		DeviceOS:   strings.TrimSpace(deviceOS),
		Status:     status,
		CreatedBy:  nullUUID(actor),
		CreatedAt:  now,
		ModifiedBy: nullUUID(actor),
		ModifiedAt: now,
	}
	if status == DeviceStatusActive {
		device.RegisteredAt = &now
	}

	if err := device.Validate(); err != nil {
		return nil, err
	}
	return device, nil
}

// Validate checks if the Device has valid data.
func (d *Device) Validate() error {
	if d.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if d.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrInvalidID)
	}
	if d.Name == "" {
		return NewValidationError("name", "is required", ErrValidation)
	}
	if len(d.Name) > 128 {
		return NewValidationError("name", "must be at most 128 characters", ErrValidation)
	}
	if d.DeviceOS == "" {
		return NewValidationError("device_os", "is required", ErrValidation)
	}
	if !d.Status.IsValid() {
		return NewValidationError("status", "must be one of active, inactive, decommissioned", ErrValidation)
	}
	return nil
}

// Touch records a modification by actor.
func (d *Device) Touch(actor uuid.UUID) {
	d.ModifiedBy = nullUUID(actor)
	d.ModifiedAt = time.Now().UTC()
}

// OwnedBy reports whether the device belongs to userID.
func (d *Device) OwnedBy(userID uuid.UUID) bool {
	return d.UserID == userID
}
