package api

import (
	"time"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/service"
	"github.com/google/uuid"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	ClientID     string `json:"client_id"     validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse describes the caller.
type MeResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest defines the payload for creating a user. The credential
// fields are optional but must be given together.
type CreateUserRequest struct {
	Username     string `json:"username"      validate:"required,max=64"`
	Email        string `json:"email"         validate:"required,email"`
	ClientID     string `json:"client_id"     validate:"omitempty,min=4,max=64"`
	ClientSecret string `json:"client_secret" validate:"omitempty,max=72"`
}

// UpdateUserRequest changes profile fields. Omitted fields are kept.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

// CredentialRequest sets or rotates a client credential.
type CredentialRequest struct {
	ClientID     string `json:"client_id"     validate:"required,min=4,max=64"`
	ClientSecret string `json:"client_secret" validate:"required,max=72"`
}

// DeviceRequest defines the payload for creating a device.
type DeviceRequest struct {
	Name     string `json:"name"      validate:"required,max=128"`
	DeviceOS string `json:"device_os" validate:"required"`
	Status   string `json:"status"    validate:"omitempty,oneof=active inactive decommissioned"`
}

func (d DeviceRequest) input() service.DeviceInput {
	return service.DeviceInput{
		Name:     d.Name,
		DeviceOS: d.DeviceOS,
		Status:   domain.DeviceStatus(d.Status),
	}
}

// UpdateDeviceRequest changes device fields. Omitted fields are kept.
type UpdateDeviceRequest struct {
	Name     *string `json:"name"      validate:"omitempty,max=128"`
	DeviceOS *string `json:"device_os"`
	Status   *string `json:"status"    validate:"omitempty,oneof=active inactive decommissioned"`
}

func (d UpdateDeviceRequest) update() service.DeviceUpdate {
	upd := service.DeviceUpdate{Name: d.Name, DeviceOS: d.DeviceOS}
	if d.Status != nil {
		status := domain.DeviceStatus(*d.Status)
		upd.Status = &status
	}
	return upd
}

// BatchDeviceItem is one entry of a batch upsert. Without an id a new
// device is created.
type BatchDeviceItem struct {
	ID       *uuid.UUID `json:"id"`
	Name     string     `json:"name"      validate:"required,max=128"`
	DeviceOS string     `json:"device_os" validate:"required"`
	Status   string     `json:"status"    validate:"omitempty,oneof=active inactive decommissioned"`
}

// BatchDeviceRequest defines the payload for the batch upsert endpoint.
type BatchDeviceRequest struct {
	Devices []BatchDeviceItem `json:"devices" validate:"required,dive"`
}

func (b BatchDeviceRequest) items() []service.BatchDeviceInput {
	items := make([]service.BatchDeviceInput, len(b.Devices))
	for i, d := range b.Devices {
		items[i] = service.BatchDeviceInput{
			ID: d.ID,
			DeviceInput: service.DeviceInput{
				Name:     d.Name,
				DeviceOS: d.DeviceOS,
				Status:   domain.DeviceStatus(d.Status),
			},
		}
	}
	return items
}
