package api

import (
	"net/http"

	"github.com/cleanapi/cleanapi/internal/service"
)

// DeviceHandler serves the /device routes. Every route acts on the caller's
// own devices.
type DeviceHandler struct {
	devices service.DeviceService
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(devices service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// List handles GET /device.
func (h *DeviceHandler) List(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}
	devices, err := h.devices.ListDevices(r.Context(), caller.UserID)
	if err != nil {
		return nil, err
	}
	return OK(devices), nil
}

// Create handles POST /device.
func (h *DeviceHandler) Create(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}

	var req DeviceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	device, err := h.devices.CreateDevice(r.Context(), caller.UserID, req.input())
	if err != nil {
		return nil, err
	}
	return Created(device), nil
}

// Get handles GET /device/{id}.
func (h *DeviceHandler) Get(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}
	device, err := h.devices.GetDevice(r.Context(), caller.UserID, id)
	if err != nil {
		return nil, err
	}
	return OK(device), nil
}

// Update handles PUT /device/{id}.
func (h *DeviceHandler) Update(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}

	var req UpdateDeviceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	device, err := h.devices.UpdateDevice(r.Context(), caller.UserID, id, req.update())
	if err != nil {
		return nil, err
	}
	return OK(device), nil
}

// Delete handles DELETE /device/{id}.
func (h *DeviceHandler) Delete(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}
	if err := h.devices.DeleteDevice(r.Context(), caller.UserID, id); err != nil {
		return nil, err
	}
	return &Result{Message: "deleted"}, nil
}

// BatchUpsert handles PUT /device/batch.
func (h *DeviceHandler) BatchUpsert(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}

	var req BatchDeviceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	devices, err := h.devices.BatchUpsert(r.Context(), caller.UserID, req.items())
	if err != nil {
		return nil, err
	}
	return OK(devices), nil
}
