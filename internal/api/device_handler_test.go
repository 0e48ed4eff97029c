package api

import (
	"net/http"
	"testing"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceHandler_CRUD(t *testing.T) {
	t.Parallel()
	a := newTestAPI(1024)
	owner, other := uuid.New(), uuid.New()

	rec := a.do(t, owner, http.MethodPost, "/device", DeviceRequest{Name: "laptop", DeviceOS: "linux"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	device := decodeData[domain.Device](t, decodeEnvelope(t, rec))
	assert.Equal(t, owner, device.UserID)
	assert.Equal(t, domain.DeviceStatusActive, device.Status)

	path := "/device/" + device.ID.String()

	rec = a.do(t, owner, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, other, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, owner, http.MethodPut, path, map[string]string{"status": "inactive"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.DeviceStatusInactive, decodeData[domain.Device](t, decodeEnvelope(t, rec)).Status)

	rec = a.do(t, owner, http.MethodPut, path, map[string]string{"status": "melted"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status must be one of active, inactive, decommissioned", decodeEnvelope(t, rec).Message)

	rec = a.do(t, other, http.MethodGet, "/device", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))

	rec = a.do(t, other, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, owner, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, owner, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Device not found", decodeEnvelope(t, rec).Message)
}

func TestDeviceHandler_BatchUpsert(t *testing.T) {
	t.Parallel()
	a := newTestAPI(1024)
	owner := uuid.New()
	fixed := uuid.New()

	rec := a.do(t, owner, http.MethodPut, "/device/batch", BatchDeviceRequest{Devices: []BatchDeviceItem{
		{Name: "one", DeviceOS: "ios"},
		{ID: &fixed, Name: "two", DeviceOS: "android", Status: "inactive"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	devices := decodeData[[]domain.Device](t, decodeEnvelope(t, rec))
	require.Len(t, devices, 2)
	assert.Equal(t, fixed, devices[1].ID)

	rec = a.do(t, owner, http.MethodPut, "/device/batch", map[string]any{
		"devices": []map[string]string{{"name": "ok", "device_os": "x"}, {"device_os": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "devices[1].name is required", decodeEnvelope(t, rec).Message)

	rec = a.do(t, owner, http.MethodPut, "/device/batch", map[string]any{"devices": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "devices must not be empty", decodeEnvelope(t, rec).Message)

	rec = a.do(t, uuid.New(), http.MethodPut, "/device/batch", BatchDeviceRequest{Devices: []BatchDeviceItem{
		{ID: &fixed, Name: "mine now", DeviceOS: "android"},
	}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
