package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// MockDeviceStore implements store.DeviceStore for testing
type MockDeviceStore struct {
	CreateFn     func(ctx context.Context, d *domain.Device) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Device, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Device, error)
	UpdateFn     func(ctx context.Context, d *domain.Device) error
	UpsertFn     func(ctx context.Context, d *domain.Device) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	mu      sync.Mutex
	Devices map[uuid.UUID]*domain.Device
}

// NewMockDeviceStore creates an empty device store.
func NewMockDeviceStore() *MockDeviceStore {
	return &MockDeviceStore{Devices: make(map[uuid.UUID]*domain.Device)}
}

var _ store.DeviceStore = (*MockDeviceStore)(nil)

func (m *MockDeviceStore) Create(ctx context.Context, d *domain.Device) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *d
	m.Devices[d.ID] = &cp
	return nil
}

func (m *MockDeviceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.Devices[id]
	if !ok {
		return nil, store.ErrDeviceNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockDeviceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Device, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Device
	for _, d := range m.Devices {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockDeviceStore) Update(ctx context.Context, d *domain.Device) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Devices[d.ID]; !ok {
		return store.ErrDeviceNotFound
	}
	cp := *d
	m.Devices[d.ID] = &cp
	return nil
}

func (m *MockDeviceStore) Upsert(ctx context.Context, d *domain.Device) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.Devices[d.ID]; ok && existing.UserID != d.UserID {
		return store.ErrDeviceNotFound
	}
	cp := *d
	m.Devices[d.ID] = &cp
	return nil
}

func (m *MockDeviceStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Devices[id]; !ok {
		return store.ErrDeviceNotFound
	}
	delete(m.Devices, id)
	return nil
}

// WithTx returns the mock itself.
func (m *MockDeviceStore) WithTx(_ *sql.Tx) store.DeviceStore {
	return m
}
