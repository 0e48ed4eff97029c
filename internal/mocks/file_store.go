package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// MockFileStore implements store.FileStore for testing
type MockFileStore struct {
	CreateFn     func(ctx context.Context, f *domain.UploadedFile) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedFile, error)
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	Files map[uuid.UUID]*domain.UploadedFile
}

// NewMockFileStore creates an empty file store.
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{Files: make(map[uuid.UUID]*domain.UploadedFile)}
}

var _ store.FileStore = (*MockFileStore)(nil)

func (m *MockFileStore) Create(ctx context.Context, f *domain.UploadedFile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *f
	m.Files[f.ID] = &cp
	return nil
}

func (m *MockFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.Files[id]
	if !ok {
		return nil, store.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockFileStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedFile, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.UploadedFile
	for _, f := range m.Files {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Files[id]; !ok {
		return store.ErrFileNotFound
	}
	delete(m.Files, id)
	return nil
}

// WithTx returns the mock itself.
func (m *MockFileStore) WithTx(_ *sql.Tx) store.FileStore {
	return m
}
