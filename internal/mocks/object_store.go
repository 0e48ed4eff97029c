package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cleanapi/cleanapi/internal/platform/objectstore"
)

// MockObjectStore implements objectstore.Store in memory.
type MockObjectStore struct {
	PutFn    func(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	OpenFn   func(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFn func(ctx context.Context, key string) error

	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMockObjectStore creates an empty object store.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: make(map[string][]byte)}
}

var _ objectstore.Store = (*MockObjectStore)(nil)

func (m *MockObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, r, size, contentType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return nil
}

func (m *MockObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.OpenFn != nil {
		return m.OpenFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

// Has reports whether an object exists under key.
func (m *MockObjectStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok
}
