package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
)

// MockCredentialStore implements store.CredentialStore for testing
type MockCredentialStore struct {
	GetByClientIDFn func(ctx context.Context, clientID string) (*domain.Credential, error)
	UpsertFn        func(ctx context.Context, cred *domain.Credential) error

	mu          sync.Mutex
	Credentials map[string]*domain.Credential // keyed by client id
}

// NewMockCredentialStore creates an empty credential store.
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{Credentials: make(map[string]*domain.Credential)}
}

var _ store.CredentialStore = (*MockCredentialStore)(nil)

// GetByClientID implements store.CredentialStore.
func (m *MockCredentialStore) GetByClientID(ctx context.Context, clientID string) (*domain.Credential, error) {
	if m.GetByClientIDFn != nil {
		return m.GetByClientIDFn(ctx, clientID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Credentials[clientID]
	if !ok {
		return nil, store.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

// Upsert implements store.CredentialStore.
func (m *MockCredentialStore) Upsert(ctx context.Context, cred *domain.Credential) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, cred)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.Credentials[cred.ClientID]; ok && existing.UserID != cred.UserID {
		return store.ErrClientIDExists
	}
	for id, c := range m.Credentials {
		if c.UserID == cred.UserID {
			delete(m.Credentials, id)
		}
	}
	cp := *cred
	m.Credentials[cred.ClientID] = &cp
	return nil
}

// WithTx returns the mock itself.
func (m *MockCredentialStore) WithTx(_ *sql.Tx) store.CredentialStore {
	return m
}
