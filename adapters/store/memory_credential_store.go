package store

import (
	"context"
	"sync"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// MemoryCredentialStore is an in-memory implementation of the
// CredentialRegistry interface.
type MemoryCredentialStore struct {
	byID   map[string]core.Credential // keyed by string(CredentialID)
	byUser map[string]string          // userID -> string(CredentialID)
	mu     sync.RWMutex
}

// NewMemoryCredentialStore creates a new in-memory credential registry.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byID:   make(map[string]core.Credential),
		byUser: make(map[string]string),
	}
}

// Enroll stores the credential, replacing any existing one for the user.
func (s *MemoryCredentialStore) Enroll(ctx context.Context, cred core.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID, ok := s.byUser[cred.UserID]; ok {
		delete(s.byID, oldID)
	}

	id := string(cred.CredentialID)
	s.byID[id] = cred
	s.byUser[cred.UserID] = id
	return nil
}

// Lookup finds a credential by its opaque ID.
func (s *MemoryCredentialStore) Lookup(ctx context.Context, credentialID []byte) (core.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.byID[string(credentialID)]
	if !ok {
		return core.Credential{}, core.ErrCredentialNotFound
	}
	return cred, nil
}

// LookupByUser finds the user's registered credential.
func (s *MemoryCredentialStore) LookupByUser(ctx context.Context, userID string) (core.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return core.Credential{}, core.ErrNoCredential
	}
	return s.byID[id], nil
}

// UpdateSignCount persists the authenticator counter after a verified
// assertion.
func (s *MemoryCredentialStore) UpdateSignCount(ctx context.Context, credentialID []byte, count uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := string(credentialID)
	cred, ok := s.byID[id]
	if !ok {
		return core.ErrCredentialNotFound
	}
	cred.SignCount = count
	s.byID[id] = cred
	return nil
}

// Reset deletes the user's credential. Subsequent assertions fail until
// a new enrollment.
func (s *MemoryCredentialStore) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUser[userID]; ok {
		delete(s.byID, id)
		delete(s.byUser, userID)
	}
	return nil
}

var _ ports.CredentialRegistry = (*MemoryCredentialStore)(nil)
