package store

import (
	"context"
	"sync"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// MemoryTokenStore is an in-memory implementation of the
// SessionTokenStore interface.
type MemoryTokenStore struct {
	byValue map[string]core.SessionToken
	byID    map[string]string // id -> token value
	mu      sync.RWMutex
}

// NewMemoryTokenStore creates a new in-memory session token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		byValue: make(map[string]core.SessionToken),
		byID:    make(map[string]string),
	}
}

// Save persists the token. Tokens are immutable once saved.
func (s *MemoryTokenStore) Save(ctx context.Context, token core.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byValue[token.Token] = token
	s.byID[token.ID] = token.Token
	return nil
}

// FindByValue looks a token up by its opaque value.
func (s *MemoryTokenStore) FindByValue(ctx context.Context, tokenValue string) (core.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.byValue[tokenValue]
	if !ok {
		return core.SessionToken{}, core.ErrTokenNotFound
	}
	return token, nil
}

// FindByID looks a token up by its record ID.
func (s *MemoryTokenStore) FindByID(ctx context.Context, id string) (core.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.byID[id]
	if !ok {
		return core.SessionToken{}, core.ErrTokenNotFound
	}
	return s.byValue[value], nil
}

// FindByFaculty returns all tokens issued by the given faculty member.
func (s *MemoryTokenStore) FindByFaculty(ctx context.Context, facultyID string) ([]core.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.SessionToken
	for _, token := range s.byValue {
		if token.FacultyID == facultyID {
			out = append(out, token)
		}
	}
	return out, nil
}

// DeleteExpired removes tokens whose expiry is before the cutoff.
func (s *MemoryTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for value, token := range s.byValue {
		if token.ExpiresAt.Before(cutoff) {
			delete(s.byValue, value)
			delete(s.byID, token.ID)
			removed++
		}
	}
	return removed, nil
}

var _ ports.SessionTokenStore = (*MemoryTokenStore)(nil)
