package store

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// challengeSize is the number of random bytes per challenge. The
// ceremony requires at least 16; 32 matches what browsers emit.
const challengeSize = 32

type challengeKey struct {
	userID  string
	purpose core.ChallengePurpose
}

// MemoryChallengeStore is an in-memory implementation of the
// ChallengeStore interface. Consume is an atomic compare-and-remove
// under the store mutex.
type MemoryChallengeStore struct {
	challenges map[challengeKey]core.Challenge
	mu         sync.Mutex
	now        func() time.Time
}

// NewMemoryChallengeStore creates a new in-memory challenge store.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[challengeKey]core.Challenge),
		now:        time.Now,
	}
}

// Issue stores a fresh challenge, overwriting any outstanding one for
// the same (user, purpose) pair.
func (s *MemoryChallengeStore) Issue(ctx context.Context, userID string, purpose core.ChallengePurpose, ttl time.Duration) (core.Challenge, error) {
	value := make([]byte, challengeSize)
	if _, err := rand.Read(value); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate challenge: %w", err)
	}

	now := s.now()
	challenge := core.Challenge{
		Value:     value,
		UserID:    userID,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	s.challenges[challengeKey{userID, purpose}] = challenge
	s.mu.Unlock()

	return challenge, nil
}

// Consume compares the presented value against the stored challenge and
// removes it. Exactly one of any set of concurrent callers can succeed.
func (s *MemoryChallengeStore) Consume(ctx context.Context, userID string, purpose core.ChallengePurpose, presented []byte) error {
	key := challengeKey{userID, purpose}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.challenges[key]
	if !ok {
		return core.ErrChallengeMismatch
	}

	if s.now().After(stored.ExpiresAt) {
		delete(s.challenges, key)
		return core.ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare(stored.Value, presented) != 1 {
		return core.ErrChallengeInvalid
	}

	delete(s.challenges, key)
	return nil
}

// DeleteExpired removes challenges past their expiry. Called by the
// cleanup scheduler.
func (s *MemoryChallengeStore) DeleteExpired(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ch := range s.challenges {
		if ch.ExpiresAt.Before(cutoff) {
			delete(s.challenges, key)
			removed++
		}
	}
	return removed
}

var _ ports.ChallengeStore = (*MemoryChallengeStore)(nil)
