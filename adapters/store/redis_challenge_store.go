package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// consumeScript deletes the stored challenge only when it matches the
// presented value. Running it server-side makes consume a single atomic
// step: two concurrent callers cannot both observe a match.
// Returns 1 on match+delete, 0 on mismatch, -1 when no value is stored.
var consumeScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if stored == false then
	return -1
end
if stored ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisChallengeStore is a Redis implementation of the ChallengeStore
// interface. Expiry is delegated to Redis key TTLs, so an expired
// challenge is indistinguishable from a missing one and surfaces as
// ErrChallengeMismatch.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeStore creates a new Redis challenge store.
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "attend:challenge:",
	}
}

func (s *RedisChallengeStore) key(userID string, purpose core.ChallengePurpose) string {
	return s.prefix + string(purpose) + ":" + userID
}

// Issue stores a fresh challenge under a TTL key, overwriting any
// outstanding one for the same (user, purpose) pair.
func (s *RedisChallengeStore) Issue(ctx context.Context, userID string, purpose core.ChallengePurpose, ttl time.Duration) (core.Challenge, error) {
	value := make([]byte, challengeSize)
	if _, err := rand.Read(value); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID, purpose), value, ttl).Err(); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to store challenge: %w", err)
	}

	now := time.Now()
	return core.Challenge{
		Value:     value,
		UserID:    userID,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Consume runs the compare-and-delete script against the stored value.
func (s *RedisChallengeStore) Consume(ctx context.Context, userID string, purpose core.ChallengePurpose, presented []byte) error {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(userID, purpose)}, presented).Int()
	if err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return core.ErrChallengeInvalid
	default:
		return core.ErrChallengeMismatch
	}
}

var _ ports.ChallengeStore = (*RedisChallengeStore)(nil)
