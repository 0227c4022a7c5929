package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

func newTokenizer(t *testing.T, ttl time.Duration) *JWTTokenizer {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewJWTTokenizer(key, ttl)
}

func TestIdentityRoundTrip(t *testing.T) {
	tk := newTokenizer(t, 15*time.Minute)

	for _, role := range []core.Role{core.RoleStudent, core.RoleFaculty, core.RoleAdmin} {
		token, err := tk.IdentityToToken(ports.Identity{UserID: "user-1", Role: role})
		require.NoError(t, err)

		identity, err := tk.TokenToIdentity(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.UserID)
		assert.Equal(t, role, identity.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tk := newTokenizer(t, -time.Minute)

	token, err := tk.IdentityToToken(ports.Identity{UserID: "user-1", Role: core.RoleStudent})
	require.NoError(t, err)

	_, err = tk.TokenToIdentity(token)
	assert.Error(t, err)
}

func TestForeignKeyRejected(t *testing.T) {
	token, err := newTokenizer(t, 15*time.Minute).IdentityToToken(ports.Identity{UserID: "user-1", Role: core.RoleStudent})
	require.NoError(t, err)

	_, err = newTokenizer(t, 15*time.Minute).TokenToIdentity(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	tk := newTokenizer(t, 15*time.Minute)

	_, err := tk.TokenToIdentity("not-a-jwt")
	assert.Error(t, err)
	_, err = tk.TokenToIdentity("")
	assert.Error(t, err)
}
