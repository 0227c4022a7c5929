package webauthn

import (
	"errors"
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyaghughuskar/cdac-project/core"
)

func TestCodecRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xfe, 0xff, 'a', 'b'}

	encoded := Encode(raw)
	assert.NotContains(t, encoded, "=")

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not*base64url*")
	assert.Error(t, err)
}

func TestMapCeremonyError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "origin",
			in:   protocol.ErrVerification.WithDetails("Error validating origin"),
			want: core.ErrOriginMismatch,
		},
		{
			name: "rp hash",
			in:   protocol.ErrVerification.WithDetails("Error validating the authenticator response").WithInfo("RP Hash mismatch. Expected abc and Received def"),
			want: core.ErrOriginMismatch,
		},
		{
			name: "ceremony type",
			in:   protocol.ErrVerification.WithDetails("Error validating ceremony type"),
			want: core.ErrCeremonyTypeMismatch,
		},
		{
			name: "challenge",
			in:   protocol.ErrVerification.WithDetails("Error validating challenge"),
			want: core.ErrChallengeInvalid,
		},
		{
			name: "anything else",
			in:   protocol.ErrVerification.WithDetails("Error validating the assertion signature"),
			want: core.ErrSignatureInvalid,
		},
		{
			name: "non-protocol error",
			in:   errors.New("boom"),
			want: core.ErrSignatureInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapCeremonyError(tc.in), tc.want)
		})
	}
}
