package webauthn

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Device-side building blocks for the software authenticator. The
// relying-party side never uses these; it verifies through the library.

const (
	// CeremonyCreate is the clientData type for registration
	CeremonyCreate = "webauthn.create"
	// CeremonyGet is the clientData type for assertion
	CeremonyGet = "webauthn.get"
)

// Authenticator data flag bits.
const (
	FlagUserPresent  byte = 0x01
	FlagUserVerified byte = 0x04
	FlagAttestedData byte = 0x40
)

// ClientData is the JSON an authenticator client serializes into
// clientDataJSON. The challenge field carries the base64url encoding of
// the issued challenge.
type ClientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// COSE constants for the EC2 P-256 keys the software authenticator mints.
const (
	coseKeyTypeEC2 = 2
	coseAlgES256   = -7
	coseCurveP256  = 1
)

// MarshalEC2Key encodes a P-256 public key as a CBOR COSE_Key.
func MarshalEC2Key(pub *ecdsa.PublicKey) ([]byte, error) {
	key := map[int]interface{}{
		1:  coseKeyTypeEC2,
		3:  coseAlgES256,
		-1: coseCurveP256,
		-2: pub.X.FillBytes(make([]byte, 32)),
		-3: pub.Y.FillBytes(make([]byte, 32)),
	}
	out, err := cbor.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode COSE key: %w", err)
	}
	return out, nil
}

// SignedPayload builds the exact bytes an authenticator signs:
// authenticatorData || SHA-256(clientDataJSON).
func SignedPayload(authenticatorData, clientDataJSON []byte) []byte {
	clientDataHash := sha256.Sum256(clientDataJSON)
	payload := make([]byte, 0, len(authenticatorData)+len(clientDataHash))
	payload = append(payload, authenticatorData...)
	payload = append(payload, clientDataHash[:]...)
	return payload
}
