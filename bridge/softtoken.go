package bridge

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/chaitanyaghughuskar/cdac-project/ports"
	"github.com/chaitanyaghughuskar/cdac-project/webauthn"
)

type softCredential struct {
	id      []byte
	key     *ecdsa.PrivateKey
	counter uint32
}

// SoftAuthenticator is a software ES256 authenticator. It produces real
// signatures over real authenticator data, which lets tests and local
// development exercise the full verification path without device
// hardware.
type SoftAuthenticator struct {
	creds map[string]*softCredential // keyed by user ID
	mu    sync.Mutex
}

// NewSoftAuthenticator creates an empty software authenticator.
func NewSoftAuthenticator() *SoftAuthenticator {
	return &SoftAuthenticator{creds: make(map[string]*softCredential)}
}

// Available always reports true.
func (a *SoftAuthenticator) Available(ctx context.Context) bool { return true }

// CreateCredential mints a new P-256 key pair and packages it as a
// "none"-format attestation.
func (a *SoftAuthenticator) CreateCredential(ctx context.Context, opts ports.CeremonyOptions) (*ports.CredentialCreation, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("failed to generate credential ID: %w", err)
	}

	coseKey, err := webauthn.MarshalEC2Key(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	authData := buildAuthData(opts.RPID, webauthn.FlagUserPresent|webauthn.FlagUserVerified|webauthn.FlagAttestedData, 0)
	authData = append(authData, make([]byte, 16)...) // zero AAGUID
	idLen := make([]byte, 2)
	binary.BigEndian.PutUint16(idLen, uint16(len(id)))
	authData = append(authData, idLen...)
	authData = append(authData, id...)
	authData = append(authData, coseKey...)

	attObj, err := cbor.Marshal(map[string]interface{}{
		"fmt":      "none",
		"attStmt":  map[string]interface{}{},
		"authData": authData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation object: %w", err)
	}

	clientData, err := marshalClientData(webauthn.CeremonyCreate, opts)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.creds[opts.UserID] = &softCredential{id: id, key: key}
	a.mu.Unlock()

	return &ports.CredentialCreation{
		CredentialID:      id,
		ClientDataJSON:    clientData,
		AttestationObject: attObj,
	}, nil
}

// GetAssertion signs a fresh assertion with the user's stored key.
func (a *SoftAuthenticator) GetAssertion(ctx context.Context, opts ports.CeremonyOptions) (*ports.CredentialAssertion, error) {
	a.mu.Lock()
	cred, ok := a.creds[opts.UserID]
	if ok {
		cred.counter++
	}
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no credential stored for user %s", opts.UserID)
	}

	authData := buildAuthData(opts.RPID, webauthn.FlagUserPresent|webauthn.FlagUserVerified, cred.counter)

	clientData, err := marshalClientData(webauthn.CeremonyGet, opts)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(webauthn.SignedPayload(authData, clientData))
	sig, err := ecdsa.SignASN1(rand.Reader, cred.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign assertion: %w", err)
	}

	return &ports.CredentialAssertion{
		CredentialID:      cred.id,
		ClientDataJSON:    clientData,
		AuthenticatorData: authData,
		Signature:         sig,
	}, nil
}

func buildAuthData(rpID string, flags byte, counter uint32) []byte {
	rpIDHash := sha256.Sum256([]byte(rpID))
	out := make([]byte, 0, 37)
	out = append(out, rpIDHash[:]...)
	out = append(out, flags)
	count := make([]byte, 4)
	binary.BigEndian.PutUint32(count, counter)
	return append(out, count...)
}

func marshalClientData(ceremony string, opts ports.CeremonyOptions) ([]byte, error) {
	out, err := json.Marshal(webauthn.ClientData{
		Type:      ceremony,
		Challenge: webauthn.Encode(opts.Challenge),
		Origin:    opts.Origin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode client data: %w", err)
	}
	return out, nil
}

var _ ports.PlatformAuthenticator = (*SoftAuthenticator)(nil)
