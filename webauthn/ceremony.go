package webauthn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	wa "github.com/go-webauthn/webauthn/webauthn"

	"github.com/chaitanyaghughuskar/cdac-project/core"
)

// RelyingParty runs the registration and assertion verification against
// the portal's WebAuthn identity. Challenge issuance and single-use
// consumption stay with the caller; the relying party only checks the
// response against an already-consumed challenge value.
type RelyingParty struct {
	wa *wa.WebAuthn
}

// NewRelyingParty configures the library for the given RP ID and origin.
func NewRelyingParty(rpID, rpOrigin string) (*RelyingParty, error) {
	inner, err := wa.New(&wa.Config{
		RPID:          rpID,
		RPDisplayName: "Campus Attendance Portal",
		RPOrigins:     []string{rpOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure relying party: %w", err)
	}
	return &RelyingParty{wa: inner}, nil
}

// ceremonyUser adapts a portal user and their stored credential to the
// library's user model. The portal user ID doubles as the WebAuthn user
// handle.
type ceremonyUser struct {
	id    string
	creds []wa.Credential
}

func (u ceremonyUser) WebAuthnID() []byte                  { return []byte(u.id) }
func (u ceremonyUser) WebAuthnName() string                { return u.id }
func (u ceremonyUser) WebAuthnDisplayName() string         { return u.id }
func (u ceremonyUser) WebAuthnIcon() string                { return "" }
func (u ceremonyUser) WebAuthnCredentials() []wa.Credential { return u.creds }

func libCredential(cred core.Credential) wa.Credential {
	return wa.Credential{
		ID:        cred.CredentialID,
		PublicKey: cred.PublicKey,
		Authenticator: wa.Authenticator{
			SignCount: cred.SignCount,
		},
	}
}

func (rp *RelyingParty) session(userID string, challenge []byte) wa.SessionData {
	return wa.SessionData{
		Challenge: Encode(challenge),
		UserID:    []byte(userID),
	}
}

// envelope rebuilds the credential response JSON the library parsers
// expect from the transport's flat base64url fields.
func envelope(credentialID []byte, response map[string]string) ([]byte, error) {
	id := Encode(credentialID)
	return json.Marshal(map[string]interface{}{
		"id":       id,
		"rawId":    id,
		"type":     "public-key",
		"response": response,
	})
}

// Registration is a parsed attestation response.
type Registration struct {
	parsed *protocol.ParsedCredentialCreationData
}

// ParseRegistration decodes a registration ceremony result.
func ParseRegistration(credentialID, clientDataJSON, attestationObject []byte) (*Registration, error) {
	body, err := envelope(credentialID, map[string]string{
		"clientDataJSON":    Encode(clientDataJSON),
		"attestationObject": Encode(attestationObject),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build attestation envelope: %w", err)
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attestation response: %w", err)
	}
	return &Registration{parsed: parsed}, nil
}

// Challenge returns the challenge value embedded in the client data, the
// value the caller must consume before verification.
func (r *Registration) Challenge() ([]byte, error) {
	return Decode(r.parsed.Response.CollectedClientData.Challenge)
}

// VerifyRegistration validates the attestation against the consumed
// challenge and returns the credential material to enroll.
func (rp *RelyingParty) VerifyRegistration(userID string, challenge []byte, r *Registration) (core.Credential, error) {
	user := ceremonyUser{id: userID}

	cred, err := rp.wa.CreateCredential(user, rp.session(userID, challenge), r.parsed)
	if err != nil {
		return core.Credential{}, MapCeremonyError(err)
	}

	return core.Credential{
		UserID:       userID,
		CredentialID: cred.ID,
		PublicKey:    cred.PublicKey,
		SignCount:    cred.Authenticator.SignCount,
	}, nil
}

// Assertion is a parsed assertion response.
type Assertion struct {
	parsed *protocol.ParsedCredentialAssertionData
}

// ParseAssertion decodes an assertion ceremony result.
func ParseAssertion(credentialID, clientDataJSON, authenticatorData, signature []byte) (*Assertion, error) {
	body, err := envelope(credentialID, map[string]string{
		"clientDataJSON":    Encode(clientDataJSON),
		"authenticatorData": Encode(authenticatorData),
		"signature":         Encode(signature),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build assertion envelope: %w", err)
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse assertion response: %w", err)
	}
	return &Assertion{parsed: parsed}, nil
}

// Challenge returns the challenge value embedded in the client data.
func (a *Assertion) Challenge() ([]byte, error) {
	return Decode(a.parsed.Response.CollectedClientData.Challenge)
}

// VerifyAssertion validates the assertion against the consumed challenge
// and the stored credential, and returns the authenticator's new sign
// count. A counter that fails to advance past the stored value marks a
// possible cloned authenticator and fails the assertion.
func (rp *RelyingParty) VerifyAssertion(userID string, stored core.Credential, challenge []byte, a *Assertion) (uint32, error) {
	user := ceremonyUser{id: userID, creds: []wa.Credential{libCredential(stored)}}

	validated, err := rp.wa.ValidateLogin(user, rp.session(userID, challenge), a.parsed)
	if err != nil {
		return 0, MapCeremonyError(err)
	}
	if validated.Authenticator.CloneWarning {
		return 0, core.ErrCounterRegression
	}

	return validated.Authenticator.SignCount, nil
}

// MapCeremonyError translates library verification failures onto the
// domain's sentinel errors. Anything not recognizably an origin,
// ceremony-type or challenge failure is treated as a bad signature.
func MapCeremonyError(err error) error {
	var pErr *protocol.Error
	if errors.As(err, &pErr) {
		info := strings.ToLower(pErr.Details + " " + pErr.DevInfo)
		switch {
		case strings.Contains(info, "origin"), strings.Contains(info, "rp hash"):
			return core.ErrOriginMismatch
		case strings.Contains(info, "ceremony type"):
			return core.ErrCeremonyTypeMismatch
		case strings.Contains(info, "challenge"):
			return core.ErrChallengeInvalid
		}
	}
	return core.ErrSignatureInvalid
}
