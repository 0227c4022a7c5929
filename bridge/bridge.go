// Package bridge is the device-side half of the protocol: it talks to
// the platform's secure authenticator and the location service, and
// encodes ceremony results for transport.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
	"github.com/chaitanyaghughuskar/cdac-project/webauthn"
)

// LocationProvider yields the device's current coordinates.
type LocationProvider interface {
	Current(ctx context.Context) (lat, lng float64, err error)
}

// Bridge wraps the platform authenticator behind single blocking calls
// with explicit cancellation and availability results.
type Bridge struct {
	authenticator ports.PlatformAuthenticator
	location      LocationProvider

	rpID   string
	origin string

	// promptTimeout bounds how long the biometric prompt may sit
	// unanswered before the attempt is treated as cancelled.
	promptTimeout time.Duration
}

// New creates a bridge for one device.
func New(authenticator ports.PlatformAuthenticator, location LocationProvider, rpID, origin string, promptTimeout time.Duration) *Bridge {
	return &Bridge{
		authenticator: authenticator,
		location:      location,
		rpID:          rpID,
		origin:        origin,
		promptTimeout: promptTimeout,
	}
}

// EncodedRegistration is a registration result ready for transport, all
// binary fields base64url without padding.
type EncodedRegistration struct {
	CredentialID      string `json:"credentialId"`
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject"`
}

// EncodedAssertion is an attendance submission ready for transport.
type EncodedAssertion struct {
	CredentialID      string  `json:"credentialId"`
	ClientDataJSON    string  `json:"clientDataJSON"`
	AuthenticatorData string  `json:"authenticatorData"`
	Signature         string  `json:"signature"`
	Token             string  `json:"token"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
}

// Enroll runs the registration ceremony against the device authenticator.
func (b *Bridge) Enroll(ctx context.Context, userID string, challenge []byte) (*EncodedRegistration, error) {
	if !b.authenticator.Available(ctx) {
		return nil, core.ErrAuthenticatorUnavailable
	}

	promptCtx, cancel := context.WithTimeout(ctx, b.promptTimeout)
	defer cancel()

	creation, err := b.authenticator.CreateCredential(promptCtx, ports.CeremonyOptions{
		RPID:      b.rpID,
		Origin:    b.origin,
		UserID:    userID,
		Challenge: challenge,
	})
	if err != nil {
		return nil, mapPromptError(err)
	}

	return &EncodedRegistration{
		CredentialID:      webauthn.Encode(creation.CredentialID),
		ClientDataJSON:    webauthn.Encode(creation.ClientDataJSON),
		AttestationObject: webauthn.Encode(creation.AttestationObject),
	}, nil
}

// MarkAttendance obtains the device location, triggers the biometric
// assertion and packages both into one submission.
func (b *Bridge) MarkAttendance(ctx context.Context, userID string, challenge []byte, token string) (*EncodedAssertion, error) {
	if !b.authenticator.Available(ctx) {
		return nil, core.ErrAuthenticatorUnavailable
	}

	lat, lng, err := b.location.Current(ctx)
	if err != nil {
		return nil, err
	}

	promptCtx, cancel := context.WithTimeout(ctx, b.promptTimeout)
	defer cancel()

	assertion, err := b.authenticator.GetAssertion(promptCtx, ports.CeremonyOptions{
		RPID:      b.rpID,
		Origin:    b.origin,
		UserID:    userID,
		Challenge: challenge,
	})
	if err != nil {
		return nil, mapPromptError(err)
	}

	return &EncodedAssertion{
		CredentialID:      webauthn.Encode(assertion.CredentialID),
		ClientDataJSON:    webauthn.Encode(assertion.ClientDataJSON),
		AuthenticatorData: webauthn.Encode(assertion.AuthenticatorData),
		Signature:         webauthn.Encode(assertion.Signature),
		Token:             token,
		Latitude:          lat,
		Longitude:         lng,
	}, nil
}

// mapPromptError keeps device-side outcomes distinct from server-side
// verification failures: a dismissed or timed-out prompt is
// ErrUserCancelled, nothing else.
func mapPromptError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return core.ErrUserCancelled
	}
	return err
}
