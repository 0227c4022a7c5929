package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/logging"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
	"github.com/chaitanyaghughuskar/cdac-project/webauthn"
)

// WebAuthnService runs the registration and assertion ceremonies against
// the relying-party identity the portal is deployed under. The ceremony
// verification itself is the library's; the single-use challenge store
// and the write-once enrollment policy live here.
type WebAuthnService struct {
	relying     *webauthn.RelyingParty
	challenges  ports.ChallengeStore
	credentials ports.CredentialRegistry
	events      ports.EventPublisher

	challengeTTL time.Duration

	now func() time.Time
}

// NewWebAuthnService creates a new ceremony service.
func NewWebAuthnService(
	challenges ports.ChallengeStore,
	credentials ports.CredentialRegistry,
	events ports.EventPublisher,
	rpID, rpOrigin string,
	challengeTTL time.Duration,
) (*WebAuthnService, error) {
	relying, err := webauthn.NewRelyingParty(rpID, rpOrigin)
	if err != nil {
		return nil, err
	}
	return &WebAuthnService{
		relying:      relying,
		challenges:   challenges,
		credentials:  credentials,
		events:       events,
		challengeTTL: challengeTTL,
		now:          time.Now,
	}, nil
}

// RegisterRequest carries the decoded registration ceremony result.
type RegisterRequest struct {
	UserID            string
	CredentialID      []byte
	ClientDataJSON    []byte
	AttestationObject []byte
}

// AssertionRequest carries the decoded assertion ceremony result.
type AssertionRequest struct {
	UserID            string
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
}

// StartRegistration issues a fresh registration challenge, invalidating
// any outstanding one for the user.
func (s *WebAuthnService) StartRegistration(ctx context.Context, userID string) (core.Challenge, error) {
	return s.challenges.Issue(ctx, userID, core.PurposeRegistration, s.challengeTTL)
}

// FinishRegistration validates the attestation response and enrolls the
// credential. Enrollment is write-once: an existing credential must be
// reset explicitly before a new device can be bound.
func (s *WebAuthnService) FinishRegistration(ctx context.Context, req RegisterRequest) error {
	switch _, err := s.credentials.LookupByUser(ctx, req.UserID); {
	case err == nil:
		return core.ErrAlreadyEnrolled
	case !errors.Is(err, core.ErrNoCredential):
		return err
	}

	reg, err := webauthn.ParseRegistration(req.CredentialID, req.ClientDataJSON, req.AttestationObject)
	if err != nil {
		return core.ErrCeremonyTypeMismatch
	}

	embedded, err := reg.Challenge()
	if err != nil {
		return core.ErrChallengeInvalid
	}
	if err := s.challenges.Consume(ctx, req.UserID, core.PurposeRegistration, embedded); err != nil {
		return err
	}

	cred, err := s.relying.VerifyRegistration(req.UserID, embedded, reg)
	if err != nil {
		return err
	}
	if !bytes.Equal(cred.CredentialID, req.CredentialID) {
		return core.ErrCredentialNotFound
	}
	cred.EnrolledAt = s.now()

	if err := s.credentials.Enroll(ctx, cred); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishCredentialEnrolled(ctx, req.UserID); err != nil {
			logging.Logger.WithError(err).Warn("failed to publish credential.enrolled")
		}
	}

	return nil
}

// VerifyAssertion runs the credential, challenge and ceremony checks for
// an assertion, in that order, and returns the credential with the
// authenticator's new sign count. The challenge is consumed before
// verification, so a replayed or forged assertion learns nothing about
// token or location validity.
func (s *WebAuthnService) VerifyAssertion(ctx context.Context, req AssertionRequest) (core.Credential, uint32, error) {
	cred, err := s.credentials.Lookup(ctx, req.CredentialID)
	if err != nil {
		return core.Credential{}, 0, err
	}
	if cred.UserID != req.UserID {
		// A credential presented under the wrong account is treated the
		// same as an unknown one.
		return core.Credential{}, 0, core.ErrCredentialNotFound
	}

	assertion, err := webauthn.ParseAssertion(req.CredentialID, req.ClientDataJSON, req.AuthenticatorData, req.Signature)
	if err != nil {
		return core.Credential{}, 0, core.ErrCeremonyTypeMismatch
	}

	embedded, err := assertion.Challenge()
	if err != nil {
		return core.Credential{}, 0, core.ErrChallengeInvalid
	}
	if err := s.challenges.Consume(ctx, req.UserID, core.PurposeAssertion, embedded); err != nil {
		return core.Credential{}, 0, err
	}

	newCount, err := s.relying.VerifyAssertion(req.UserID, cred, embedded, assertion)
	if err != nil {
		return core.Credential{}, 0, err
	}

	return cred, newCount, nil
}

// Reset clears the caller's credential binding.
func (s *WebAuthnService) Reset(ctx context.Context, userID string) error {
	return s.credentials.Reset(ctx, userID)
}
