package ports

import "context"

// CredentialCreation is the device-side result of a registration ceremony.
type CredentialCreation struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AttestationObject []byte
}

// CredentialAssertion is the device-side result of an assertion ceremony.
type CredentialAssertion struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
}

// CeremonyOptions parameterize a platform authenticator call.
type CeremonyOptions struct {
	RPID      string
	Origin    string
	UserID    string
	Challenge []byte
}

// PlatformAuthenticator is the device-side secure authenticator. Both
// calls block on user interaction (the biometric prompt) and honor
// context cancellation.
type PlatformAuthenticator interface {
	Available(ctx context.Context) bool
	CreateCredential(ctx context.Context, opts CeremonyOptions) (*CredentialCreation, error)
	GetAssertion(ctx context.Context, opts CeremonyOptions) (*CredentialAssertion, error)
}
