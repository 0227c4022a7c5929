package core

import "errors"

var (
	// ErrChallengeExpired is returned when a presented challenge is past its expiry
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrChallengeMismatch is returned when no outstanding challenge exists for the user and ceremony
	ErrChallengeMismatch = errors.New("no matching challenge outstanding")

	// ErrChallengeInvalid is returned when the presented value differs from the stored one
	ErrChallengeInvalid = errors.New("challenge value does not match")

	// ErrNoCredential is returned when the user has no registered authenticator
	ErrNoCredential = errors.New("no credential registered for user")

	// ErrCredentialNotFound is returned when a credential ID is unknown or belongs to another user
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrAlreadyEnrolled is returned when registration is attempted over an existing credential
	ErrAlreadyEnrolled = errors.New("credential already registered, reset required before re-enrollment")

	// ErrSignatureInvalid is returned when the assertion signature does not verify
	ErrSignatureInvalid = errors.New("assertion signature invalid")

	// ErrCounterRegression is returned when an assertion's sign counter fails to advance past the stored value
	ErrCounterRegression = errors.New("authenticator sign counter regression")

	// ErrOriginMismatch is returned when clientData asserts a foreign origin
	ErrOriginMismatch = errors.New("client data origin mismatch")

	// ErrCeremonyTypeMismatch is returned when clientData carries the wrong ceremony type
	ErrCeremonyTypeMismatch = errors.New("client data ceremony type mismatch")

	// ErrTokenNotFound is returned when a session token value is unknown
	ErrTokenNotFound = errors.New("session token not found")

	// ErrTokenExpired is returned when a session token is past its expiry
	ErrTokenExpired = errors.New("session token has expired")

	// ErrGeofenceNotConfigured is returned when no usable campus location is set; the check fails closed
	ErrGeofenceNotConfigured = errors.New("campus geofence not configured")

	// ErrOutOfRange is returned when the student is outside the campus radius
	ErrOutOfRange = errors.New("location outside allowed radius")

	// ErrUserCancelled is returned when the user dismisses the biometric prompt
	ErrUserCancelled = errors.New("user cancelled the authenticator prompt")

	// ErrAuthenticatorUnavailable is returned when no platform authenticator is present
	ErrAuthenticatorUnavailable = errors.New("platform authenticator unavailable")
)
