// Package webauthn adapts the go-webauthn library to the attendance
// protocol: it rebuilds the credential response envelopes from the
// transport's flat fields, maps library failures onto the domain's
// sentinel errors, and carries the device-side helpers the software
// authenticator needs.
package webauthn

import "encoding/base64"

// Binary ceremony fields (challenge, attestationObject, authenticatorData,
// signature) cross the HTTP boundary as base64url without padding.

// Encode encodes raw bytes for transport.
func Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode is the exact inverse of Encode.
func Decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
