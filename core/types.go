package core

import "time"

// ChallengePurpose distinguishes the two WebAuthn ceremonies a challenge
// can be issued for. A challenge issued for one ceremony is never valid
// for the other.
type ChallengePurpose string

const (
	PurposeRegistration ChallengePurpose = "registration"
	PurposeAssertion    ChallengePurpose = "assertion"
)

// Role identifies what a portal user is allowed to do.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Challenge is a single-use random value bound to one user and one
// ceremony. It is consumed exactly once; issuing a new challenge for the
// same (user, purpose) pair invalidates the previous one.
type Challenge struct {
	Value     []byte           // random, at least 32 bytes
	UserID    string           // who the challenge was issued to
	Purpose   ChallengePurpose // registration or assertion
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Credential is a registered platform authenticator binding. A user has
// at most one active credential; re-enrollment requires an explicit reset.
type Credential struct {
	UserID       string
	CredentialID []byte // opaque, unique across the registry
	PublicKey    []byte // COSE-encoded public key
	SignCount    uint32
	EnrolledAt   time.Time
}

// SessionToken is a faculty-issued, time-boxed secret identifying one
// attendance-taking window for one subject. Tokens are immutable; expired
// tokens are rejected and never resurrected.
type SessionToken struct {
	ID        string
	Token     string // opaque, at least 128 bits of entropy
	SubjectID string
	FacultyID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// AttendanceRecord is the durable outcome of a successful mark. At most
// one record exists per (session, student) pair.
type AttendanceRecord struct {
	ID        string
	SessionID string
	StudentID string
	Status    string // "PRESENT"
	MarkedAt  time.Time
	Latitude  float64
	Longitude float64
}

// StatusPresent is the only status the protocol produces; absence is the
// lack of a record.
const StatusPresent = "PRESENT"

// AttemptState names the stages of one attendance-mark attempt. The
// happy path walks the states in order; any state may fall to
// StateFailed.
type AttemptState string

const (
	StateStarted           AttemptState = "STARTED"
	StateChallengeIssued   AttemptState = "CHALLENGE_ISSUED"
	StateAssertionReceived AttemptState = "ASSERTION_RECEIVED"
	StateTokenValidated    AttemptState = "TOKEN_VALIDATED"
	StateLocationValidated AttemptState = "LOCATION_VALIDATED"
	StateRecorded          AttemptState = "RECORDED"
	StateFailed            AttemptState = "FAILED"
)
