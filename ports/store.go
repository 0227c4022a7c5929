package ports

import (
	"context"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
)

// ChallengeStore holds outstanding ceremony challenges, at most one per
// (user, purpose) pair.
type ChallengeStore interface {
	// Issue stores a fresh challenge, overwriting any outstanding one
	// for the same user and purpose.
	Issue(ctx context.Context, userID string, purpose core.ChallengePurpose, ttl time.Duration) (core.Challenge, error)

	// Consume atomically compares the presented value with the stored
	// one and removes it. Two concurrent callers can never both succeed.
	Consume(ctx context.Context, userID string, purpose core.ChallengePurpose, presented []byte) error
}

// CredentialRegistry maps users to their single registered authenticator.
type CredentialRegistry interface {
	Enroll(ctx context.Context, cred core.Credential) error
	Lookup(ctx context.Context, credentialID []byte) (core.Credential, error)
	LookupByUser(ctx context.Context, userID string) (core.Credential, error)
	UpdateSignCount(ctx context.Context, credentialID []byte, count uint32) error
	Reset(ctx context.Context, userID string) error
}

// SessionTokenStore persists faculty-issued attendance tokens.
type SessionTokenStore interface {
	Save(ctx context.Context, token core.SessionToken) error
	FindByValue(ctx context.Context, tokenValue string) (core.SessionToken, error)
	FindByFaculty(ctx context.Context, facultyID string) ([]core.SessionToken, error)
	FindByID(ctx context.Context, id string) (core.SessionToken, error)
	// DeleteExpired removes tokens whose expiry is before the cutoff and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// AttendanceStore persists attendance records. Create must collapse
// concurrent duplicates for one (session, student) pair into a single row.
type AttendanceStore interface {
	// Create inserts the record unless one already exists for the pair,
	// in which case the existing record is returned with created=false.
	Create(ctx context.Context, rec core.AttendanceRecord) (core.AttendanceRecord, bool, error)
	FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (core.AttendanceRecord, bool, error)
	FindBySession(ctx context.Context, sessionID string) ([]core.AttendanceRecord, error)
	Delete(ctx context.Context, recordID string) error
}

// GeofenceStore holds the singleton campus location config.
type GeofenceStore interface {
	Get(ctx context.Context) (core.GeofenceConfig, bool, error)
	Set(ctx context.Context, cfg core.GeofenceConfig) error
}

// SubjectDirectory resolves subject metadata owned by the wider portal.
// The protocol core only needs display names for QR responses.
type SubjectDirectory interface {
	SubjectName(ctx context.Context, subjectID string) (string, error)
}
