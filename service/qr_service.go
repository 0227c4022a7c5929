package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// tokenSize is the number of random bytes per session token, well above
// the 128-bit entropy floor.
const tokenSize = 32

// QRService issues and validates faculty attendance tokens.
type QRService struct {
	tokens     ports.SessionTokenStore
	attendance ports.AttendanceStore
	subjects   ports.SubjectDirectory

	now func() time.Time
}

// NewQRService creates a new QR session service.
func NewQRService(tokens ports.SessionTokenStore, attendance ports.AttendanceStore, subjects ports.SubjectDirectory) *QRService {
	return &QRService{
		tokens:     tokens,
		attendance: attendance,
		subjects:   subjects,
		now:        time.Now,
	}
}

// QRSession is the faculty-facing view of a generated token.
type QRSession struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	SubjectName string    `json:"subjectName"`
	ExpiresAt   time.Time `json:"expiresAt"`

	// AttendanceCount is filled by session listings.
	AttendanceCount int `json:"attendanceCount,omitempty"`
}

// Generate creates a new time-boxed session token for one subject.
func (s *QRService) Generate(ctx context.Context, facultyID, subjectID string, durationMinutes int) (QRSession, error) {
	if durationMinutes <= 0 {
		return QRSession{}, fmt.Errorf("durationMinutes must be positive, got %d", durationMinutes)
	}

	subjectName, err := s.subjects.SubjectName(ctx, subjectID)
	if err != nil {
		return QRSession{}, fmt.Errorf("failed to resolve subject: %w", err)
	}

	raw := make([]byte, tokenSize)
	if _, err := rand.Read(raw); err != nil {
		return QRSession{}, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	token := core.SessionToken{
		ID:        uuid.New().String(),
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		SubjectID: subjectID,
		FacultyID: facultyID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(durationMinutes) * time.Minute),
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		return QRSession{}, err
	}

	return QRSession{
		ID:          token.ID,
		Token:       token.Token,
		SubjectName: subjectName,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Validate checks a presented token value. Validity is evaluated against
// the store on every call, never cached.
func (s *QRService) Validate(ctx context.Context, tokenValue string) (core.SessionToken, error) {
	token, err := s.tokens.FindByValue(ctx, tokenValue)
	if err != nil {
		return core.SessionToken{}, err
	}
	if token.Expired(s.now()) {
		return core.SessionToken{}, core.ErrTokenExpired
	}
	return token, nil
}

// SessionsForFaculty lists a faculty member's sessions with attendance
// counts.
func (s *QRService) SessionsForFaculty(ctx context.Context, facultyID string) ([]QRSession, error) {
	tokens, err := s.tokens.FindByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	out := make([]QRSession, 0, len(tokens))
	for _, token := range tokens {
		records, err := s.attendance.FindBySession(ctx, token.ID)
		if err != nil {
			return nil, err
		}
		name, err := s.subjects.SubjectName(ctx, token.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve subject: %w", err)
		}
		out = append(out, QRSession{
			ID:              token.ID,
			Token:           token.Token,
			SubjectName:     name,
			ExpiresAt:       token.ExpiresAt,
			AttendanceCount: len(records),
		})
	}
	return out, nil
}

// SessionAttendance returns the records for one session, enforcing that
// the caller owns it.
func (s *QRService) SessionAttendance(ctx context.Context, facultyID, sessionID string) ([]core.AttendanceRecord, error) {
	token, err := s.tokens.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token.FacultyID != facultyID {
		return nil, fmt.Errorf("session %s is not owned by faculty %s", sessionID, facultyID)
	}
	return s.attendance.FindBySession(ctx, sessionID)
}
