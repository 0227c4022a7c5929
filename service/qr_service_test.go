package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyaghughuskar/cdac-project/adapters/store"
	"github.com/chaitanyaghughuskar/cdac-project/core"
)

func newQRHarness() (*QRService, *time.Time) {
	current := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	svc := NewQRService(
		store.NewMemoryTokenStore(),
		store.NewMemoryAttendanceStore(),
		store.StaticSubjectDirectory{"7": "Distributed Systems"},
	)
	svc.now = func() time.Time { return current }
	return svc, &current
}

func TestQRGenerate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	session, err := svc.Generate(ctx, "faculty-1", "7", 5)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Distributed Systems", session.SubjectName)
	// 32 random bytes, base64url without padding
	assert.Len(t, session.Token, 43)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC), session.ExpiresAt)
}

func TestQRGenerateRejectsBadDuration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	_, err := svc.Generate(ctx, "faculty-1", "7", 0)
	assert.Error(t, err)
	_, err = svc.Generate(ctx, "faculty-1", "7", -5)
	assert.Error(t, err)
}

func TestQRGenerateUnknownSubject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	_, err := svc.Generate(ctx, "faculty-1", "99", 5)
	assert.Error(t, err)
}

func TestQRValidateLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, clock := newQRHarness()

	session, err := svc.Generate(ctx, "faculty-1", "7", 10)
	require.NoError(t, err)

	// valid immediately and one second before expiry
	token, err := svc.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, token.ID)

	*clock = clock.Add(9*time.Minute + 59*time.Second)
	_, err = svc.Validate(ctx, session.Token)
	assert.NoError(t, err)

	// the instant of expiry and beyond are rejected on every call
	*clock = clock.Add(time.Second)
	_, err = svc.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	*clock = clock.Add(time.Hour)
	_, err = svc.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestQRValidateUnknownToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	_, err := svc.Validate(ctx, "never-issued")
	assert.ErrorIs(t, err, core.ErrTokenNotFound)
}

func TestQRTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := svc.Generate(ctx, "faculty-1", "7", 5)
		require.NoError(t, err)
		assert.False(t, seen[session.Token])
		seen[session.Token] = true
	}
}

func TestQRSessionsForFaculty(t *testing.T) {
	ctx := context.Background()
	attendance := store.NewMemoryAttendanceStore()
	svc := NewQRService(store.NewMemoryTokenStore(), attendance, store.StaticSubjectDirectory{"7": "Distributed Systems"})

	a, err := svc.Generate(ctx, "faculty-1", "7", 5)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "faculty-2", "7", 5)
	require.NoError(t, err)

	_, _, err = attendance.Create(ctx, core.AttendanceRecord{
		ID:        "rec-1",
		SessionID: a.ID,
		StudentID: "student-1",
		Status:    core.StatusPresent,
		MarkedAt:  time.Now(),
	})
	require.NoError(t, err)

	sessions, err := svc.SessionsForFaculty(ctx, "faculty-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, a.ID, sessions[0].ID)
	assert.Equal(t, 1, sessions[0].AttendanceCount)
}

func TestQRSessionAttendanceOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQRHarness()

	session, err := svc.Generate(ctx, "faculty-1", "7", 5)
	require.NoError(t, err)

	_, err = svc.SessionAttendance(ctx, "faculty-2", session.ID)
	assert.Error(t, err)

	records, err := svc.SessionAttendance(ctx, "faculty-1", session.ID)
	assert.NoError(t, err)
	assert.Empty(t, records)
}
