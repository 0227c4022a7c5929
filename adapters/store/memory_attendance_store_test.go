package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyaghughuskar/cdac-project/core"
)

func record(sessionID, studentID string) core.AttendanceRecord {
	return core.AttendanceRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		StudentID: studentID,
		Status:    core.StatusPresent,
		MarkedAt:  time.Now(),
	}
}

func TestAttendanceCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAttendanceStore()

	first, created, err := s.Create(ctx, record("sess-1", "student-1"))
	require.NoError(t, err)
	assert.True(t, created)

	// same pair again: the original record wins
	second, created, err := s.Create(ctx, record("sess-1", "student-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	records, err := s.FindBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceCreateConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAttendanceStore()

	const callers = 16
	var wg sync.WaitGroup
	createdCount := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.Create(ctx, record("sess-1", "student-1"))
			assert.NoError(t, err)
			createdCount <- created
		}()
	}
	wg.Wait()
	close(createdCount)

	inserted := 0
	for created := range createdCount {
		if created {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)

	records, err := s.FindBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAttendanceStore()

	rec, _, err := s.Create(ctx, record("sess-1", "student-1"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))

	_, ok, err := s.FindBySessionAndStudent(ctx, "sess-1", "student-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting the record reopens the pair for a fresh mark
	_, created, err := s.Create(ctx, record("sess-1", "student-1"))
	require.NoError(t, err)
	assert.True(t, created)
}
