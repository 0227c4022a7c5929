package store

import (
	"context"
	"sync"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

type attendanceKey struct {
	sessionID string
	studentID string
}

// MemoryAttendanceStore is an in-memory implementation of the
// AttendanceStore interface. The pair index under the store mutex plays
// the role the unique constraint plays in the Postgres adapter.
type MemoryAttendanceStore struct {
	byPair map[attendanceKey]core.AttendanceRecord
	byID   map[string]attendanceKey
	mu     sync.RWMutex
}

// NewMemoryAttendanceStore creates a new in-memory attendance store.
func NewMemoryAttendanceStore() *MemoryAttendanceStore {
	return &MemoryAttendanceStore{
		byPair: make(map[attendanceKey]core.AttendanceRecord),
		byID:   make(map[string]attendanceKey),
	}
}

// Create inserts the record unless one already exists for the
// (session, student) pair; concurrent duplicates collapse into the
// existing record.
func (s *MemoryAttendanceStore) Create(ctx context.Context, rec core.AttendanceRecord) (core.AttendanceRecord, bool, error) {
	key := attendanceKey{rec.SessionID, rec.StudentID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byPair[key]; ok {
		return existing, false, nil
	}

	s.byPair[key] = rec
	s.byID[rec.ID] = key
	return rec, true, nil
}

// FindBySessionAndStudent returns the record for the pair, if any.
func (s *MemoryAttendanceStore) FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (core.AttendanceRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byPair[attendanceKey{sessionID, studentID}]
	return rec, ok, nil
}

// FindBySession returns all records for one attendance window.
func (s *MemoryAttendanceStore) FindBySession(ctx context.Context, sessionID string) ([]core.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.AttendanceRecord
	for key, rec := range s.byPair {
		if key.sessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete removes a record by ID. Admin correction path only.
func (s *MemoryAttendanceStore) Delete(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[recordID]
	if !ok {
		return nil
	}
	delete(s.byPair, key)
	delete(s.byID, recordID)
	return nil
}

var _ ports.AttendanceStore = (*MemoryAttendanceStore)(nil)
