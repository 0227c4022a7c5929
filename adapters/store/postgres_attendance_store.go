package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// PostgresAttendanceStore is the durable AttendanceStore. The unique
// constraint on (qr_session_id, student_id) serializes concurrent
// duplicate submissions.
type PostgresAttendanceStore struct {
	db *sql.DB
}

// NewPostgresAttendanceStore creates a new Postgres attendance store.
func NewPostgresAttendanceStore(db *sql.DB) *PostgresAttendanceStore {
	return &PostgresAttendanceStore{db: db}
}

// Create inserts the record; on conflict the existing row wins and is
// returned with created=false.
func (s *PostgresAttendanceStore) Create(ctx context.Context, rec core.AttendanceRecord) (core.AttendanceRecord, bool, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO attendance (id, qr_session_id, student_id, status, marked_at, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (qr_session_id, student_id) DO NOTHING
    `, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.MarkedAt, rec.Latitude, rec.Longitude)
	if err != nil {
		return core.AttendanceRecord{}, false, fmt.Errorf("failed to create attendance record: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 1 {
		return rec, true, nil
	}

	existing, ok, err := s.FindBySessionAndStudent(ctx, rec.SessionID, rec.StudentID)
	if err != nil {
		return core.AttendanceRecord{}, false, err
	}
	if !ok {
		return core.AttendanceRecord{}, false, fmt.Errorf("attendance row vanished after conflict")
	}
	return existing, false, nil
}

// FindBySessionAndStudent returns the record for the pair, if any.
func (s *PostgresAttendanceStore) FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (core.AttendanceRecord, bool, error) {
	var rec core.AttendanceRecord
	err := s.db.QueryRowContext(ctx, `
        SELECT id, qr_session_id, student_id, status, marked_at, latitude, longitude
        FROM attendance WHERE qr_session_id = $1 AND student_id = $2
    `, sessionID, studentID).Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt, &rec.Latitude, &rec.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AttendanceRecord{}, false, nil
	}
	if err != nil {
		return core.AttendanceRecord{}, false, fmt.Errorf("failed to load attendance record: %w", err)
	}
	return rec, true, nil
}

// FindBySession returns all records for one attendance window.
func (s *PostgresAttendanceStore) FindBySession(ctx context.Context, sessionID string) ([]core.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, qr_session_id, student_id, status, marked_at, latitude, longitude
        FROM attendance WHERE qr_session_id = $1
        ORDER BY marked_at
    `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var out []core.AttendanceRecord
	for rows.Next() {
		var rec core.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt, &rec.Latitude, &rec.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a record by ID. Admin correction path only.
func (s *PostgresAttendanceStore) Delete(ctx context.Context, recordID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return nil
}

var _ ports.AttendanceStore = (*PostgresAttendanceStore)(nil)
