package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// PostgresTokenStore is the durable SessionTokenStore.
type PostgresTokenStore struct {
	db *sql.DB
}

// NewPostgresTokenStore creates a new Postgres session token store.
func NewPostgresTokenStore(db *sql.DB) *PostgresTokenStore {
	return &PostgresTokenStore{db: db}
}

// Save persists the token. Tokens are immutable once saved.
func (s *PostgresTokenStore) Save(ctx context.Context, token core.SessionToken) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO qr_sessions (id, token, subject_id, faculty_id, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, token.ID, token.Token, token.SubjectID, token.FacultyID, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

func (s *PostgresTokenStore) scanToken(row *sql.Row) (core.SessionToken, error) {
	var token core.SessionToken
	err := row.Scan(&token.ID, &token.Token, &token.SubjectID, &token.FacultyID, &token.CreatedAt, &token.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SessionToken{}, core.ErrTokenNotFound
	}
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("failed to load session token: %w", err)
	}
	return token, nil
}

// FindByValue looks a token up by its opaque value.
func (s *PostgresTokenStore) FindByValue(ctx context.Context, tokenValue string) (core.SessionToken, error) {
	return s.scanToken(s.db.QueryRowContext(ctx, `
        SELECT id, token, subject_id, faculty_id, created_at, expires_at
        FROM qr_sessions WHERE token = $1
    `, tokenValue))
}

// FindByID looks a token up by its record ID.
func (s *PostgresTokenStore) FindByID(ctx context.Context, id string) (core.SessionToken, error) {
	return s.scanToken(s.db.QueryRowContext(ctx, `
        SELECT id, token, subject_id, faculty_id, created_at, expires_at
        FROM qr_sessions WHERE id = $1
    `, id))
}

// FindByFaculty returns all tokens issued by the given faculty member,
// newest first.
func (s *PostgresTokenStore) FindByFaculty(ctx context.Context, facultyID string) ([]core.SessionToken, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, token, subject_id, faculty_id, created_at, expires_at
        FROM qr_sessions WHERE faculty_id = $1
        ORDER BY created_at DESC
    `, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []core.SessionToken
	for rows.Next() {
		var token core.SessionToken
		if err := rows.Scan(&token.ID, &token.Token, &token.SubjectID, &token.FacultyID, &token.CreatedAt, &token.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, token)
	}
	return out, rows.Err()
}

// DeleteExpired removes tokens whose expiry is before the cutoff.
// Attendance rows reference their session, so only sessions old enough
// to have no retention value should be swept; the cleanup service passes
// a cutoff well past the expiry.
func (s *PostgresTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM qr_sessions
        WHERE expires_at < $1
          AND NOT EXISTS (SELECT 1 FROM attendance WHERE attendance.qr_session_id = qr_sessions.id)
    `, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

var _ ports.SessionTokenStore = (*PostgresTokenStore)(nil)
