package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// PostgresSubjectDirectory resolves subject names from the portal's
// subjects table.
type PostgresSubjectDirectory struct {
	db *sql.DB
}

// NewPostgresSubjectDirectory creates a new Postgres subject directory.
func NewPostgresSubjectDirectory(db *sql.DB) *PostgresSubjectDirectory {
	return &PostgresSubjectDirectory{db: db}
}

// SubjectName returns the display name for a subject ID.
func (s *PostgresSubjectDirectory) SubjectName(ctx context.Context, subjectID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM subjects WHERE id = $1`, subjectID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("subject %s not found", subjectID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve subject: %w", err)
	}
	return name, nil
}

// StaticSubjectDirectory is a fixed map of subject names, used in tests
// and local development.
type StaticSubjectDirectory map[string]string

// SubjectName returns the display name for a subject ID.
func (d StaticSubjectDirectory) SubjectName(ctx context.Context, subjectID string) (string, error) {
	name, ok := d[subjectID]
	if !ok {
		return "", fmt.Errorf("subject %s not found", subjectID)
	}
	return name, nil
}

var (
	_ ports.SubjectDirectory = (*PostgresSubjectDirectory)(nil)
	_ ports.SubjectDirectory = (StaticSubjectDirectory)(nil)
)
