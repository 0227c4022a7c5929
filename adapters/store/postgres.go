package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Schema is the durable-side DDL: registered authenticators, QR
// sessions, attendance and the singleton campus location. The unique
// constraint on (qr_session_id, student_id) is what collapses concurrent
// duplicate marks into one row.
const Schema = `
CREATE TABLE IF NOT EXISTS user_authenticators (
    user_id VARCHAR(64) PRIMARY KEY,
    credential_id BYTEA UNIQUE NOT NULL,
    public_key BYTEA NOT NULL,
    sign_count BIGINT NOT NULL DEFAULT 0,
    enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS qr_sessions (
    id UUID PRIMARY KEY,
    token VARCHAR(64) UNIQUE NOT NULL,
    subject_id VARCHAR(64) NOT NULL,
    faculty_id VARCHAR(64) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qr_sessions_faculty ON qr_sessions (faculty_id);

CREATE TABLE IF NOT EXISTS attendance (
    id UUID PRIMARY KEY,
    qr_session_id UUID NOT NULL REFERENCES qr_sessions(id) ON DELETE CASCADE,
    student_id VARCHAR(64) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'PRESENT',
    marked_at TIMESTAMPTZ NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    UNIQUE (qr_session_id, student_id)
);

CREATE TABLE IF NOT EXISTS subjects (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS college_location (
    id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    radius_in_meters DOUBLE PRECISION NOT NULL
);
`

// OpenPostgres connects to Postgres, verifies the connection and applies
// the schema.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if _, err = db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("error applying schema: %w", err)
	}

	return db, nil
}
