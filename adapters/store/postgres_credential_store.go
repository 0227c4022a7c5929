package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// PostgresCredentialStore is the durable CredentialRegistry.
type PostgresCredentialStore struct {
	db *sql.DB
}

// NewPostgresCredentialStore creates a new Postgres credential registry.
func NewPostgresCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

// Enroll upserts the user's single credential row.
func (s *PostgresCredentialStore) Enroll(ctx context.Context, cred core.Credential) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO user_authenticators (user_id, credential_id, public_key, sign_count, enrolled_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE
        SET credential_id = EXCLUDED.credential_id,
            public_key = EXCLUDED.public_key,
            sign_count = EXCLUDED.sign_count,
            enrolled_at = EXCLUDED.enrolled_at
    `, cred.UserID, cred.CredentialID, cred.PublicKey, cred.SignCount, cred.EnrolledAt)
	if err != nil {
		return fmt.Errorf("failed to enroll credential: %w", err)
	}
	return nil
}

// Lookup finds a credential by its opaque ID.
func (s *PostgresCredentialStore) Lookup(ctx context.Context, credentialID []byte) (core.Credential, error) {
	var cred core.Credential
	err := s.db.QueryRowContext(ctx, `
        SELECT user_id, credential_id, public_key, sign_count, enrolled_at
        FROM user_authenticators
        WHERE credential_id = $1
    `, credentialID).Scan(&cred.UserID, &cred.CredentialID, &cred.PublicKey, &cred.SignCount, &cred.EnrolledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Credential{}, core.ErrCredentialNotFound
	}
	if err != nil {
		return core.Credential{}, fmt.Errorf("failed to look up credential: %w", err)
	}
	return cred, nil
}

// LookupByUser finds the user's registered credential.
func (s *PostgresCredentialStore) LookupByUser(ctx context.Context, userID string) (core.Credential, error) {
	var cred core.Credential
	err := s.db.QueryRowContext(ctx, `
        SELECT user_id, credential_id, public_key, sign_count, enrolled_at
        FROM user_authenticators
        WHERE user_id = $1
    `, userID).Scan(&cred.UserID, &cred.CredentialID, &cred.PublicKey, &cred.SignCount, &cred.EnrolledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Credential{}, core.ErrNoCredential
	}
	if err != nil {
		return core.Credential{}, fmt.Errorf("failed to look up credential: %w", err)
	}
	return cred, nil
}

// UpdateSignCount persists the authenticator counter.
func (s *PostgresCredentialStore) UpdateSignCount(ctx context.Context, credentialID []byte, count uint32) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE user_authenticators SET sign_count = $1 WHERE credential_id = $2
    `, count, credentialID)
	if err != nil {
		return fmt.Errorf("failed to update sign count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCredentialNotFound
	}
	return nil
}

// Reset deletes the user's credential.
func (s *PostgresCredentialStore) Reset(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
        DELETE FROM user_authenticators WHERE user_id = $1
    `, userID)
	if err != nil {
		return fmt.Errorf("failed to reset credential: %w", err)
	}
	return nil
}

var _ ports.CredentialRegistry = (*PostgresCredentialStore)(nil)
