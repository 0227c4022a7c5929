package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// PostgresGeofenceStore holds the singleton campus location row.
type PostgresGeofenceStore struct {
	db *sql.DB
}

// NewPostgresGeofenceStore creates a new Postgres geofence store.
func NewPostgresGeofenceStore(db *sql.DB) *PostgresGeofenceStore {
	return &PostgresGeofenceStore{db: db}
}

// Get returns the config and whether one has been set. A missing row is
// not an error; callers fail closed on ok=false.
func (s *PostgresGeofenceStore) Get(ctx context.Context) (core.GeofenceConfig, bool, error) {
	var cfg core.GeofenceConfig
	err := s.db.QueryRowContext(ctx, `
        SELECT latitude, longitude, radius_in_meters FROM college_location WHERE id = 1
    `).Scan(&cfg.Latitude, &cfg.Longitude, &cfg.RadiusInMeters)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GeofenceConfig{}, false, nil
	}
	if err != nil {
		return core.GeofenceConfig{}, false, fmt.Errorf("failed to load campus location: %w", err)
	}
	return cfg, true, nil
}

// Set replaces the campus location.
func (s *PostgresGeofenceStore) Set(ctx context.Context, cfg core.GeofenceConfig) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO college_location (id, latitude, longitude, radius_in_meters)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE
        SET latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            radius_in_meters = EXCLUDED.radius_in_meters
    `, cfg.Latitude, cfg.Longitude, cfg.RadiusInMeters)
	if err != nil {
		return fmt.Errorf("failed to save campus location: %w", err)
	}
	return nil
}

var _ ports.GeofenceStore = (*PostgresGeofenceStore)(nil)
