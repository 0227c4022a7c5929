package store

import (
	"context"
	"sync"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// MemoryGeofenceStore holds the singleton campus location in memory.
// Reads may trail an admin write but never invent an unset config: the
// ok flag is false until the first Set.
type MemoryGeofenceStore struct {
	cfg core.GeofenceConfig
	set bool
	mu  sync.RWMutex
}

// NewMemoryGeofenceStore creates a new in-memory geofence store.
func NewMemoryGeofenceStore() *MemoryGeofenceStore {
	return &MemoryGeofenceStore{}
}

// Get returns the config and whether one has been set.
func (s *MemoryGeofenceStore) Get(ctx context.Context) (core.GeofenceConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.set, nil
}

// Set replaces the campus location.
func (s *MemoryGeofenceStore) Set(ctx context.Context, cfg core.GeofenceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.set = true
	return nil
}

var _ ports.GeofenceStore = (*MemoryGeofenceStore)(nil)
