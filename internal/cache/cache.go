// Package cache persists discovery snapshots between invocations so a CLI
// run can rebuild the registry without re-sampling the store. The registry
// is always rebuildable from discovery alone; a missing or stale snapshot
// is never an error worth failing over.
package cache

import (
	"context"
	"errors"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/registry"
)

// ErrNoSnapshot indicates no snapshot is stored for the database.
var ErrNoSnapshot = errors.New("cache: no snapshot stored")

// Cache stores and retrieves discovery snapshots.
type Cache interface {
	// Save stores the snapshot, replacing any previous one.
	Save(ctx context.Context, snap *registry.Snapshot) error

	// Load retrieves the stored snapshot, or ErrNoSnapshot when absent.
	Load(ctx context.Context) (*registry.Snapshot, error)

	// Close releases the underlying connection.
	Close() error
}

// New builds the configured cache implementation: Redis-backed when
// enabled, otherwise a no-op.
func New(cfg *config.CacheConfig, database string) Cache {
	if cfg == nil || !cfg.Enabled {
		return Noop{}
	}
	return NewRedis(cfg, database)
}

// Noop is the disabled cache: saves vanish and loads always miss.
type Noop struct{}

func (Noop) Save(ctx context.Context, snap *registry.Snapshot) error { return nil }

func (Noop) Load(ctx context.Context) (*registry.Snapshot, error) {
	return nil, ErrNoSnapshot
}

func (Noop) Close() error { return nil }
