package store

import (
	"context"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

// Backend persists the catalog as a single snapshot. The store keeps the
// authoritative state in memory; a backend only needs to round-trip whole
// snapshots, never individual games.
//
// Load returns an empty snapshot (not an error) when no data exists yet.
// Save replaces the stored snapshot completely; implementations must not
// leave a partially written snapshot behind on failure.
type Backend interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap *domain.Snapshot) error
	Close() error
}
