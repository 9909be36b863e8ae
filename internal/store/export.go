package store

import (
	"context"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/lang"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
)

// ExportSnapshot returns a deep copy of the persistent state, suitable
// for streaming to a backup client.
func (s *Store) ExportSnapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ImportSnapshot replaces the whole catalog with the given snapshot,
// rebuilds the search index and saves. The store takes ownership of snap.
// Returns the number of games imported.
func (s *Store) ImportSnapshot(ctx context.Context, snap *domain.Snapshot) (int, error) {
	if snap == nil {
		return 0, errors.Validation("snapshot is required")
	}
	snap.Normalize()
	if !lang.IsSupported(snap.ActiveLanguage) {
		return 0, errors.Validationf("snapshot has unsupported language %q", snap.ActiveLanguage)
	}

	s.mu.Lock()
	s.games = snap.Games
	s.activeLanguage = snap.ActiveLanguage
	s.lastCompletionUpdate = snap.LastCompletionUpdate
	s.invalidateAllLocked()
	count := len(s.games)

	clones := make([]*domain.Game, 0, count)
	for _, g := range s.games {
		clones = append(clones, g.Clone())
	}
	s.mu.Unlock()

	s.logger.Info("Snapshot imported", "games", count, "language", snap.ActiveLanguage)

	if err := s.searchIndexer.RebuildIndex(ctx, clones); err != nil {
		s.logger.Warn("Failed to rebuild search index after import", "error", err)
	}

	if err := s.Save(ctx); err != nil {
		return count, err
	}

	s.eventEmitter.Emit(sse.NewLibraryRefreshNeededEvent("snapshot_imported", nil))
	return count, nil
}
