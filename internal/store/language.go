package store

import (
	"context"
	"slices"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/lang"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
)

// WorkingSetProvider names the games whose store data should be
// re-acquired after a language change. When none is set, every
// non-sentinel game is in the working set.
type WorkingSetProvider interface {
	WorkingSet() []int64
}

// Reacquirer refreshes store data for games whose language-scoped fields
// were cleared. The language workflow blocks on it before persisting, so
// freshly acquired data lands in the same snapshot.
type Reacquirer interface {
	Reacquire(ctx context.Context, ids []int64) error
}

// NoopReacquirer is a no-op implementation for testing.
type NoopReacquirer struct{}

// Reacquire is a no-op.
func (NoopReacquirer) Reacquire(context.Context, []int64) error { return nil }

// NewNoopReacquirer creates a new no-op reacquirer for testing.
func NewNoopReacquirer() Reacquirer {
	return NoopReacquirer{}
}

// SetLanguage switches the store to the requested language. The symbolic
// "system" value resolves through the host locale.
//
// When the resolved language already matches the active one this is a
// no-op: nothing is cleared and nothing is persisted. Otherwise every
// non-sentinel game has its language-scoped fields cleared and its store
// scrape marked very stale, all aggregate slots are invalidated, the
// working set is handed to the reacquirer, and the store is saved.
// Returns the resolved language and whether anything changed.
func (s *Store) SetLanguage(ctx context.Context, requested string) (lang.Code, bool, error) {
	code, err := lang.Resolve(requested)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	if code == s.activeLanguage {
		s.mu.Unlock()
		s.logger.Debug("Language unchanged", "language", code)
		return code, false, nil
	}

	s.activeLanguage = code
	cleared := 0
	for _, g := range s.games {
		if g.IsSentinel() {
			continue
		}
		g.ClearLanguageData()
		cleared++
	}
	s.invalidateAllLocked()

	var ids []int64
	if s.workingSet == nil {
		ids = make([]int64, 0, cleared)
		for id := range s.games {
			if id > 0 {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
	}

	clones := make([]*domain.Game, 0, len(s.games))
	for _, g := range s.games {
		clones = append(clones, g.Clone())
	}
	s.mu.Unlock()

	if s.workingSet != nil {
		ids = s.workingSet.WorkingSet()
	}

	s.logger.Info("Store language changed",
		"language", code,
		"cleared", cleared,
		"working_set", len(ids),
	)
	s.eventEmitter.Emit(sse.NewLanguageChangedEvent(code, cleared))

	if err := s.searchIndexer.RebuildIndex(ctx, clones); err != nil {
		s.logger.Warn("Failed to rebuild search index after language change", "error", err)
	}

	// Reacquisition is best-effort; the save still runs so the cleared
	// state survives for a later scrape.
	if err := s.reacquirer.Reacquire(ctx, ids); err != nil {
		s.logger.Error("Reacquisition after language change failed", "error", err)
	}

	if err := s.Save(ctx); err != nil {
		return code, true, err
	}

	s.eventEmitter.Emit(sse.NewLibraryRefreshNeededEvent("language_changed", ids))
	return code, true, nil
}
