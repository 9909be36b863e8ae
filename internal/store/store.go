// Package store implements the in-memory game catalog and its snapshot
// persistence. The authoritative state is a map of games guarded by a
// read-write lock; pluggable backends persist the whole catalog as one
// snapshot.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/lang"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
)

// EventEmitter is the interface for emitting store events.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on the search
// implementation.
type SearchIndexer interface {
	IndexGame(ctx context.Context, game *domain.Game) error
	DeleteGame(ctx context.Context, id int64) error
	RebuildIndex(ctx context.Context, games []*domain.Game) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexGame is a no-op.
func (NoopSearchIndexer) IndexGame(context.Context, *domain.Game) error { return nil }

// DeleteGame is a no-op.
func (NoopSearchIndexer) DeleteGame(context.Context, int64) error { return nil }

// RebuildIndex is a no-op.
func (NoopSearchIndexer) RebuildIndex(context.Context, []*domain.Game) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store is the in-memory game catalog.
//
// A single read-write lock guards the games map, the active language, the
// completion-update marker and the aggregate cache. Queries take the read
// lock; feed merges, the language workflow and snapshot import take the
// write lock. Aggregate computation takes the write lock when it has to
// fill a cold slot. Snapshot saves clone the state under the read lock and
// write to the backend outside it.
type Store struct {
	mu                   sync.RWMutex
	games                map[int64]*domain.Game
	activeLanguage       lang.Code
	lastCompletionUpdate int64
	aggregates           aggregateCache

	// saveMu serializes backend writes so overlapping saves cannot
	// interleave their snapshots.
	saveMu sync.Mutex

	backend       Backend
	logger        *slog.Logger
	eventEmitter  EventEmitter
	searchIndexer SearchIndexer
	workingSet    WorkingSetProvider
	reacquirer    Reacquirer
}

// New creates a Store backed by the given snapshot backend. The existing
// snapshot is loaded into memory; a backend with no data yields an empty
// catalog.
func New(ctx context.Context, backend Backend, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap.Normalize()

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if emitter == nil {
		emitter = NewNoopEmitter()
	}

	s := &Store{
		games:                snap.Games,
		activeLanguage:       snap.ActiveLanguage,
		lastCompletionUpdate: snap.LastCompletionUpdate,
		backend:              backend,
		logger:               logger,
		eventEmitter:         emitter,
		searchIndexer:        NewNoopSearchIndexer(),
		reacquirer:           NewNoopReacquirer(),
	}

	logger.Info("Snapshot loaded",
		"games", len(s.games),
		"language", s.activeLanguage,
	)

	return s, nil
}

// Close closes the underlying snapshot backend.
func (s *Store) Close() error {
	s.logger.Info("Closing store")
	return s.backend.Close()
}

// SetSearchIndexer sets the search indexer used for maintaining the search
// index. Set after construction to avoid circular dependencies.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// SetWorkingSetProvider sets the provider consulted by the language
// workflow for the ids to hand to the reacquirer. When unset, every
// non-sentinel game is considered part of the working set.
func (s *Store) SetWorkingSetProvider(provider WorkingSetProvider) {
	s.workingSet = provider
}

// SetReacquirer sets the collaborator that refreshes store data for games
// after their language-scoped fields were cleared.
func (s *Store) SetReacquirer(r Reacquirer) {
	s.reacquirer = r
}

// Save writes the full catalog to the backend as one snapshot. The state
// is cloned under the read lock, so queries may proceed while the backend
// writes; mutations block until the clone is taken.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.backend.Save(ctx, snap); err != nil {
		return err
	}

	s.logger.Info("Snapshot saved", "games", len(snap.Games))
	s.eventEmitter.Emit(sse.NewSnapshotSavedEvent(len(snap.Games)))

	return nil
}

// snapshotLocked deep-copies the persistent state. Callers must hold at
// least the read lock. Aggregate slots are derived data and stay out of
// the snapshot.
func (s *Store) snapshotLocked() *domain.Snapshot {
	games := make(map[int64]*domain.Game, len(s.games))
	for id, g := range s.games {
		games[id] = g.Clone()
	}
	return &domain.Snapshot{
		Games:                games,
		ActiveLanguage:       s.activeLanguage,
		LastCompletionUpdate: s.lastCompletionUpdate,
	}
}

// Count returns the number of games in the catalog.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// ActiveLanguage returns the store's current language.
func (s *Store) ActiveLanguage() lang.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLanguage
}

// LastCompletionUpdate returns the unix time of the last completion-time
// merge, 0 if none has run.
func (s *Store) LastCompletionUpdate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCompletionUpdate
}

// Stats summarizes the store for health and info endpoints.
type Stats struct {
	Games                int       `json:"games"`
	ActiveLanguage       lang.Code `json:"active_language"`
	LastCompletionUpdate int64     `json:"last_completion_update"`
}

// Stats returns a point-in-time summary of the catalog.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Games:                len(s.games),
		ActiveLanguage:       s.activeLanguage,
		LastCompletionUpdate: s.lastCompletionUpdate,
	}
}
