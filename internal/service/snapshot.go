package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// SnapshotService exposes explicit persistence and whole-store
// export/import.
type SnapshotService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(st *store.Store, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{
		store:  st,
		logger: logger,
	}
}

// SaveResult reports an explicit save.
type SaveResult struct {
	Games int `json:"games"`
}

// ImportResult reports a completed import. JobID ties the request to the
// import's log lines.
type ImportResult struct {
	JobID string `json:"job_id"`
	Games int    `json:"games"`
}

// Save persists the store to its backend.
func (s *SnapshotService) Save(ctx context.Context) (*SaveResult, error) {
	if err := s.store.Save(ctx); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &SaveResult{Games: s.store.Count()}, nil
}

// Export returns a deep copy of the store as one snapshot document.
func (s *SnapshotService) Export(ctx context.Context) *domain.Snapshot {
	return s.store.ExportSnapshot()
}

// Import replaces the store's state with the given snapshot and persists
// it.
func (s *SnapshotService) Import(ctx context.Context, snap *domain.Snapshot) (*ImportResult, error) {
	jobID := uuid.NewString()

	incoming := 0
	if snap != nil {
		incoming = len(snap.Games)
	}
	s.logger.Info("snapshot import started", "job_id", jobID, "games", incoming)

	count, err := s.store.ImportSnapshot(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	s.logger.Info("snapshot import finished", "job_id", jobID, "games", count)
	return &ImportResult{JobID: jobID, Games: count}, nil
}
