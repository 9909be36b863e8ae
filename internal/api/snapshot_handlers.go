package api

import (
	"context"
	"encoding/json/v2"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
)

func (s *Server) registerSnapshotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "saveSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot/save",
		Summary:     "Save snapshot",
		Description: "Persists the in-memory catalog to the storage backend",
		Tags:        []string{"Snapshot"},
	}, s.handleSaveSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshot/export",
		Summary:     "Export snapshot",
		Description: "Returns the full catalog as a portable snapshot document",
		Tags:        []string{"Snapshot"},
	}, s.handleExportSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "importSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot/import",
		Summary:     "Import snapshot",
		Description: "Replaces the catalog with the posted snapshot document and persists it. Accepts the data object of a previous export.",
		Tags:        []string{"Snapshot"},
	}, s.handleImportSnapshot)
}

// === DTOs ===

// SaveSnapshotResponse reports a persisted snapshot.
type SaveSnapshotResponse struct {
	Games int `json:"games" doc:"Games persisted"`
}

// SaveSnapshotOutput wraps the save response for Huma.
type SaveSnapshotOutput struct {
	Body SaveSnapshotResponse
}

// ExportSnapshotOutput wraps the exported snapshot document.
type ExportSnapshotOutput struct {
	Body *domain.Snapshot
}

// ImportSnapshotInput carries the raw snapshot document. The body is
// decoded by hand because game IDs are map keys, which OpenAPI schema
// generation cannot express.
type ImportSnapshotInput struct {
	RawBody []byte `doc:"Snapshot document as produced by the export endpoint"`
}

// ImportSnapshotResponse reports a completed import.
type ImportSnapshotResponse struct {
	JobID string `json:"job_id" doc:"Server-assigned import job ID"`
	Games int    `json:"games" doc:"Games in the catalog after the import"`
}

// ImportSnapshotOutput wraps the import response for Huma.
type ImportSnapshotOutput struct {
	Body ImportSnapshotResponse
}

// === Handlers ===

func (s *Server) handleSaveSnapshot(ctx context.Context, _ *struct{}) (*SaveSnapshotOutput, error) {
	res, err := s.services.Snapshot.Save(ctx)
	if err != nil {
		return nil, err
	}

	return &SaveSnapshotOutput{Body: SaveSnapshotResponse{Games: res.Games}}, nil
}

func (s *Server) handleExportSnapshot(ctx context.Context, _ *struct{}) (*ExportSnapshotOutput, error) {
	return &ExportSnapshotOutput{Body: s.services.Snapshot.Export(ctx)}, nil
}

func (s *Server) handleImportSnapshot(ctx context.Context, input *ImportSnapshotInput) (*ImportSnapshotOutput, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(input.RawBody, &snap); err != nil {
		return nil, errors.SnapshotParse("snapshot document is malformed", err)
	}

	res, err := s.services.Snapshot.Import(ctx, &snap)
	if err != nil {
		return nil, err
	}

	return &ImportSnapshotOutput{Body: ImportSnapshotResponse{
		JobID: res.JobID,
		Games: res.Games,
	}}, nil
}
