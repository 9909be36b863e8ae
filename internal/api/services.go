package api

import (
	"github.com/gameshelfapp/gameshelf-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Game      *service.GameService
	Ingest    *service.IngestService
	Tag       *service.TagService
	Aggregate *service.AggregateService
	Language  *service.LanguageService
	Snapshot  *service.SnapshotService
	Search    *service.SearchService
}
