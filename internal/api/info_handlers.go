package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInfoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getServerInfo",
		Method:      http.MethodGet,
		Path:        "/api/v1/info",
		Summary:     "Get server info",
		Description: "Returns server identity and catalog summary",
		Tags:        []string{"Info"},
	}, s.handleGetServerInfo)
}

// === DTOs ===

// ServerInfoResponse describes the server and its catalog.
type ServerInfoResponse struct {
	Name                 string `json:"name" doc:"Server name"`
	Version              string `json:"version" doc:"Server version"`
	Games                int    `json:"games" doc:"Games in the catalog"`
	ActiveLanguage       string `json:"active_language" doc:"Active store scrape language"`
	LastCompletionUpdate int64  `json:"last_completion_update" doc:"Unix time of the last completion merge, 0 if never"`
}

// ServerInfoOutput wraps the info response for Huma.
type ServerInfoOutput struct {
	Body ServerInfoResponse
}

// === Handlers ===

func (s *Server) handleGetServerInfo(ctx context.Context, _ *struct{}) (*ServerInfoOutput, error) {
	stats := s.store.Stats()

	return &ServerInfoOutput{Body: ServerInfoResponse{
		Name:                 s.serverName,
		Version:              ServerVersion,
		Games:                stats.Games,
		ActiveLanguage:       string(stats.ActiveLanguage),
		LastCompletionUpdate: stats.LastCompletionUpdate,
	}}, nil
}
