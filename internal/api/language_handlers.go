package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLanguageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLanguage",
		Method:      http.MethodGet,
		Path:        "/api/v1/language",
		Summary:     "Get store language",
		Description: "Returns the active store scrape language and the supported vocabulary",
		Tags:        []string{"Language"},
	}, s.handleGetLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "setLanguage",
		Method:      http.MethodPut,
		Path:        "/api/v1/language",
		Summary:     "Set store language",
		Description: "Changes the active store scrape language. On a real change every scraped entry is invalidated and a library refresh is announced.",
		Tags:        []string{"Language"},
	}, s.handleSetLanguage)
}

// === DTOs ===

// LanguageOptionResponse is one supported language.
type LanguageOptionResponse struct {
	Code string `json:"code" doc:"Language code"`
	Name string `json:"name" doc:"English display name"`
}

// LanguageResponse describes the active language and the vocabulary.
type LanguageResponse struct {
	Active    string                   `json:"active" doc:"Active store scrape language"`
	Supported []LanguageOptionResponse `json:"supported" doc:"Supported languages"`
}

// GetLanguageOutput wraps the language response for Huma.
type GetLanguageOutput struct {
	Body LanguageResponse
}

// SetLanguageRequest contains the requested language.
type SetLanguageRequest struct {
	Language string `json:"language" maxLength:"40" doc:"Storefront language code, a locale string like de_DE, or \"system\" for the OS locale"`
}

// SetLanguageInput wraps the set-language request body.
type SetLanguageInput struct {
	Body SetLanguageRequest
}

// SetLanguageResponse reports the outcome of a language change.
type SetLanguageResponse struct {
	Language string `json:"language" doc:"Language now active"`
	Changed  bool   `json:"changed" doc:"Whether the active language actually changed"`
}

// SetLanguageOutput wraps the set-language response for Huma.
type SetLanguageOutput struct {
	Body SetLanguageResponse
}

// === Handlers ===

func (s *Server) handleGetLanguage(ctx context.Context, _ *struct{}) (*GetLanguageOutput, error) {
	info := s.services.Language.Get(ctx)

	resp := LanguageResponse{
		Active:    string(info.Active),
		Supported: make([]LanguageOptionResponse, 0, len(info.Supported)),
	}
	for _, opt := range info.Supported {
		resp.Supported = append(resp.Supported, LanguageOptionResponse{
			Code: string(opt.Code),
			Name: opt.Name,
		})
	}

	return &GetLanguageOutput{Body: resp}, nil
}

func (s *Server) handleSetLanguage(ctx context.Context, input *SetLanguageInput) (*SetLanguageOutput, error) {
	change, err := s.services.Language.Set(ctx, input.Body.Language)
	if err != nil {
		return nil, err
	}

	return &SetLanguageOutput{Body: SetLanguageResponse{
		Language: string(change.Language),
		Changed:  change.Changed,
	}}, nil
}
