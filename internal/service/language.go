package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gameshelfapp/gameshelf-server/internal/lang"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// LanguageService reads and changes the store's active storefront
// language. Changing it runs the store's invalidation workflow, so the
// caller should expect a burst of follow-up events.
type LanguageService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLanguageService creates a new language service.
func NewLanguageService(st *store.Store, logger *slog.Logger) *LanguageService {
	return &LanguageService{
		store:  st,
		logger: logger,
	}
}

// LanguageOption is one supported storefront language.
type LanguageOption struct {
	Code lang.Code `json:"code"`
	Name string    `json:"name"`
}

// LanguageInfo reports the active language and the supported vocabulary.
type LanguageInfo struct {
	Active    lang.Code        `json:"active"`
	Supported []LanguageOption `json:"supported"`
}

// LanguageChange reports the outcome of a set request.
type LanguageChange struct {
	Language lang.Code `json:"language"`
	Changed  bool      `json:"changed"`
}

// Get returns the active language and the supported codes.
func (s *LanguageService) Get(ctx context.Context) *LanguageInfo {
	codes := lang.All()
	supported := make([]LanguageOption, 0, len(codes))
	for _, c := range codes {
		supported = append(supported, LanguageOption{Code: c, Name: c.DisplayName()})
	}
	return &LanguageInfo{
		Active:    s.store.ActiveLanguage(),
		Supported: supported,
	}
}

// Set switches the store to the requested language. Accepts concrete
// storefront codes and the symbolic "system" value. Setting the language
// the store already uses is a no-op with Changed false.
func (s *LanguageService) Set(ctx context.Context, requested string) (*LanguageChange, error) {
	code, changed, err := s.store.SetLanguage(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("set language %q: %w", requested, err)
	}

	if changed {
		s.logger.Info("store language changed", "language", code)
	}
	return &LanguageChange{Language: code, Changed: changed}, nil
}
