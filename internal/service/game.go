// Package service provides the business logic layer between the HTTP API,
// the drop-folder processor, and the catalog store.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/normalize"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

const (
	// DefaultListLimit is the page size used when a listing request does
	// not specify one.
	DefaultListLimit = 50

	// MaxListLimit caps a single listing page.
	MaxListLimit = 500
)

// GameService serves catalog reads: listings, single lookups, and
// parent-chain resolved views.
type GameService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewGameService creates a new game service.
func NewGameService(st *store.Store, logger *slog.Logger) *GameService {
	return &GameService{
		store:  st,
		logger: logger,
	}
}

// ListGamesParams filters and pages a catalog listing.
type ListGamesParams struct {
	// Mask restricts results to games whose classification intersects it.
	Mask domain.Classification

	// Name, when non-empty, keeps only games whose name contains it,
	// compared case- and diacritic-insensitively.
	Name string

	Limit  int
	Offset int
}

// GameSummary is a listing row. Full records come from GetGame.
type GameSummary struct {
	ID    int64                 `json:"id"`
	Name  string                `json:"name"`
	Class domain.Classification `json:"class"`
}

// GameList is one page of catalog entries in ascending id order.
type GameList struct {
	Games  []GameSummary `json:"games"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListGames returns a page of the catalog. Total counts every match, not
// just the returned page.
func (s *GameService) ListGames(ctx context.Context, params ListGamesParams) *GameList {
	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	if params.Limit > MaxListLimit {
		params.Limit = MaxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	games := s.store.ListGames(params.Mask)

	if term := normalize.SearchTerm(params.Name); term != "" {
		filtered := games[:0]
		for _, g := range games {
			if strings.Contains(normalize.SearchTerm(g.Name), term) {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}

	total := len(games)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)

	summaries := make([]GameSummary, 0, end-start)
	for _, g := range games[start:end] {
		summaries = append(summaries, GameSummary{ID: g.ID, Name: g.Name, Class: g.Class})
	}

	s.logger.Debug("listed games",
		"total", total,
		"returned", len(summaries),
		"offset", params.Offset)

	return &GameList{
		Games:  summaries,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
}

// GetGame returns the stored record without parent-chain fallback.
func (s *GameService) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	return s.store.GetGame(id)
}

// GetResolvedGame returns the game with empty descriptive fields filled
// from its parent chain. A non-positive depth uses the store default.
func (s *GameService) GetResolvedGame(ctx context.Context, id int64, depth int, tagFallback bool) (*domain.Game, error) {
	if depth <= 0 {
		depth = store.DefaultResolveDepth
	}
	return s.store.ResolvedGame(id, depth, tagFallback)
}
