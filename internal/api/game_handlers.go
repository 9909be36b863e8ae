package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/service"
)

func (s *Server) registerGameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games",
		Summary:     "List games",
		Description: "Returns a paginated catalog listing, optionally filtered by classification and name",
		Tags:        []string{"Games"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/{id}",
		Summary:     "Get game",
		Description: "Returns a single catalog entry, optionally with inherited fields resolved through the parent chain",
		Tags:        []string{"Games"},
	}, s.handleGetGame)
}

// === DTOs ===

// ListGamesInput contains parameters for listing the catalog.
type ListGamesInput struct {
	Types  string `query:"types" maxLength:"100" doc:"Comma-separated classifications to include (game,dlc,demo,application,tool,media,music,unknown). Omit for all."`
	Name   string `query:"name" maxLength:"200" doc:"Case- and diacritic-insensitive name substring filter"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" doc:"Max results (default 50)"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset (default 0)"`
}

// GameSummaryResponse is a single row in a catalog listing.
type GameSummaryResponse struct {
	ID    int64  `json:"id" doc:"Game ID"`
	Name  string `json:"name" doc:"Display name"`
	Class string `json:"class" doc:"Classification (game, dlc, demo, ...)"`
}

// GameListResponse contains a page of catalog entries.
type GameListResponse struct {
	Games  []GameSummaryResponse `json:"games" doc:"Catalog entries in ascending ID order"`
	Total  int                   `json:"total" doc:"Total entries matching the filter"`
	Limit  int                   `json:"limit" doc:"Applied page size"`
	Offset int                   `json:"offset" doc:"Applied offset"`
}

// ListGamesOutput wraps the listing response for Huma.
type ListGamesOutput struct {
	Body GameListResponse
}

// GetGameInput contains parameters for fetching a single game.
type GetGameInput struct {
	ID          int64 `path:"id" doc:"Game ID"`
	Resolve     bool  `query:"resolve" doc:"Resolve empty fields through the parent chain"`
	Depth       int   `query:"depth" minimum:"0" maximum:"10" doc:"Max parent hops when resolving (default 3)"`
	TagFallback bool  `query:"tag_fallback" doc:"Fall back to tags when genres stay empty after resolution"`
}

// GameResponse contains a full catalog entry in API responses.
type GameResponse struct {
	ID              int64                  `json:"id" doc:"Game ID"`
	Name            string                 `json:"name,omitempty" doc:"Display name"`
	Class           string                 `json:"class" doc:"Classification"`
	ParentID        int64                  `json:"parent_id,omitempty" doc:"Parent game ID for DLC and demos"`
	Platforms       []string               `json:"platforms,omitempty" doc:"Supported platforms"`
	Developers      []string               `json:"developers,omitempty" doc:"Developer names"`
	Publishers      []string               `json:"publishers,omitempty" doc:"Publisher names"`
	Genres          []string               `json:"genres,omitempty" doc:"Genre names"`
	Flags           []string               `json:"flags,omitempty" doc:"Store category flags"`
	Tags            []string               `json:"tags,omitempty" doc:"Community tags, most popular first"`
	Languages       domain.LanguageSupport `json:"languages" doc:"Per-channel language support"`
	VR              domain.VRSupport       `json:"vr" doc:"VR hardware support"`
	ReleaseDate     string                 `json:"release_date,omitempty" doc:"Release date as scraped"`
	Completion      domain.CompletionTimes `json:"completion" doc:"Playtime estimates in minutes"`
	LastStoreScrape int64                  `json:"last_store_scrape" doc:"Unix time of the last store scrape, 0 never, 1 stale"`
	LastCacheUpdate int64                  `json:"last_cache_update" doc:"Unix time of the last app cache merge"`
}

// GetGameOutput wraps a single game response for Huma.
type GetGameOutput struct {
	Body GameResponse
}

// === Handlers ===

func (s *Server) handleListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	mask, err := domain.ParseClassMask(input.Types)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	list := s.services.Game.ListGames(ctx, service.ListGamesParams{
		Mask:   mask,
		Name:   input.Name,
		Limit:  input.Limit,
		Offset: input.Offset,
	})

	resp := GameListResponse{
		Games:  make([]GameSummaryResponse, 0, len(list.Games)),
		Total:  list.Total,
		Limit:  list.Limit,
		Offset: list.Offset,
	}
	for _, g := range list.Games {
		resp.Games = append(resp.Games, GameSummaryResponse{
			ID:    g.ID,
			Name:  g.Name,
			Class: g.Class.String(),
		})
	}

	return &ListGamesOutput{Body: resp}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	var (
		game *domain.Game
		err  error
	)
	if input.Resolve {
		game, err = s.services.Game.GetResolvedGame(ctx, input.ID, input.Depth, input.TagFallback)
	} else {
		game, err = s.services.Game.GetGame(ctx, input.ID)
	}
	if err != nil {
		return nil, err
	}

	return &GetGameOutput{Body: toGameResponse(game)}, nil
}

// toGameResponse maps a domain game onto the API shape.
func toGameResponse(g *domain.Game) GameResponse {
	return GameResponse{
		ID:              g.ID,
		Name:            g.Name,
		Class:           g.Class.String(),
		ParentID:        g.ParentID,
		Platforms:       g.Platforms.Names(),
		Developers:      g.Developers,
		Publishers:      g.Publishers,
		Genres:          g.Genres,
		Flags:           g.Flags,
		Tags:            g.Tags,
		Languages:       g.Languages,
		VR:              g.VR,
		ReleaseDate:     g.ReleaseDate,
		Completion:      g.Completion,
		LastStoreScrape: g.LastStoreScrape,
		LastCacheUpdate: g.LastCacheUpdate,
	}
}
