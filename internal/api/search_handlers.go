package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search across game names and metadata with optional filters and facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query     string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search query"`
	Classes   string `query:"classes" maxLength:"100" doc:"Comma-separated classifications to include (game,dlc,demo,...). Omit for all."`
	Genres    string `query:"genres" maxLength:"200" doc:"Comma-separated genres results must carry"`
	Tags      string `query:"tags" maxLength:"200" doc:"Comma-separated tags results must carry"`
	Platforms string `query:"platforms" maxLength:"100" doc:"Comma-separated platforms results must support"`
	Limit     int    `query:"limit" minimum:"1" maximum:"100" doc:"Max results (default 20)"`
	Offset    int    `query:"offset" minimum:"0" doc:"Pagination offset (default 0)"`
	Sort      string `query:"sort" enum:"relevance,name" doc:"Sort order (default relevance)"`
	Facets    bool   `query:"facets" doc:"Include facet counts in the response"`
	Highlight bool   `query:"highlight" doc:"Include highlighted match fragments"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID         int64             `json:"id" doc:"Game ID"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Name       string            `json:"name" doc:"Display name"`
	Class      string            `json:"class,omitempty" doc:"Classification"`
	Developers []string          `json:"developers,omitempty" doc:"Developer names"`
	Publishers []string          `json:"publishers,omitempty" doc:"Publisher names"`
	Genres     []string          `json:"genres,omitempty" doc:"Genre names"`
	Tags       []string          `json:"tags,omitempty" doc:"Community tags"`
	Platforms  []string          `json:"platforms,omitempty" doc:"Supported platforms"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchFacetCount represents a facet value and its count.
type SearchFacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchFacetsResponse contains facet counts for filtering.
type SearchFacetsResponse struct {
	Classes   []SearchFacetCount `json:"classes,omitempty" doc:"Classification facets"`
	Genres    []SearchFacetCount `json:"genres,omitempty" doc:"Genre facets"`
	Tags      []SearchFacetCount `json:"tags,omitempty" doc:"Tag facets"`
	Platforms []SearchFacetCount `json:"platforms,omitempty" doc:"Platform facets"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string                `json:"query" doc:"Original search query"`
	Total  int64                 `json:"total" doc:"Total matches"`
	TookMs int64                 `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult     `json:"hits" doc:"Search results"`
	Facets *SearchFacetsResponse `json:"facets,omitempty" doc:"Facet counts for filtering"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	params := search.SearchParams{
		Query:     input.Query,
		Classes:   splitCSV(input.Classes),
		Genres:    splitCSV(input.Genres),
		Tags:      splitCSV(input.Tags),
		Platforms: splitCSV(input.Platforms),
		Limit:     limit,
		Offset:    input.Offset,
		SortBy:    input.Sort,
		Highlight: input.Highlight,
	}
	if input.Facets {
		params.IncludeFacets = true
		params.FacetFields = []string{"class", "genres", "tags", "platforms"}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  input.Query,
		Total:  int64(result.Total), //nolint:gosec // Safe: total count won't exceed int64
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}

	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:         hit.ID,
			Score:      hit.Score,
			Name:       hit.Name,
			Class:      hit.Class,
			Developers: hit.Developers,
			Publishers: hit.Publishers,
			Genres:     hit.Genres,
			Tags:       hit.Tags,
			Platforms:  hit.Platforms,
			Highlights: hit.Highlights,
		})
	}

	if input.Facets {
		resp.Facets = toSearchFacetsResponse(result.Facets)
	}

	return &SearchOutput{Body: resp}, nil
}

// splitCSV parses a comma-separated query parameter, dropping empty parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func toSearchFacetsResponse(facets search.SearchFacets) *SearchFacetsResponse {
	resp := &SearchFacetsResponse{}
	for _, f := range facets.Classes {
		resp.Classes = append(resp.Classes, SearchFacetCount{Value: f.Value, Count: f.Count})
	}
	for _, f := range facets.Genres {
		resp.Genres = append(resp.Genres, SearchFacetCount{Value: f.Value, Count: f.Count})
	}
	for _, f := range facets.Tags {
		resp.Tags = append(resp.Tags, SearchFacetCount{Value: f.Value, Count: f.Count})
	}
	for _, f := range facets.Platforms {
		resp.Platforms = append(resp.Platforms, SearchFacetCount{Value: f.Value, Count: f.Count})
	}
	return resp
}
