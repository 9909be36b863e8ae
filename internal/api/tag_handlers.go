package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/service"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "computeTagScores",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/scores",
		Summary:     "Compute tag scores",
		Description: "Computes position-weighted tag scores over the visible catalog subset",
		Tags:        []string{"Statistics"},
	}, s.handleTagScores)

	huma.Register(s.api, huma.Operation{
		OperationID: "computeDeveloperCounts",
		Method:      http.MethodPost,
		Path:        "/api/v1/developers/counts",
		Summary:     "Count games per developer",
		Description: "Counts visible games per developer name",
		Tags:        []string{"Statistics"},
	}, s.handleDeveloperCounts)

	huma.Register(s.api, huma.Operation{
		OperationID: "computePublisherCounts",
		Method:      http.MethodPost,
		Path:        "/api/v1/publishers/counts",
		Summary:     "Count games per publisher",
		Description: "Counts visible games per publisher name",
		Tags:        []string{"Statistics"},
	}, s.handlePublisherCounts)
}

// === DTOs ===

// TagScoresRequest contains parameters for a tag score computation.
type TagScoresRequest struct {
	Filter        []domain.FilterEntry `json:"filter,omitempty" doc:"Catalog subset to score. Omit for the whole catalog. Entries marked hidden are excluded."`
	WeightFactor  float64              `json:"weight_factor,omitempty" minimum:"0" doc:"Position weight for the first tag of each game. Values at or below 1 weight all tags equally."`
	MinScore      float64              `json:"min_score,omitempty" minimum:"0" doc:"Drop tags scoring below this threshold"`
	TagsPerGame   int                  `json:"tags_per_game,omitempty" minimum:"0" doc:"Only score the first N tags of each game. 0 scores all."`
	ExcludeGenres bool                 `json:"exclude_genres,omitempty" doc:"Skip tags that also appear as genres"`
	SortByScore   bool                 `json:"sort_by_score,omitempty" doc:"Sort by descending score instead of tag name"`
}

// TagScoresInput wraps the tag scores request body.
type TagScoresInput struct {
	Body TagScoresRequest
}

// TagScoreResponse is one scored tag.
type TagScoreResponse struct {
	Tag   string  `json:"tag" doc:"Tag name"`
	Score float64 `json:"score" doc:"Accumulated weighted score"`
}

// TagScoresResponse contains the scored tags.
type TagScoresResponse struct {
	Scores []TagScoreResponse `json:"scores" doc:"Scored tags"`
}

// TagScoresOutput wraps the tag scores response for Huma.
type TagScoresOutput struct {
	Body TagScoresResponse
}

// NameCountsRequest contains parameters for a developer or publisher count.
type NameCountsRequest struct {
	Filter   []domain.FilterEntry `json:"filter,omitempty" doc:"Catalog subset to count. Omit for the whole catalog."`
	MinCount int                  `json:"min_count,omitempty" minimum:"0" doc:"Drop names appearing fewer times than this"`
}

// NameCountsInput wraps a counts request body.
type NameCountsInput struct {
	Body NameCountsRequest
}

// NameCountResponse is one counted name.
type NameCountResponse struct {
	Name  string `json:"name" doc:"Developer or publisher name"`
	Count int    `json:"count" doc:"Games carrying the name"`
}

// NameCountsResponse contains the counted names.
type NameCountsResponse struct {
	Counts []NameCountResponse `json:"counts" doc:"Counted names in ascending name order"`
}

// NameCountsOutput wraps a counts response for Huma.
type NameCountsOutput struct {
	Body NameCountsResponse
}

// === Handlers ===

func (s *Server) handleTagScores(ctx context.Context, input *TagScoresInput) (*TagScoresOutput, error) {
	scores, err := s.services.Tag.Scores(ctx, service.ScoreRequest{
		Filter:        input.Body.Filter,
		WeightFactor:  input.Body.WeightFactor,
		MinScore:      input.Body.MinScore,
		TagsPerGame:   input.Body.TagsPerGame,
		ExcludeGenres: input.Body.ExcludeGenres,
		SortByScore:   input.Body.SortByScore,
	})
	if err != nil {
		return nil, err
	}

	resp := TagScoresResponse{Scores: make([]TagScoreResponse, 0, len(scores))}
	for _, sc := range scores {
		resp.Scores = append(resp.Scores, TagScoreResponse{Tag: sc.Tag, Score: sc.Score})
	}

	return &TagScoresOutput{Body: resp}, nil
}

func (s *Server) handleDeveloperCounts(ctx context.Context, input *NameCountsInput) (*NameCountsOutput, error) {
	counts, err := s.services.Tag.DeveloperCounts(ctx, service.CountRequest{
		Filter:   input.Body.Filter,
		MinCount: input.Body.MinCount,
	})
	if err != nil {
		return nil, err
	}

	return &NameCountsOutput{Body: toNameCountsResponse(counts)}, nil
}

func (s *Server) handlePublisherCounts(ctx context.Context, input *NameCountsInput) (*NameCountsOutput, error) {
	counts, err := s.services.Tag.PublisherCounts(ctx, service.CountRequest{
		Filter:   input.Body.Filter,
		MinCount: input.Body.MinCount,
	})
	if err != nil {
		return nil, err
	}

	return &NameCountsOutput{Body: toNameCountsResponse(counts)}, nil
}

func toNameCountsResponse(counts []store.NameCount) NameCountsResponse {
	resp := NameCountsResponse{Counts: make([]NameCountResponse, 0, len(counts))}
	for _, c := range counts {
		resp.Counts = append(resp.Counts, NameCountResponse{Name: c.Name, Count: c.Count})
	}
	return resp
}
