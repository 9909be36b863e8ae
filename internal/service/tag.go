package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
	"github.com/gameshelfapp/gameshelf-server/internal/validation"
)

// TagService computes tag scores and developer/publisher tallies over the
// catalog or a caller-supplied working set.
type TagService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st *store.Store, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// ScoreRequest tunes weighted tag scoring. The zero value scores every
// tag of every game with uniform weight, sorted by tag name.
type ScoreRequest struct {
	// Filter narrows scoring to a working set. Entries flagged hidden are
	// excluded from it. Nil scores the whole catalog.
	Filter []domain.FilterEntry `json:"filter,omitempty"`

	// WeightFactor above 1 weights a game's leading tags higher than its
	// trailing ones.
	WeightFactor float64 `json:"weight_factor,omitempty" validate:"gte=0"`

	// MinScore drops tags whose total stays below it.
	MinScore float64 `json:"min_score,omitempty" validate:"gte=0"`

	// TagsPerGame takes only the first n tags of each game. Zero takes all.
	TagsPerGame int `json:"tags_per_game,omitempty" validate:"gte=0"`

	// ExcludeGenres drops tags that also name a known genre.
	ExcludeGenres bool `json:"exclude_genres,omitempty"`

	// SortByScore orders results descending by score instead of ascending
	// by tag name.
	SortByScore bool `json:"sort_by_score,omitempty"`
}

// CountRequest tunes a developer or publisher tally.
type CountRequest struct {
	// Filter narrows the tally to a working set, as in ScoreRequest.
	Filter []domain.FilterEntry `json:"filter,omitempty"`

	// MinCount drops names tallied fewer times.
	MinCount int `json:"min_count,omitempty" validate:"gte=0"`
}

// Scores computes weighted tag scores.
func (s *TagService) Scores(ctx context.Context, req ScoreRequest) ([]store.TagScore, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validate score request: %w", err)
	}

	scores := s.store.TagScores(store.ScoreOptions{
		Filter:        req.Filter,
		WeightFactor:  req.WeightFactor,
		MinScore:      req.MinScore,
		TagsPerGame:   req.TagsPerGame,
		ExcludeGenres: req.ExcludeGenres,
		SortByScore:   req.SortByScore,
	})

	s.logger.Debug("computed tag scores",
		"filter_size", len(req.Filter),
		"tags", len(scores))

	return scores, nil
}

// DeveloperCounts tallies developer names.
func (s *TagService) DeveloperCounts(ctx context.Context, req CountRequest) ([]store.NameCount, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validate count request: %w", err)
	}
	return s.store.DeveloperCounts(store.CountOptions{
		Filter:   req.Filter,
		MinCount: req.MinCount,
	}), nil
}

// PublisherCounts tallies publisher names.
func (s *TagService) PublisherCounts(ctx context.Context, req CountRequest) ([]store.NameCount, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validate count request: %w", err)
	}
	return s.store.PublisherCounts(store.CountOptions{
		Filter:   req.Filter,
		MinCount: req.MinCount,
	}), nil
}
