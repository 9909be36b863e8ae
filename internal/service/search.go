package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/search"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// SearchService bridges the catalog store and the bleve index. It satisfies
// store.SearchIndexer, so the store can keep the index in sync as merges
// land, and it serves queries for the API layer.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger,
	}
}

// Search executes a full-text query against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}

	s.logger.Debug("search completed",
		"query", params.Query,
		"total", result.Total,
		"returned", len(result.Hits),
		"took_ms", result.TookMs)

	return result, nil
}

// IndexGame adds or updates a single game in the search index.
func (s *SearchService) IndexGame(ctx context.Context, game *domain.Game) error {
	doc := search.GameToSearchDocument(game)
	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index game %d: %w", game.ID, err)
	}

	s.logger.Debug("indexed game", "game_id", game.ID, "name", game.Name)
	return nil
}

// DeleteGame removes a game from the search index.
func (s *SearchService) DeleteGame(ctx context.Context, id int64) error {
	if err := s.index.DeleteDocument(search.DocumentID(id)); err != nil {
		return fmt.Errorf("delete game %d from index: %w", id, err)
	}
	return nil
}

// RebuildIndex drops the index and reindexes the given games. The store
// calls this after wholesale catalog replacements such as snapshot imports
// and language changes.
func (s *SearchService) RebuildIndex(ctx context.Context, games []*domain.Game) error {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(games))
	for _, g := range games {
		docs = append(docs, search.GameToSearchDocument(g))
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("reindex games: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"games", len(games),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// ReindexAll rebuilds the index from the store's full catalog. Exposed for
// operators recovering from a corrupt or deleted index directory.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	games := s.store.ListGames(domain.ClassAll)
	if err := s.RebuildIndex(ctx, games); err != nil {
		return 0, err
	}
	return len(games), nil
}

// DocumentCount returns the number of games currently indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
