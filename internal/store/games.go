package store

import (
	"context"
	"slices"
	"time"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
)

// GetGame returns a copy of the game with the given id.
func (s *Store) GetGame(id int64) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, errors.NotFoundf("game %d not found", id)
	}
	return g.Clone(), nil
}

// ListGames returns copies of every game whose own classification
// intersects mask, sorted by id. Pass domain.ClassAll for the whole
// catalog.
func (s *Store) ListGames(mask domain.Classification) []*domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]*domain.Game, 0, len(s.games))
	for _, g := range s.games {
		if !g.Class.Intersects(mask) {
			continue
		}
		games = append(games, g.Clone())
	}
	slices.SortFunc(games, func(a, b *domain.Game) int {
		return int(a.ID - b.ID)
	})
	return games
}

// UpsertFromCatalog creates the game if it is absent, otherwise refreshes
// its name from the catalog. A name change resets the classification to
// unknown because the old classification described a different listing.
// Returns whether the game was created.
func (s *Store) UpsertFromCatalog(ctx context.Context, id int64, name string) (bool, error) {
	if id <= 0 {
		return false, errors.Validationf("game id must be positive, got %d", id)
	}

	s.mu.Lock()
	g, created := s.upsertLocked(id, name)
	var clone *domain.Game
	if g != nil {
		clone = g.Clone()
	}
	s.mu.Unlock()

	if clone != nil {
		s.indexGames(ctx, []*domain.Game{clone})
	}
	return created, nil
}

// ApplyCatalog merges a full catalog feed. Entries with a non-positive id
// are skipped and logged; the merge continues. Returns the number of
// entries processed and the number of games created.
func (s *Store) ApplyCatalog(ctx context.Context, entries []domain.CatalogEntry) (processed, created int) {
	changed := make([]*domain.Game, 0, len(entries))

	s.mu.Lock()
	for _, e := range entries {
		if e.ID <= 0 {
			s.logger.Warn("Skipping catalog entry with invalid id", "id", e.ID, "name", e.Name)
			continue
		}
		g, wasCreated := s.upsertLocked(e.ID, e.Name)
		processed++
		if wasCreated {
			created++
		}
		if g != nil {
			changed = append(changed, g.Clone())
		}
	}
	s.mu.Unlock()

	s.indexGames(ctx, changed)
	s.logger.Info("Catalog applied", "processed", processed, "created", created)
	s.eventEmitter.Emit(sse.NewCatalogAppliedEvent(processed, created))

	return processed, created
}

// upsertLocked applies one catalog entry. Returns the touched game, or nil
// when the entry matched the stored state, plus whether it was created.
// Callers must hold the write lock.
func (s *Store) upsertLocked(id int64, name string) (*domain.Game, bool) {
	g, ok := s.games[id]
	if !ok {
		g = domain.NewGame(id, name)
		s.games[id] = g
		return g, true
	}
	if g.Name == "" || g.Name != name {
		g.Name = name
		g.Class = domain.ClassUnknown
		return g, false
	}
	return nil, false
}

// MergeCacheRecords merges records scraped from a local app cache into the
// catalog. Games are created as needed. The cache is a weaker source than
// a store scrape, so fields follow merge rules instead of overwriting:
//
//   - last cache update is stamped with cacheTime unconditionally
//   - classification is taken only when the record carries a known,
//     non-unknown value
//   - name is taken only when non-empty
//   - platforms are taken when none are stored yet, or when the game was
//     never store-scraped and the record has any
//   - parent id is taken only when positive
//
// Malformed records are skipped and logged. Returns the number of records
// processed.
func (s *Store) MergeCacheRecords(ctx context.Context, records []domain.CacheRecord, cacheTime int64) int {
	changed := make([]*domain.Game, 0, len(records))
	processed := 0

	s.mu.Lock()
	for _, rec := range records {
		if rec.ID <= 0 {
			s.logger.Warn("Skipping cache record with invalid id", "id", rec.ID)
			continue
		}

		g, ok := s.games[rec.ID]
		if !ok {
			g = domain.NewGame(rec.ID, rec.Name)
			s.games[rec.ID] = g
		}

		g.LastCacheUpdate = cacheTime

		if rec.Classification != "" {
			cls, known := domain.ParseClassification(rec.Classification)
			if !known {
				s.logger.Warn("Unknown classification in cache record",
					"id", rec.ID,
					"classification", rec.Classification,
				)
			}
			if cls != domain.ClassUnknown {
				g.Class = cls
			}
		}

		if rec.Name != "" {
			g.Name = rec.Name
		}

		if p := domain.ParsePlatforms(rec.Platforms); g.Platforms.IsNone() ||
			(g.LastStoreScrape == domain.ScrapeNever && !p.IsNone()) {
			g.Platforms = p
		}

		if rec.ParentID > 0 {
			g.ParentID = rec.ParentID
		}

		processed++
		changed = append(changed, g.Clone())
	}
	s.mu.Unlock()

	s.indexGames(ctx, changed)
	s.logger.Info("Cache records merged", "processed", processed, "cache_time", cacheTime)
	s.eventEmitter.Emit(sse.NewCacheMergedEvent(processed, cacheTime))

	return processed
}

// MergeScrapeRecords integrates store-page scrape results, the return
// path of the re-acquisition loop. Games are created as needed. A scrape
// is the authoritative source for what a store page carries, so unlike a
// cache merge the list fields, language and VR support and the release
// date are replaced wholesale; empty means the page showed none. Name and
// classification still follow the tolerant rules (non-empty, known
// non-unknown value), platforms overwrite whenever the record has any,
// and the store scrape timestamp is stamped with scrapeTime. Completion
// times and the cache timestamp are untouched. Malformed records are
// skipped and logged. Returns the number of records processed.
func (s *Store) MergeScrapeRecords(ctx context.Context, records []domain.ScrapeRecord, scrapeTime int64) int {
	changed := make([]*domain.Game, 0, len(records))
	processed := 0

	s.mu.Lock()
	for _, rec := range records {
		if rec.ID <= 0 {
			s.logger.Warn("Skipping scrape record with invalid id", "id", rec.ID)
			continue
		}

		g, ok := s.games[rec.ID]
		if !ok {
			g = domain.NewGame(rec.ID, rec.Name)
			s.games[rec.ID] = g
		}

		if rec.Name != "" {
			g.Name = rec.Name
		}

		if rec.Classification != "" {
			cls, known := domain.ParseClassification(rec.Classification)
			if !known {
				s.logger.Warn("Unknown classification in scrape record",
					"id", rec.ID,
					"classification", rec.Classification,
				)
			}
			if cls != domain.ClassUnknown {
				g.Class = cls
			}
		}

		if p := domain.ParsePlatforms(rec.Platforms); !p.IsNone() {
			g.Platforms = p
		}

		g.Developers = slices.Clone(rec.Developers)
		g.Publishers = slices.Clone(rec.Publishers)
		g.Genres = slices.Clone(rec.Genres)
		g.Flags = slices.Clone(rec.Flags)
		g.Tags = slices.Clone(rec.Tags)
		g.Languages = rec.Languages.Clone()
		g.VR = rec.VR.Clone()
		g.ReleaseDate = rec.ReleaseDate

		if rec.ParentID > 0 {
			g.ParentID = rec.ParentID
		}

		g.LastStoreScrape = scrapeTime

		processed++
		changed = append(changed, g.Clone())
	}
	s.mu.Unlock()

	s.indexGames(ctx, changed)
	s.logger.Info("Scrape records merged", "processed", processed, "scrape_time", scrapeTime)
	s.eventEmitter.Emit(sse.NewScrapeMergedEvent(processed, scrapeTime))

	return processed
}

// MergeCompletionTimes merges a completion-time feed. Only games already
// in the catalog are touched; unknown ids are not created. Imputed fields
// are zeroed unless includeImputed is set. The store-wide completion
// update marker is stamped regardless of how many records matched.
// Returns the number of records integrated.
func (s *Store) MergeCompletionTimes(_ context.Context, records []domain.CompletionRecord, includeImputed bool) int {
	integrated := 0

	s.mu.Lock()
	for _, rec := range records {
		g, ok := s.games[rec.ID]
		if !ok {
			continue
		}
		g.Completion = rec.Times(includeImputed)
		integrated++
	}
	s.lastCompletionUpdate = time.Now().Unix()
	s.mu.Unlock()

	s.logger.Info("Completion times merged",
		"integrated", integrated,
		"records", len(records),
		"include_imputed", includeImputed,
	)
	s.eventEmitter.Emit(sse.NewCompletionMergedEvent(integrated, includeImputed))

	return integrated
}

// indexGames pushes changed games to the search indexer. Index failures
// are logged, not surfaced; search staleness must not fail a merge.
func (s *Store) indexGames(ctx context.Context, games []*domain.Game) {
	for _, g := range games {
		if err := s.searchIndexer.IndexGame(ctx, g); err != nil {
			s.logger.Warn("Failed to index game", "id", g.ID, "error", err)
		}
	}
}
