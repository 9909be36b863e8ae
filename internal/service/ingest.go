package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/id"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// IngestService funnels feed batches from the HTTP API and the drop-folder
// processor into the store's merge operations. Every batch gets an id so a
// feed file or request can be correlated across log lines and archives.
type IngestService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(st *store.Store, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:  st,
		logger: logger,
	}
}

// CatalogResult reports one catalog-listing batch.
type CatalogResult struct {
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
}

// MergeResult reports one cache, completion, or scrape batch.
type MergeResult struct {
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
}

// ApplyCatalog upserts catalog-listing entries. An empty batch is a valid
// no-op.
func (s *IngestService) ApplyCatalog(ctx context.Context, entries []domain.CatalogEntry) (*CatalogResult, error) {
	batchID, err := id.Generate("bat")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate batch id")
	}

	start := time.Now()
	processed, created := s.store.ApplyCatalog(ctx, entries)

	s.logger.Info("catalog batch applied",
		"batch_id", batchID,
		"entries", len(entries),
		"processed", processed,
		"created", created,
		"duration", time.Since(start).Round(time.Millisecond).String())

	if processed > 0 {
		s.saveAfterBatch(ctx, batchID)
	}
	return &CatalogResult{BatchID: batchID, Processed: processed, Created: created}, nil
}

// MergeAppCache merges local-cache records. A non-positive cacheTime is
// replaced with the current time.
func (s *IngestService) MergeAppCache(ctx context.Context, records []domain.CacheRecord, cacheTime int64) (*MergeResult, error) {
	batchID, err := id.Generate("bat")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate batch id")
	}
	if cacheTime <= 0 {
		cacheTime = time.Now().Unix()
	}

	start := time.Now()
	processed := s.store.MergeCacheRecords(ctx, records, cacheTime)

	s.logger.Info("app cache batch merged",
		"batch_id", batchID,
		"records", len(records),
		"processed", processed,
		"cache_time", cacheTime,
		"duration", time.Since(start).Round(time.Millisecond).String())

	if processed > 0 {
		s.saveAfterBatch(ctx, batchID)
	}
	return &MergeResult{BatchID: batchID, Processed: processed}, nil
}

// MergeCompletion merges completion-time records for games already in the
// catalog. Unless includeImputed is set, estimated playtimes are dropped
// and only measured ones land.
func (s *IngestService) MergeCompletion(ctx context.Context, records []domain.CompletionRecord, includeImputed bool) (*MergeResult, error) {
	batchID, err := id.Generate("bat")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate batch id")
	}

	start := time.Now()
	integrated := s.store.MergeCompletionTimes(ctx, records, includeImputed)

	s.logger.Info("completion batch merged",
		"batch_id", batchID,
		"records", len(records),
		"integrated", integrated,
		"include_imputed", includeImputed,
		"duration", time.Since(start).Round(time.Millisecond).String())

	// The store-wide completion marker moves even when no record matched,
	// so the save is unconditional here.
	s.saveAfterBatch(ctx, batchID)
	return &MergeResult{BatchID: batchID, Processed: integrated}, nil
}

// MergeScrape replaces store-page fields from scraper results. A
// non-positive scrapeTime is replaced with the current time.
func (s *IngestService) MergeScrape(ctx context.Context, records []domain.ScrapeRecord, scrapeTime int64) (*MergeResult, error) {
	batchID, err := id.Generate("bat")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate batch id")
	}
	if scrapeTime <= 0 {
		scrapeTime = time.Now().Unix()
	}

	start := time.Now()
	processed := s.store.MergeScrapeRecords(ctx, records, scrapeTime)

	s.logger.Info("scrape batch merged",
		"batch_id", batchID,
		"records", len(records),
		"processed", processed,
		"scrape_time", scrapeTime,
		"duration", time.Since(start).Round(time.Millisecond).String())

	if processed > 0 {
		s.saveAfterBatch(ctx, batchID)
	}
	return &MergeResult{BatchID: batchID, Processed: processed}, nil
}

// saveAfterBatch persists the store once a batch has merged. Failure is
// not fatal to the ingest: the merged state stays live in memory and the
// next save retries the write.
func (s *IngestService) saveAfterBatch(ctx context.Context, batchID string) {
	if err := s.store.Save(ctx); err != nil {
		s.logger.Warn("post-batch save failed", "batch_id", batchID, "error", err)
	}
}
