package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "applyCatalogFeed",
		Method:      http.MethodPost,
		Path:        "/api/v1/feeds/catalog",
		Summary:     "Apply catalog feed",
		Description: "Upserts catalog-listing entries. New IDs are created, renamed entries are overwritten and their classification reset.",
		Tags:        []string{"Feeds"},
		Middlewares: huma.Middlewares{s.feedRateLimit},
	}, s.handleCatalogFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeAppCacheFeed",
		Method:      http.MethodPost,
		Path:        "/api/v1/feeds/appcache",
		Summary:     "Merge app cache feed",
		Description: "Merges app cache records field by field. Unknown IDs are created, never-scraped entries accept platform data.",
		Tags:        []string{"Feeds"},
		Middlewares: huma.Middlewares{s.feedRateLimit},
	}, s.handleAppCacheFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeCompletionFeed",
		Method:      http.MethodPost,
		Path:        "/api/v1/feeds/completion",
		Summary:     "Merge completion feed",
		Description: "Merges playtime estimates into known catalog entries. Unknown IDs are skipped, never created.",
		Tags:        []string{"Feeds"},
		Middlewares: huma.Middlewares{s.feedRateLimit},
	}, s.handleCompletionFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeScrapeFeed",
		Method:      http.MethodPost,
		Path:        "/api/v1/feeds/scrape",
		Summary:     "Merge scrape feed",
		Description: "Replaces scraped store metadata wholesale for each record and stamps the scrape time.",
		Tags:        []string{"Feeds"},
		Middlewares: huma.Middlewares{s.feedRateLimit},
	}, s.handleScrapeFeed)
}

// === DTOs ===

// CatalogFeedRequest contains a catalog-listing batch.
type CatalogFeedRequest struct {
	Records []domain.CatalogEntry `json:"records" doc:"Catalog entries to upsert"`
}

// CatalogFeedInput wraps the catalog request body.
type CatalogFeedInput struct {
	Body CatalogFeedRequest
}

// CatalogFeedResponse reports an applied catalog batch.
type CatalogFeedResponse struct {
	BatchID   string `json:"batch_id" doc:"Server-assigned batch ID"`
	Processed int    `json:"processed" doc:"Entries processed"`
	Created   int    `json:"created" doc:"Entries newly created"`
}

// CatalogFeedOutput wraps the catalog response for Huma.
type CatalogFeedOutput struct {
	Body CatalogFeedResponse
}

// AppCacheFeedRequest contains an app cache batch.
type AppCacheFeedRequest struct {
	Timestamp int64                `json:"timestamp,omitempty" doc:"Unix time the cache was captured. Defaults to now."`
	Records   []domain.CacheRecord `json:"records" doc:"Cache records to merge"`
}

// AppCacheFeedInput wraps the app cache request body.
type AppCacheFeedInput struct {
	Body AppCacheFeedRequest
}

// CompletionFeedRequest contains a completion-times batch.
type CompletionFeedRequest struct {
	IncludeImputed bool                      `json:"include_imputed,omitempty" doc:"Keep statistically imputed estimates instead of zeroing them"`
	Records        []domain.CompletionRecord `json:"records" doc:"Playtime records to merge"`
}

// CompletionFeedInput wraps the completion request body.
type CompletionFeedInput struct {
	Body CompletionFeedRequest
}

// ScrapeFeedRequest contains a store-scrape batch.
type ScrapeFeedRequest struct {
	Timestamp int64                 `json:"timestamp,omitempty" doc:"Unix time of the scrape. Defaults to now."`
	Records   []domain.ScrapeRecord `json:"records" doc:"Scraped records to merge"`
}

// ScrapeFeedInput wraps the scrape request body.
type ScrapeFeedInput struct {
	Body ScrapeFeedRequest
}

// MergeFeedResponse reports a merged cache, completion, or scrape batch.
type MergeFeedResponse struct {
	BatchID   string `json:"batch_id" doc:"Server-assigned batch ID"`
	Processed int    `json:"processed" doc:"Records integrated"`
}

// MergeFeedOutput wraps a merge response for Huma.
type MergeFeedOutput struct {
	Body MergeFeedResponse
}

// === Handlers ===

func (s *Server) handleCatalogFeed(ctx context.Context, input *CatalogFeedInput) (*CatalogFeedOutput, error) {
	res, err := s.services.Ingest.ApplyCatalog(ctx, input.Body.Records)
	if err != nil {
		return nil, err
	}

	return &CatalogFeedOutput{Body: CatalogFeedResponse{
		BatchID:   res.BatchID,
		Processed: res.Processed,
		Created:   res.Created,
	}}, nil
}

func (s *Server) handleAppCacheFeed(ctx context.Context, input *AppCacheFeedInput) (*MergeFeedOutput, error) {
	res, err := s.services.Ingest.MergeAppCache(ctx, input.Body.Records, input.Body.Timestamp)
	if err != nil {
		return nil, err
	}

	return &MergeFeedOutput{Body: MergeFeedResponse{
		BatchID:   res.BatchID,
		Processed: res.Processed,
	}}, nil
}

func (s *Server) handleCompletionFeed(ctx context.Context, input *CompletionFeedInput) (*MergeFeedOutput, error) {
	res, err := s.services.Ingest.MergeCompletion(ctx, input.Body.Records, input.Body.IncludeImputed)
	if err != nil {
		return nil, err
	}

	return &MergeFeedOutput{Body: MergeFeedResponse{
		BatchID:   res.BatchID,
		Processed: res.Processed,
	}}, nil
}

func (s *Server) handleScrapeFeed(ctx context.Context, input *ScrapeFeedInput) (*MergeFeedOutput, error) {
	res, err := s.services.Ingest.MergeScrape(ctx, input.Body.Records, input.Body.Timestamp)
	if err != nil {
		return nil, err
	}

	return &MergeFeedOutput{Body: MergeFeedResponse{
		BatchID:   res.BatchID,
		Processed: res.Processed,
	}}, nil
}
