package processor

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/service"
	"github.com/gameshelfapp/gameshelf-server/internal/watcher"
)

// FeedProcessor consumes settled drop-folder files and feeds them into
// the ingest service.
//
// Key design principles:
//   - Processes each file immediately (no batching)
//   - Uses per-path locking to deduplicate concurrent events
//   - Handled files are archived under processed/ or failed/ so a file is
//     never ingested twice
//   - Non-blocking (TryLock prevents queueing)
type FeedProcessor struct {
	ingest *service.IngestService
	logger *slog.Logger

	// fileLocks provides per-path mutexes so a file whose added and
	// modified events land close together is only decoded once.
	fileLocks *SyncMap[string, *sync.Mutex]
}

// NewFeedProcessor creates a new FeedProcessor instance.
func NewFeedProcessor(ingest *service.IngestService, logger *slog.Logger) *FeedProcessor {
	return &FeedProcessor{
		ingest:    ingest,
		logger:    logger,
		fileLocks: NewSyncMap[string, *sync.Mutex](),
	}
}

// ProcessEvent handles one watcher event. Only settled additions and
// modifications of feed files trigger work; removals need none, because
// archiving already moved the file or the producer withdrew it.
func (fp *FeedProcessor) ProcessEvent(ctx context.Context, event watcher.Event) error {
	fp.logger.Debug("processing event",
		"type", event.Type.String(),
		"path", event.Path,
	)

	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
	default:
		return nil
	}

	if !isFeedFile(event.Path) {
		fp.logger.Debug("ignoring non-feed file", "path", event.Path)
		return nil
	}

	return fp.ProcessFile(ctx, event.Path)
}

// ProcessFile decodes one drop file, dispatches its records, and archives
// it. If the same path is already in flight, the call is a no-op; the
// in-flight handler archives the file.
func (fp *FeedProcessor) ProcessFile(ctx context.Context, path string) error {
	lock := fp.getFileLock(path)
	if !lock.TryLock() {
		fp.logger.Debug("file already being processed, skipping", "path", path)
		return nil
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// The producer withdrew the file between settle and read.
			fp.logger.Debug("drop file vanished before processing", "path", path)
			return nil
		}
		return fmt.Errorf("read drop file: %w", err)
	}

	batchID, err := fp.dispatch(ctx, data)
	if err != nil {
		fp.logger.Error("drop file rejected", "path", path, "error", err)
		if dest, archiveErr := archiveFile(path, failedDir); archiveErr != nil {
			fp.logger.Error("failed to archive rejected drop file",
				"path", path,
				"error", archiveErr,
			)
		} else {
			fp.logger.Info("drop file archived", "dest", dest, "outcome", "failed")
		}
		return err
	}

	dest, archiveErr := archiveFile(path, processedDir)
	if archiveErr != nil {
		fp.logger.Error("failed to archive processed drop file",
			"path", path,
			"batch_id", batchID,
			"error", archiveErr,
		)
		return archiveErr
	}

	fp.logger.Info("drop file ingested",
		"path", path,
		"batch_id", batchID,
		"dest", dest,
	)
	return nil
}

// SweepExisting processes feed files already sitting in dir, in filename
// order. Files dropped while the server was down are picked up here on
// startup. Rejected files are archived under failed/ and do not stop the
// sweep.
func (fp *FeedProcessor) SweepExisting(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read drop dir: %w", err)
	}

	swept, rejected := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !isFeedFile(entry.Name()) {
			continue
		}
		if err := fp.ProcessFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			rejected++
			continue
		}
		swept++
	}

	if swept > 0 || rejected > 0 {
		fp.logger.Info("swept drop folder",
			"dir", dir,
			"ingested", swept,
			"rejected", rejected,
		)
	}
	return nil
}

// dispatch decodes the envelope and routes the records to the merge
// operation named by its kind. Returns the ingest batch id.
func (fp *FeedProcessor) dispatch(ctx context.Context, data []byte) (string, error) {
	var header struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return "", errors.FeedParse("drop file is not a JSON envelope", err)
	}

	kind, ok := ParseFeedKind(header.Kind)
	if !ok {
		return "", errors.Validationf("unknown feed kind %q", header.Kind)
	}

	switch kind {
	case FeedCatalog:
		var env struct {
			Records []domain.CatalogEntry `json:"records"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return "", errors.FeedParse("malformed catalog records", err)
		}
		res, err := fp.ingest.ApplyCatalog(ctx, env.Records)
		if err != nil {
			return "", err
		}
		return res.BatchID, nil

	case FeedAppCache:
		var env struct {
			Timestamp int64                `json:"timestamp"`
			Records   []domain.CacheRecord `json:"records"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return "", errors.FeedParse("malformed app cache records", err)
		}
		res, err := fp.ingest.MergeAppCache(ctx, env.Records, env.Timestamp)
		if err != nil {
			return "", err
		}
		return res.BatchID, nil

	case FeedCompletion:
		var env struct {
			IncludeImputed bool                      `json:"include_imputed"`
			Records        []domain.CompletionRecord `json:"records"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return "", errors.FeedParse("malformed completion records", err)
		}
		res, err := fp.ingest.MergeCompletion(ctx, env.Records, env.IncludeImputed)
		if err != nil {
			return "", err
		}
		return res.BatchID, nil

	default:
		var env struct {
			Timestamp int64                 `json:"timestamp"`
			Records   []domain.ScrapeRecord `json:"records"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return "", errors.FeedParse("malformed scrape records", err)
		}
		res, err := fp.ingest.MergeScrape(ctx, env.Records, env.Timestamp)
		if err != nil {
			return "", err
		}
		return res.BatchID, nil
	}
}

// getFileLock gets or creates a mutex for the given path. LoadOrStore
// handles the race when events for the same new file arrive on multiple
// goroutines at once.
func (fp *FeedProcessor) getFileLock(path string) *sync.Mutex {
	if lock, ok := fp.fileLocks.Load(path); ok {
		return lock
	}
	actual, _ := fp.fileLocks.LoadOrStore(path, &sync.Mutex{})
	return actual
}
