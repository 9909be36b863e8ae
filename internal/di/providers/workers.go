package providers

import (
	"context"
	"os"

	"github.com/samber/do/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/api"
	"github.com/gameshelfapp/gameshelf-server/internal/config"
	"github.com/gameshelfapp/gameshelf-server/internal/logger"
	"github.com/gameshelfapp/gameshelf-server/internal/processor"
	"github.com/gameshelfapp/gameshelf-server/internal/service"
	"github.com/gameshelfapp/gameshelf-server/internal/watcher"
)

// IngestPipelineHandle wraps the drop-folder watcher and its feed
// processor with shutdown capability. When ingest is disabled the handle
// carries no watcher and Shutdown is a no-op.
type IngestPipelineHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
	enabled bool
	running bool
	dir     string
}

// Status reports the pipeline state for the health endpoint.
func (h *IngestPipelineHandle) Status() api.IngestStatus {
	return api.IngestStatus{
		Enabled: h.enabled,
		Running: h.running,
		Dir:     h.dir,
	}
}

// Shutdown implements do.Shutdownable.
func (h *IngestPipelineHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.watcher != nil {
		return h.watcher.Stop()
	}
	return nil
}

// ProvideIngestPipeline provides the drop-folder ingest pipeline: a file
// watcher on the drop directory feeding the feed processor.
func ProvideIngestPipeline(i do.Injector) (*IngestPipelineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Ingest.Enabled {
		log.Info("Drop-folder ingest disabled by configuration")
		return &IngestPipelineHandle{enabled: false}, nil
	}

	ingestService := do.MustInvoke[*service.IngestService](i)

	dropDir := cfg.Ingest.DropPath
	if err := os.MkdirAll(dropDir, 0o755); err != nil {
		return nil, err
	}

	w, err := watcher.New(log.Logger, watcher.Options{IgnoreHidden: true})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(dropDir); err != nil {
		return nil, err
	}

	feedProcessor := processor.NewFeedProcessor(ingestService, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Drop folder watcher error", "error", err)
		}
	}()

	// Process events in background
	go func() {
		for {
			select {
			case event := <-w.Events():
				if err := feedProcessor.ProcessEvent(ctx, event); err != nil {
					log.Warn("failed to process drop event",
						"error", err,
						"type", event.Type,
						"path", event.Path,
					)
				}
			case err := <-w.Errors():
				log.Warn("drop folder watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Catch up on files that arrived while the server was down.
	go func() {
		if err := feedProcessor.SweepExisting(ctx, dropDir); err != nil {
			log.Warn("Drop folder sweep failed", "error", err)
		}
	}()

	log.Info("Drop folder watcher started", "dir", dropDir)

	return &IngestPipelineHandle{
		watcher: w,
		cancel:  cancel,
		enabled: true,
		running: true,
		dir:     dropDir,
	}, nil
}
