package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/config"
	"github.com/gameshelfapp/gameshelf-server/internal/logger"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
	"github.com/gameshelfapp/gameshelf-server/internal/store/sqlite"
)

// SSEManagerHandle wraps sse.Manager with Shutdownable.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the SSE manager for real-time events.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}

// ProvideSnapshotBackend provides the snapshot backend selected by the
// configured data engine.
func ProvideSnapshotBackend(i do.Injector) (store.Backend, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Data.Engine {
	case "sqlite":
		return sqlite.Open(filepath.Join(cfg.Data.BasePath, "gameshelf.db"), log.Logger)
	default:
		return store.OpenBadger(filepath.Join(cfg.Data.BasePath, "snapshot"), log.Logger)
	}
}

// StoreHandle wraps the catalog store with Shutdownable. Shutdown writes
// the in-memory catalog back to the backend before closing it, so feed
// merges that arrived since the last explicit save survive a restart.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	saveErr := h.Save(ctx)
	closeErr := h.Close()
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}

// ProvideStore provides the in-memory catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	backend := do.MustInvoke[store.Backend](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(context.Background(), backend, log.Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: st}, nil
}

// ApplyStartupLanguage applies the configured store language. Called from
// Bootstrap after the search indexer is wired, because a language change
// clears scraped fields and rebuilds the index.
func ApplyStartupLanguage(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Store.Language == "" {
		return
	}

	code, changed, err := storeHandle.SetLanguage(context.Background(), cfg.Store.Language)
	if err != nil {
		log.Warn("Configured store language not applied",
			"language", cfg.Store.Language,
			"error", err,
		)
		return
	}
	if changed {
		log.Info("Store language changed at startup", "language", code)
	}
}
