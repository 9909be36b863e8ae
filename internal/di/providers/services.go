package providers

import (
	"github.com/samber/do/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/logger"
	"github.com/gameshelfapp/gameshelf-server/internal/service"
	"github.com/gameshelfapp/gameshelf-server/internal/validation"
)

// ProvideGameService provides the game catalog query service.
func ProvideGameService(i do.Injector) (*service.GameService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGameService(storeHandle.Store, log.Logger), nil
}

// ProvideIngestService provides the feed ingest service.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIngestService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides the tag scoring service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, validation.New(), log.Logger), nil
}

// ProvideAggregateService provides the catalog aggregate service.
func ProvideAggregateService(i do.Injector) (*service.AggregateService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAggregateService(storeHandle.Store, log.Logger), nil
}

// ProvideLanguageService provides the store language service.
func ProvideLanguageService(i do.Injector) (*service.LanguageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLanguageService(storeHandle.Store, log.Logger), nil
}

// ProvideSnapshotService provides the snapshot save/export/import service.
func ProvideSnapshotService(i do.Injector) (*service.SnapshotService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSnapshotService(storeHandle.Store, log.Logger), nil
}
