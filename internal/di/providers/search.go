package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/service"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// SearchIndexHandle closes the catalog index on container shutdown.
type SearchIndexHandle struct {
	*search.SearchIndex
}

func (h *SearchIndexHandle) Shutdown() error { return h.Close() }

func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.SearchPath(), Logger: log.Logger})
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{SearchIndex: index}, nil
}

func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	index := do.MustInvoke[*SearchIndexHandle](i)
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewSearchService(index.SearchIndex, db.Store, log.Logger), nil
}

// WarmSearchIndex fills an empty index in the background when the catalog
// already has published products, as after a mapping change wiped it.
func WarmSearchIndex(i do.Injector) {
	svc := do.MustInvoke[*service.SearchService](i)
	db := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if n, err := svc.DocumentCount(); err != nil || n > 0 {
		return
	}
	products, err := db.ListProducts(context.Background(), store.ProductFilter{PublishedOnly: true})
	if err != nil || len(products) == 0 {
		return
	}

	log.Info("catalog index empty, reindexing", "published_products", len(products))
	go func() {
		n, err := svc.Reindex(context.Background())
		if err != nil {
			log.Error("background reindex failed", "error", err)
			return
		}
		log.Info("background reindex finished", "documents", n)
	}()
}
