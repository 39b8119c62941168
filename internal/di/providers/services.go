package providers

import (
	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/media/images"
	"github.com/pinshelf/pinshelf-server/internal/preview"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// ProvideViewCache provides the cache of rendered public payloads.
func ProvideViewCache(i do.Injector) (*service.ViewCache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewViewCache(cacheHandle.Cache, cfg.Cache.TTL, log.Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fetcher := do.MustInvoke[*images.Fetcher](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	views := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, fetcher, sseHandle.Manager, searchService, views, log.Logger), nil
}

// ProvidePinService provides the pin service.
func ProvidePinService(i do.Injector) (*service.PinService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	recipeService := do.MustInvoke[*service.RecipeService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	views := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPinService(storeHandle.Store, recipeService, sseHandle.Manager, views, log.Logger), nil
}

// ProvideProductService provides the product service.
func ProvideProductService(i do.Injector) (*service.ProductService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	views := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProductService(storeHandle.Store, sseHandle.Manager, searchService, views, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, sseHandle.Manager, searchService, log.Logger), nil
}

// ProvideCollectionService provides the collection service.
func ProvideCollectionService(i do.Injector) (*service.CollectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionService(storeHandle.Store, sseHandle.Manager, searchService, log.Logger), nil
}

// ProvideStorefrontService provides the public storefront service.
func ProvideStorefrontService(i do.Injector) (*service.StorefrontService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	views := do.MustInvoke[*service.ViewCache](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	renderer := do.MustInvoke[*preview.Renderer](i)
	fetcher := do.MustInvoke[*images.Fetcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStorefrontService(storeHandle.Store, views, searchService, service.StorefrontOptions{
		Preview:  renderer,
		Loader:   fetcher,
		MaxWidth: cfg.Preview.MaxWidth,
	}, log.Logger), nil
}
