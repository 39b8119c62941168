// Package di provides dependency injection configuration for the pinshelf server.
package di

import (
	"io"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/auth"
	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/di/providers"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/media/images"
	"github.com/pinshelf/pinshelf-server/internal/preview"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	return newContainer(providers.ProvideConfig, providers.ProvideLogger)
}

// NewContainerWithConfig builds a container around an already loaded config,
// logging to w. Command-line tools use it to keep stdout for their own output.
func NewContainerWithConfig(cfg *config.Config, w io.Writer) *do.RootScope {
	return newContainer(
		func(do.Injector) (*config.Config, error) { return cfg, nil },
		func(i do.Injector) (*logger.Logger, error) { return providers.NewLogger(cfg, w), nil },
	)
}

func newContainer(
	provideConfig func(do.Injector) (*config.Config, error),
	provideLogger func(do.Injector) (*logger.Logger, error),
) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, provideConfig)
	do.Provide(injector, provideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Data layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// Storage layer
	do.Provide(injector, providers.ProvideImageStorage)
	do.Provide(injector, providers.ProvideImageFetcher)
	do.Provide(injector, providers.ProvidePreviewRenderer)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideViewCache)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvidePinService)
	do.Provide(injector, providers.ProvideProductService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideCollectionService)
	do.Provide(injector, providers.ProvideStorefrontService)

	// Workers
	do.Provide(injector, providers.ProvideImageMeasureJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves every long-lived service so configuration and storage
// errors surface at startup instead of on the first request. Resolving the
// HTTP server handle starts listening.
func Bootstrap(injector *do.RootScope) error {
	eager := []func(do.Injector) error{
		invoke[providers.AuthKey],
		invoke[*providers.SSEManagerHandle],
		invoke[*providers.StoreHandle],
		invoke[*providers.CacheHandle],
		invoke[*images.Storage],
		invoke[*images.Fetcher],
		invoke[*preview.Renderer],
		invoke[*providers.SearchIndexHandle],
		invoke[*service.SearchService],
		invoke[*auth.TokenService],
		invoke[*service.ViewCache],
		invoke[*service.RecipeService],
		invoke[*service.PinService],
		invoke[*service.ProductService],
		invoke[*service.TagService],
		invoke[*service.CollectionService],
		invoke[*service.StorefrontService],
		invoke[*providers.ImageMeasureJob],
		invoke[*providers.HTTPServerHandle],
	}
	for _, fn := range eager {
		if err := fn(injector); err != nil {
			return err
		}
	}

	providers.WarmSearchIndex(injector)
	return nil
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
