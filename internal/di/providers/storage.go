package providers

import (
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/media/images"
	"github.com/pinshelf/pinshelf-server/internal/preview"
)

// ProvideImageStorage provides the local store for downloaded recipe images.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.ImagesPath())
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	log.Info("Image storage initialized", "path", cfg.ImagesPath())

	return storage, nil
}

// ProvideImageFetcher provides the recipe image prober and loader.
func ProvideImageFetcher(i do.Injector) (*images.Fetcher, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := &http.Client{Timeout: imageFetchTimeout}
	return images.NewFetcher(storage, client, log.Logger), nil
}

// ProvidePreviewRenderer provides the PNG preview renderer.
func ProvidePreviewRenderer(i do.Injector) (*preview.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	renderer, err := preview.New(cfg.Preview.FontPath, log.Logger)
	if err != nil {
		return nil, err
	}
	if cfg.Preview.FontPath == "" {
		log.Warn("No preview font configured, pin labels are left out of PNG previews")
	}

	return renderer, nil
}
