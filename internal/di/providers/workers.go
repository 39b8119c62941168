package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// ImageMeasureJob periodically re-probes recipe images that have no
// dimensions or blurhash yet.
type ImageMeasureJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *ImageMeasureJob) Shutdown() error {
	j.cancel()
	select {
	case <-j.done:
	case <-time.After(shutdownTimeout):
	}
	return nil
}

// ProvideImageMeasureJob provides the periodic image measuring job.
func ProvideImageMeasureJob(i do.Injector) (*ImageMeasureJob, error) {
	recipeService := do.MustInvoke[*service.RecipeService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	measure := func() {
		if count, err := recipeService.MeasureImages(ctx); err != nil {
			if ctx.Err() == nil {
				log.Warn("Recipe image measuring failed", "error", err)
			}
		} else if count > 0 {
			log.Info("Recipe images measured", "updated", count)
		}
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(imageMeasureInterval)
		defer ticker.Stop()

		// Initial pass on startup
		measure()

		for {
			select {
			case <-ticker.C:
				measure()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Image measure job started", "interval", imageMeasureInterval)

	return &ImageMeasureJob{cancel: cancel, done: done}, nil
}
