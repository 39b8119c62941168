package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// imageFetchTimeout bounds a single recipe image download.
	imageFetchTimeout = 20 * time.Second

	// imageMeasureInterval is how often unmeasured recipe images are re-probed.
	imageMeasureInterval = time.Hour

	// cacheNamespace prefixes every Redis key.
	cacheNamespace = "pinshelf"
)
