// Package providers contains dependency injection providers for the pinshelf server.
package providers

import (
	"io"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := NewLogger(cfg, nil)
	log.Info("Starting pinshelf server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"db_driver", cfg.Database.Driver,
		"cache_driver", cfg.Cache.Driver,
	)

	return log, nil
}

// NewLogger builds the logger described by cfg. A nil w writes to stdout.
func NewLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		Writer:      w,
	})
}
