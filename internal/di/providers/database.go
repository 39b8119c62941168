package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/cache"
	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/store/postgres"
	"github.com/pinshelf/pinshelf-server/internal/store/sqlite"
)

// SSEManagerHandle runs the event manager for the container's lifetime.
type SSEManagerHandle struct {
	*sse.Manager
	stop context.CancelFunc
}

// Shutdown drains queued events before cancelling the delivery loop.
func (h *SSEManagerHandle) Shutdown() error {
	defer h.stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)
	ctx, stop := context.WithCancel(context.Background())
	go manager.Start(ctx)
	return &SSEManagerHandle{Manager: manager, stop: stop}, nil
}

// StoreHandle closes the catalog store on container shutdown.
type StoreHandle struct {
	store.Store
}

func (h *StoreHandle) Shutdown() error { return h.Close() }

// ProvideStore opens the store selected by database.driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		db  store.Store
		err error
	)
	switch cfg.Database.Driver {
	case config.DatabasePostgres:
		db, err = postgres.Open(cfg.Database.PostgresDSN, log.Logger)
	default:
		db, err = sqlite.Open(cfg.SQLitePath(), log.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	log.Info("catalog store open", "driver", cfg.Database.Driver)
	return &StoreHandle{Store: db}, nil
}

// CacheHandle closes the payload cache on container shutdown.
type CacheHandle struct {
	cache.Cache
}

func (h *CacheHandle) Shutdown() error { return h.Close() }

// ProvideCache opens the payload cache selected by cache.driver. The "none"
// driver keeps every read on the store.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := openCache(cfg, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Driver, err)
	}
	log.Info("payload cache ready", "driver", cfg.Cache.Driver)
	return &CacheHandle{Cache: c}, nil
}

func openCache(cfg *config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheNone:
		return cache.Nop{}, nil
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return cache.OpenRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cacheNamespace, log)
	default:
		return cache.OpenBadger(cfg.CachePath(), log)
	}
}

// ProvideSlogLogger exposes the plain *slog.Logger for packages that take one.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	return do.MustInvoke[*logger.Logger](i).Logger, nil
}
