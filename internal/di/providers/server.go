package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/api"
	"github.com/pinshelf/pinshelf-server/internal/auth"
	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// HTTPServerHandle owns the listening server and the API handler behind it.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown drains in-flight requests, then releases the handler's limiters.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer binds the configured port and serves in the background.
// A port that cannot be bound fails the provider rather than the goroutine.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(
		do.MustInvoke[*StoreHandle](i).Store,
		&api.Services{
			Recipe:     do.MustInvoke[*service.RecipeService](i),
			Pin:        do.MustInvoke[*service.PinService](i),
			Product:    do.MustInvoke[*service.ProductService](i),
			Tag:        do.MustInvoke[*service.TagService](i),
			Collection: do.MustInvoke[*service.CollectionService](i),
			Storefront: do.MustInvoke[*service.StorefrontService](i),
			Search:     do.MustInvoke[*service.SearchService](i),
			Tokens:     do.MustInvoke[*auth.TokenService](i),
		},
		do.MustInvoke[*SSEManagerHandle](i).Manager,
		api.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
			PublicRPS:   cfg.Server.PublicRPS,
			PublicBurst: cfg.Server.PublicBurst,
		},
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "error", err)
		}
	}()
	log.Info("http server listening", "addr", ln.Addr().String())

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
