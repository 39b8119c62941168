// Command api serves the pinshelf admin API and public storefront.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/di"
	"github.com/pinshelf/pinshelf-server/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "pinshelf: startup failed: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	<-ctx.Done()
	stop()
	log.Info("shutdown requested")

	// Services stop in reverse dependency order, the HTTP server first.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
	log.Info("server stopped")
}
