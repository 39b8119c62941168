// Package main provides pinctl, the operator CLI for a pinshelf data directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/di"
)

var (
	// Global flags
	dataPath string
	envFile  string
	dbDriver string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pinctl",
	Short: "Operate a pinshelf catalog from the command line",
	Long: `pinctl works directly against a pinshelf data directory or Postgres catalog.

It issues owner tokens, seeds products and pinned recipes from YAML, renders
public recipe views and previews, and runs maintenance jobs without going
through the HTTP API.

Configuration follows the server: flags, then environment, then .env.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Base path for database, cache, index and images")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Catalog store: sqlite or postgres")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(measureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig maps the global flags onto the server's config loader.
func loadConfig() (*config.Config, error) {
	args := []string{"--env-file", envFile}
	if dataPath != "" {
		args = append(args, "--data-path", dataPath)
	}
	if dbDriver != "" {
		args = append(args, "--db-driver", dbDriver)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	args = append(args, "--log-level", level)

	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withContainer runs fn against a container that logs to stderr and is shut
// down afterwards.
func withContainer(fn func(i do.Injector) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	injector := di.NewContainerWithConfig(cfg, os.Stderr)
	defer injector.Shutdown() //nolint:errcheck // failures are logged by the services themselves
	return fn(injector)
}
