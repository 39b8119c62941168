package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pinshelf/pinshelf-server/internal/service"
)

// reindexCmd rebuilds the search index from the store.
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(func(i do.Injector) error {
			searchService, err := do.Invoke[*service.SearchService](i)
			if err != nil {
				return err
			}
			n, err := searchService.Reindex(cmd.Context())
			if err != nil {
				return fmt.Errorf("reindex: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents\n", n)
			return nil
		})
	},
}

// measureCmd fills in missing image dimensions and blurhashes.
var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Measure published recipe images that lack dimensions",
	Long: `Fetches every published recipe image with no stored width, height or
blurhash and records what it finds. Author-supplied dimensions are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(func(i do.Injector) error {
			recipes, err := do.Invoke[*service.RecipeService](i)
			if err != nil {
				return err
			}
			n, err := recipes.MeasureImages(cmd.Context())
			if err != nil {
				return fmt.Errorf("measure images: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "measured %d images\n", n)
			return nil
		})
	},
}
