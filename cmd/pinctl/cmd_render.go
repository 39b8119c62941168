package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pinshelf/pinshelf-server/internal/service"
)

var (
	renderRecipe string
	renderWidth  int
	previewOut   string
)

// renderCmd prints the public view of a recipe.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the public view of a published recipe as JSON",
	Long: `Builds the same payload GET /api/v1/public/recipes/{idOrSlug} returns.
With --width the resolved overlay for that rendered width is included.`,
	RunE: runRender,
}

// previewCmd writes the PNG preview of a recipe.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Write the PNG preview of a published recipe",
	RunE:  runPreview,
}

func init() {
	renderCmd.Flags().StringVar(&renderRecipe, "recipe", "", "Recipe ID or slug")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Rendered width in pixels")
	_ = renderCmd.MarkFlagRequired("recipe")

	previewCmd.Flags().StringVar(&renderRecipe, "recipe", "", "Recipe ID or slug")
	previewCmd.Flags().IntVar(&renderWidth, "width", 0, "Preview width in pixels (default: intrinsic width)")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Output file (default: <recipe>.png)")
	_ = previewCmd.MarkFlagRequired("recipe")
}

func runRender(cmd *cobra.Command, _ []string) error {
	return withContainer(func(i do.Injector) error {
		storefront, err := do.Invoke[*service.StorefrontService](i)
		if err != nil {
			return err
		}

		view, err := storefront.GetRecipe(cmd.Context(), renderRecipe, renderWidth)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	})
}

func runPreview(cmd *cobra.Command, _ []string) error {
	out := previewOut
	if out == "" {
		out = renderRecipe + ".png"
	}

	return withContainer(func(i do.Injector) error {
		storefront, err := do.Invoke[*service.StorefrontService](i)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		w := bufio.NewWriter(f)

		if err := storefront.RenderPreview(cmd.Context(), w, renderRecipe, renderWidth); err != nil {
			_ = f.Close()
			_ = os.Remove(out)
			return err
		}
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
		return nil
	})
}
