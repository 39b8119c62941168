package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pinshelf/pinshelf-server/internal/service"
)

var (
	seedPath  string
	seedOwner string
)

// seedCmd loads a YAML catalog into the store.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tags, products, pinned recipes and collections from YAML",
	Long: `Creates the catalog described in a YAML file. Products reference tags by
name; pins reference products by key and accept the same coordinate and style
attributes as the JSON API:

  owner: 4f0b8f3e-6c4e-4a47-9d1c-2f1f2a3b4c5d
  tagGroups:
    - name: Room
  tags:
    - name: Office
      group: Room
  products:
    - key: lamp
      title: Brass Desk Lamp
      priceCents: 8900
      affiliateUrl: https://shop.example.com/lamp
      published: true
      tags: [Office]
  recipes:
    - title: Walnut Desk Setup
      published: true
      images:
        - url: https://cdn.example.com/desk.jpg
      pins:
        - product: lamp
          dotXPercent: 42
          dotYPercent: 61
          tagXPercent: 70
          tagYPercent: 20
          lineType: dashed`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedPath, "file", "f", "", "Seed YAML file")
	seedCmd.Flags().StringVar(&seedOwner, "owner", "", "Owner ID (overrides the file)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	in, err := os.Open(seedPath)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer in.Close()

	f, err := parseSeed(in)
	if err != nil {
		return err
	}

	owner := f.Owner
	if seedOwner != "" {
		owner = seedOwner
	}
	if owner == "" && (len(f.Recipes) > 0 || len(f.Collections) > 0) {
		return errors.New("recipes and collections need an owner: set owner in the file or pass --owner")
	}

	return withContainer(func(i do.Injector) error {
		svc := seedServices{
			Tag:        do.MustInvoke[*service.TagService](i),
			Product:    do.MustInvoke[*service.ProductService](i),
			Recipe:     do.MustInvoke[*service.RecipeService](i),
			Pin:        do.MustInvoke[*service.PinService](i),
			Collection: do.MustInvoke[*service.CollectionService](i),
		}

		sum, err := seed(cmd.Context(), svc, f, owner)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tags, %d products, %d recipes, %d pins, %d collections\n",
			sum.Tags, sum.Products, sum.Recipes, sum.Pins, sum.Collections)
		return nil
	})
}
