package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/cache"
	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/service"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store/sqlite"
)

const testOwner = "4f0b8f3e-6c4e-4a47-9d1c-2f1f2a3b4c5d"

const testSeed = `
owner: 4f0b8f3e-6c4e-4a47-9d1c-2f1f2a3b4c5d
tagGroups:
  - name: Room
tags:
  - name: Office
    group: Room
  - name: Lighting
products:
  - key: lamp
    title: Brass Desk Lamp
    tags: [Office, Lighting]
    priceCents: 8900
    affiliateUrl: https://shop.example.com/lamp
    published: true
  - title: Walnut Monitor Riser
    published: true
recipes:
  - title: Walnut Desk Setup
    published: true
    images:
      - url: https://cdn.example.com/desk.jpg
        width: 1600
        height: 900
    pins:
      - product: lamp
        dotXPercent: 42
        dotYPercent: "61"
        tagXPercent: 70
        tagYPercent: 20
        lineType: dashed
        dotColor: "#ff0000"
      - dotXPercent: 10
        dotYPercent: 10
        tagXPercent: 20
        tagYPercent: 10
collections:
  - title: Desk Lighting
    published: true
    products: [lamp, Walnut Monitor Riser]
`

func newSeedServices(t *testing.T) seedServices {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	events := sse.NewManager(logger)
	searchService := service.NewSearchService(index, st, logger)
	views := service.NewViewCache(cache.Nop{}, time.Minute, logger)
	recipes := service.NewRecipeService(st, nil, events, searchService, views, logger)

	return seedServices{
		Tag:        service.NewTagService(st, events, searchService, logger),
		Product:    service.NewProductService(st, events, searchService, views, logger),
		Recipe:     recipes,
		Pin:        service.NewPinService(st, recipes, events, views, logger),
		Collection: service.NewCollectionService(st, events, searchService, logger),
	}
}

func TestParseSeed_UnknownField(t *testing.T) {
	_, err := parseSeed(strings.NewReader("prodcts: []\n"))
	assert.Error(t, err)
}

func TestPinRequest(t *testing.T) {
	ids := map[string]string{"lamp": "prod-1"}

	req, err := pinRequest(map[string]any{
		"product":     "lamp",
		"productId":   "prod-ignored",
		"dotXPercent": 42,
		"dotYPercent": "61",
		"lineType":    "dashed",
	}, ids)
	require.NoError(t, err)
	require.NotNil(t, req.ProductID)
	assert.Equal(t, "prod-1", *req.ProductID)
	assert.Equal(t, 42.0, req.DotXPercent)
	assert.Equal(t, 61.0, req.DotYPercent)
	require.NotNil(t, req.Style.LineType)
	assert.Equal(t, "dashed", *req.Style.LineType)

	req, err = pinRequest(map[string]any{"productId": "prod-2"}, ids)
	require.NoError(t, err)
	require.NotNil(t, req.ProductID)
	assert.Equal(t, "prod-2", *req.ProductID)

	_, err = pinRequest(map[string]any{"product": "sofa"}, ids)
	assert.ErrorContains(t, err, `unknown product key "sofa"`)
}

func TestSeed(t *testing.T) {
	f, err := parseSeed(strings.NewReader(testSeed))
	require.NoError(t, err)
	require.Len(t, f.Recipes, 1)
	require.Len(t, f.Recipes[0].Pins, 2)

	svc := newSeedServices(t)
	ctx := context.Background()

	sum, err := seed(ctx, svc, f, f.Owner)
	require.NoError(t, err)
	assert.Equal(t, seedSummary{Tags: 2, Products: 2, Recipes: 1, Pins: 2, Collections: 1}, sum)

	recipes, err := svc.Recipe.ListRecipes(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.True(t, recipes[0].Published)

	products, err := svc.Product.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		if p.Title == "Brass Desk Lamp" {
			assert.Len(t, p.TagIDs, 2)
		}
	}

	pins, err := svc.Pin.ListPins(ctx, testOwner, recipes[0].ID)
	require.NoError(t, err)
	require.Len(t, pins, 2)
	require.NotNil(t, pins[0].ProductID)
	assert.Nil(t, pins[1].ProductID)
	require.NotNil(t, pins[0].DotColor)
	assert.Equal(t, "#ff0000", *pins[0].DotColor)
}

func TestSeed_UnknownCollectionProduct(t *testing.T) {
	f, err := parseSeed(strings.NewReader(`
collections:
  - title: Empty
    products: [ghost]
`))
	require.NoError(t, err)

	_, err = seed(context.Background(), newSeedServices(t), f, testOwner)
	assert.ErrorContains(t, err, `unknown product key "ghost"`)
}

func TestSeed_UnknownTagGroup(t *testing.T) {
	f, err := parseSeed(strings.NewReader(`
tags:
  - name: Office
    group: Nowhere
`))
	require.NoError(t, err)

	_, err = seed(context.Background(), newSeedServices(t), f, testOwner)
	assert.ErrorContains(t, err, `unknown group "Nowhere"`)
}
