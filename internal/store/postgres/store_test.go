package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// These tests run against a disposable database named by
// PINSHELF_TEST_POSTGRES_DSN. Every table is truncated before each test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PINSHELF_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PINSHELF_TEST_POSTGRES_DSN not set")
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := Open(dsn, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = s.db.Exec(`TRUNCATE recipes, recipe_images, recipe_pins, products, product_tags,
		tag_groups, tags, collections, collection_products CASCADE`).Error
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestRecipe(id, userID, slug string) *domain.Recipe {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Recipe{
		ID:        id,
		UserID:    userID,
		Title:     "Recipe " + slug,
		Slug:      slug,
		Images:    []domain.RecipeImage{{ID: "img-" + id, URL: "https://cdn.example/" + slug + ".jpg", Width: 1600, Height: 1200}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRecipeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := makeTestRecipe("rcp-1", "user-1", "desk")
	if err := s.CreateRecipe(ctx, r); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	got, err := s.GetRecipeBySlug(ctx, "desk")
	if err != nil {
		t.Fatalf("GetRecipeBySlug: %v", err)
	}
	if got.ID != "rcp-1" || len(got.Images) != 1 || got.Images[0].Width != 1600 {
		t.Errorf("unexpected recipe: %+v", got)
	}

	if err := s.CreateRecipe(ctx, makeTestRecipe("rcp-2", "user-1", "desk")); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := s.GetRecipe(ctx, "rcp-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishedPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"a", "b", "c"} {
		r := makeTestRecipe("rcp-"+slug, "user-1", slug)
		at := base.Add(time.Duration(i) * time.Hour)
		r.Published = true
		r.PublishedAt = &at
		if err := s.CreateRecipe(ctx, r); err != nil {
			t.Fatalf("CreateRecipe %s: %v", slug, err)
		}
	}

	page, err := s.ListPublishedRecipes(ctx, store.PaginationParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListPublishedRecipes: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].Slug != "c" || !page.HasMore || page.Total != 3 {
		t.Fatalf("unexpected first page: %+v", page)
	}
	page, err = s.ListPublishedRecipes(ctx, store.PaginationParams{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("ListPublishedRecipes: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Slug != "a" || page.HasMore {
		t.Errorf("unexpected second page: %+v", page)
	}
}

func TestPinsKeepOrderAndStyle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRecipe(ctx, makeTestRecipe("rcp-1", "user-1", "desk")); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	color := "#00ff00"
	sku := "prd-gone"
	pins := []*domain.RecipePin{
		{ID: "pin-b", DotXPercent: 10, DotYPercent: 10, TagXPercent: 20, TagYPercent: 20},
		{ID: "pin-a", ProductID: &sku, DotXPercent: 50, DotYPercent: 50, TagXPercent: 70, TagYPercent: 30,
			PinStyle: domain.PinStyle{DotColor: &color}},
	}
	if err := s.ReplacePins(ctx, "rcp-1", pins); err != nil {
		t.Fatalf("ReplacePins: %v", err)
	}

	got, err := s.ListPins(ctx, "rcp-1")
	if err != nil {
		t.Fatalf("ListPins: %v", err)
	}
	if len(got) != 2 || got[0].ID != "pin-b" || got[1].ID != "pin-a" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].DotColor == nil || *got[1].DotColor != color {
		t.Errorf("style not kept: %+v", got[1].PinStyle)
	}
	if got[1].ProductID == nil || *got[1].ProductID != sku {
		t.Errorf("dangling product link not kept")
	}

	if err := s.ReplacePins(ctx, "rcp-missing", nil); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteRecipe(ctx, "rcp-1"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, err := s.GetPin(ctx, "pin-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected pins to cascade, got %v", err)
	}
}

func TestProductTagsAndCollections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, slug := range []string{"oak", "walnut"} {
		tag := &domain.Tag{ID: "tag-" + slug, Name: slug, Slug: slug, CreatedAt: now, UpdatedAt: now}
		if err := s.CreateTag(ctx, tag); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}
	p := &domain.Product{
		ID: "prd-1", Slug: "lamp", Title: "Lamp", Currency: "USD", Published: true,
		TagIDs: []string{"tag-walnut", "tag-oak"}, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	got, err := s.ListProducts(ctx, store.ProductFilter{PublishedOnly: true, TagID: "tag-oak"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(got) != 1 || len(got[0].TagIDs) != 2 || got[0].TagIDs[0] != "tag-walnut" {
		t.Fatalf("unexpected products: %+v", got)
	}

	c := &domain.Collection{
		ID: "col-1", UserID: "user-1", Title: "Desk", Slug: "desk",
		ProductIDs: []string{"prd-1"}, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCollection(ctx, c); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if err := s.DeleteProduct(ctx, "prd-1"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	gotC, err := s.GetCollection(ctx, "col-1")
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if len(gotC.ProductIDs) != 0 {
		t.Errorf("expected product link to cascade, got %v", gotC.ProductIDs)
	}
}
