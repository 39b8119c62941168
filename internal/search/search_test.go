package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func catalogDocs() []*SearchDocument {
	return []*SearchDocument{
		{ID: "prd-1", Type: DocTypeProduct, Slug: "walnut-desk-lamp", Name: "Walnut Desk Lamp", Brand: "Lumen", Tags: []string{"lighting", "walnut"}, PriceCents: 8900},
		{ID: "prd-2", Type: DocTypeProduct, Slug: "oak-monitor-stand", Name: "Oak Monitor Stand", Brand: "Grove", Tags: []string{"oak"}, PriceCents: 12900},
		{ID: "prd-3", Type: DocTypeProduct, Slug: "felt-desk-mat", Name: "Felt Desk Mat", Brand: "Grove", Tags: []string{"felt"}, PriceCents: 3500},
		{ID: "rcp-1", Type: DocTypeRecipe, Slug: "minimal-desk", Name: "Minimal Desk Setup", Description: "A walnut and felt workspace"},
		{ID: "col-1", Type: DocTypeCollection, Slug: "lighting", Name: "Lighting Picks"},
	}
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_InMemory(t *testing.T) {
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.IndexDocument(catalogDocs()[0]))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, index.Rebuild())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	require.NoError(t, index.DeleteDocument("prd-1"))
	require.NoError(t, index.DeleteDocuments([]string{"prd-2", "prd-3"}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSearchIndex_Search_Name(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "lamp", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "prd-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeProduct, result.Hits[0].Type)
	assert.Equal(t, "walnut-desk-lamp", result.Hits[0].Slug)
	assert.Equal(t, int64(8900), result.Hits[0].PriceCents)
}

func TestSearchIndex_Search_Brand(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "grove", Types: []string{"product"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchIndex_Search_ByType(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{Types: []string{string(DocTypeRecipe)}, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "rcp-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_Tags(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{TagSlugs: []string{"oak", "felt"}, SortBy: "name", SortOrder: "asc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "prd-3", result.Hits[0].ID)
	assert.Equal(t, "prd-2", result.Hits[1].ID)
}

func TestSearchIndex_Search_Price(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{MinPrice: 5000, MaxPrice: 10000, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "prd-1", result.Hits[0].ID)

	result, err = index.Search(context.Background(), SearchParams{MinPrice: 5000, SortBy: "price", SortOrder: "desc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "prd-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_Prefix(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "Moni", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "prd-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_Facets(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocuments(catalogDocs()))

	params := DefaultSearchParams()
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.Total)

	counts := map[string]int{}
	for _, f := range result.Facets.Types {
		counts[f.Value] = f.Count
	}
	assert.Equal(t, map[string]int{"product": 3, "recipe": 1, "collection": 1}, counts)
}

func TestSearchIndex_Persistence(t *testing.T) {
	dir := t.TempDir()

	index1, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index1.IndexDocument(&SearchDocument{ID: "prd-1", Type: DocTypeProduct, Name: "Test Lamp"}))
	require.NoError(t, index1.Close())

	index2, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index2.Search(context.Background(), SearchParams{Query: "lamp", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearchIndex_LargeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large batch test in short mode")
	}
	index := setupTestIndex(t)

	docs := make([]*SearchDocument, 1000)
	for i := range docs {
		docs[i] = &SearchDocument{ID: fmt.Sprintf("prd-%04d", i), Type: DocTypeProduct, Name: fmt.Sprintf("Gadget %d", i)}
	}
	start := time.Now()
	require.NoError(t, index.IndexDocuments(docs))
	t.Logf("indexed 1000 documents in %v", time.Since(start))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), count)
}

func TestProductToSearchDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.Product{
		ID: "prd-1", Slug: "lamp", Title: "Lamp", Brand: "Lumen",
		Description: "## Lamp\n\nA **warm** lamp.", Summary: "A warm lamp.",
		PriceCents: 8900, CreatedAt: now, UpdatedAt: now,
	}
	doc := ProductToSearchDocument(p, []string{"lighting"})

	assert.Equal(t, DocTypeProduct, doc.Type)
	assert.Equal(t, "Lamp", doc.Name)
	assert.Equal(t, "A warm lamp.", doc.Description)
	assert.Equal(t, []string{"lighting"}, doc.Tags)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}

func TestRecipeToSearchDocument(t *testing.T) {
	r := &domain.Recipe{
		ID: "rcp-1", Slug: "desk", Title: "Desk",
		Images: []domain.RecipeImage{{URL: "https://cdn.example/a.jpg"}, {URL: "https://cdn.example/b.jpg"}},
	}
	doc := RecipeToSearchDocument(r)
	assert.Equal(t, DocTypeRecipe, doc.Type)
	assert.Equal(t, "https://cdn.example/a.jpg", doc.ImageURL)

	m := doc.ToMap()
	assert.Equal(t, "recipe", m["type"])
	assert.NotContains(t, m, "price_cents")
}

func TestCollectionToSearchDocument(t *testing.T) {
	doc := CollectionToSearchDocument(&domain.Collection{ID: "col-1", Slug: "picks", Title: "Picks"})
	assert.Equal(t, DocTypeCollection, doc.Type)
	assert.Equal(t, "picks", doc.Slug)
}
