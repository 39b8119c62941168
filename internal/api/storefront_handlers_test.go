package api

import (
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/service"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

func TestPublicRecipes_ListsPublishedOnly(t *testing.T) {
	ts := setupTestServer(t)
	ts.publish(t, ts.createRecipe(t, "Desk"))
	ts.createRecipe(t, "Draft")

	resp := ts.api.Get("/api/v1/public/recipes")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	page := decode[store.PaginatedResult[service.RecipeSummary]](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "desk", page.Items[0].Slug)
	assert.False(t, page.HasMore)
	require.NotNil(t, page.Items[0].BaseImage)
}

func TestPublicRecipe_View(t *testing.T) {
	ts := setupTestServer(t)
	r := ts.createRecipe(t, "Desk")
	lamp := ts.createProduct(t, "lamp", true)
	ts.addPin(t, r.ID, &lamp.ID)
	ts.publish(t, r)

	resp := ts.api.Get("/api/v1/public/recipes/desk")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view := decode[service.RecipeView](t, resp).Data
	assert.Equal(t, r.ID, view.Recipe.ID)
	require.Len(t, view.Pins, 1)
	assert.Equal(t, lamp.ID, view.Pins[0].ProductID)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Overlay)

	resp = ts.api.Get("/api/v1/public/recipes/" + r.ID + "?width=400")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	view = decode[service.RecipeView](t, resp).Data
	assert.Equal(t, 400, view.Width)
	require.NotNil(t, view.Overlay)
}

func TestPublicRecipe_DraftIsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	r := ts.createRecipe(t, "Draft")

	resp := ts.api.Get("/api/v1/public/recipes/" + r.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}

func TestPublicRecipe_WidthTooLarge(t *testing.T) {
	ts := setupTestServer(t)
	ts.publish(t, ts.createRecipe(t, "Desk"))

	resp := ts.api.Get("/api/v1/public/recipes/desk?width=100000")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPublicProducts(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "lamp", true)
	ts.createProduct(t, "hidden", false)

	resp := ts.api.Get("/api/v1/public/products")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	products := decode[PublicProductsResponse](t, resp).Data.Products
	require.Len(t, products, 1)
	assert.Equal(t, "lamp", products[0].Title)

	resp = ts.api.Get("/api/v1/public/products/" + products[0].Slug)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(4999), decode[service.ProductView](t, resp).Data.PriceCents)

	resp = ts.api.Get("/api/v1/public/products/hidden")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPublicTags_Empty(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/public/tags")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[any](t, resp).Success)
}

func TestPublicCollections(t *testing.T) {
	ts := setupTestServer(t)
	lamp := ts.createProduct(t, "lamp", true)

	c, err := ts.services.Collection.CreateCollection(context.Background(), ownerID, service.CollectionRequest{
		Title:      "Desk Lighting",
		Published:  true,
		ProductIDs: []string{lamp.ID},
	})
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/public/collections")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	collections := decode[PublicCollectionsResponse](t, resp).Data.Collections
	require.Len(t, collections, 1)

	resp = ts.api.Get("/api/v1/public/collections/" + c.Slug)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "walnut", true)
	ts.createProduct(t, "brass", true)

	resp := ts.api.Get("/api/v1/public/search?q=walnut&type=product")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[search.SearchResult](t, resp).Data
	assert.Equal(t, uint64(1), result.Total)
}

func TestRecipePage(t *testing.T) {
	ts := setupTestServer(t)
	r := ts.createRecipe(t, "Desk <Setup>")
	lamp := ts.createProduct(t, "lamp", true)
	ts.addPin(t, r.ID, &lamp.ID)
	ts.publish(t, r)

	req := httptest.NewRequest(http.MethodGet, "/r/"+r.Slug, http.NoBody)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Desk &lt;Setup&gt;")
	assert.Contains(t, body, lamp.ID)
}

func TestRecipePage_Errors(t *testing.T) {
	ts := setupTestServer(t)
	draft := ts.createRecipe(t, "Draft")

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"draft", "/r/" + draft.Slug, http.StatusNotFound},
		{"unknown", "/r/nope", http.StatusNotFound},
		{"bad width", "/r/" + draft.Slug + "?width=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestRecipePreview(t *testing.T) {
	ts := setupTestServer(t)
	r := ts.createRecipe(t, "Desk")
	ts.addPin(t, r.ID, nil)
	ts.publish(t, r)

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/"+r.Slug+"/preview.png?width=400", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	cfg, err := png.DecodeConfig(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestRecipePage_RateLimited(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{PublicRPS: 0.001, PublicBurst: 1})

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/nope", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/nope", http.NoBody))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
