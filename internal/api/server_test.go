package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/auth"
	"github.com/pinshelf/pinshelf-server/internal/cache"
	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/preview"
	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/service"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store/sqlite"
)

const (
	ownerID = "4f0b8f3e-6c4e-4a47-9d1c-2f1f2a3b4c5d"
	otherID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// testEnvelope mirrors both envelope shapes for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api        humatest.TestAPI
	services   *Services
	sseManager *sse.Manager
	ownerToken string
	otherToken string
}

// setupTestServer wires a Server over a temporary SQLite store, an in-memory
// Badger cache and an in-memory search index.
func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{PublicRPS: 1000, PublicBurst: 1000})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cache.OpenBadger("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), 15*time.Minute)
	require.NoError(t, err)

	renderer, err := preview.New("", logger)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)

	searchService := service.NewSearchService(index, st, logger)
	views := service.NewViewCache(c, time.Minute, logger)
	recipes := service.NewRecipeService(st, nil, sseManager, searchService, views, logger)
	services := &Services{
		Recipe:     recipes,
		Pin:        service.NewPinService(st, recipes, sseManager, views, logger),
		Product:    service.NewProductService(st, sseManager, searchService, views, logger),
		Tag:        service.NewTagService(st, sseManager, searchService, logger),
		Collection: service.NewCollectionService(st, sseManager, searchService, logger),
		Storefront: service.NewStorefrontService(st, views, searchService, service.StorefrontOptions{Preview: renderer}, logger),
		Search:     searchService,
		Tokens:     tokens,
	}

	s := NewServer(st, services, sseManager, opts, logger)
	t.Cleanup(s.Close)

	ts := &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.API()),
		services:   services,
		sseManager: sseManager,
	}
	ts.ownerToken = issueToken(t, tokens, ownerID)
	ts.otherToken = issueToken(t, tokens, otherID)
	return ts
}

func issueToken(t *testing.T, tokens *auth.TokenService, userID string) string {
	t.Helper()
	token, _, err := tokens.GenerateAccessToken(userID)
	require.NoError(t, err)
	return token
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

func (ts *testServer) createProduct(t *testing.T, title string, published bool) *domain.Product {
	t.Helper()
	p, err := ts.services.Product.CreateProduct(context.Background(), service.CreateProductRequest{
		Title:        title,
		PriceCents:   4999,
		AffiliateURL: "https://shop.example.com/" + title,
		Published:    published,
	})
	require.NoError(t, err)
	return p
}

// createRecipe creates an 800x600 draft recipe owned by ownerID.
func (ts *testServer) createRecipe(t *testing.T, title string) *domain.Recipe {
	t.Helper()
	r, err := ts.services.Recipe.CreateRecipe(context.Background(), ownerID, service.CreateRecipeRequest{
		Title:  title,
		Images: []service.ImageRequest{{URL: "https://cdn.example.com/desk.jpg", Width: 800, Height: 600}},
	})
	require.NoError(t, err)
	return r
}

func (ts *testServer) publish(t *testing.T, r *domain.Recipe) *domain.Recipe {
	t.Helper()
	r, err := ts.services.Recipe.SetPublished(context.Background(), ownerID, r.ID, true)
	require.NoError(t, err)
	return r
}

func (ts *testServer) addPin(t *testing.T, recipeID string, productID *string) *domain.RecipePin {
	t.Helper()
	p, err := ts.services.Pin.CreatePin(context.Background(), ownerID, recipeID, service.PinRequest{
		ProductID:   productID,
		DotXPercent: 25,
		DotYPercent: 50,
		TagXPercent: 60,
		TagYPercent: 20,
	})
	require.NoError(t, err)
	return p
}

// === Tests ===

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.V)
	assert.Equal(t, statusHealthy, env.Data.Components["database"].Status)
	assert.Equal(t, "0 connected clients", env.Data.Components["sse"].Message)

	// A fresh index is empty, so the server reports degraded.
	assert.Equal(t, statusDegraded, env.Data.Components["search"].Status)
	assert.Equal(t, statusDegraded, env.Data.Status)
}

func TestHealthCheck_HealthyAfterIndexing(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "lamp", true)

	resp := ts.api.Get("/health")
	env := decode[HealthResponse](t, resp)
	assert.Equal(t, statusHealthy, env.Data.Components["search"].Status)
	assert.Equal(t, statusHealthy, env.Data.Status)
}

func TestAuth_MissingToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/recipes")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestAuth_InvalidTokenIsAnonymous(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/recipes", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/api/v1/recipes", "Bearer abc", "abc"},
		{"other scheme", "/api/v1/recipes", "Basic abc", ""},
		{"query ignored outside events", "/api/v1/recipes?token=abc", "", ""},
		{"query on events", "/api/v1/events?token=abc", "", "abc"},
		{"header wins on events", "/api/v1/events?token=abc", "Bearer xyz", "xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, bearerToken(r))
		})
	}
}

func TestAuthMiddleware_SetsUser(t *testing.T) {
	ts := setupTestServer(t)

	var got string
	h := authMiddleware(ts.services.Tokens)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = userIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", http.NoBody)
	r.Header.Set("Authorization", "Bearer "+ts.ownerToken)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, ownerID, got)

	got = "unset"
	h = authMiddleware(nil)(h)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Empty(t, got)
}

func TestCORS_PublicOnly(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{
		CORSOrigins: []string{"https://shop.example.com"},
		PublicRPS:   1000,
		PublicBurst: 1000,
	})

	resp := ts.api.Get("/api/v1/public/tags", "Origin: https://shop.example.com")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "https://shop.example.com", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = ts.api.Get("/api/v1/public/tags", "Origin: https://evil.example.com")
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))

	resp = ts.api.Get("/health", "Origin: https://shop.example.com")
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_PublicRoutes(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{PublicRPS: 0.001, PublicBurst: 2})

	for range 2 {
		resp := ts.api.Get("/api/v1/public/tags")
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/public/tags")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Owner routes are not limited.
	for range 5 {
		resp = ts.api.Get("/api/v1/recipes", bearer(ts.ownerToken))
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7", getClientIP(r))

	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", getClientIP(r))
}

func TestReindex(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "lamp", true)
	ts.createProduct(t, "draft", false)
	ts.publish(t, ts.createRecipe(t, "Desk"))

	resp := ts.api.Post("/api/v1/search/reindex", bearer(ts.ownerToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ReindexResponse](t, resp)
	assert.Equal(t, 2, env.Data.Documents)

	resp = ts.api.Post("/api/v1/search/reindex")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
