package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pinshelf/pinshelf-server/internal/cache"
)

// ViewCache holds rendered storefront payloads keyed by recipe.
// Invalidation failures are logged; a stale entry expires with its TTL.
//
// Each recipe has an in-process generation that InvalidateRecipes bumps. Keys
// carry it, so a view built from data read before an invalidation is stored
// under the old generation and never served.
type ViewCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewViewCache wraps c. A nil c disables caching.
func NewViewCache(c cache.Cache, ttl time.Duration, logger *slog.Logger) *ViewCache {
	if c == nil {
		c = cache.Nop{}
	}
	return &ViewCache{cache: c, ttl: ttl, logger: logger, generations: make(map[string]uint64)}
}

// InvalidateRecipes drops every cached view of the given recipes.
func (v *ViewCache) InvalidateRecipes(ctx context.Context, recipeIDs ...string) {
	v.mu.Lock()
	for _, id := range recipeIDs {
		v.generations[id]++
	}
	v.mu.Unlock()

	for _, id := range recipeIDs {
		if err := v.cache.DeletePrefix(ctx, cache.RecipePrefix(id)); err != nil {
			v.logger.Warn("failed to invalidate recipe cache", "recipe_id", id, "error", err)
		}
	}
}

// key returns the current cache key of a recipe's view at width.
func (v *ViewCache) key(recipeID string, width int) string {
	v.mu.Lock()
	gen := v.generations[recipeID]
	v.mu.Unlock()
	return cache.RecipeKey(recipeID, gen, width)
}

// recipeView loads the cached view under key. ok is false on a miss or a
// decode error.
func (v *ViewCache) recipeView(ctx context.Context, key string) (*RecipeView, bool) {
	view, err := cache.GetJSON[*RecipeView](ctx, v.cache, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			v.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return view, view != nil
}

// storeRecipeView writes view under the key taken before it was built.
func (v *ViewCache) storeRecipeView(ctx context.Context, key string, view *RecipeView) {
	if err := cache.SetJSON(ctx, v.cache, key, view, v.ttl); err != nil {
		v.logger.Warn("cache write failed", "recipe_id", view.Recipe.ID, "error", err)
	}
}
