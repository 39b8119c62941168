// Package cache stores rendered storefront payloads so public reads skip the
// database and the renderer. Two backends exist: an embedded Badger database
// for single-instance deployments and Redis for deployments that share one
// cache between several servers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key/value cache with per-entry TTLs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Nop is a cache that stores nothing. Every Get misses.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// DeletePrefix is a no-op.
func (Nop) DeletePrefix(context.Context, string) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	data, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}

// RecipePrefix is the key prefix shared by every cached view of a recipe.
func RecipePrefix(recipeID string) string {
	return "recipe:" + recipeID + ":"
}

// RecipeKey names the cached storefront payload of a recipe at a width.
// generation changes on every invalidation, so a payload built before one
// is written under a key no reader asks for again.
func RecipeKey(recipeID string, generation uint64, width int) string {
	return fmt.Sprintf("%sg%d:w%d", RecipePrefix(recipeID), generation, width)
}
