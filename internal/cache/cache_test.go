package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Cache {
	t.Helper()
	out := map[string]Cache{}

	b, err := OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	out["badger"] = b

	if addr := os.Getenv("PINSHELF_TEST_REDIS_ADDR"); addr != "" {
		ns := "pinshelf-test:" + t.Name() + ":"
		r, err := OpenRedis(context.Background(), addr, "", 0, ns, nil)
		require.NoError(t, err)
		t.Cleanup(func() {
			r.DeletePrefix(context.Background(), "")
			r.Close()
		})
		out["redis"] = r
	}
	return out
}

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
			got, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
		})
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, RecipeKey("rcp-1", 0, 800), []byte("a"), time.Minute))
			require.NoError(t, c.Set(ctx, RecipeKey("rcp-1", 0, 1200), []byte("b"), time.Minute))
			require.NoError(t, c.Set(ctx, RecipeKey("rcp-10", 0, 800), []byte("c"), time.Minute))

			require.NoError(t, c.DeletePrefix(ctx, RecipePrefix("rcp-1")))

			_, err := c.Get(ctx, RecipeKey("rcp-1", 0, 800))
			assert.ErrorIs(t, err, ErrMiss)
			_, err = c.Get(ctx, RecipeKey("rcp-1", 0, 1200))
			assert.ErrorIs(t, err, ErrMiss)

			got, err := c.Get(ctx, RecipeKey("rcp-10", 0, 800))
			require.NoError(t, err)
			assert.Equal(t, "c", string(got))
		})
	}
}

func TestCache_JSON(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBadger("", nil)
	require.NoError(t, err)
	defer b.Close()

	type payload struct {
		Title string `json:"title"`
		Width int    `json:"width"`
	}
	require.NoError(t, SetJSON(ctx, b, "p", payload{Title: "Desk", Width: 800}, 0))

	got, err := GetJSON[payload](ctx, b, "p")
	require.NoError(t, err)
	assert.Equal(t, payload{Title: "Desk", Width: 800}, got)

	_, err = GetJSON[payload](ctx, b, "nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRecipeKey(t *testing.T) {
	assert.Equal(t, "recipe:rcp-1:g0:w800", RecipeKey("rcp-1", 0, 800))
	assert.Equal(t, "recipe:rcp-1:g3:w800", RecipeKey("rcp-1", 3, 800))
}
