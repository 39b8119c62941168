package id

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^([a-z]+)-([A-Za-z0-9_-]{21})$`)

func TestGenerate_Shape(t *testing.T) {
	for _, prefix := range []string{
		PrefixRecipe, PrefixRecipeImage, PrefixPin, PrefixProduct,
		PrefixTag, PrefixTagGroup, PrefixCollection,
	} {
		v, err := Generate(prefix)
		require.NoError(t, err)

		m := idPattern.FindStringSubmatch(v)
		require.NotNil(t, m, "id %q", v)
		assert.Equal(t, prefix, m[1])
		assert.True(t, HasPrefix(v, prefix))
	}
}

func TestGenerate_ConcurrentCallsDoNotCollide(t *testing.T) {
	const workers, each = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*each)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range each {
				v, err := Generate(PrefixPin)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[v] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*each)
}

func TestHasPrefix(t *testing.T) {
	rcp, err := Generate(PrefixRecipe)
	require.NoError(t, err)

	tests := []struct {
		name   string
		in     string
		prefix string
		want   bool
	}{
		{"generated id", rcp, PrefixRecipe, true},
		{"other prefix", rcp, PrefixProduct, false},
		{"slug", "walnut-desk-setup", PrefixRecipe, false},
		{"prefix only", "rcp-", PrefixRecipe, false},
		{"short suffix", "rcp-abc", PrefixRecipe, false},
		{"no separator", "rcp" + rcp[4:], PrefixRecipe, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPrefix(tt.in, tt.prefix))
		})
	}
}
