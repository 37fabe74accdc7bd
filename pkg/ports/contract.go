package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRenderCacheContract runs a suite of tests to verify that a RenderCache implementation
// adheres to the defined interface contract.
func RunRenderCacheContract(t *testing.T, cache RenderCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := cache.Set(ctx, key, "if (a) {\n    b;\n}")
		require.NoError(t, err, "Set should not return error")

		text, ok, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.True(t, ok)
		assert.Equal(t, "if (a) {\n    b;\n}", text)
	})

	t.Run("Get Missing", func(t *testing.T) {
		text, ok, err := cache.Get(ctx, "missing-"+key)
		require.NoError(t, err, "a miss is not an error")
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key+"-w", "first"))
		require.NoError(t, cache.Set(ctx, key+"-w", "second"))

		text, ok, err := cache.Get(ctx, key+"-w")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", text)
	})

	t.Run("Empty Text", func(t *testing.T) {
		// An empty render (e.g. an empty program) is a valid cached value.
		require.NoError(t, cache.Set(ctx, key+"-e", ""))

		text, ok, err := cache.Get(ctx, key+"-e")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, text)
	})
}
