package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/unparse/internal/logging"
	"github.com/aretw0/unparse/pkg/service"
	"github.com/aretw0/unparse/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStack_EncryptedCache(t *testing.T) {
	ctx := context.Background()
	key := strings.Repeat("ab", 32)

	st, err := newStack(ctx, ServeOptions{CacheKeys: []string{key}}, logging.NewNop())
	require.NoError(t, err)
	defer st.close()

	root, err := tree.Load(ifTree)
	require.NoError(t, err)
	req := service.Request{Tree: root}

	first, err := st.svc.Render(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := st.svc.Render(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
}

func TestNewStack_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts ServeOptions
		want string
	}{
		{"Bad Cache Key", ServeOptions{CacheKeys: []string{"nothex"}}, "cache keys"},
		{"Missing Grammar Dir", ServeOptions{Grammars: "testdata/nope"}, "nope"},
		{"Redis Down", ServeOptions{RedisAddr: "127.0.0.1:1"}, "failed to connect to redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newStack(context.Background(), tt.opts, logging.NewNop())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestServeLogger(t *testing.T) {
	_, err := serveLogger("loud")
	assert.ErrorContains(t, err, "unknown log level")

	logger, err := serveLogger("warn")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), "pigeon", ServeOptions{LogLevel: "error"})
	assert.ErrorContains(t, err, "unknown transport: pigeon")
}
