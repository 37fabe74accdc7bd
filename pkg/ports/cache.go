package ports

import "context"

// RenderCache stores rendered output keyed by a digest of the render request.
// It is used by the service adapters (HTTP, MCP); the core never caches.
type RenderCache interface {
	// Get returns the cached text and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores text under key.
	Set(ctx context.Context, key, text string) error
}
