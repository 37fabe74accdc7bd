package memory

import (
	"context"
	"sync"
)

// Cache implements ports.RenderCache in memory.
// Safe for concurrent use. Entries never expire; use the redis adapter for
// shared or bounded caches.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewCache creates a new in-memory render cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get returns the cached text for key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text, ok := c.data[key]
	return text, ok, nil
}

// Set stores text under key.
func (c *Cache) Set(ctx context.Context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = text
	return nil
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
