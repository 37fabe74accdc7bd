package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the adapters write.
const DefaultPrefix = "unparse:"

// Cache implements ports.RenderCache using Redis strings.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Redis cache.
type Option func(*Cache)

// WithTTL sets the expiration of cached renders. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New connects to addr (host:port) and pings the server.
func New(ctx context.Context, addr string, opts ...Option) (*Cache, error) {
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewFromClient(client, opts...), nil
}

// NewFromClient creates a cache on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (c *Cache) Client() *backend.Client {
	return c.client
}

// Prefix returns the key prefix in use.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Get returns the cached text for key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return text, true, nil
}

// Set stores text under key.
func (c *Cache) Set(ctx context.Context, key, text string) error {
	if err := c.client.Set(ctx, c.key(key), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) key(key string) string {
	return c.prefix + "render:" + key
}
