package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the cache directory used when none is given.
var DefaultDir = filepath.Join(".unparse", "cache")

// Cache implements ports.RenderCache on the local filesystem, one file per
// render. It lets repeated CLI renders of unchanged trees skip the walk.
type Cache struct {
	BasePath string
}

// New creates a new Cache rooted at basePath (DefaultDir if empty).
func New(basePath string) *Cache {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Cache{BasePath: basePath}
}

// Get reads the render stored under key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	path, err := c.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return string(data), true, nil
}

// Set writes the render atomically: a temp file in the same directory is
// synced, then renamed over the entry.
func (c *Cache) Set(ctx context.Context, key, text string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure cache directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(c.BasePath, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Gone after a successful rename
	}()

	if _, err := tmpFile.WriteString(text); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.BasePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		if err := os.Remove(filepath.Join(c.BasePath, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
	}
	return nil
}

func (c *Cache) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(c.BasePath, key+".txt"), nil
}
