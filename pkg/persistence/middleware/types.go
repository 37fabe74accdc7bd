// Package middleware wraps render caches with extra behavior.
package middleware

import "github.com/aretw0/unparse/pkg/ports"

// Middleware allows wrapping a RenderCache to add behavior.
type Middleware func(ports.RenderCache) ports.RenderCache

// Chain applies mws to cache so that the first one is outermost.
func Chain(cache ports.RenderCache, mws ...Middleware) ports.RenderCache {
	for i := len(mws) - 1; i >= 0; i-- {
		cache = mws[i](cache)
	}
	return cache
}
