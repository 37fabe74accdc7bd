package unparse

import (
	"log/slog"

	"github.com/aretw0/unparse/pkg/ports"
)

type config struct {
	tokens         ports.TokenHandler
	layouts        []ports.LayoutFactory
	layoutHandlers ports.Registry
	walk           ports.WalkFunc
	newDispatcher  ports.DispatcherFactory
	indent         string
	newline        string
	logger         *slog.Logger
}

// Option defines a functional option for configuring the Unparser.
type Option func(*config)

// WithTokenHandler sets the handler that renders literal tokens (default: dispatch.StringToken).
func WithTokenHandler(h ports.TokenHandler) Option {
	return func(c *config) {
		c.tokens = h
	}
}

// WithLayouts replaces the ordered list of layout presets (default: layout.Default).
// Presets are applied in order; later ones win on key collisions.
func WithLayouts(factories ...ports.LayoutFactory) Option {
	return func(c *config) {
		c.layouts = factories
	}
}

// WithLayoutHandlers sets ad-hoc layout handlers, merged after every preset.
// Calling it again adds to the previous overrides.
func WithLayoutHandlers(handlers ports.Registry) Option {
	return func(c *config) {
		if c.layoutHandlers == nil {
			c.layoutHandlers = make(ports.Registry, len(handlers))
		}
		for k, h := range handlers {
			c.layoutHandlers[k] = h
		}
	}
}

// WithWalk swaps the traversal procedure (default: walk.Walk).
func WithWalk(w ports.WalkFunc) Option {
	return func(c *config) {
		c.walk = w
	}
}

// WithDispatcherFactory swaps the dispatcher constructor (default: dispatch.Factory).
func WithDispatcherFactory(f ports.DispatcherFactory) Option {
	return func(c *config) {
		c.newDispatcher = f
	}
}

// WithIndent sets the indentation unit repeated once per depth level (default: four spaces).
func WithIndent(unit string) Option {
	return func(c *config) {
		c.indent = unit
	}
}

// WithNewline sets the line terminator (default: "\n").
func WithNewline(nl string) Option {
	return func(c *config) {
		c.newline = nl
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
