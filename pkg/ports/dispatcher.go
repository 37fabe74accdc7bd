package ports

import (
	"iter"

	"github.com/aretw0/unparse/pkg/domain"
)

// Dispatcher binds a grammar, a token handler and a layout handler registry
// into a single read-only lookup used by the walk and by handlers.
type Dispatcher interface {
	// Production returns the production for node, or a *domain.DefinitionError
	// when its type has no rule.
	Production(node domain.Node) (domain.Production, error)

	// Token renders a literal token that belongs to node.
	Token(node domain.Node, value any) (string, error)

	// Layout returns the handler registered for key.
	Layout(key domain.Key) (LayoutHandler, bool)

	// MaxKeyLen is the length of the longest key in the registry.
	MaxKeyLen() int

	// Indentation returns the leading whitespace for the given depth.
	Indentation(depth int) string

	// Newline returns the line terminator.
	Newline() string
}

// TokenHandler renders a literal token to text.
type TokenHandler func(d Dispatcher, node domain.Node, value any) (string, error)

// LayoutHandler resolves a marker (or a composite run of markers) to text,
// given the chunk emitted immediately before and the chunk about to follow.
// Either may be empty at tree boundaries. An empty result means no output.
type LayoutHandler func(d Dispatcher, node domain.Node, before, after string) (string, error)

// Registry maps layout keys to handlers.
type Registry map[domain.Key]LayoutHandler

// Clone returns a shallow copy of the registry.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// LayoutFactory produces a registry fragment (a preset).
type LayoutFactory func() Registry

// WalkFunc expands prod (the production of node) into a lazy sequence of chunks.
type WalkFunc func(d Dispatcher, node domain.Node, prod domain.Production) iter.Seq2[string, error]

// DispatchConfig is everything a dispatcher is built from.
type DispatchConfig struct {
	Definitions domain.Definitions
	Tokens      TokenHandler
	Layouts     Registry
	Indent      string // Indentation unit, repeated once per depth level
	Newline     string // Line terminator

	// Owned marks Definitions and Layouts as private to the caller and never
	// modified again, so a dispatcher may use them without copying.
	Owned bool
}

// DispatcherFactory builds a Dispatcher for a single render.
type DispatcherFactory func(cfg DispatchConfig) (Dispatcher, error)
