package dispatch

import (
	"fmt"
	"strings"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
)

const (
	// DefaultIndent is the indentation unit used when none is configured.
	DefaultIndent = "    "
	// DefaultNewline is the line terminator used when none is configured.
	DefaultNewline = "\n"
)

// Dispatcher is the default ports.Dispatcher.
// It is immutable once built: definitions and registry are copied at
// construction, so later changes to the caller's maps have no effect.
// Owned inputs are used as they are.
type Dispatcher struct {
	definitions domain.Definitions
	tokens      ports.TokenHandler
	layouts     ports.Registry
	maxKey      int
	indent      string
	newline     string
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// New validates cfg and builds a Dispatcher from it.
// Empty Indent and Newline fall back to DefaultIndent and DefaultNewline.
func New(cfg ports.DispatchConfig) (*Dispatcher, error) {
	if cfg.Definitions == nil {
		return nil, &domain.ConfigError{Field: "definitions", Reason: "must not be nil"}
	}
	if cfg.Tokens == nil {
		return nil, &domain.ConfigError{Field: "token_handler", Reason: "must not be nil"}
	}
	if err := ValidateRegistry(cfg.Layouts); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		definitions: cfg.Definitions,
		tokens:      cfg.Tokens,
		layouts:     cfg.Layouts,
		indent:      cfg.Indent,
		newline:     cfg.Newline,
	}
	if !cfg.Owned {
		d.definitions = d.definitions.Clone()
		d.layouts = d.layouts.Clone()
	}
	if d.indent == "" {
		d.indent = DefaultIndent
	}
	if d.newline == "" {
		d.newline = DefaultNewline
	}
	for key := range d.layouts {
		if key.Len() > d.maxKey {
			d.maxKey = key.Len()
		}
	}
	return d, nil
}

// Factory adapts New to ports.DispatcherFactory.
func Factory(cfg ports.DispatchConfig) (ports.Dispatcher, error) {
	d, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ValidateRegistry checks every key and handler of a registry.
func ValidateRegistry(r ports.Registry) error {
	for key, h := range r {
		if err := key.Validate(); err != nil {
			return &domain.ConfigError{Field: "layout_handlers", Reason: err.Error()}
		}
		if h == nil {
			return &domain.ConfigError{Field: "layout_handlers", Reason: fmt.Sprintf("nil handler for %s", key)}
		}
	}
	return nil
}

// Production looks up the rule for node's type and applies it.
func (d *Dispatcher) Production(node domain.Node) (domain.Production, error) {
	if node == nil {
		return nil, &domain.DefinitionError{NodeType: domain.TypeOf(node)}
	}
	rule, ok := d.definitions[node.NodeType()]
	if !ok || rule == nil {
		return nil, &domain.DefinitionError{NodeType: node.NodeType()}
	}
	return rule(node)
}

// Token renders a literal through the configured token handler.
func (d *Dispatcher) Token(node domain.Node, value any) (string, error) {
	return d.tokens(d, node, value)
}

// Layout returns the handler registered for key.
func (d *Dispatcher) Layout(key domain.Key) (ports.LayoutHandler, bool) {
	h, ok := d.layouts[key]
	return h, ok
}

// MaxKeyLen is the length of the longest registered key (0 for an empty registry).
func (d *Dispatcher) MaxKeyLen() int { return d.maxKey }

// Indentation repeats the indentation unit depth times.
func (d *Dispatcher) Indentation(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(d.indent, depth)
}

// Newline returns the configured line terminator.
func (d *Dispatcher) Newline() string { return d.newline }

// IndentUnit returns the configured indentation unit.
func (d *Dispatcher) IndentUnit() string { return d.indent }
