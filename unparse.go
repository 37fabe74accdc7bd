package unparse

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/unparse/internal/logging"
	"github.com/aretw0/unparse/pkg/dispatch"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/layout"
	"github.com/aretw0/unparse/pkg/ports"
	"github.com/aretw0/unparse/pkg/walk"
)

// Unparser is the high-level entry point of the library.
// It holds only immutable configuration, so one instance can render any
// number of trees, concurrently or not.
type Unparser struct {
	definitions   domain.Definitions
	tokens        ports.TokenHandler
	layouts       ports.Registry
	walk          ports.WalkFunc
	newDispatcher ports.DispatcherFactory
	indent        string
	newline       string
	logger        *slog.Logger
}

// New assembles an Unparser from a grammar and options.
//
// The definitions are copied, the layout factories are applied in order
// and the explicit layout handlers are merged last. Malformed configuration
// is reported here rather than on first render.
func New(definitions domain.Definitions, opts ...Option) (*Unparser, error) {
	cfg := config{
		tokens:        dispatch.StringToken,
		layouts:       []ports.LayoutFactory{layout.Default},
		walk:          walk.Walk,
		newDispatcher: dispatch.Factory,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if definitions == nil {
		return nil, &domain.ConfigError{Field: "definitions", Reason: "must not be nil"}
	}
	for nodeType, rule := range definitions {
		if rule == nil {
			return nil, &domain.ConfigError{Field: "definitions", Reason: fmt.Sprintf("nil rule for %q", nodeType)}
		}
	}
	if cfg.tokens == nil {
		return nil, &domain.ConfigError{Field: "token_handler", Reason: "must not be nil"}
	}
	if cfg.walk == nil {
		return nil, &domain.ConfigError{Field: "walk", Reason: "must not be nil"}
	}
	if cfg.newDispatcher == nil {
		return nil, &domain.ConfigError{Field: "dispatcher", Reason: "must not be nil"}
	}

	registry, err := layout.Merge(cfg.layouts, cfg.layoutHandlers)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	u := &Unparser{
		definitions:   definitions.Clone(),
		tokens:        cfg.tokens,
		layouts:       registry,
		walk:          cfg.walk,
		newDispatcher: cfg.newDispatcher,
		indent:        cfg.indent,
		newline:       cfg.newline,
		logger:        logger,
	}
	u.logger.Debug("unparser configured",
		"definitions", len(u.definitions),
		"layouts", len(cfg.layouts),
		"layout_handlers", len(u.layouts),
	)
	return u, nil
}

// Unparse returns the lazy chunk sequence for root.
//
// A fresh dispatcher is built on every call. Nothing is computed until the
// sequence is ranged over; breaking out of the loop stops the traversal.
// A failure is yielded as ("", err) and ends the sequence.
func (u *Unparser) Unparse(root domain.Node) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		d, err := u.newDispatcher(ports.DispatchConfig{
			Definitions: u.definitions,
			Tokens:      u.tokens,
			Layouts:     u.layouts,
			Indent:      u.indent,
			Newline:     u.newline,
			Owned:       true,
		})
		if err != nil {
			yield("", err)
			return
		}
		prod, err := d.Production(root)
		if err != nil {
			yield("", err)
			return
		}
		for chunk, err := range u.walk(d, root, prod) {
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Render consumes the whole sequence and joins it.
func (u *Unparser) Render(root domain.Node) (string, error) {
	var sb strings.Builder
	chunks := 0
	for chunk, err := range u.Unparse(root) {
		if err != nil {
			u.logger.Warn("render failed", "node_type", domain.TypeOf(root), "chunks", chunks, "error", err)
			return "", err
		}
		sb.WriteString(chunk)
		chunks++
	}
	u.logger.Debug("render complete", "node_type", domain.TypeOf(root), "chunks", chunks, "bytes", sb.Len())
	return sb.String(), nil
}

// Stream writes the chunks of root to w as they are produced.
// It stops between chunks once ctx is done.
func (u *Unparser) Stream(ctx context.Context, w io.Writer, root domain.Node) (int64, error) {
	var written int64
	for chunk, err := range u.Unparse(root) {
		if err != nil {
			u.logger.Warn("render failed", "node_type", domain.TypeOf(root), "bytes", written, "error", err)
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := io.WriteString(w, chunk)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write chunk: %w", err)
		}
	}
	u.logger.Debug("render streamed", "node_type", domain.TypeOf(root), "bytes", written)
	return written, nil
}

// Preview renders at most maxBytes of root, consuming only as many chunks
// as needed. truncated reports whether output was cut.
func (u *Unparser) Preview(root domain.Node, maxBytes int) (text string, truncated bool, err error) {
	if maxBytes <= 0 {
		return "", false, nil
	}
	var sb strings.Builder
	for chunk, err := range u.Unparse(root) {
		if err != nil {
			return "", false, err
		}
		if room := maxBytes - sb.Len(); len(chunk) > room {
			for room > 0 && !utf8.RuneStart(chunk[room]) {
				room--
			}
			sb.WriteString(chunk[:room])
			return sb.String(), true, nil
		}
		sb.WriteString(chunk)
	}
	return sb.String(), false, nil
}

// Layouts returns a copy of the merged layout handler registry.
func (u *Unparser) Layouts() ports.Registry {
	return u.layouts.Clone()
}
