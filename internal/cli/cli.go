// Package cli implements the unparse commands behind cmd/unparse.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/unparse/internal/logging"
	"github.com/aretw0/unparse/pkg/adapters/file"
	"github.com/aretw0/unparse/pkg/adapters/memory"
	"github.com/aretw0/unparse/pkg/service"
	"github.com/aretw0/unparse/pkg/tree"
)

// Options are the settings shared by the rendering commands.
type Options struct {
	Grammar  string    // Built-in name or grammar file path
	Grammars string    // Directory of extra grammar files
	Minify   bool      // Compact output
	Indent   string    // Indentation unit override
	Limit    int       // Byte budget; 0 renders everything
	CacheDir string    // Render cache directory; empty disables caching
	Debug    bool      // Log to stderr
	Color    bool      // Allow colored output on terminals
	Stdin    io.Reader // Source of the "-" tree path (default os.Stdin)
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from rendered output).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// newService builds the render service for one CLI invocation.
func newService(opts Options, logger *slog.Logger) (*service.Service, error) {
	svcOpts := []service.Option{service.WithLogger(logger)}
	if opts.Grammars != "" {
		gs, err := LoadGrammarDir(opts.Grammars)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, service.WithResolver(gs))
	}
	if opts.CacheDir != "" {
		svcOpts = append(svcOpts, service.WithCache(file.New(opts.CacheDir)))
	}
	return service.New(svcOpts...), nil
}

// LoadGrammarDir compiles every .yaml and .yml file in dir.
func LoadGrammarDir(dir string) (*memory.Grammars, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar directory: %w", err)
	}
	data := make(map[string]string)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains([]string{".yaml", ".yml"}, ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read grammar: %w", err)
		}
		data[path] = string(content)
	}
	return memory.NewGrammars(data)
}

// loadTree reads a tree file, or stdin for "-".
func loadTree(path string, stdin io.Reader) (*tree.Node, error) {
	if path != "-" {
		return tree.Load(path)
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	return tree.ParseUntrusted(string(data))
}

func (o Options) request(root *tree.Node) service.Request {
	return service.Request{Grammar: o.Grammar, Minify: o.Minify, Indent: o.Indent, Tree: root}
}

// GrammarNames lists the grammars resolvable by name.
func GrammarNames(opts Options) ([]string, error) {
	svc, err := newService(opts, createLogger(opts.Debug))
	if err != nil {
		return nil, err
	}
	return svc.Grammars(), nil
}
