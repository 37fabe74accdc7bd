package grammar

import (
	"embed"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/unparse/pkg/domain"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var loadBuiltins = sync.OnceValues(func() (map[string]*Grammar, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Grammar, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return nil, err
		}
		g, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		out[g.Name] = g
	}
	return out, nil
})

// Names lists the built-in grammars, sorted.
func Names() []string {
	builtins, err := loadBuiltins()
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(builtins))
}

// Builtin returns a built-in grammar by name. The result is shared.
func Builtin(name string) (*Grammar, error) {
	builtins, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	g, ok := builtins[name]
	if !ok {
		return nil, &domain.ConfigError{
			Field:  "grammar",
			Reason: fmt.Sprintf("unknown grammar %q (built-in: %s)", name, strings.Join(Names(), ", ")),
		}
	}
	return g, nil
}

// Resolve returns the built-in grammar called ref, or loads ref as a file path.
func Resolve(ref string) (*Grammar, error) {
	if ref == "" {
		return nil, &domain.ConfigError{Field: "grammar", Reason: "must not be empty"}
	}
	if g, err := Builtin(ref); err == nil {
		return g, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return Builtin(ref)
	}
	return Load(ref)
}
