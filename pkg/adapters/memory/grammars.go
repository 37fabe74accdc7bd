package memory

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/unparse/pkg/grammar"
)

// Grammars is a fixed set of grammars compiled from YAML held in memory.
// Names not in the set resolve through grammar.Resolve (built-ins, then files).
type Grammars struct {
	byName map[string]*grammar.Grammar
}

// NewGrammars compiles every document. Keys are only used in error messages;
// grammars are registered under their declared name.
func NewGrammars(data map[string]string) (*Grammars, error) {
	byName := make(map[string]*grammar.Grammar, len(data))
	for _, key := range slices.Sorted(maps.Keys(data)) {
		g, err := grammar.Parse([]byte(data[key]))
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", key, err)
		}
		if _, dup := byName[g.Name]; dup {
			return nil, fmt.Errorf("grammar %s: duplicate name %q", key, g.Name)
		}
		byName[g.Name] = g
	}
	return &Grammars{byName: byName}, nil
}

// NewFromGrammars wraps already compiled grammars.
func NewFromGrammars(gs ...*grammar.Grammar) *Grammars {
	byName := make(map[string]*grammar.Grammar, len(gs))
	for _, g := range gs {
		byName[g.Name] = g
	}
	return &Grammars{byName: byName}
}

// Resolve returns the named grammar.
func (s *Grammars) Resolve(name string) (*grammar.Grammar, error) {
	if g, ok := s.byName[name]; ok {
		return g, nil
	}
	return grammar.Resolve(name)
}

// Names returns the in-memory grammar names followed by the built-ins,
// sorted and without duplicates.
func (s *Grammars) Names() []string {
	names := slices.Collect(maps.Keys(s.byName))
	names = append(names, grammar.Names()...)
	slices.Sort(names)
	return slices.Compact(names)
}
