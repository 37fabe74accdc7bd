// Package grammar loads declarative grammars for trees built with pkg/tree.
//
// A grammar file is YAML. Each rule lists the production entries for one
// node type:
//
//	name: mini
//	indent: "  "
//	rules:
//	  If: [if, <space>, {field: test}, ":", {field: body}]
//	  Suite: [<indent>, <newline>, {children: true, separator: [<newline>]}, <dedent>]
//	  Name: [<value>]
//
// Scalar entries are layout markers (<space>, <optional_space>, <newline>,
// <optional_newline>, <indent>, <dedent>), the node value (<value>, or
// <quoted> for a quoted string), or literal text. Mapping entries are
// {text: ...} for literal text that would otherwise read as a placeholder,
// {field: name} for a named child and {children: true} for the child list.
// Field and children entries take optional before and after entry lists,
// dropped along with a missing field or an empty child list; children also
// take a separator list.
package grammar

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/unparse"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/layout"
	"github.com/aretw0/unparse/pkg/lexer"
	"github.com/aretw0/unparse/pkg/ports"
	"github.com/aretw0/unparse/pkg/tree"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a grammar.
type File struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Indent      string           `yaml:"indent"`
	Spacing     Spacing          `yaml:"spacing"`
	Operators   []string         `yaml:"operators"`
	Rules       map[string][]any `yaml:"rules"`
}

// Spacing configures the optional-space policy of the grammar.
type Spacing struct {
	NoSpaceAfter  *string  `yaml:"no_space_after"`
	NoSpaceBefore *string  `yaml:"no_space_before"`
	Tight         []string `yaml:"tight"`
}

// Grammar is a compiled grammar file. It must not be modified once built.
type Grammar struct {
	Name        string
	Description string
	Indent      string
	Policy      layout.SpacePolicy
	Definitions domain.Definitions

	rules  map[string][]any
	digest string
}

// Parse compiles a grammar from YAML. Unknown keys, placeholders and
// malformed entries are rejected.
func Parse(data []byte) (*Grammar, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse grammar: %w", err)
	}
	return Compile(f)
}

// Load reads and compiles a grammar file.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Compile turns a decoded grammar file into definitions and a spacing policy.
func Compile(f File) (*Grammar, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, &domain.ConfigError{Field: "name", Reason: "must not be empty"}
	}
	if len(f.Rules) == 0 {
		return nil, &domain.ConfigError{Field: "rules", Reason: "grammar has no rules"}
	}

	policy := layout.DefaultSpacePolicy
	if f.Spacing.NoSpaceAfter != nil {
		policy.NoSpaceAfter = *f.Spacing.NoSpaceAfter
	}
	if f.Spacing.NoSpaceBefore != nil {
		policy.NoSpaceBefore = *f.Spacing.NoSpaceBefore
	}
	if len(f.Operators) > 0 {
		policy.Lexer = lexer.New(f.Operators...)
	}
	if len(f.Spacing.Tight) > 0 {
		policy.Tight = make(map[string]bool, len(f.Spacing.Tight))
		for _, nodeType := range f.Spacing.Tight {
			policy.Tight[nodeType] = true
		}
	}

	defs := make(domain.Definitions, len(f.Rules))
	for name, entries := range f.Rules {
		if strings.TrimSpace(name) == "" {
			return nil, &domain.ConfigError{Field: "rules", Reason: "empty node type"}
		}
		parts, err := compileEntries(entries)
		if err != nil {
			return nil, &domain.ConfigError{Field: "rules." + name, Reason: err.Error()}
		}
		defs[name] = rule(name, parts)
	}

	return &Grammar{
		Name:        f.Name,
		Description: strings.TrimSpace(f.Description),
		Indent:      f.Indent,
		Policy:      policy,
		Definitions: defs,
		rules:       f.Rules,
		digest:      digest(f),
	}, nil
}

// Digest identifies the grammar's content: two grammars with the same digest
// render every tree identically.
func (g *Grammar) Digest() string {
	return g.digest
}

func digest(f File) string {
	data, err := json.Marshal(f)
	if err != nil {
		data = fmt.Appendf(nil, "%v", f)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Rules returns the node types the grammar defines, sorted.
func (g *Grammar) Rules() []string {
	return slices.Sorted(maps.Keys(g.Definitions))
}

// Check reports every node type in root that has no rule.
func (g *Grammar) Check(root *tree.Node) error {
	var errs []error
	for _, nodeType := range root.Types() {
		if _, ok := g.Definitions[nodeType]; !ok {
			errs = append(errs, &domain.DefinitionError{NodeType: nodeType})
		}
	}
	return errors.Join(errs...)
}

// Layouts returns the preset factories for the grammar's spacing policy:
// pretty output, or pretty with minimum spacing layered on top.
func (g *Grammar) Layouts(minify bool) []ports.LayoutFactory {
	if minify {
		return []ports.LayoutFactory{layout.Pretty(g.Policy), layout.Min(g.Policy)}
	}
	return []ports.LayoutFactory{layout.Pretty(g.Policy)}
}

// Options returns the unparser options for the grammar. Minified output
// also drops optional newlines.
func (g *Grammar) Options(minify bool) []unparse.Option {
	opts := []unparse.Option{unparse.WithLayouts(g.Layouts(minify)...)}
	if g.Indent != "" {
		opts = append(opts, unparse.WithIndent(g.Indent))
	}
	if minify {
		opts = append(opts, unparse.WithLayoutHandlers(ports.Registry{
			domain.KeyOf(domain.OptionalNewline): layout.Noop,
		}))
	}
	return opts
}

// Unparser builds an unparser for the grammar. opts are applied after the
// grammar's own options.
func (g *Grammar) Unparser(minify bool, opts ...unparse.Option) (*unparse.Unparser, error) {
	return unparse.New(g.Definitions, append(g.Options(minify), opts...)...)
}
