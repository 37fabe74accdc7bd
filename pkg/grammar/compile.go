package grammar

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/tree"
	"github.com/mitchellh/mapstructure"
)

var placeholder = regexp.MustCompile(`^<([A-Za-z_]+)>$`)

// part expands into production entries for one node.
type part interface {
	expand(n *tree.Node, prod domain.Production) domain.Production
}

type fixed struct{ entry domain.Entry }

func (p fixed) expand(_ *tree.Node, prod domain.Production) domain.Production {
	return append(prod, p.entry)
}

type value struct{ quoted bool }

func (p value) expand(n *tree.Node, prod domain.Production) domain.Production {
	if p.quoted {
		text := ""
		if n.Value != nil {
			text = fmt.Sprint(n.Value)
		}
		return append(prod, domain.Lit(strconv.Quote(text)))
	}
	return append(prod, domain.Lit(n.Value))
}

type field struct {
	name          string
	before, after []part
}

func (p field) expand(n *tree.Node, prod domain.Production) domain.Production {
	child := n.Field(p.name)
	if child == nil {
		return prod
	}
	prod = expandAll(p.before, n, prod)
	prod = append(prod, domain.Ref(child))
	return expandAll(p.after, n, prod)
}

type children struct {
	separator, before, after []part
}

func (p children) expand(n *tree.Node, prod domain.Production) domain.Production {
	present := make([]*tree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return prod
	}
	prod = expandAll(p.before, n, prod)
	for i, c := range present {
		if i > 0 {
			prod = expandAll(p.separator, n, prod)
		}
		prod = append(prod, domain.Ref(c))
	}
	return expandAll(p.after, n, prod)
}

func expandAll(parts []part, n *tree.Node, prod domain.Production) domain.Production {
	for _, p := range parts {
		prod = p.expand(n, prod)
	}
	return prod
}

func rule(name string, parts []part) domain.Rule {
	return func(node domain.Node) (domain.Production, error) {
		n, ok := node.(*tree.Node)
		if !ok {
			return nil, fmt.Errorf("rule %q: unsupported node %T", name, node)
		}
		return expandAll(parts, n, nil), nil
	}
}

// entrySpec is the mapping form of an entry.
type entrySpec struct {
	Text      *string `mapstructure:"text"`
	Field     string  `mapstructure:"field"`
	Children  bool    `mapstructure:"children"`
	Separator []any   `mapstructure:"separator"`
	Before    []any   `mapstructure:"before"`
	After     []any   `mapstructure:"after"`
}

func compileEntries(raw []any) ([]part, error) {
	parts := make([]part, 0, len(raw))
	for i, r := range raw {
		p, err := compileEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func compileEntry(raw any) (part, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("null entry")
	case string:
		return compileScalar(v)
	case map[string]any:
		return compileMapping(v)
	case []any:
		return nil, fmt.Errorf("nested list (use before, after or separator)")
	default:
		return fixed{domain.Lit(fmt.Sprint(v))}, nil
	}
}

func compileScalar(s string) (part, error) {
	m := placeholder.FindStringSubmatch(s)
	if m == nil {
		return fixed{domain.Lit(s)}, nil
	}
	switch m[1] {
	case "value":
		return value{}, nil
	case "quoted":
		return value{quoted: true}, nil
	}
	marker, err := domain.ParseMarker(m[1])
	if err != nil {
		return nil, fmt.Errorf("unknown placeholder %s", s)
	}
	return fixed{marker}, nil
}

func compileMapping(raw map[string]any) (part, error) {
	var spec entrySpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &spec,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	kinds := 0
	for _, set := range []bool{spec.Text != nil, spec.Field != "", spec.Children} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, fmt.Errorf("mapping needs exactly one of text, field or children")
	}

	if spec.Text != nil {
		if spec.Before != nil || spec.After != nil || spec.Separator != nil {
			return nil, fmt.Errorf("text entries take no before, after or separator")
		}
		return fixed{domain.Lit(*spec.Text)}, nil
	}

	before, err := compileEntries(spec.Before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	after, err := compileEntries(spec.After)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}

	if spec.Field != "" {
		if spec.Separator != nil {
			return nil, fmt.Errorf("field %q: separator is only valid for children", spec.Field)
		}
		return field{name: spec.Field, before: before, after: after}, nil
	}

	separator, err := compileEntries(spec.Separator)
	if err != nil {
		return nil, fmt.Errorf("separator: %w", err)
	}
	return children{separator: separator, before: before, after: after}, nil
}
