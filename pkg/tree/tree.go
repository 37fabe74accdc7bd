// Package tree is a generic syntax tree that can be written by hand in YAML
// or JSON and rendered by any grammar.
//
// A node has a type, an optional scalar value (identifier name, literal,
// operator), named fields holding single children, and an ordered list of
// children:
//
//	type: BinaryExpression
//	value: "+"
//	fields:
//	  left: {type: Identifier, value: a}
//	  right: {type: NumericLiteral, value: 1}
package tree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Node is a generic syntax tree node.
type Node struct {
	Type     string           `json:"type" yaml:"type" mapstructure:"type"`
	Value    any              `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Fields   map[string]*Node `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
	Children []*Node          `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

var _ domain.Node = (*Node)(nil)

// NodeType implements domain.Node.
func (n *Node) NodeType() string {
	if n == nil {
		return ""
	}
	return n.Type
}

// Field returns the named child, or nil.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}
	return n.Fields[name]
}

// Walk visits n and its descendants depth-first, fields in key order first,
// then children. It stops when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, key := range sortedKeys(n.Fields) {
		if !n.Fields[key].Walk(fn) {
			return false
		}
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Types returns the distinct node types used in the tree, sorted.
func (n *Node) Types() []string {
	seen := make(map[string]struct{})
	n.Walk(func(c *Node) bool {
		seen[c.Type] = struct{}{}
		return true
	})
	return sortedKeys(seen)
}

// Validate checks that every node in the tree has a type and that no child is nil.
func (n *Node) Validate() error {
	return n.validate("$")
}

func (n *Node) validate(path string) error {
	if n == nil {
		return fmt.Errorf("%s: node is null", path)
	}
	if strings.TrimSpace(n.Type) == "" {
		return fmt.Errorf("%s: node has no type", path)
	}
	for _, key := range sortedKeys(n.Fields) {
		// A null field is an absent optional child.
		if c := n.Fields[key]; c != nil {
			if err := c.validate(path + ".fields." + key); err != nil {
				return err
			}
		}
	}
	for i, c := range n.Children {
		if err := c.validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Decode builds a tree from a generic document (as produced by a YAML or JSON
// decoder) and validates it. Unknown keys are rejected.
func Decode(raw any) (*Node, error) {
	var root Node
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &root,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	return &root, nil
}

// Parse decodes a YAML document into a tree. JSON documents are valid YAML.
func Parse(data []byte) (*Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse tree: empty document")
	}
	return Decode(raw)
}

// ParseJSON decodes a JSON document into a tree.
func ParseJSON(data []byte) (*Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	return Decode(raw)
}

// Load reads a tree from a file, picking the decoder from its extension.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return Parse(data)
}
