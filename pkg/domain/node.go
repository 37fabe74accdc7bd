package domain

import "reflect"

// Node is the unit the grammar dispatches on.
// The engine only needs the node type; how children are found is up to the
// grammar rule registered for that type.
type Node interface {
	NodeType() string
}

// TypeOf returns the node type of n, tolerating a nil node.
func TypeOf(n Node) string {
	if IsNil(n) {
		return "<nil>"
	}
	return n.NodeType()
}

// IsNil reports whether n is nil, including a nil pointer held by the
// interface.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Entry is one element of a Production: a Token, a Child or a Marker.
type Entry interface {
	entry()
}

// Token is a literal to be rendered to text by the token handler.
type Token struct {
	Value any
}

func (Token) entry() {}

// Child references a node that is expanded with its own production.
// A Child with a nil Node expands to nothing.
type Child struct {
	Node Node
}

func (Child) entry() {}

// Lit is shorthand for Token{Value: v}.
func Lit(v any) Token { return Token{Value: v} }

// Ref is shorthand for Child{Node: n}.
func Ref(n Node) Child { return Child{Node: n} }

// Production is the ordered sequence of entries a node expands to.
// The engine never reorders it.
type Production []Entry

// Rule produces the production for a node of the type it is registered for.
type Rule func(node Node) (Production, error)

// Definitions is a grammar: node type to rule.
type Definitions map[string]Rule

// Clone returns a shallow copy of the definitions.
func (d Definitions) Clone() Definitions {
	out := make(Definitions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Static returns a rule that always yields the given entries, ignoring the node.
func Static(entries ...Entry) Rule {
	prod := Production(entries)
	return func(Node) (Production, error) {
		return prod, nil
	}
}
