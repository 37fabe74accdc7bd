package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyOf(t *testing.T) {
	single := KeyOf(Newline)
	composite := KeyOf(Indent, Newline, Dedent)

	assert.Equal(t, 1, single.Len())
	assert.False(t, single.IsComposite())
	assert.Equal(t, 3, composite.Len())
	assert.True(t, composite.IsComposite())
	assert.Equal(t, []Marker{Indent, Newline, Dedent}, composite.Markers())

	assert.Equal(t, composite, KeyOf(Indent, Newline, Dedent), "keys built from the same run are equal")
	assert.NotEqual(t, composite, KeyOf(Dedent, Newline, Indent), "order matters")
	assert.NotEqual(t, KeyOf(Newline), KeyOf(Newline, Newline))
}

func TestKey_AsMapKey(t *testing.T) {
	m := map[Key]string{
		KeyOf(Indent):                  "single",
		KeyOf(Indent, Newline, Dedent): "composite",
	}
	assert.Equal(t, "single", m[KeyOf(Indent)])
	assert.Equal(t, "composite", m[KeyOf(Indent, Newline, Dedent)])
	_, ok := m[KeyOf(Indent, Newline)]
	assert.False(t, ok)
}

func TestKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{"Single", KeyOf(Space), false},
		{"Composite", KeyOf(Newline, Dedent), false},
		{"Empty", KeyOf(), true},
		{"Zero Marker", KeyOf(0), true},
		{"Out Of Range", KeyOf(Indent, Marker(42)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "OptionalSpace", KeyOf(OptionalSpace).String())
	assert.Equal(t, "(Indent, Newline, Dedent)", KeyOf(Indent, Newline, Dedent).String())
	assert.Equal(t, "Marker(9)", Marker(9).String())
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		in   string
		want Marker
	}{
		{"space", Space},
		{"Space", Space},
		{"optional_space", OptionalSpace},
		{"OptionalSpace", OptionalSpace},
		{"newline", Newline},
		{"optional_newline", OptionalNewline},
		{" Indent ", Indent},
		{"DEDENT", Dedent},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMarker(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMarker("tab")
	assert.Error(t, err)
}

func TestErrors_Is(t *testing.T) {
	assert.ErrorIs(t, &DefinitionError{NodeType: "X"}, ErrNoDefinition)
	assert.ErrorIs(t, &LayoutError{Key: KeyOf(Space)}, ErrNoLayoutHandler)
	assert.ErrorIs(t, &IndentationError{Depth: -1}, ErrUnbalancedIndent)
	assert.ErrorIs(t, &ConfigError{Field: "f", Reason: "r"}, ErrInvalidConfig)

	assert.NotErrorIs(t, &DefinitionError{}, ErrNoLayoutHandler)
	assert.Contains(t, (&LayoutError{Key: KeyOf(Newline, Dedent), NodeType: "Block"}).Error(), "(Newline, Dedent)")
}

type ptrNode struct{ kind string }

func (n *ptrNode) NodeType() string { return n.kind }

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "<nil>", TypeOf(nil))
	assert.Equal(t, "<nil>", TypeOf((*ptrNode)(nil)), "nil pointer behind the interface")
	assert.Equal(t, "If", TypeOf(&ptrNode{kind: "If"}))
}

func TestIsNil(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"Nil Interface", nil, true},
		{"Nil Pointer", (*ptrNode)(nil), true},
		{"Pointer", &ptrNode{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNil(tt.node))
		})
	}
}

func TestStatic(t *testing.T) {
	rule := Static(Lit("pass"), Newline)
	prod, err := rule(nil)
	require.NoError(t, err)
	assert.Equal(t, Production{Token{Value: "pass"}, Newline}, prod)
}
