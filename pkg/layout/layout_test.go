package layout

import (
	"testing"

	"github.com/aretw0/unparse/pkg/dispatch"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(s string) ports.LayoutHandler {
	return func(ports.Dispatcher, domain.Node, string, string) (string, error) { return s, nil }
}

func call(t *testing.T, h ports.LayoutHandler, before, after string) string {
	t.Helper()
	out, err := h(nil, nil, before, after)
	require.NoError(t, err)
	return out
}

func TestSpacePolicy_Pretty(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{"Identifiers", "return", "x", " "},
		{"Operator", "=", "1", " "},
		{"Merging Operators", "+", "+", " "},
		{"Comment Opener", "/", "/", " "},
		{"Before Brace", ")", "{", " "},
		{"After Open Paren", "(", "a", ""},
		{"Before Close Paren", "a", ")", ""},
		{"Before Semicolon", "x", ";", ""},
		{"Before Comma", "x", ",", ""},
		{"Member Access", "a", ".", ""},
		{"Unary Not", "!", "x", ""},
		{"Start Of Output", "", "x", ""},
		{"End Of Output", "x", "", ""},
		{"After Newline", "\n", "x", ""},
		{"Before Indentation", "x", "    ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, DefaultSpacePolicy.Pretty, tt.before, tt.after))
		})
	}
}

func TestSpacePolicy_Minimum(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{"Identifiers Merge", "var", "x", " "},
		{"Number After Keyword", "return", "1", " "},
		{"Plus Plus", "+", "+", " "},
		{"Minus Minus", "-", "-", " "},
		{"Slashes", "/", "/", " "},
		{"Operator", "=", "1", ""},
		{"Punctuation", "a", "(", ""},
		{"Brace", ")", "{", ""},
		{"Boundary", "", "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, DefaultSpacePolicy.Minimum, tt.before, tt.after))
		})
	}
}

func TestSpacePolicy_NilLexerFallsBack(t *testing.T) {
	p := SpacePolicy{}
	assert.Equal(t, " ", call(t, p.Minimum, "a", "b"))
	assert.Equal(t, " ", call(t, p.Pretty, "(", "a"), "no exclusions configured")
}

type named string

func (n named) NodeType() string { return string(n) }

func TestSpacePolicy_Tight(t *testing.T) {
	p := DefaultSpacePolicy
	p.Tight = map[string]bool{"Unary": true}

	pretty := func(node domain.Node, before, after string) string {
		out, err := p.Pretty(nil, node, before, after)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, " ", pretty(named("Binary"), "-", "x"))
	assert.Equal(t, "", pretty(named("Unary"), "-", "x"))
	assert.Equal(t, " ", pretty(named("Unary"), "-", "-"), "merging tokens are still kept apart")
	assert.Equal(t, " ", pretty(named("Unary"), "typeof", "x"))
	assert.Equal(t, " ", pretty(nil, "-", "x"))
}

func TestHandlers(t *testing.T) {
	d, err := dispatch.New(ports.DispatchConfig{
		Definitions: domain.Definitions{},
		Tokens:      dispatch.StringToken,
		Newline:     "\r\n",
	})
	require.NoError(t, err)

	text, err := NewlineSimple(d, nil, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "\r\n", text)

	text, err = NewlineOptionalPretty(d, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, "\r\n", text)

	assert.Equal(t, " ", call(t, SpaceImply, "(", ")"))
	assert.Equal(t, "", call(t, Noop, "a", "b"))
	assert.Equal(t, " ", call(t, SpaceOptionalPretty, "a", "b"))
	assert.Equal(t, "", call(t, SpaceMinimum, "a", "="))
}

func TestPresets(t *testing.T) {
	def := Default()
	for _, m := range []domain.Marker{domain.Space, domain.OptionalSpace, domain.Newline, domain.OptionalNewline, domain.Indent, domain.Dedent} {
		assert.Contains(t, def, domain.KeyOf(m), "default preset covers %s", m)
	}
	assert.Contains(t, def, EmptyBlock)

	minimum := Minimum()
	assert.Len(t, minimum, 2)
	assert.Contains(t, minimum, domain.KeyOf(domain.Space))
	assert.Contains(t, minimum, domain.KeyOf(domain.OptionalSpace))

	// Each call yields an independent fragment.
	delete(def, EmptyBlock)
	assert.Contains(t, Default(), EmptyBlock)
}

func TestMerge(t *testing.T) {
	space := domain.KeyOf(domain.Space)
	newline := domain.KeyOf(domain.Newline)

	first := func() ports.Registry { return ports.Registry{space: constant("1"), newline: constant("n")} }
	second := func() ports.Registry { return ports.Registry{space: constant("2")} }

	t.Run("Later Factory Wins", func(t *testing.T) {
		r, err := Merge([]ports.LayoutFactory{first, second}, nil)
		require.NoError(t, err)
		assert.Equal(t, "2", call(t, r[space], "", ""))
		assert.Equal(t, "n", call(t, r[newline], "", ""))
	})

	t.Run("Order Matters", func(t *testing.T) {
		r, err := Merge([]ports.LayoutFactory{second, first}, nil)
		require.NoError(t, err)
		assert.Equal(t, "1", call(t, r[space], "", ""))
	})

	t.Run("Overrides Win", func(t *testing.T) {
		r, err := Merge([]ports.LayoutFactory{first, second}, ports.Registry{space: constant("o")})
		require.NoError(t, err)
		assert.Equal(t, "o", call(t, r[space], "", ""))
	})

	t.Run("Composite Does Not Replace Singles", func(t *testing.T) {
		r, err := Merge([]ports.LayoutFactory{Default}, ports.Registry{domain.KeyOf(domain.Newline, domain.Dedent): constant("x")})
		require.NoError(t, err)
		assert.Contains(t, r, newline)
		assert.Contains(t, r, domain.KeyOf(domain.Dedent))
	})

	t.Run("Empty", func(t *testing.T) {
		r, err := Merge(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, r)
	})

	t.Run("Nil Factory", func(t *testing.T) {
		_, err := Merge([]ports.LayoutFactory{Default, nil}, nil)
		require.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "entry 1 is not callable")
	})

	t.Run("Invalid Override", func(t *testing.T) {
		_, err := Merge([]ports.LayoutFactory{Default}, ports.Registry{domain.KeyOf(): constant("")})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}
