package grammar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/lexer"
	"github.com/aretw0/unparse/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const programPretty = "var x = 1, y;\n" +
	"function add(a, b) {\n" +
	"    return a + b;\n" +
	"}\n" +
	"if (!x) {\n" +
	"    y = add(x, -1);\n" +
	"} else {\n" +
	"    console.log(\"done\");\n" +
	"}\n" +
	"if (y) {}"

const programMinified = `var x=1,y;function add(a,b){return a+b;}if(!x){y=add(x,-1);}else{console.log("done");}if(y){}`

func loadTree(t *testing.T, name string) *tree.Node {
	t.Helper()
	root, err := tree.Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return root
}

func TestES5_Render(t *testing.T) {
	g, err := Builtin("es5")
	require.NoError(t, err)
	root := loadTree(t, "program.yaml")
	require.NoError(t, g.Check(root))

	tests := []struct {
		name   string
		minify bool
		want   string
	}{
		{"Pretty", false, programPretty},
		{"Minified", true, programMinified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := g.Unparser(tt.minify)
			require.NoError(t, err)

			got, err := u.Render(root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Minified Tokenizes Like Pretty", func(t *testing.T) {
		assert.Equal(t, lexer.Default.Tokenize(programPretty), lexer.Default.Tokenize(programMinified))
	})
}

func TestES5_Expressions(t *testing.T) {
	g, err := Builtin("es5")
	require.NoError(t, err)

	id := func(name string) *tree.Node { return &tree.Node{Type: "Identifier", Value: name} }
	unary := func(op string, arg *tree.Node) *tree.Node {
		return &tree.Node{Type: "UnaryExpression", Value: op, Fields: map[string]*tree.Node{"argument": arg}}
	}
	binary := func(l *tree.Node, op string, r *tree.Node) *tree.Node {
		return &tree.Node{Type: "BinaryExpression", Value: op, Fields: map[string]*tree.Node{"left": l, "right": r}}
	}
	member := func(obj, prop *tree.Node) *tree.Node {
		return &tree.Node{Type: "MemberExpression", Fields: map[string]*tree.Node{"object": obj, "property": prop}}
	}

	tests := []struct {
		name     string
		node     *tree.Node
		pretty   string
		minified string
	}{
		{"Typeof", unary("typeof", id("x")), "typeof x", "typeof x"},
		{"Double Negation", unary("-", unary("-", id("x"))), "- -x", "- -x"},
		{"Binary Of Unary", binary(id("a"), "-", unary("-", id("b"))), "a - -b", "a- -b"},
		{"Word Operator", binary(id("k"), "in", id("o")), "k in o", "k in o"},
		{"Member On Number", member(&tree.Node{Type: "NumericLiteral", Value: 1}, id("toFixed")), "1 .toFixed", "1 .toFixed"},
		{"Member", member(id("a"), id("b")), "a.b", "a.b"},
		{"Empty Object", &tree.Node{Type: "ObjectExpression"}, "{}", "{}"},
		{
			"Object",
			&tree.Node{Type: "ObjectExpression", Children: []*tree.Node{
				{Type: "Property", Fields: map[string]*tree.Node{"key": id("a"), "value": {Type: "NumericLiteral", Value: 1}}},
				{Type: "Property", Fields: map[string]*tree.Node{"key": id("b"), "value": {Type: "NullLiteral"}}},
			}},
			"{\n    a: 1,\n    b: null\n}",
			"{a:1,b:null}",
		},
		{
			"Conditional",
			&tree.Node{Type: "ConditionalExpression", Fields: map[string]*tree.Node{"test": id("a"), "consequent": id("b"), "alternate": id("c")}},
			"a ? b : c",
			"a?b:c",
		},
		{"Quoted", &tree.Node{Type: "StringLiteral", Value: `say "hi"`}, `"say \"hi\""`, `"say \"hi\""`},
	}

	pretty, err := g.Unparser(false)
	require.NoError(t, err)
	minified, err := g.Unparser(true)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pretty.Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.pretty, got)

			got, err = minified.Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.minified, got)
		})
	}
}

func TestMini_Render(t *testing.T) {
	g, err := Load(filepath.Join("testdata", "mini.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mini", g.Name)
	assert.Equal(t, "  ", g.Indent)

	suite := func(stmts ...*tree.Node) *tree.Node { return &tree.Node{Type: "Suite", Children: stmts} }
	ifStmt := func(body *tree.Node) *tree.Node {
		return &tree.Node{Type: "If", Fields: map[string]*tree.Node{"test": {Type: "Name", Value: "x"}, "body": body}}
	}
	pass := &tree.Node{Type: "Pass"}

	u, err := g.Unparser(false)
	require.NoError(t, err)

	t.Run("Block", func(t *testing.T) {
		var chunks []string
		for chunk, err := range u.Unparse(ifStmt(suite(pass))) {
			require.NoError(t, err)
			chunks = append(chunks, chunk)
		}
		assert.Equal(t, []string{"if", " ", "x", ":", "\n", "  ", "pass", ""}, chunks)
	})

	t.Run("Empty Block", func(t *testing.T) {
		got, err := u.Render(ifStmt(suite()))
		require.NoError(t, err)
		assert.Equal(t, "if x:", got)
	})

	t.Run("Back To Outer Depth", func(t *testing.T) {
		got, err := u.Render(&tree.Node{Type: "Module", Children: []*tree.Node{ifStmt(suite(pass, pass)), pass}})
		require.NoError(t, err)
		assert.Equal(t, "if x:\n  pass\n  pass\npass", got)
	})

	t.Run("Nil Child Is Skipped", func(t *testing.T) {
		root := &tree.Node{Type: "Module", Children: []*tree.Node{pass, nil, pass}}
		require.NoError(t, g.Check(root))
		got, err := u.Render(root)
		require.NoError(t, err)
		assert.Equal(t, "pass\npass", got)
	})

	t.Run("Escaped And Non-String Literals", func(t *testing.T) {
		got, err := u.Render(&tree.Node{Type: "Literal"})
		require.NoError(t, err)
		assert.Equal(t, "<value>42", got)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"No Name", "rules: {A: [a]}", "name: must not be empty"},
		{"No Rules", "name: g", "grammar has no rules"},
		{"Unknown Top Level Key", "name: g\nrulez: {}", "field rulez not found"},
		{"Unknown Placeholder", "name: g\nrules: {A: [<tab>]}", "unknown placeholder <tab>"},
		{"Null Entry", "name: g\nrules: {A: [a, null]}", "entry 1: null entry"},
		{"Nested List", "name: g\nrules: {A: [[a]]}", "nested list"},
		{"Empty Mapping", "name: g\nrules: {A: [{}]}", "exactly one of"},
		{"Two Kinds", "name: g\nrules: {A: [{field: x, children: true}]}", "exactly one of"},
		{"Unknown Mapping Key", "name: g\nrules: {A: [{field: x, befor: [a]}]}", "befor"},
		{"Separator On Field", "name: g\nrules: {A: [{field: x, separator: [a]}]}", "separator is only valid for children"},
		{"Text With Before", "name: g\nrules: {A: [{text: x, before: [a]}]}", "text entries take no"},
		{"Bad Nested Entry", "name: g\nrules: {A: [{children: true, separator: [<nope>]}]}", "separator: entry 0"},
		{"Malformed YAML", "name: [", "failed to parse grammar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Spacing(t *testing.T) {
	doc := `
name: g
operators: ["<>"]
spacing:
  no_space_after: ""
  tight: [Call]
rules:
  A: [a]
`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Empty(t, g.Policy.NoSpaceAfter)
	assert.Equal(t, ")]},;.:", g.Policy.NoSpaceBefore, "unset keys keep the default")
	assert.True(t, g.Policy.Tight["Call"])
	assert.True(t, g.Policy.Lexer.Merges("<", ">"))
	assert.False(t, g.Policy.Lexer.Merges("=", "="), "the operator table is replaced, not extended")
}

func TestCheck(t *testing.T) {
	g, err := Builtin("es5")
	require.NoError(t, err)

	root := &tree.Node{Type: "Program", Children: []*tree.Node{
		{Type: "WithStatement"},
		{Type: "ExpressionStatement", Fields: map[string]*tree.Node{"expression": {Type: "Yield"}}},
	}}
	err = g.Check(root)
	require.ErrorIs(t, err, domain.ErrNoDefinition)
	assert.Contains(t, err.Error(), `"WithStatement"`)
	assert.Contains(t, err.Error(), `"Yield"`)
}

func TestRender_WrongNodeKind(t *testing.T) {
	g, err := Builtin("es5")
	require.NoError(t, err)
	u, err := g.Unparser(false)
	require.NoError(t, err)

	_, err = u.Render(foreign{})
	assert.ErrorContains(t, err, `rule "Identifier": unsupported node`)
}

type foreign struct{}

func (foreign) NodeType() string { return "Identifier" }

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"es5"}, Names())

	_, err := Builtin("cobol")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "built-in: es5")
}

func TestResolve(t *testing.T) {
	g, err := Resolve("es5")
	require.NoError(t, err)
	assert.Equal(t, "es5", g.Name)

	path := filepath.Join(t.TempDir(), "g.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: custom\nrules: {A: [a]}"), 0644))
	g, err = Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", g.Name)

	_, err = Resolve("nope")
	assert.ErrorContains(t, err, `unknown grammar "nope"`)

	_, err = Resolve("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestMarkdown(t *testing.T) {
	g, err := Load(filepath.Join("testdata", "mini.yaml"))
	require.NoError(t, err)

	md := g.Markdown()
	assert.Contains(t, md, "# mini\n")
	assert.Contains(t, md, "An indentation-based toy language.")
	assert.Contains(t, md, "| `If` | \"if\" <space> ({test})? \":\" ({body})? |")
	assert.Contains(t, md, "| `Module` | ({children} (<newline> {children})*)? |")
	assert.Contains(t, md, "| `Literal` | \"<value>\" \"42\" |")
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	g, err := Parse([]byte("name: g\nrules: {Or: [{field: l}, \"||\", {field: r}]}"))
	require.NoError(t, err)
	assert.Contains(t, g.Markdown(), `\|\|`)
}

func TestDigest(t *testing.T) {
	a, err := Parse([]byte("name: g\nrules: {A: [a], B: [b]}"))
	require.NoError(t, err)
	b, err := Parse([]byte("name: g\nrules: {B: [b], A: [a]}"))
	require.NoError(t, err)
	c, err := Parse([]byte("name: g\nrules: {A: [a], B: [c]}"))
	require.NoError(t, err)

	assert.Len(t, a.Digest(), 64)
	assert.Equal(t, a.Digest(), b.Digest(), "rule order does not matter")
	assert.NotEqual(t, a.Digest(), c.Digest())
}
