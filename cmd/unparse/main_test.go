package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tree := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(tree, []byte(`{"type": "Program", "children": [
		{"type": "ExpressionStatement", "fields": {"expression": {
			"type": "AssignmentExpression", "value": "=",
			"fields": {"left": {"type": "Identifier", "value": "a"}, "right": {"type": "NumericLiteral", "value": 1}}}}}
	]}`), 0644))

	out, err := run(t, "render", tree)
	require.NoError(t, err)
	assert.Equal(t, "a = 1;\n", out)

	out, err = run(t, "render", "--minify", tree)
	require.NoError(t, err)
	assert.Equal(t, "a=1;\n", out)

	out, err = run(t, "validate", tree)
	require.NoError(t, err)
	assert.Contains(t, out, "Tree is valid for es5!")

	out, err = run(t, "chunks", "--minify=false", tree)
	require.NoError(t, err)
	assert.Contains(t, out, `"="`)

	out, err = run(t, "graph", tree)
	require.NoError(t, err)
	assert.Contains(t, out, "n0 -. \"0\" .-> n1")

	out, err = run(t, "grammars")
	require.NoError(t, err)
	assert.Equal(t, "es5\n", out)

	out, err = run(t, "grammar", "es5", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# es5\n"))

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "unparse version "))

	_, err = run(t, "render")
	assert.Error(t, err, "a tree argument is required")
}
