/*
Package unparse renders abstract syntax trees back into source text, driven by a declarative grammar instead of
hand-written printing code per node kind.

# Concept

A grammar (domain.Definitions) maps each node type to a rule that yields the node's production: an ordered sequence
of literal tokens, child references and abstract layout markers (Space, OptionalSpace, Newline, OptionalNewline,
Indent, Dedent). What a node produces is decided once, in the grammar. How markers become characters is decided by a
layout handler registry, assembled from presets:

  - layout.Default prints real spaces, newlines and indentation, and collapses an empty block
    (Indent, Newline, Dedent) to nothing.
  - layout.Minimum only keeps the spaces needed to stop adjacent tokens from merging.

Layering presets (and ad-hoc overrides) is how an output style is built; no style is hard-wired in the engine.

# Usage

	u, err := unparse.New(definitions,
		unparse.WithLayouts(layout.Default, layout.Minimum),
		unparse.WithIndent("  "),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Lazily, chunk by chunk:
	for chunk, err := range u.Unparse(root) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(chunk)
	}

	// Or all at once:
	text, err := u.Render(root)

The chunk sequence is pull-based: the tree is only visited as far as it is consumed, so a size-limited Preview
of a huge tree is cheap. An Unparser holds no per-call state and is safe for concurrent use as long as the
supplied rules and handlers are.
*/
package unparse
