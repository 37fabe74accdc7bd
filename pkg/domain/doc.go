// Package domain defines the core types of the unparser: layout markers,
// composite registry keys, productions and the grammar (definitions) that
// maps node types to productions.
//
// A production mixes three kinds of entries:
//
//	domain.Production{
//		domain.Lit("if"), domain.Space, domain.Lit("("), domain.Ref(test), domain.Lit(")"),
//		domain.Indent, domain.Newline, domain.Ref(body), domain.Newline, domain.Dedent,
//	}
//
// Literal tokens are rendered by a token handler, child references are
// expanded with their own production, and markers are resolved to text by
// the layout handler registry.
package domain
