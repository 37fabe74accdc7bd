package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/lexer"
	"github.com/aretw0/unparse/pkg/ports"
)

// SpacePolicy decides when an optional space is wanted between two chunks.
//
// The pretty handler emits a space when the chunks would merge under Lexer,
// and otherwise unless the boundary is whitespace already, the last rune of
// the chunk before is in NoSpaceAfter, or the first rune of the chunk after
// is in NoSpaceBefore. The minimum handler only emits a space on a merge.
// Node types in Tight get the minimum behaviour in both handlers.
type SpacePolicy struct {
	Lexer         *lexer.Lexer
	NoSpaceAfter  string          // Runes that are never followed by an optional space
	NoSpaceBefore string          // Runes that are never preceded by an optional space
	Tight         map[string]bool // Node types spaced only to keep tokens apart
}

// DefaultSpacePolicy suits C-family grammars.
var DefaultSpacePolicy = SpacePolicy{
	Lexer:         lexer.Default,
	NoSpaceAfter:  "([{!~.",
	NoSpaceBefore: ")]},;.:",
}

func (p SpacePolicy) lexer() *lexer.Lexer {
	if p.Lexer == nil {
		return lexer.Default
	}
	return p.Lexer
}

// Pretty is the OptionalSpace handler of the pretty preset.
func (p SpacePolicy) Pretty(d ports.Dispatcher, node domain.Node, before, after string) (string, error) {
	if p.Tight[domain.TypeOf(node)] {
		return p.Minimum(d, node, before, after)
	}
	if before == "" || after == "" {
		return "", nil
	}
	last, _ := utf8.DecodeLastRuneInString(before)
	first, _ := utf8.DecodeRuneInString(after)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return "", nil
	}
	if p.lexer().Merges(before, after) {
		return " ", nil
	}
	if strings.ContainsRune(p.NoSpaceAfter, last) || strings.ContainsRune(p.NoSpaceBefore, first) {
		return "", nil
	}
	return " ", nil
}

// Minimum is the Space/OptionalSpace handler of the minimum preset.
func (p SpacePolicy) Minimum(_ ports.Dispatcher, _ domain.Node, before, after string) (string, error) {
	if p.lexer().Merges(before, after) {
		return " ", nil
	}
	return "", nil
}

// Noop renders nothing. It is used for Indent, Dedent and the empty-block
// composite (Indent, Newline, Dedent).
func Noop(ports.Dispatcher, domain.Node, string, string) (string, error) {
	return "", nil
}

// SpaceImply renders exactly one space, unconditionally.
func SpaceImply(ports.Dispatcher, domain.Node, string, string) (string, error) {
	return " ", nil
}

// SpaceOptionalPretty applies DefaultSpacePolicy.Pretty.
func SpaceOptionalPretty(d ports.Dispatcher, node domain.Node, before, after string) (string, error) {
	return DefaultSpacePolicy.Pretty(d, node, before, after)
}

// SpaceMinimum applies DefaultSpacePolicy.Minimum.
func SpaceMinimum(d ports.Dispatcher, node domain.Node, before, after string) (string, error) {
	return DefaultSpacePolicy.Minimum(d, node, before, after)
}

// NewlineSimple renders the dispatcher's line terminator. The walk follows
// it with the indentation for the current depth.
func NewlineSimple(d ports.Dispatcher, _ domain.Node, _, _ string) (string, error) {
	return d.Newline(), nil
}

// NewlineOptionalPretty always chooses to break the line.
func NewlineOptionalPretty(d ports.Dispatcher, node domain.Node, before, after string) (string, error) {
	return NewlineSimple(d, node, before, after)
}
