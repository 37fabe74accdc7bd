// Package lexer is a small re-tokenizer for C-family source text.
//
// It is not a parser front end. Layout handlers use it to answer one
// question: would gluing two chunks together change how they tokenize?
// Identifiers, numbers, quoted strings, comments and a configurable
// operator table (longest match first) are recognized; everything else is
// a single-rune token.
package lexer

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultOperators covers the ECMAScript punctuators plus the comment openers.
var DefaultOperators = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
	"//", "/*",
}

// Lexer tokenizes text with a fixed operator table.
// It holds no mutable state and is safe for concurrent use.
type Lexer struct {
	operators []string
}

// Default is a Lexer built from DefaultOperators.
var Default = New(DefaultOperators...)

// New builds a Lexer. Operators are matched longest first.
func New(operators ...string) *Lexer {
	ops := make([]string, 0, len(operators))
	for _, op := range operators {
		if op != "" {
			ops = append(ops, op)
		}
	}
	slices.SortStableFunc(ops, func(a, b string) int {
		return len(b) - len(a)
	})
	return &Lexer{operators: ops}
}

// Operators returns the operator table, longest first.
func (l *Lexer) Operators() []string {
	return slices.Clone(l.operators)
}

// Tokenize splits s into tokens, dropping whitespace.
func (l *Lexer) Tokenize(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		n := l.scan(s[i:])
		toks = append(toks, s[i:i+n])
		i += n
	}
	return toks
}

// Merges reports whether writing after directly behind before would
// tokenize differently from writing them with whitespace in between.
// It is false whenever either side is empty or already whitespace-delimited.
func (l *Lexer) Merges(before, after string) bool {
	if before == "" || after == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(before)
	first, _ := utf8.DecodeRuneInString(after)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	joined := l.Tokenize(before + after)
	separate := append(l.Tokenize(before), l.Tokenize(after)...)
	return !slices.Equal(joined, separate)
}

// scan returns the byte length of the token at the start of s.
func (l *Lexer) scan(s string) int {
	r, size := utf8.DecodeRuneInString(s)
	switch {
	case isIdentStart(r):
		return size + scanWhile(s[size:], isIdentPart)
	case unicode.IsDigit(r):
		return l.scanNumber(s)
	case r == '.' && len(s) > 1 && s[1] >= '0' && s[1] <= '9':
		return l.scanNumber(s)
	case r == '"' || r == '\'' || r == '`':
		return scanQuoted(s, byte(r))
	case strings.HasPrefix(s, "//"):
		if end := strings.IndexAny(s, "\r\n"); end >= 0 {
			return end
		}
		return len(s)
	case strings.HasPrefix(s, "/*"):
		if end := strings.Index(s[2:], "*/"); end >= 0 {
			return end + 4
		}
		return len(s)
	}
	for _, op := range l.operators {
		if strings.HasPrefix(s, op) {
			return len(op)
		}
	}
	return size
}

// scanNumber consumes digits, letters, dots and exponent signs.
func (l *Lexer) scanNumber(s string) int {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '.', c == '_', isASCIILetter(c):
			i++
		case (c == '+' || c == '-') && i > 0 && (s[i-1] == 'e' || s[i-1] == 'E') && !isHexPrefixed(s):
			i++
		default:
			return i
		}
	}
	return i
}

func scanQuoted(s string, quote byte) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(s)
}

func scanWhile(s string, pred func(rune) bool) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !pred(r) {
			break
		}
		n += size
	}
	return n
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexPrefixed(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
