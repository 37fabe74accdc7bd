package tree

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 1MB.
	DefaultMaxInputSize = 1 << 20
	// EnvMaxInputSize is the environment variable to override the default.
	EnvMaxInputSize = "UNPARSE_MAX_TREE_SIZE"
)

var (
	ErrInputTooLarge = errors.New("tree document exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("tree document contains invalid UTF-8 sequences")
)

// SanitizeInput cleans an untrusted tree document by enforcing the size
// limit, validating UTF-8 and stripping control characters other than
// newline, tab and carriage return.
func SanitizeInput(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		// Rejected rather than truncated: a cut document parses differently.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// ParseUntrusted sanitizes input and parses it as YAML or JSON.
func ParseUntrusted(input string) (*Node, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(clean))
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
