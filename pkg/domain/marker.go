package domain

import (
	"fmt"
	"strings"
)

// Marker is an abstract layout instruction. It carries no data and is
// resolved to text only at render time, by the layout handler registered
// for it.
type Marker uint8

// The closed set of layout markers.
const (
	// Space requires a separator between the surrounding tokens.
	Space Marker = iota + 1
	// OptionalSpace may be rendered as a separator when the layout policy wants one.
	OptionalSpace
	// Newline ends the current line.
	Newline
	// OptionalNewline ends the current line when the layout policy wants one.
	OptionalNewline
	// Indent increments the indentation depth.
	Indent
	// Dedent decrements the indentation depth.
	Dedent
)

var markerNames = [...]string{
	Space:           "Space",
	OptionalSpace:   "OptionalSpace",
	Newline:         "Newline",
	OptionalNewline: "OptionalNewline",
	Indent:          "Indent",
	Dedent:          "Dedent",
}

// markerAliases are the spellings accepted by ParseMarker (grammar files use snake_case).
var markerAliases = map[string]Marker{
	"space":            Space,
	"optional_space":   OptionalSpace,
	"optionalspace":    OptionalSpace,
	"newline":          Newline,
	"optional_newline": OptionalNewline,
	"optionalnewline":  OptionalNewline,
	"indent":           Indent,
	"dedent":           Dedent,
}

// Valid reports whether m is one of the declared markers.
func (m Marker) Valid() bool {
	return m >= Space && m <= Dedent
}

func (m Marker) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Marker(%d)", uint8(m))
	}
	return markerNames[m]
}

func (Marker) entry() {}

// ParseMarker resolves a marker from its name, case-insensitively.
// Both "OptionalSpace" and "optional_space" are accepted.
func ParseMarker(name string) (Marker, error) {
	if m, ok := markerAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown marker %q", name)
}
