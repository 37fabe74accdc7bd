package domain

import (
	"fmt"
	"strings"
)

// Key identifies an entry in a layout handler registry: either a single
// marker or an ordered, contiguous run of markers (a composite key).
//
// Keys are comparable and usable as map keys. A composite key only ever
// matches the exact run it was built from; it is distinct from the keys of
// its constituent markers.
type Key string

// KeyOf builds the key for the given marker sequence.
func KeyOf(markers ...Marker) Key {
	b := make([]byte, len(markers))
	for i, m := range markers {
		b[i] = byte(m)
	}
	return Key(b)
}

// Markers returns the markers the key was built from.
func (k Key) Markers() []Marker {
	out := make([]Marker, len(k))
	for i := 0; i < len(k); i++ {
		out[i] = Marker(k[i])
	}
	return out
}

// Len is the number of markers in the key.
func (k Key) Len() int { return len(k) }

// IsComposite reports whether the key spans more than one marker.
func (k Key) IsComposite() bool { return len(k) > 1 }

// Validate checks that the key is non-empty and built only from declared markers.
func (k Key) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("empty layout key")
	}
	for i := 0; i < len(k); i++ {
		if !Marker(k[i]).Valid() {
			return fmt.Errorf("layout key contains %s", Marker(k[i]))
		}
	}
	return nil
}

func (k Key) String() string {
	if len(k) == 1 {
		return Marker(k[0]).String()
	}
	names := make([]string, len(k))
	for i := 0; i < len(k); i++ {
		names[i] = Marker(k[i]).String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
