package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// ChunkPrinter lists chunks one per line, quoted, with layout chunks
// (whitespace only) told apart from token chunks.
type ChunkPrinter struct {
	w       io.Writer
	profile termenv.Profile
	count   int
	bytes   int
}

// NewChunkPrinter creates a printer on w.
func NewChunkPrinter(w io.Writer, p termenv.Profile) *ChunkPrinter {
	return &ChunkPrinter{w: w, profile: p}
}

// Print writes one chunk line.
func (c *ChunkPrinter) Print(chunk string) error {
	kind, color := "token ", "#a3e635"
	switch {
	case chunk == "":
		kind, color = "empty ", "#64748b"
	case strings.TrimSpace(chunk) == "":
		kind, color = "layout", "#38bdf8"
	}

	index := c.profile.String(fmt.Sprintf("%4d", c.count)).Faint()
	label := c.profile.String(kind).Foreground(c.profile.Color(color))
	_, err := fmt.Fprintf(c.w, "%s  %s  %s\n", index, label, strconv.Quote(chunk))

	c.count++
	c.bytes += len(chunk)
	return err
}

// Summary writes the totals line.
func (c *ChunkPrinter) Summary() error {
	_, err := fmt.Fprintf(c.w, "%d chunks, %d bytes\n", c.count, c.bytes)
	return err
}
