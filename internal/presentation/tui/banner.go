package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the unparse banner with the version and the listen
// address of a service mode.
func PrintBanner(w io.Writer, p termenv.Profile, version, mode, addr string) {
	name := p.String("unparse").Bold().Foreground(p.Color("#818cf8"))
	ver := p.String("v" + strings.TrimSpace(version)).Foreground(p.Color("#c084fc"))
	where := p.String(mode + " " + addr).Faint()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s  %s\n", name, ver, where)
	fmt.Fprintln(w)
}
