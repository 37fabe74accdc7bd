// Package graph draws syntax trees as Mermaid flowcharts.
package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/unparse/pkg/tree"
)

// Overlay marks nodes on the diagram.
type Overlay struct {
	// Missing holds node types the grammar has no rule for.
	Missing map[string]bool
}

// GenerateMermaid produces a Mermaid flowchart of the tree rooted at root.
// Nodes are numbered depth-first, fields in key order before children.
// Shapes follow the node's structure:
// - Leaf: (["Stadium"])
// - Children list: [["Subroutine"]]
// - Default: [Rectangle]
// Field edges carry the field name, child edges the child index.
func GenerateMermaid(root *tree.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	var missing []string
	next := 0
	var visit func(n *tree.Node) string
	visit = func(n *tree.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++

		opener, closer := "[", "]"
		switch {
		case len(n.Fields) == 0 && len(n.Children) == 0:
			opener, closer = "([", "])"
		case len(n.Children) > 0:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(n), closer)

		if overlay != nil && overlay.Missing[n.Type] {
			missing = append(missing, id)
		}

		for _, name := range slices.Sorted(maps.Keys(n.Fields)) {
			child := n.Fields[name]
			if child == nil {
				continue
			}
			childID := visit(child)
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, sanitizeLabel(name), childID)
		}
		for i, child := range n.Children {
			if child == nil {
				continue
			}
			childID := visit(child)
			fmt.Fprintf(&sb, "    %s -. \"%d\" .-> %s\n", id, i, childID)
		}
		return id
	}
	visit(root)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme.
		sb.WriteString("    classDef missing fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		if len(missing) > 0 {
			fmt.Fprintf(&sb, "    class %s missing;\n", strings.Join(missing, ","))
		}
	}

	return sb.String()
}

func label(n *tree.Node) string {
	text := sanitizeLabel(n.Type)
	if n.Value != nil {
		text += "<br/>" + sanitizeLabel(fmt.Sprint(n.Value))
	}
	return text
}

// sanitizeLabel keeps label text inside Mermaid's quoted strings.
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
