package grammar

import (
	"fmt"
	"strings"
)

// Markdown describes the grammar as a Markdown document: one table row per
// node type. Optional parts are shown as ( ... )? and repeated children as
// {children}.
func (g *Grammar) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", g.Name)
	if g.Description != "" {
		sb.WriteString(g.Description)
		sb.WriteString("\n\n")
	}
	if g.Indent != "" {
		fmt.Fprintf(&sb, "Indentation unit: `%q`\n\n", g.Indent)
	}
	sb.WriteString("| Node type | Production |\n|---|---|\n")
	for _, name := range g.Rules() {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", name, escapeCell(formatEntries(g.rules[name])))
	}
	return sb.String()
}

func formatEntries(raw []any) string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, formatEntry(r))
	}
	return strings.Join(out, " ")
}

func formatEntry(raw any) string {
	switch v := raw.(type) {
	case string:
		if placeholder.MatchString(v) {
			return v
		}
		return fmt.Sprintf("%q", v)
	case map[string]any:
		if text, ok := v["text"]; ok {
			return fmt.Sprintf("%q", fmt.Sprint(text))
		}
		inner := "{children}"
		if name, ok := v["field"]; ok {
			inner = fmt.Sprintf("{%v}", name)
		} else if sep, ok := v["separator"].([]any); ok && len(sep) > 0 {
			inner = fmt.Sprintf("{children} (%s {children})*", formatEntries(sep))
		}
		before, _ := v["before"].([]any)
		after, _ := v["after"].([]any)
		parts := []string{}
		if len(before) > 0 {
			parts = append(parts, formatEntries(before))
		}
		parts = append(parts, inner)
		if len(after) > 0 {
			parts = append(parts, formatEntries(after))
		}
		return "(" + strings.Join(parts, " ") + ")?"
	default:
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
