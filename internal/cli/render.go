package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/unparse/internal/presentation/graph"
	"github.com/aretw0/unparse/internal/presentation/tui"
)

// Render renders the tree at path to w. Output ends with a newline unless
// it is empty or already ends with one.
func Render(ctx context.Context, w io.Writer, path string, opts Options) error {
	logger := createLogger(opts.Debug)
	svc, err := newService(opts, logger)
	if err != nil {
		return err
	}
	root, err := loadTree(path, opts.Stdin)
	if err != nil {
		return err
	}

	var text string
	if opts.Limit > 0 {
		var truncated bool
		text, truncated, err = svc.Preview(opts.request(root), opts.Limit)
		if err != nil {
			return err
		}
		if truncated {
			logger.Info("Output truncated", "limit", opts.Limit)
		}
	} else {
		res, err := svc.Render(ctx, opts.request(root))
		if err != nil {
			return err
		}
		logger.Debug("Rendered", "cached", res.Cached, "key", res.Key, "bytes", len(res.Text))
		text = res.Text
	}

	if text != "" && text[len(text)-1] != '\n' {
		text += "\n"
	}
	_, err = io.WriteString(w, text)
	return err
}

// Chunks lists every chunk the walk yields for the tree at path.
func Chunks(w io.Writer, path string, opts Options) error {
	logger := createLogger(opts.Debug)
	svc, err := newService(opts, logger)
	if err != nil {
		return err
	}
	root, err := loadTree(path, opts.Stdin)
	if err != nil {
		return err
	}
	chunks, err := svc.Stream(opts.request(root))
	if err != nil {
		return err
	}

	printer := tui.NewChunkPrinter(w, tui.Profile(w, opts.Color))
	for chunk, err := range chunks {
		if err != nil {
			return err
		}
		if err := printer.Print(chunk); err != nil {
			return err
		}
	}
	return printer.Summary()
}

// Validate checks that the grammar has a rule for every node type in the
// tree at path, without rendering.
func Validate(w io.Writer, path string, opts Options) error {
	svc, err := newService(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	root, err := loadTree(path, opts.Stdin)
	if err != nil {
		return err
	}
	g, err := svc.Grammar(opts.Grammar)
	if err != nil {
		return err
	}
	if err := g.Check(root); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Tree is valid for %s! ✅ (%d nodes, %d types)\n", g.Name, root.Count(), len(root.Types()))
	return err
}

// ShowGrammar writes the grammar reference as Markdown, rendered for the
// terminal unless raw is set or w is not a terminal.
func ShowGrammar(w io.Writer, opts Options, raw bool) error {
	svc, err := newService(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	g, err := svc.Grammar(opts.Grammar)
	if err != nil {
		return err
	}

	md := g.Markdown()
	if raw || !tui.IsTerminal(w) {
		_, err = io.WriteString(w, md)
		return err
	}
	render, err := tui.NewRenderer(tui.Width(w, 100))
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Graph writes a Mermaid flowchart of the tree at path. Node types the
// grammar has no rule for are highlighted.
func Graph(w io.Writer, path string, opts Options) error {
	svc, err := newService(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	root, err := loadTree(path, opts.Stdin)
	if err != nil {
		return err
	}
	g, err := svc.Grammar(opts.Grammar)
	if err != nil {
		return err
	}

	overlay := &graph.Overlay{Missing: make(map[string]bool)}
	for _, nodeType := range root.Types() {
		if _, ok := g.Definitions[nodeType]; !ok {
			overlay.Missing[nodeType] = true
		}
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(root, overlay))
	return err
}
