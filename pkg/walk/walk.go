package walk

import (
	"fmt"
	"iter"
	"strings"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
)

var _ ports.WalkFunc = Walk

// Walk expands prod, the production of root, depth-first and yields the
// rendered chunks lazily.
//
// Literal tokens are rendered through the dispatcher's token handler.
// Consecutive markers form a run that is resolved once the text of the
// following token is known (or at the end of the traversal), so layout
// handlers always see the chunk before and the chunk after them. Within a
// run the longest registered composite key wins over single-marker keys.
//
// Every run yields at least one chunk. Output that follows a line break
// inside a run is preceded by the indentation for the current depth, and a
// run whose last output ends with a line break is followed by an
// indentation chunk for the depth reached at the end of the run.
//
// Errors end the sequence: the failing position yields ("", err) and nothing
// follows. Stopping early leaves the rest of the tree unvisited.
func Walk(d ports.Dispatcher, root domain.Node, prod domain.Production) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		w := &walker{
			d:     d,
			stack: []frame{{node: root, prod: prod}},
		}
		w.run(yield)
	}
}

// frame is one production being expanded.
type frame struct {
	node domain.Node
	prod domain.Production
	pos  int
}

// item is a flattened production entry: a literal token or a marker.
type item struct {
	node     domain.Node
	value    any
	marker   domain.Marker
	isMarker bool
}

type walker struct {
	d       ports.Dispatcher
	stack   []frame
	pending []item
	depth   int
	before  string
	last    domain.Node
}

func (w *walker) run(yield func(string, error) bool) {
	for {
		it, ok, err := w.next()
		if err != nil {
			yield("", err)
			return
		}
		if !ok {
			if !w.flush("", yield) {
				return
			}
			if w.depth != 0 {
				yield("", &domain.IndentationError{NodeType: domain.TypeOf(w.last), Depth: w.depth})
			}
			return
		}
		if it.isMarker {
			w.pending = append(w.pending, it)
			continue
		}

		text, err := w.d.Token(it.node, it.value)
		if err != nil {
			yield("", err)
			return
		}
		if !w.flush(text, yield) {
			return
		}
		if !w.emit(text, yield) {
			return
		}
	}
}

// next pops the next token or marker, expanding child references on the way.
func (w *walker) next() (item, bool, error) {
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.pos >= len(top.prod) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		entry := top.prod[top.pos]
		top.pos++
		w.last = top.node

		switch e := entry.(type) {
		case domain.Token:
			return item{node: top.node, value: e.Value}, true, nil
		case domain.Marker:
			if !e.Valid() {
				return item{}, false, fmt.Errorf("walk: invalid marker %s in production of %q", e, domain.TypeOf(top.node))
			}
			return item{node: top.node, marker: e, isMarker: true}, true, nil
		case domain.Child:
			if domain.IsNil(e.Node) {
				continue
			}
			prod, err := w.d.Production(e.Node)
			if err != nil {
				return item{}, false, err
			}
			w.stack = append(w.stack, frame{node: e.Node, prod: prod})
		default:
			return item{}, false, fmt.Errorf("walk: unsupported entry %T in production of %q", entry, domain.TypeOf(top.node))
		}
	}
	return item{}, false, nil
}

// flush resolves the pending marker run. It returns false when iteration must stop.
func (w *walker) flush(after string, yield func(string, error) bool) bool {
	if len(w.pending) == 0 {
		return true
	}
	run := w.pending
	defer func() { w.pending = w.pending[:0] }()

	var lastText string
	lineStart := false
	for i := 0; i < len(run); {
		key, h, err := w.match(run[i:])
		if err != nil {
			yield("", err)
			return false
		}
		n := key.Len()
		for _, it := range run[i : i+n] {
			switch it.marker {
			case domain.Indent:
				w.depth++
			case domain.Dedent:
				w.depth--
				if w.depth < 0 {
					yield("", &domain.IndentationError{NodeType: domain.TypeOf(it.node), Depth: w.depth})
					return false
				}
			}
		}

		text, err := h(w.d, run[i].node, w.before, after)
		if err != nil {
			yield("", err)
			return false
		}
		i += n
		if text == "" {
			continue
		}
		// Output following a line break within the run starts at the
		// current indentation, unless it breaks the line again.
		if lineStart && !startsWithLineBreak(text) {
			if indent := w.d.Indentation(w.depth); indent != "" && !w.emit(indent, yield) {
				return false
			}
		}
		lastText = text
		if !w.emit(text, yield) {
			return false
		}
		lineStart = endsWithLineBreak(text)
	}

	switch {
	case lastText == "":
		return w.emit("", yield)
	case endsWithLineBreak(lastText):
		return w.emit(w.d.Indentation(w.depth), yield)
	}
	return true
}

// match finds the handler for the run starting at rest[0]: the longest
// registered composite key first, then the single marker.
func (w *walker) match(rest []item) (domain.Key, ports.LayoutHandler, error) {
	longest := min(w.d.MaxKeyLen(), len(rest))
	markers := make([]domain.Marker, longest)
	for i := 0; i < longest; i++ {
		markers[i] = rest[i].marker
	}
	for n := longest; n >= 2; n-- {
		key := domain.KeyOf(markers[:n]...)
		if h, ok := w.d.Layout(key); ok {
			return key, h, nil
		}
	}
	key := domain.KeyOf(rest[0].marker)
	if h, ok := w.d.Layout(key); ok {
		return key, h, nil
	}
	return key, nil, &domain.LayoutError{Key: key, NodeType: domain.TypeOf(rest[0].node)}
}

func (w *walker) emit(text string, yield func(string, error) bool) bool {
	if !yield(text, nil) {
		return false
	}
	if text != "" {
		w.before = text
	}
	return true
}

func endsWithLineBreak(s string) bool {
	return strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\r")
}

func startsWithLineBreak(s string) bool {
	return strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r")
}
