// Package walker flattens an HTML markup tree into a docmodel.Document.
//
// The walk is a pure function of the tree: it reads, never writes, and keeps no reference
// into the tree once it returns. Style is threaded through the recursion as a value; there is
// no shared "current style".
package walker

import (
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
	"golang.org/x/net/html"
)

// Stats counts the nodes the walk passed over without modeling them.
type Stats struct {
	SkippedTables      int `json:"skipped_tables"`
	Unrecognized       int `json:"unrecognized_elements"`
	FlattenedBlocks    int `json:"flattened_blocks"`
	ImplicitParagraphs int `json:"implicit_paragraphs"`
}

// Result is the outcome of one walk.
type Result struct {
	Document docmodel.Document `json:"document"`
	Stats    Stats             `json:"stats"`
}

type openBlock struct {
	kind         docmodel.BlockKind
	heading      int
	implicit     bool // loose content outside any block container
	continuation bool // trailing content of a block interrupted by a nested block
}

// scope is what the recursion threads downward.
type scope struct {
	style    docmodel.StyleState // effective inline style
	surround docmodel.StyleState // block-level default contributed by containers
}

type walker struct {
	doc   docmodel.Document
	runs  docmodel.RunBuilder
	open  *openBlock
	stats Stats
}

// Walk descends root depth-first, left to right.
func Walk(root *html.Node) Result {
	w := &walker{}
	if root != nil {
		w.visit(root, scope{})
	}
	w.closeBlock()
	return Result{Document: w.doc, Stats: w.stats}
}

func (w *walker) visit(n *html.Node, sc scope) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, sc.style)
		return
	case html.ElementNode:
	default:
		w.children(n, sc)
		return
	}

	switch classify(n) {
	case classSkip:
		return

	case classBreak:
		if w.open != nil && w.open.implicit {
			w.closeBlock()
		}

	case classOpaque:
		w.stats.SkippedTables++
		if w.open != nil && w.open.implicit {
			w.closeBlock()
		}

	case classBlock:
		if n.Data == "p" && w.open != nil && !w.open.implicit {
			d := Delta(n)
			w.children(n, scope{style: sc.style.Merge(d), surround: sc.surround})
			return
		}
		w.block(n, sc)

	case classContainer:
		d := Delta(n)
		inner := scope{
			style:    sc.style.Merge(d),
			surround: sc.surround.Merge(d),
		}
		if w.open != nil && w.open.implicit {
			w.closeBlock()
		}
		w.children(n, inner)
		if w.open != nil && w.open.implicit {
			w.closeBlock()
		}

	case classInline:
		w.children(n, scope{style: sc.style.Merge(Delta(n)), surround: sc.surround})

	default:
		w.stats.Unrecognized++
		w.children(n, sc)
	}
}

func (w *walker) children(n *html.Node, sc scope) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c, sc)
	}
}

func (w *walker) block(n *html.Node, sc scope) {
	outer := w.open
	if outer != nil {
		w.closeBlock()
		if !outer.implicit {
			w.stats.FlattenedBlocks++
		}
	}

	kind := KindOf(n)
	base := sc.surround.Merge(Delta(n))
	w.open = &openBlock{kind: kind, heading: kind.HeadingLevel()}
	w.children(n, scope{style: base, surround: sc.surround})
	w.closeBlock()

	if outer != nil && !outer.implicit {
		w.open = &openBlock{kind: outer.kind, heading: outer.heading, continuation: true}
	}
}

func (w *walker) text(s string, style docmodel.StyleState) {
	if s == "" {
		return
	}
	if w.open == nil {
		if isSpace(s) {
			return
		}
		w.open = &openBlock{kind: docmodel.KindParagraph, implicit: true}
		w.stats.ImplicitParagraphs++
	}
	if w.open.continuation && !w.runs.Pending() && isSpace(s) {
		return
	}
	if size, ok := docmodel.HeadingPreset(w.open.heading); ok {
		style.FontSizeHalfPoints = size
	}
	w.runs.Add(s, style)
}

func (w *walker) closeBlock() {
	if w.open == nil {
		return
	}
	runs := w.runs.Flush()
	b := w.open
	w.open = nil
	if b.continuation && len(runs) == 0 {
		return
	}
	w.doc.Append(docmodel.Block{Kind: b.kind, Runs: runs})
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}
