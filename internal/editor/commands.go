package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
	"github.com/dgallion1/docedit/internal/walker"
)

// Command is one formatting action over the block range [Start, End], indices counted over
// the document's top-level blocks in order.
type Command struct {
	Name  string `json:"command"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value,omitempty"`
}

const (
	CmdToggleBold      = "toggle-bold"
	CmdToggleItalic    = "toggle-italic"
	CmdToggleUnderline = "toggle-underline"
	CmdSetAlignment    = "set-alignment"
	CmdSetHeadingLevel = "set-heading-level"
	CmdSetFontFamily   = "set-font-family"
	CmdSetFontSize     = "set-font-size"
	CmdInsertList      = "insert-list"
)

// Commands lists every supported command name.
var Commands = []string{
	CmdToggleBold, CmdToggleItalic, CmdToggleUnderline, CmdSetAlignment,
	CmdSetHeadingLevel, CmdSetFontFamily, CmdSetFontSize, CmdInsertList,
}

var familyRegexp = regexp.MustCompile(`^[A-Za-z0-9 ,'"\-]{1,100}$`)

type toggleSpec struct {
	tags  []string
	props []string
	wrap  string
	has   func(docmodel.StyleState) bool
}

var toggles = map[string]toggleSpec{
	CmdToggleBold: {
		tags: []string{"b", "strong"}, props: []string{"font-weight"}, wrap: "strong",
		has: func(s docmodel.StyleState) bool { return s.Bold },
	},
	CmdToggleItalic: {
		tags: []string{"i", "em"}, props: []string{"font-style"}, wrap: "em",
		has: func(s docmodel.StyleState) bool { return s.Italic },
	},
	CmdToggleUnderline: {
		tags: []string{"u", "ins"}, props: []string{"text-decoration", "text-decoration-line"}, wrap: "u",
		has: func(s docmodel.StyleState) bool { return s.Underline },
	},
}

// selectable returns the top-level block containers in document order. Blocks nested inside
// other blocks and anything inside tables are not addressable.
func selectable(body *markup.Node) []*markup.Node {
	all := markup.Elements(body, walker.IsBlock, walker.IsOpaque)
	out := all[:0]
	for _, b := range all {
		if !insideBlock(b) {
			out = append(out, b)
		}
	}
	return out
}

func insideBlock(n *markup.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if walker.IsBlock(p) {
			return true
		}
	}
	return false
}

// apply validates everything up front so a rejected command leaves the tree untouched.
func apply(body *markup.Node, cmd Command) error {
	blocks := selectable(body)
	if cmd.Start < 0 || cmd.End < cmd.Start || cmd.End >= len(blocks) {
		return fmt.Errorf("%w: [%d, %d] of %d blocks", ErrInvalidSelection, cmd.Start, cmd.End, len(blocks))
	}
	sel := blocks[cmd.Start : cmd.End+1]

	if spec, ok := toggles[cmd.Name]; ok {
		toggle(sel, spec)
		return nil
	}

	switch cmd.Name {
	case CmdSetAlignment:
		a, ok := docmodel.ParseAlignment(cmd.Value)
		if !ok || a == docmodel.AlignUnset {
			return fmt.Errorf("%w: alignment %q", ErrInvalidValue, cmd.Value)
		}
		for _, b := range sel {
			stripDescendantStyles(b, "text-align")
			markup.SetStyle(b, "text-align", string(a))
		}

	case CmdSetHeadingLevel:
		level, err := strconv.Atoi(cmd.Value)
		if err != nil || level < 0 || level > 2 {
			return fmt.Errorf("%w: heading level %q", ErrInvalidValue, cmd.Value)
		}
		tag := [...]string{"p", "h1", "h2"}[level]
		for _, b := range sel {
			if markup.IsElement(b, "li") {
				liftFromList(b)
			}
			markup.Rename(b, tag)
		}

	case CmdSetFontFamily:
		v := strings.TrimSpace(cmd.Value)
		if !familyRegexp.MatchString(v) {
			return fmt.Errorf("%w: font family %q", ErrInvalidValue, cmd.Value)
		}
		for _, b := range sel {
			stripDescendantStyles(b, "font-family")
			markup.SetStyle(b, "font-family", v)
		}

	case CmdSetFontSize:
		pt, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(cmd.Value), "pt"), 64)
		if err != nil || pt < 1 || pt > 400 {
			return fmt.Errorf("%w: font size %q", ErrInvalidValue, cmd.Value)
		}
		size := strconv.FormatFloat(pt, 'f', -1, 64) + "pt"
		for _, b := range sel {
			stripDescendantStyles(b, "font-size")
			for _, f := range markup.Elements(b, func(n *markup.Node) bool { return markup.IsElement(n, "font") }, nil) {
				markup.RemoveAttr(f, "size")
			}
			markup.SetStyle(b, "font-size", size)
		}

	case CmdInsertList:
		var tag string
		switch cmd.Value {
		case "bullet":
			tag = "ul"
		case "numbered":
			tag = "ol"
		default:
			return fmt.Errorf("%w: list kind %q", ErrInvalidValue, cmd.Value)
		}
		for _, b := range sel {
			insertList(b, tag)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return nil
}

// toggle removes the attribute when every run in the selection already has it, and applies it
// otherwise.
func toggle(sel []*markup.Node, spec toggleSpec) {
	all, seen := true, false
	for _, b := range sel {
		for _, blk := range walker.Walk(b).Document.Blocks {
			for _, r := range blk.Runs {
				seen = true
				if !spec.has(r.Style) {
					all = false
				}
			}
		}
	}

	if seen && all {
		for _, b := range sel {
			for _, n := range markup.Elements(b, func(n *markup.Node) bool { return markup.IsElement(n, spec.tags...) }, nil) {
				markup.Unwrap(n)
			}
			markup.RemoveStyles(b, spec.props...)
			stripDescendantStyles(b, spec.props...)
		}
		return
	}
	for _, b := range sel {
		markup.WrapChildren(b, markup.NewElement(spec.wrap))
	}
}

func stripDescendantStyles(b *markup.Node, props ...string) {
	for _, n := range markup.Elements(b, func(n *markup.Node) bool { return markup.AttrVal(n, "style") != "" }, nil) {
		markup.RemoveStyles(n, props...)
	}
}
