package walker

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
	"golang.org/x/net/html"
)

type nodeClass int

const (
	classTransparent nodeClass = iota
	classInline
	classBlock
	classContainer
	classOpaque
	classSkip
	classBreak
)

var classes = map[string]nodeClass{
	"p": classBlock, "li": classBlock,
	"h1": classBlock, "h2": classBlock, "h3": classBlock, "h4": classBlock, "h5": classBlock, "h6": classBlock,

	"html": classContainer, "body": classContainer, "div": classContainer, "ul": classContainer,
	"ol": classContainer, "blockquote": classContainer, "section": classContainer,
	"article": classContainer, "main": classContainer, "header": classContainer,
	"footer": classContainer, "center": classContainer,

	"span": classInline, "b": classInline, "strong": classInline, "i": classInline, "em": classInline,
	"u": classInline, "ins": classInline, "font": classInline, "a": classInline, "sub": classInline,
	"sup": classInline, "s": classInline, "mark": classInline, "small": classInline,
	"code": classInline, "label": classInline,

	"table": classOpaque,

	"head": classSkip, "style": classSkip, "script": classSkip, "template": classSkip,
	"title": classSkip, "noscript": classSkip,

	"br": classBreak,
}

func classify(n *html.Node) nodeClass {
	if c, ok := classes[n.Data]; ok {
		return c
	}
	return classTransparent
}

// IsBlock reports whether n is a block-level container (paragraph, heading or list item).
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && classify(n) == classBlock
}

// IsOpaque reports whether n is passed through without decomposition (tables).
func IsOpaque(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && classify(n) == classOpaque
}

// KindOf classifies a block element. List items look up their nearest list ancestor.
func KindOf(n *html.Node) docmodel.BlockKind {
	switch n.Data {
	case "h1":
		return docmodel.KindHeading1
	case "h2":
		return docmodel.KindHeading2
	case "li":
		for p := n.Parent; p != nil; p = p.Parent {
			if markup.IsElement(p, "ol") {
				return docmodel.KindNumberedListItem
			}
			if markup.IsElement(p, "ul") {
				return docmodel.KindBulletListItem
			}
		}
		return docmodel.KindBulletListItem
	}
	return docmodel.KindParagraph
}

// legacy <font size=N> steps in points
var fontSteps = [...]float64{0, 8, 10, 12, 14, 18, 24, 36}

// Delta extracts the style an element declares locally, from its tag and its style attribute.
// Unrecognized properties are ignored.
func Delta(n *html.Node) docmodel.StyleDelta {
	var d docmodel.StyleDelta
	yes := true
	switch n.Data {
	case "b", "strong":
		d.Bold = &yes
	case "i", "em":
		d.Italic = &yes
	case "u", "ins":
		d.Underline = &yes
	case "h1":
		d.HeadingLevel = 1
	case "h2":
		d.HeadingLevel = 2
	case "font":
		if v, err := strconv.Atoi(strings.TrimSpace(markup.AttrVal(n, "size"))); err == nil && v >= 1 && v < len(fontSteps) {
			hp := int(fontSteps[v] * 2)
			d.FontSizeHalfPoints = &hp
		}
	}

	for _, decl := range markup.ParseDeclarations(markup.AttrVal(n, "style")) {
		val := strings.ToLower(decl.Value)
		switch decl.Property {
		case "font-weight":
			b := isBoldWeight(val)
			d.Bold = &b
		case "font-style":
			it := val == "italic" || val == "oblique"
			d.Italic = &it
		case "text-decoration", "text-decoration-line":
			u := strings.Contains(val, "underline")
			d.Underline = &u
		case "font-size":
			if hp, ok := ParseFontSize(val); ok {
				d.FontSizeHalfPoints = &hp
			}
		case "text-align":
			if a, ok := docmodel.ParseAlignment(val); ok {
				d.Alignment = &a
			}
		}
	}
	return d
}

func isBoldWeight(v string) bool {
	switch v {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 600
}

// ParseFontSize converts a CSS absolute size (pt or px) to half-points.
func ParseFontSize(v string) (int, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	var pts float64
	switch {
	case strings.HasSuffix(v, "pt"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
		if err != nil {
			return 0, false
		}
		pts = f
	case strings.HasSuffix(v, "px"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		if err != nil {
			return 0, false
		}
		pts = f * 0.75
	default:
		return 0, false
	}
	hp := int(math.Round(pts * 2))
	if hp <= 0 {
		return 0, false
	}
	return hp, true
}
