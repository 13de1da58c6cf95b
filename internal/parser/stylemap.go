package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
)

// StyleMapping maps a named word-processor paragraph style to a block kind.
type StyleMapping struct {
	StyleName string
	Kind      docmodel.BlockKind
}

// DefaultStyleMap is used when no mapping is configured.
var DefaultStyleMap = []StyleMapping{
	{StyleName: "Heading 1", Kind: docmodel.KindHeading1},
	{StyleName: "Heading 2", Kind: docmodel.KindHeading2},
}

// ParseStyleMapping validates one configured pair. Only paragraph and heading kinds can be
// targets; list membership comes from numbering, not from style names.
func ParseStyleMapping(styleName, kind string) (StyleMapping, error) {
	if strings.TrimSpace(styleName) == "" {
		return StyleMapping{}, fmt.Errorf("style map: empty style name")
	}
	k, err := docmodel.ParseBlockKind(kind)
	if err != nil {
		return StyleMapping{}, fmt.Errorf("style map %q: %w", styleName, err)
	}
	if k.IsListItem() {
		return StyleMapping{}, fmt.Errorf("style map %q: list kinds cannot be mapped from styles", styleName)
	}
	return StyleMapping{StyleName: styleName, Kind: k}, nil
}

// normalizeStyle folds "Heading 1", "heading1" and "HEADING 1" together.
func normalizeStyle(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func lookupStyle(m []StyleMapping, style string) (docmodel.BlockKind, bool) {
	if style == "" {
		return docmodel.KindParagraph, false
	}
	key := normalizeStyle(style)
	for _, e := range m {
		if normalizeStyle(e.StyleName) == key {
			return e.Kind, true
		}
	}
	return docmodel.KindParagraph, false
}

const defaultStylesheet = `
body {
  font-family: Calibri, Arial, sans-serif;
  font-size: 11pt;
  line-height: 1.15;
  margin: 1in;
}
table { border-collapse: collapse; margin: 10pt 0; }
td, th { border: 1px solid #ddd; padding: 4px; }
h1 { font-size: 24pt; margin: 24pt 0; }
h2 { font-size: 18pt; margin: 18pt 0; }
`

var stylesheetOnce = sync.OnceValue(func() string {
	return markup.MinifyCSS(defaultStylesheet)
})

// Stylesheet is the minified stylesheet placed in the head of every imported document.
func Stylesheet() string { return stylesheetOnce() }
