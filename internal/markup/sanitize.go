package markup

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
)

var (
	sizeRegexp       = regexp.MustCompile(`^\d+(\.\d+)?(pt|px|em|rem|%)$`)
	weightRegexp     = regexp.MustCompile(`^(normal|bold|bolder|lighter|[1-9]00)$`)
	fontStyleRegexp  = regexp.MustCompile(`^(normal|italic|oblique)$`)
	decorationRegexp = regexp.MustCompile(`^[a-z\- ]+$`)
	familyRegexp     = regexp.MustCompile(`^[A-Za-z0-9 ,'"\-]+$`)
	borderRegexp     = regexp.MustCompile(`^[a-z0-9#. ]+$`)
	fontSizeRegexp   = regexp.MustCompile(`^[1-7]$`)
	spanRegexp       = regexp.MustCompile(`^\d+$`)
)

// editorPolicy allows exactly the structure the walker and importer understand.
var editorPolicy = newEditorPolicy()

func newEditorPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6", "div", "br", "span", "font",
		"b", "strong", "i", "em", "u", "ins", "s", "sub", "sup", "mark", "small", "code",
		"ul", "ol", "li", "blockquote",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th",
	)
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("size").Matching(fontSizeRegexp).OnElements("font")
	p.AllowAttrs("colspan", "rowspan").Matching(spanRegexp).OnElements("td", "th")

	p.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()
	p.AllowStyles("font-size").Matching(sizeRegexp).Globally()
	p.AllowStyles("font-weight").Matching(weightRegexp).Globally()
	p.AllowStyles("font-style").Matching(fontStyleRegexp).Globally()
	p.AllowStyles("text-decoration", "text-decoration-line").Matching(decorationRegexp).Globally()
	p.AllowStyles("font-family").Matching(familyRegexp).Globally()
	p.AllowStyles("border-collapse").Matching(regexp.MustCompile(`^(collapse|separate)$`)).OnElements("table")
	p.AllowStyles("border", "padding").Matching(borderRegexp).OnElements("td", "th")
	return p
}

// Sanitize strips everything from untrusted markup that the editor does not model.
func Sanitize(s string) string {
	return editorPolicy.Sanitize(s)
}

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	return m
}()

// MinifyCSS compacts a stylesheet, returning the input unchanged if minification fails.
func MinifyCSS(s string) string {
	out, err := minifier.String("text/css", s)
	if err != nil {
		return s
	}
	return out
}
