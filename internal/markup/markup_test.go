package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("font-size: 12pt; FONT-WEIGHT:bold ;text-align: center !important")
	require.Len(t, decls, 3)
	assert.Equal(t, Declaration{Property: "font-size", Value: "12pt"}, decls[0])
	assert.Equal(t, Declaration{Property: "font-weight", Value: "bold"}, decls[1])
	assert.Equal(t, Declaration{Property: "text-align", Value: "center"}, decls[2])

	v, ok := StyleValue(decls, "font-weight")
	assert.True(t, ok)
	assert.Equal(t, "bold", v)

	_, ok = StyleValue(decls, "color")
	assert.False(t, ok)
}

func TestParseDeclarations_Empty(t *testing.T) {
	assert.Empty(t, ParseDeclarations(""))
	assert.Empty(t, ParseDeclarations("   "))
}

func TestSetStyle(t *testing.T) {
	n := NewElement("p")
	SetStyle(n, "text-align", "center")
	assert.Equal(t, "text-align: center", AttrVal(n, "style"))

	SetStyle(n, "font-size", "14pt")
	SetStyle(n, "text-align", "right")
	assert.Equal(t, "font-size: 14pt; text-align: right", AttrVal(n, "style"))

	RemoveStyles(n, "font-size", "text-align")
	_, ok := Attr(n, "style")
	assert.False(t, ok, "style attribute should be dropped when empty")
}

func TestUnwrapAndWrap(t *testing.T) {
	doc, err := ParseString("<p id=x><b>one</b> two</p>")
	require.NoError(t, err)
	p := Find(doc, "p")
	require.NotNil(t, p)

	Unwrap(Find(p, "b"))
	inner, err := InnerHTML(p)
	require.NoError(t, err)
	assert.Equal(t, "one two", inner)

	WrapChildren(p, NewElement("em"))
	inner, err = InnerHTML(p)
	require.NoError(t, err)
	assert.Equal(t, "<em>one two</em>", inner)
}

func TestDocument(t *testing.T) {
	p := NewElement("p")
	p.AppendChild(NewText("hello"))
	doc := Document("body{margin:0}", p)

	out, err := Render(doc)
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.Contains(s, "<style>body{margin:0}</style>"), s)
	assert.True(t, strings.Contains(s, "<body><p>hello</p></body>"), s)
}

func TestElements(t *testing.T) {
	doc, err := ParseString("<p>a</p><table><tr><td><p>skip</p></td></tr></table><ul><li>b</li></ul>")
	require.NoError(t, err)
	got := Elements(Body(doc),
		func(n *Node) bool { return IsElement(n, "p", "li") },
		func(n *Node) bool { return IsElement(n, "table") },
	)
	require.Len(t, got, 2)
	assert.Equal(t, "p", got[0].Data)
	assert.Equal(t, "li", got[1].Data)
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p style="text-align: center; color: red" onclick="x()">hi<script>alert(1)</script></p>`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "color")
	assert.Contains(t, out, "text-align")
	assert.Contains(t, out, ">hi<")
}

func TestMinifyCSS(t *testing.T) {
	out := MinifyCSS("h1 {\n  font-size: 24pt;\n}\n")
	assert.Equal(t, "h1{font-size:24pt}", out)
}
