package walker

import (
	"testing"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkHTML(t *testing.T, src string) Result {
	t.Helper()
	root, err := markup.ParseString(src)
	require.NoError(t, err)
	return Walk(root)
}

func TestWalk_HeadingThenMixedParagraph(t *testing.T) {
	res := walkHTML(t, `<h1>Title</h1><p><b>Hi </b><span>there</span></p>`)

	want := docmodel.Document{Blocks: []docmodel.Block{
		{Kind: docmodel.KindHeading1, Runs: []docmodel.Run{
			{Text: "Title", Style: docmodel.StyleState{FontSizeHalfPoints: 48}},
		}},
		{Kind: docmodel.KindParagraph, Runs: []docmodel.Run{
			{Text: "Hi ", Style: docmodel.StyleState{Bold: true}},
			{Text: "there", Style: docmodel.StyleState{}},
		}},
	}}
	assert.Equal(t, want, res.Document)
}

func TestWalk_AdjacentBoldSpansMerge(t *testing.T) {
	res := walkHTML(t, `<p><b>Hi</b><strong> there</strong></p>`)
	require.Equal(t, 1, res.Document.Len())
	runs := res.Document.Blocks[0].Runs
	require.Len(t, runs, 1)
	assert.Equal(t, docmodel.Run{Text: "Hi there", Style: docmodel.StyleState{Bold: true}}, runs[0])
}

func TestWalk_StylesDoNotLeakAcrossBlocks(t *testing.T) {
	res := walkHTML(t, `<p><b><i>one</i></b></p><p>two</p><ul><li><u>three</u></li><li>four</li></ul>`)
	blocks := res.Document.Blocks
	require.Len(t, blocks, 4)
	for i := 1; i < len(blocks); i++ {
		first := blocks[i].Runs[0].Style
		assert.False(t, first.Bold, "block %d", i)
		assert.False(t, first.Italic, "block %d", i)
		if i != 2 {
			assert.False(t, first.Underline, "block %d", i)
		}
	}
}

func TestWalk_HeadingPresetBeatsInlineSize(t *testing.T) {
	res := walkHTML(t, `<h1><span style="font-size: 10pt">Big</span> <font size="1">and small</font></h1><h2 style="font-size:8pt">Sub</h2>`)
	require.Equal(t, 2, res.Document.Len())
	for _, r := range res.Document.Blocks[0].Runs {
		assert.Equal(t, docmodel.Heading1HalfPoints, r.Style.FontSizeHalfPoints, r.Text)
	}
	assert.Equal(t, docmodel.Heading2HalfPoints, res.Document.Blocks[1].Runs[0].Style.FontSizeHalfPoints)
}

func TestWalk_DeepHeadingsAreParagraphs(t *testing.T) {
	res := walkHTML(t, `<h3><span style="font-size:20pt">Three</span></h3>`)
	require.Equal(t, 1, res.Document.Len())
	b := res.Document.Blocks[0]
	assert.Equal(t, docmodel.KindParagraph, b.Kind)
	assert.Equal(t, 40, b.Runs[0].Style.FontSizeHalfPoints)
}

func TestWalk_TextPreservation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"flat", `<p>a</p><p>b<i>c</i>d</p>`, "abcd"},
		{"nested inline", `<p><b>x<i>y<u>z</u></i></b>w</p>`, "xyzw"},
		{"lists", `<ul><li>one</li><li>two</li></ul><ol><li>three</li></ol>`, "onetwothree"},
		{"unknown wrapper", `<p><custom-tag>in<x-y>side</x-y></custom-tag></p>`, "inside"},
		{"whitespace inside", `<p>  spaced  out </p>`, "  spaced  out "},
		{"nested list", `<ul><li>a<ul><li>b</li></ul>c</li></ul>`, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := walkHTML(t, tc.src)
			assert.Equal(t, tc.want, res.Document.Text())
		})
	}
}

func TestWalk_EmptyBlocksPreserved(t *testing.T) {
	res := walkHTML(t, `<p>a</p><p></p><h2></h2><p>b</p>`)
	require.Equal(t, 4, res.Document.Len())
	assert.True(t, res.Document.Blocks[1].Empty())
	assert.Equal(t, docmodel.KindHeading2, res.Document.Blocks[2].Kind)
	assert.Empty(t, res.Document.Blocks[2].Runs)
}

func TestWalk_ListKinds(t *testing.T) {
	res := walkHTML(t, `<ul><li>dot</li></ul><ol><li>one</li><li>two</li></ol>`)
	kinds := make([]docmodel.BlockKind, 0, res.Document.Len())
	for _, b := range res.Document.Blocks {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []docmodel.BlockKind{
		docmodel.KindBulletListItem,
		docmodel.KindNumberedListItem,
		docmodel.KindNumberedListItem,
	}, kinds)
}

func TestWalk_NestedListsFlatten(t *testing.T) {
	res := walkHTML(t, `<ol><li>outer<ul><li>inner</li></ul>tail</li></ol>`)
	require.Equal(t, 3, res.Document.Len())

	b := res.Document.Blocks
	assert.Equal(t, docmodel.KindNumberedListItem, b[0].Kind)
	assert.Equal(t, "outer", b[0].Text())
	assert.Equal(t, docmodel.KindBulletListItem, b[1].Kind)
	assert.Equal(t, "inner", b[1].Text())
	assert.Equal(t, docmodel.KindNumberedListItem, b[2].Kind)
	assert.Equal(t, "tail", b[2].Text())
	assert.Equal(t, 1, res.Stats.FlattenedBlocks)
}

func TestWalk_NestedListWithoutTail(t *testing.T) {
	res := walkHTML(t, "<ul><li>outer\n<ul><li>inner</li></ul>\n</li></ul>")
	require.Equal(t, 2, res.Document.Len(), "whitespace after a nested list opens no block")
}

func TestWalk_ParagraphInsideListItemIsInline(t *testing.T) {
	res := walkHTML(t, `<ul><li><p style="text-align:center">item</p></li></ul>`)
	require.Equal(t, 1, res.Document.Len())
	b := res.Document.Blocks[0]
	assert.Equal(t, docmodel.KindBulletListItem, b.Kind)
	assert.Equal(t, docmodel.AlignCenter, b.Alignment())
}

func TestWalk_AlignmentAndCSS(t *testing.T) {
	res := walkHTML(t, `<div style="text-align:right"><p>r</p></div>`+
		`<p style="text-align: justify"><span style="font-weight:700; font-style: italic; text-decoration: underline; font-size: 16px">x</span></p>`)
	require.Equal(t, 2, res.Document.Len())
	assert.Equal(t, docmodel.AlignRight, res.Document.Blocks[0].Alignment())

	got := res.Document.Blocks[1].Runs[0].Style
	assert.Equal(t, docmodel.StyleState{
		Bold: true, Italic: true, Underline: true,
		FontSizeHalfPoints: 24, Alignment: docmodel.AlignJustify,
	}, got)
}

func TestWalk_LooseTextBecomesImplicitParagraphs(t *testing.T) {
	res := walkHTML(t, "first<br>second<div>third</div>\n<p>fourth</p>")
	require.Equal(t, 4, res.Document.Len())
	for i, want := range []string{"first", "second", "third", "fourth"} {
		assert.Equal(t, docmodel.KindParagraph, res.Document.Blocks[i].Kind)
		assert.Equal(t, want, res.Document.Blocks[i].Text())
	}
	assert.Equal(t, 3, res.Stats.ImplicitParagraphs)
}

func TestWalk_TablesAndHeadAreSkipped(t *testing.T) {
	res := walkHTML(t, `<html><head><style>h1{font-size:24pt}</style></head><body>`+
		`<p>before</p><table><tr><td>cell</td></tr></table><p>after</p></body></html>`)
	require.Equal(t, 2, res.Document.Len())
	assert.Equal(t, "beforeafter", res.Document.Text())
	assert.Equal(t, 1, res.Stats.SkippedTables)
}

func TestWalk_DoesNotMutateTree(t *testing.T) {
	root, err := markup.ParseString(`<p><b>Hi</b> there</p>`)
	require.NoError(t, err)
	before, err := markup.Render(root)
	require.NoError(t, err)

	Walk(root)
	Walk(root)

	after, err := markup.Render(root)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestParseFontSize(t *testing.T) {
	cases := map[string]int{"12pt": 24, "11.5pt": 23, "16px": 24, "10PT": 20}
	for in, want := range cases {
		got, ok := ParseFontSize(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "large", "1.2em", "0pt", "xpt"} {
		_, ok := ParseFontSize(bad)
		assert.False(t, ok, bad)
	}
}
