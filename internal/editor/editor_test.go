package editor

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWith(t *testing.T, body string) *Session {
	t.Helper()
	s := NewSession()
	require.NoError(t, s.SetContent(body))
	return s
}

func model(t *testing.T, s *Session) docmodel.Document {
	t.Helper()
	res, err := s.Model()
	require.NoError(t, err)
	return res.Document
}

func htmlOf(t *testing.T, s *Session) string {
	t.Helper()
	snap, err := s.Snapshot()
	require.NoError(t, err)
	return string(snap.HTML)
}

func TestNewSession_Empty(t *testing.T) {
	s := NewSession()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, model(t, s).Len())
	assert.Contains(t, htmlOf(t, s), "<style>")
}

func TestSetContent_SanitizesAndKeepsStylesheet(t *testing.T) {
	s := sessionWith(t, `<p onclick="x()">hi<script>bad()</script></p>`)
	out := htmlOf(t, s)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "bad()")
	assert.Contains(t, out, "<style>")
	assert.Equal(t, "hi", model(t, s).Text())
}

func TestInstall(t *testing.T) {
	imp, err := (&parser.TextParser{}).Parse(strings.NewReader("one\n\ntwo"), "notes.txt")
	require.NoError(t, err)

	s := NewSession()
	s.Install(imp, "notes.txt")
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", snap.Filename)
	assert.Equal(t, "notes", snap.Title)
	assert.Equal(t, 2, snap.Blocks)
	assert.Equal(t, 1, snap.Version)
}

func TestToggleBold(t *testing.T) {
	s := sessionWith(t, `<p>plain</p><p><b>half</b> done</p>`)

	require.NoError(t, s.Apply(Command{Name: CmdToggleBold, Start: 0, End: 1}))
	for _, b := range model(t, s).Blocks {
		for _, r := range b.Runs {
			assert.True(t, r.Style.Bold, r.Text)
		}
	}

	require.NoError(t, s.Apply(Command{Name: CmdToggleBold, Start: 0, End: 1}))
	for _, b := range model(t, s).Blocks {
		for _, r := range b.Runs {
			assert.False(t, r.Style.Bold, r.Text)
		}
	}
	assert.Equal(t, "plainhalf done", model(t, s).Text())
}

func TestToggleItalicRemovesCSS(t *testing.T) {
	s := sessionWith(t, `<p><span style="font-style: italic; font-size: 14pt">x</span></p>`)
	require.NoError(t, s.Apply(Command{Name: CmdToggleItalic, Start: 0, End: 0}))

	r := model(t, s).Blocks[0].Runs[0]
	assert.False(t, r.Style.Italic)
	assert.Equal(t, 28, r.Style.FontSizeHalfPoints, "other declarations survive")
}

func TestToggleUnderline(t *testing.T) {
	s := sessionWith(t, `<p>a</p>`)
	require.NoError(t, s.Apply(Command{Name: CmdToggleUnderline, Start: 0, End: 0}))
	assert.True(t, model(t, s).Blocks[0].Runs[0].Style.Underline)
}

func TestSetAlignment(t *testing.T) {
	s := sessionWith(t, `<p><span style="text-align:left">a</span></p><p>b</p>`)
	require.NoError(t, s.Apply(Command{Name: CmdSetAlignment, Start: 0, End: 1, Value: "center"}))
	for _, b := range model(t, s).Blocks {
		assert.Equal(t, docmodel.AlignCenter, b.Alignment())
	}
}

func TestSetHeadingLevel(t *testing.T) {
	s := sessionWith(t, `<p>a</p><h1>b</h1>`)
	require.NoError(t, s.Apply(Command{Name: CmdSetHeadingLevel, Start: 0, End: 0, Value: "2"}))
	require.NoError(t, s.Apply(Command{Name: CmdSetHeadingLevel, Start: 1, End: 1, Value: "0"}))

	doc := model(t, s)
	assert.Equal(t, docmodel.KindHeading2, doc.Blocks[0].Kind)
	assert.Equal(t, docmodel.Heading2HalfPoints, doc.Blocks[0].Runs[0].Style.FontSizeHalfPoints)
	assert.Equal(t, docmodel.KindParagraph, doc.Blocks[1].Kind)
}

func TestSetHeadingLevel_LiftsListItem(t *testing.T) {
	s := sessionWith(t, `<ol><li>one</li><li>two</li><li>three</li></ol>`)
	require.NoError(t, s.Apply(Command{Name: CmdSetHeadingLevel, Start: 1, End: 1, Value: "1"}))

	doc := model(t, s)
	require.Equal(t, 3, doc.Len())
	assert.Equal(t, docmodel.KindNumberedListItem, doc.Blocks[0].Kind)
	assert.Equal(t, docmodel.KindHeading1, doc.Blocks[1].Kind)
	assert.Equal(t, "two", doc.Blocks[1].Text())
	assert.Equal(t, docmodel.KindNumberedListItem, doc.Blocks[2].Kind)
	assert.Equal(t, 2, strings.Count(htmlOf(t, s), "<ol>"))
}

func TestSetHeadingLevel_LastItemDropsEmptyList(t *testing.T) {
	s := sessionWith(t, `<ul><li>only</li></ul>`)
	require.NoError(t, s.Apply(Command{Name: CmdSetHeadingLevel, Start: 0, End: 0, Value: "0"}))
	out := htmlOf(t, s)
	assert.NotContains(t, out, "<ul>")
	assert.Contains(t, out, "<p>only</p>")
}

func TestSetFontSizeAndFamily(t *testing.T) {
	s := sessionWith(t, `<p><span style="font-size:8pt">a</span><font size="7">b</font></p>`)
	require.NoError(t, s.Apply(Command{Name: CmdSetFontSize, Start: 0, End: 0, Value: "14"}))
	require.NoError(t, s.Apply(Command{Name: CmdSetFontFamily, Start: 0, End: 0, Value: "Georgia, serif"}))

	b := model(t, s).Blocks[0]
	require.Len(t, b.Runs, 1)
	assert.Equal(t, 28, b.Runs[0].Style.FontSizeHalfPoints)
	assert.Contains(t, htmlOf(t, s), "font-family: Georgia, serif")
}

func TestInsertList(t *testing.T) {
	s := sessionWith(t, `<p>a</p><p>b</p><p>c</p>`)
	require.NoError(t, s.Apply(Command{Name: CmdInsertList, Start: 0, End: 1, Value: "bullet"}))

	doc := model(t, s)
	assert.Equal(t, docmodel.KindBulletListItem, doc.Blocks[0].Kind)
	assert.Equal(t, docmodel.KindBulletListItem, doc.Blocks[1].Kind)
	assert.Equal(t, docmodel.KindParagraph, doc.Blocks[2].Kind)
	assert.Equal(t, 1, strings.Count(htmlOf(t, s), "<ul>"), "consecutive blocks share one list")

	require.NoError(t, s.Apply(Command{Name: CmdInsertList, Start: 0, End: 0, Value: "numbered"}))
	doc = model(t, s)
	assert.Equal(t, docmodel.KindNumberedListItem, doc.Blocks[0].Kind)
	assert.Equal(t, docmodel.KindNumberedListItem, doc.Blocks[1].Kind, "a list item switches its whole list")
}

func TestApply_RejectsWithoutMutation(t *testing.T) {
	s := sessionWith(t, `<p>a</p><p>b</p>`)
	before := htmlOf(t, s)

	cases := []struct {
		cmd  Command
		want error
	}{
		{Command{Name: CmdToggleBold, Start: 0, End: 2}, ErrInvalidSelection},
		{Command{Name: CmdToggleBold, Start: 1, End: 0}, ErrInvalidSelection},
		{Command{Name: CmdToggleBold, Start: -1, End: 0}, ErrInvalidSelection},
		{Command{Name: "strike", Start: 0, End: 0}, ErrUnknownCommand},
		{Command{Name: CmdSetAlignment, Start: 0, End: 1, Value: "middle"}, ErrInvalidValue},
		{Command{Name: CmdSetHeadingLevel, Start: 0, End: 1, Value: "3"}, ErrInvalidValue},
		{Command{Name: CmdSetFontSize, Start: 0, End: 1, Value: "huge"}, ErrInvalidValue},
		{Command{Name: CmdSetFontFamily, Start: 0, End: 1, Value: "x;} body{"}, ErrInvalidValue},
		{Command{Name: CmdInsertList, Start: 0, End: 1, Value: "roman"}, ErrInvalidValue},
	}
	for _, tc := range cases {
		err := s.Apply(tc.cmd)
		assert.ErrorIs(t, err, tc.want, "%+v", tc.cmd)
	}
	assert.Equal(t, before, htmlOf(t, s))
}

func TestSelectable_SkipsTablesAndNestedBlocks(t *testing.T) {
	doc, err := markup.ParseString(`<p>a</p><table><tr><td><p>cell</p></td></tr></table><ul><li><p>x</p></li></ul>`)
	require.NoError(t, err)
	got := selectable(markup.Body(doc))
	require.Len(t, got, 2)
	assert.Equal(t, "p", got[0].Data)
	assert.Equal(t, "li", got[1].Data)
}

func TestSession_ConcurrentUse(t *testing.T) {
	s := sessionWith(t, `<p>a</p><p>b</p>`)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Apply(Command{Name: CmdToggleBold, Start: 0, End: 1})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Model()
		}()
	}
	wg.Wait()
	assert.Equal(t, "ab", model(t, s).Text())
}

func TestStore(t *testing.T) {
	st := NewStore(time.Hour)
	s := NewSession()
	st.Put(s)

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())
	list := st.List()
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].ID)
	assert.Nil(t, list[0].HTML)

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrSessionNotFound)
}

func TestStore_Cleanup(t *testing.T) {
	st := NewStore(time.Hour)
	stale := NewSession()
	stale.updatedAt = time.Now().Add(-2 * time.Hour)
	fresh := NewSession()
	st.Put(stale)
	st.Put(fresh)

	assert.Equal(t, 1, st.Cleanup())
	_, err := st.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}
