package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/dgallion1/docedit/internal/docmodel"
	md "github.com/nao1215/markdown"
)

// MarkdownSerializer renders headings, lists, bold and italic. Size, alignment and underline
// have no Markdown form and are dropped.
type MarkdownSerializer struct{}

func (s *MarkdownSerializer) Extension() string   { return "md" }
func (s *MarkdownSerializer) ContentType() string { return "text/markdown; charset=utf-8" }

func (s *MarkdownSerializer) Build(doc docmodel.Document) ([]byte, error) {
	var buf bytes.Buffer
	m := md.NewMarkdown(&buf)

	blocks := doc.Blocks
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Kind {
		case docmodel.KindHeading1:
			m.H1(plainRuns(b.Runs))
		case docmodel.KindHeading2:
			m.H2(plainRuns(b.Runs))
		case docmodel.KindBulletListItem, docmodel.KindNumberedListItem:
			var items []string
			j := i
			for ; j < len(blocks) && blocks[j].Kind == b.Kind; j++ {
				items = append(items, inlineRuns(blocks[j].Runs))
			}
			if b.Kind == docmodel.KindBulletListItem {
				m.BulletList(items...)
			} else {
				m.OrderedList(items...)
			}
			i = j - 1
		default:
			m.PlainText(inlineRuns(b.Runs))
		}
		m.PlainText("")
	}

	if err := m.Build(); err != nil {
		return nil, fmt.Errorf("build markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func plainRuns(runs []docmodel.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return flattenLines(sb.String())
}

func inlineRuns(runs []docmodel.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(emphasize(flattenLines(r.Text), r.Style))
	}
	return sb.String()
}

// emphasize wraps the non-space core of text; emphasis markers must not touch whitespace.
func emphasize(text string, st docmodel.StyleState) string {
	if !st.Bold && !st.Italic {
		return text
	}
	core := strings.TrimFunc(text, unicode.IsSpace)
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	lead, trail := text[:start], text[start+len(core):]
	if st.Italic {
		core = md.Italic(core)
	}
	if st.Bold {
		core = md.Bold(core)
	}
	return lead + core + trail
}

func flattenLines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
}
