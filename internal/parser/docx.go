package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct {
	StyleMap []StyleMapping
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (imp *Imported, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	// go-docx panics on some malformed parts; surface that as a decode failure.
	defer func() {
		if rec := recover(); rec != nil {
			imp, err = nil, fmt.Errorf("parse docx: %v", rec)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	layout, err := readLayout(data)
	if err != nil {
		return nil, err
	}

	styleMap := p.StyleMap
	if len(styleMap) == 0 {
		styleMap = DefaultStyleMap
	}

	var (
		out  []*markup.Node
		list *markup.Node // open ul/ol collecting consecutive items
		para int
	)
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			idx := para
			para++
			offAt := func(run int) offToggles { return layout.runsOff[runRef{idx, run}] }
			if numID, numbered := layout.listOf(idx, paragraphStyle(it)); numbered {
				tag := "ul"
				if layout.ordered(numID) {
					tag = "ol"
				}
				if list == nil || list.Data != tag {
					list = markup.NewElement(tag)
					out = append(out, list)
				}
				li := markup.NewElement("li")
				fillParagraph(li, it, offAt)
				list.AppendChild(li)
				continue
			}
			list = nil
			kind, _ := lookupStyle(styleMap, paragraphStyle(it))
			el := markup.NewElement(blockTag(kind))
			fillParagraph(el, it, offAt)
			out = append(out, el)

		case *docx.Table:
			list = nil
			out = append(out, docxTable(it))
		}
	}

	return wrap(baseTitle(filename), out), nil
}

func blockTag(k docmodel.BlockKind) string {
	switch k {
	case docmodel.KindHeading1:
		return "h1"
	case docmodel.KindHeading2:
		return "h2"
	}
	return "p"
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// fillParagraph appends the paragraph's runs to el as styled inline markup. offAt, when set,
// reports toggles disabled on the i-th run.
func fillParagraph(el *markup.Node, para *docx.Paragraph, offAt func(run int) offToggles) {
	if para.Properties != nil && para.Properties.Justification != nil {
		if a, ok := docxAlignment(para.Properties.Justification.Val); ok {
			markup.SetStyle(el, "text-align", string(a))
		}
	}
	runIdx := -1
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		runIdx++
		var off offToggles
		if offAt != nil {
			off = offAt(runIdx)
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
		if buf.Len() == 0 {
			continue
		}
		el.AppendChild(styledRun(buf.String(), run.RunProperties, off))
	}
}

// styledRun nests the text in one wrapper per active attribute. go-docx keeps w:b and w:i as
// presence flags; off carries the ones whose w:val disables them.
func styledRun(text string, props *docx.RunProperties, off offToggles) *markup.Node {
	n := markup.NewText(text)
	if props == nil {
		return n
	}
	wrapIn := func(tag string) {
		w := markup.NewElement(tag)
		w.AppendChild(n)
		n = w
	}
	if props.Size != nil {
		if hp, err := strconv.Atoi(props.Size.Val); err == nil && hp > 0 {
			span := markup.NewElement("span")
			markup.SetStyle(span, "font-size", formatPoints(float64(hp)/2))
			span.AppendChild(n)
			n = span
		}
	}
	if props.Underline != nil && props.Underline.Val != "" && props.Underline.Val != "none" {
		wrapIn("u")
	}
	if props.Italic != nil && !off.italic {
		wrapIn("em")
	}
	if props.Bold != nil && !off.bold {
		wrapIn("strong")
	}
	return n
}

// toggleOn interprets an OOXML on/off property value; absence of w:val means on.
func toggleOn(val string) bool {
	switch strings.ToLower(val) {
	case "0", "false", "off":
		return false
	}
	return true
}

func docxAlignment(val string) (docmodel.Alignment, bool) {
	switch strings.ToLower(val) {
	case "left", "start":
		return docmodel.AlignLeft, true
	case "center":
		return docmodel.AlignCenter, true
	case "right", "end":
		return docmodel.AlignRight, true
	case "both", "distribute":
		return docmodel.AlignJustify, true
	}
	return docmodel.AlignUnset, false
}

func formatPoints(pt float64) string {
	return strconv.FormatFloat(pt, 'f', -1, 64) + "pt"
}

// docxTable renders a table as pre-built markup with collapsed borders. It is displayed, not
// modeled.
func docxTable(tbl *docx.Table) *markup.Node {
	table := markup.NewElement("table")
	markup.SetStyle(table, "border-collapse", "collapse")
	tbody := markup.NewElement("tbody")
	table.AppendChild(tbody)
	for _, row := range tbl.TableRows {
		tr := markup.NewElement("tr")
		for _, cell := range row.TableCells {
			td := markup.NewElement("td")
			markup.SetStyle(td, "border", "1px solid #ddd")
			for _, para := range cell.Paragraphs {
				p := markup.NewElement("p")
				fillParagraph(p, para, nil)
				td.AppendChild(p)
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	return table
}
