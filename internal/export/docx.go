package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/fumiama/go-docx"
)

// Numbering instances defined in the injected numbering part.
const (
	bulletNumID   = "1"
	numberedNumID = "2"
)

// DOCXSerializer writes WordprocessingML packages with go-docx.
type DOCXSerializer struct{}

func (s *DOCXSerializer) Extension() string { return "docx" }

func (s *DOCXSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Build emits one paragraph per block, empty blocks included, then patches the package with
// numbering and heading style definitions.
func (s *DOCXSerializer) Build(doc docmodel.Document) ([]byte, error) {
	d := docx.New().WithDefaultTheme()
	for _, b := range doc.Blocks {
		p := d.AddParagraph()
		switch b.Kind {
		case docmodel.KindHeading1:
			setParagraphStyle(p, "Heading1")
		case docmodel.KindHeading2:
			setParagraphStyle(p, "Heading2")
		case docmodel.KindBulletListItem:
			p.NumPr(bulletNumID, "0")
		case docmodel.KindNumberedListItem:
			p.NumPr(numberedNumID, "0")
		}
		if jc, ok := justification(b.Alignment()); ok {
			p.Justification(jc)
		}
		for _, r := range b.Runs {
			addRun(p, r)
		}
	}

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("pack docx: %w", err)
	}
	out, err := patchPackage(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return out, nil
}

func setParagraphStyle(p *docx.Paragraph, styleID string) {
	if p.Properties == nil {
		p.Properties = &docx.ParagraphProperties{}
	}
	p.Properties.Style = &docx.Style{Val: styleID}
}

func addRun(p *docx.Paragraph, r docmodel.Run) {
	run := p.AddText(r.Text)
	if r.Style.Bold {
		run.Bold()
	}
	if r.Style.Italic {
		run.Italic()
	}
	if r.Style.Underline {
		run.Underline("single")
	}
	if r.Style.FontSizeHalfPoints > 0 {
		run.Size(strconv.Itoa(r.Style.FontSizeHalfPoints))
	}
}

// justification maps alignment to w:jc values. Unset maps to no element at all.
func justification(a docmodel.Alignment) (string, bool) {
	switch a {
	case docmodel.AlignLeft:
		return "left", true
	case docmodel.AlignCenter:
		return "center", true
	case docmodel.AlignRight:
		return "right", true
	case docmodel.AlignJustify:
		return "both", true
	}
	return "", false
}
