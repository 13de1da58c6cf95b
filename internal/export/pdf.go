package export

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/dgallion1/docedit/internal/docmodel"
)

const (
	pdfFont        = "Helvetica"
	pdfDefaultSize = 11.0 // points, when a run has no size
	pdfListIndent  = 6.0  // mm
)

// PDFSerializer lays the document out with fpdf core fonts.
type PDFSerializer struct{}

func (s *PDFSerializer) Extension() string   { return "pdf" }
func (s *PDFSerializer) ContentType() string { return "application/pdf" }

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (s *PDFSerializer) Build(doc docmodel.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	w := pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	number := 0
	for _, b := range doc.Blocks {
		if b.Kind == docmodel.KindNumberedListItem {
			number++
		} else {
			number = 0
		}
		w.writeBlock(b, number)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("output pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) writeBlock(b docmodel.Block, number int) {
	left, _, _, _ := w.pdf.GetMargins()
	defer w.pdf.SetLeftMargin(left)

	switch b.Kind {
	case docmodel.KindBulletListItem, docmodel.KindNumberedListItem:
		w.applyStyle(firstStyle(b))
		marker := "•"
		if b.Kind == docmodel.KindNumberedListItem {
			marker = fmt.Sprintf("%d.", number)
		}
		w.pdf.SetX(left)
		w.write(marker)
		w.pdf.SetLeftMargin(left + pdfListIndent)
		w.pdf.SetX(left + pdfListIndent)
	}

	if len(b.Runs) == 0 {
		w.applyStyle(docmodel.StyleState{})
		w.pdf.Ln(w.lineHeight())
		return
	}

	// Alignment only applies to single-style blocks; mixed runs flow left to right.
	if align := pdfAlign(b.Alignment()); align != "L" && b.Uniform() {
		w.applyStyle(b.Runs[0].Style)
		w.pdf.MultiCell(0, w.lineHeight(), w.tr(b.Text()), "", align, false)
		return
	}
	for _, r := range b.Runs {
		w.applyStyle(r.Style)
		w.write(r.Text)
	}
	w.pdf.Ln(-1)
}

func firstStyle(b docmodel.Block) docmodel.StyleState {
	if len(b.Runs) == 0 {
		return docmodel.StyleState{}
	}
	return b.Runs[0].Style
}

func (w *pdfWriter) applyStyle(st docmodel.StyleState) {
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	if st.Underline {
		style += "U"
	}
	size := st.Points()
	if size == 0 {
		size = pdfDefaultSize
	}
	w.pdf.SetFont(pdfFont, style, size)
}

func (w *pdfWriter) lineHeight() float64 {
	_, h := w.pdf.GetFontSize()
	return h * 1.4
}

func (w *pdfWriter) write(text string) {
	w.pdf.Write(w.lineHeight(), w.tr(text))
}

func pdfAlign(a docmodel.Alignment) string {
	switch a {
	case docmodel.AlignCenter:
		return "C"
	case docmodel.AlignRight:
		return "R"
	case docmodel.AlignJustify:
		return "J"
	}
	return "L"
}
