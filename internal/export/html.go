package export

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/markup"
)

// HTMLSerializer renders the model back into clean markup.
type HTMLSerializer struct {
	Stylesheet string
}

func (s *HTMLSerializer) Extension() string   { return "html" }
func (s *HTMLSerializer) ContentType() string { return "text/html; charset=utf-8" }

func (s *HTMLSerializer) Build(doc docmodel.Document) ([]byte, error) {
	out, err := markup.Render(ToMarkup(doc, s.Stylesheet))
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// ToMarkup builds a markup tree for doc. Consecutive list items of one kind share a list.
func ToMarkup(doc docmodel.Document, stylesheet string) *markup.Node {
	var nodes []*markup.Node
	var list *markup.Node
	for _, b := range doc.Blocks {
		el := markup.NewElement(blockElement(b.Kind))
		if a := b.Alignment(); a != docmodel.AlignUnset {
			markup.SetStyle(el, "text-align", string(a))
		}
		for _, r := range b.Runs {
			el.AppendChild(runMarkup(r, b.Kind))
		}

		if !b.Kind.IsListItem() {
			list = nil
			nodes = append(nodes, el)
			continue
		}
		tag := "ul"
		if b.Kind == docmodel.KindNumberedListItem {
			tag = "ol"
		}
		if list == nil || list.Data != tag {
			list = markup.NewElement(tag)
			nodes = append(nodes, list)
		}
		list.AppendChild(el)
	}
	return markup.Document(stylesheet, nodes...)
}

func blockElement(k docmodel.BlockKind) string {
	switch k {
	case docmodel.KindHeading1:
		return "h1"
	case docmodel.KindHeading2:
		return "h2"
	case docmodel.KindBulletListItem, docmodel.KindNumberedListItem:
		return "li"
	}
	return "p"
}

func runMarkup(r docmodel.Run, kind docmodel.BlockKind) *markup.Node {
	n := markup.NewText(r.Text)
	wrap := func(tag string) {
		el := markup.NewElement(tag)
		el.AppendChild(n)
		n = el
	}
	_, preset := docmodel.HeadingPreset(kind.HeadingLevel())
	if r.Style.FontSizeHalfPoints > 0 && !preset {
		span := markup.NewElement("span")
		markup.SetStyle(span, "font-size", fmt.Sprintf("%gpt", r.Style.Points()))
		span.AppendChild(n)
		n = span
	}
	if r.Style.Underline {
		wrap("u")
	}
	if r.Style.Italic {
		wrap("em")
	}
	if r.Style.Bold {
		wrap("strong")
	}
	return n
}
