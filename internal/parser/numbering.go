package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// docxLayout holds what go-docx leaves out of its model: list membership per body paragraph
// and per paragraph style, the format of each numbering instance, and run toggles switched
// off with an explicit w:val.
type docxLayout struct {
	paragraphs map[int]string // body paragraph index -> numId; "0" removes inherited numbering
	styles     map[string]string
	formats    map[string]string
	runsOff    map[runRef]offToggles
}

type runRef struct{ para, run int }

// offToggles marks run properties present in the XML but disabled, as in <w:b w:val="0"/>.
type offToggles struct{ bold, italic bool }

// ordered reports whether numId renders as a numbered (not bulleted) list. Unknown instances
// are treated as bullets.
func (l docxLayout) ordered(numID string) bool {
	f, ok := l.formats[numID]
	return ok && f != "bullet" && f != "none"
}

// listOf returns the numbering instance of a body paragraph. Direct numbering wins over the
// paragraph style's.
func (l docxLayout) listOf(para int, style string) (string, bool) {
	if id, ok := l.paragraphs[para]; ok {
		return id, id != "0"
	}
	id, ok := l.styles[style]
	return id, ok && id != "0"
}

type numberingPart struct {
	Abstract []struct {
		ID     string `xml:"abstractNumId,attr"`
		Levels []struct {
			Ilvl   string `xml:"ilvl,attr"`
			NumFmt struct {
				Val string `xml:"val,attr"`
			} `xml:"numFmt"`
		} `xml:"lvl"`
	} `xml:"abstractNum"`
	Nums []struct {
		ID       string `xml:"numId,attr"`
		Abstract struct {
			Val string `xml:"val,attr"`
		} `xml:"abstractNumId"`
	} `xml:"num"`
}

type stylesPart struct {
	Styles []struct {
		ID      string `xml:"styleId,attr"`
		Type    string `xml:"type,attr"`
		BasedOn struct {
			Val string `xml:"val,attr"`
		} `xml:"basedOn"`
		NumID struct {
			Val string `xml:"val,attr"`
		} `xml:"pPr>numPr>numId"`
	} `xml:"style"`
}

func readLayout(data []byte) (docxLayout, error) {
	out := docxLayout{
		paragraphs: map[int]string{},
		styles:     map[string]string{},
		formats:    map[string]string{},
		runsOff:    map[runRef]offToggles{},
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return out, fmt.Errorf("open docx package: %w", err)
	}

	if raw, err := readPart(zr, "word/numbering.xml"); err == nil {
		var part numberingPart
		if err := xml.Unmarshal(raw, &part); err != nil {
			return out, fmt.Errorf("parse numbering: %w", err)
		}
		abstract := map[string]string{}
		for _, a := range part.Abstract {
			for _, l := range a.Levels {
				if l.Ilvl == "0" || l.Ilvl == "" {
					abstract[a.ID] = l.NumFmt.Val
					break
				}
			}
		}
		for _, n := range part.Nums {
			out.formats[n.ID] = abstract[n.Abstract.Val]
		}
	} else if !errors.Is(err, errPartMissing) {
		return out, err
	}

	if raw, err := readPart(zr, "word/styles.xml"); err == nil {
		var part stylesPart
		if err := xml.Unmarshal(raw, &part); err != nil {
			return out, fmt.Errorf("parse styles: %w", err)
		}
		out.styles = styleNumbering(part)
	} else if !errors.Is(err, errPartMissing) {
		return out, err
	}

	raw, err := readPart(zr, "word/document.xml")
	if err != nil {
		return out, err
	}
	if err := out.scanBody(raw); err != nil {
		return out, fmt.Errorf("scan document: %w", err)
	}
	return out, nil
}

var errPartMissing = errors.New("part missing")

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// styleNumbering resolves the numId each paragraph style carries, following basedOn chains.
func styleNumbering(part stylesPart) map[string]string {
	own := map[string]string{}
	parent := map[string]string{}
	for _, st := range part.Styles {
		if st.Type != "" && st.Type != "paragraph" {
			continue
		}
		own[st.ID] = st.NumID.Val
		parent[st.ID] = st.BasedOn.Val
	}

	out := map[string]string{}
	for id := range own {
		cur := id
		for depth := 0; cur != "" && depth < 16; depth++ {
			if v := own[cur]; v != "" {
				out[id] = v
				break
			}
			cur = parent[cur]
		}
	}
	return out
}

// scanBody walks document.xml. For every body-level paragraph it records the numId of direct
// numbering ("0" included) and, per direct w:r child, bold or italic switched off by w:val.
func (l *docxLayout) scanBody(raw []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var stack []string
	para, run := -1, -1
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if len(stack) < 3 || stack[1] != "body" || stack[2] != "p" {
				continue
			}
			switch {
			case len(stack) == 3:
				para++
				run = -1
			case len(stack) == 4 && t.Name.Local == "r":
				run++
			case t.Name.Local == "numId" && stack[3] == "pPr":
				if v, ok := attrVal(t.Attr, "val"); ok {
					l.paragraphs[para] = v
				}
			case len(stack) == 6 && stack[3] == "r" && stack[4] == "rPr":
				v, ok := attrVal(t.Attr, "val")
				if !ok || toggleOn(v) {
					continue
				}
				ref := runRef{para, run}
				off := l.runsOff[ref]
				switch t.Name.Local {
				case "b":
					off.bold = true
				case "i":
					off.italic = true
				default:
					continue
				}
				l.runsOff[ref] = off
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func attrVal(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
