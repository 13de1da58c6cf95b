package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
)

const (
	numberingPart = "word/numbering.xml"
	wmlNamespace  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var relIDPattern = regexp.MustCompile(`Id="rId(\d+)"`)

var numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="` + wmlNamespace + `">` +
	abstractNum("0", "bullet", "•") +
	abstractNum("1", "decimal", "%1.") +
	`<w:num w:numId="` + bulletNumID + `"><w:abstractNumId w:val="0"/></w:num>` +
	`<w:num w:numId="` + numberedNumID + `"><w:abstractNumId w:val="1"/></w:num>` +
	`</w:numbering>`

func abstractNum(id, format, text string) string {
	return `<w:abstractNum w:abstractNumId="` + id + `">` +
		`<w:multiLevelType w:val="singleLevel"/>` +
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="` + format + `"/>` +
		`<w:lvlText w:val="` + text + `"/><w:lvlJc w:val="left"/>` +
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`
}

func headingStyle(id, name, outline string, halfPoints int) string {
	return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/>`+
		`<w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`+
		`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="%s"/></w:pPr>`+
		`<w:rPr><w:b/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`,
		id, name, outline, halfPoints, halfPoints)
}

// patchPackage rewrites the zip so list paragraphs resolve: a numbering part with its content
// type and relationship, and heading styles when the template has none.
func patchPackage(src []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("reopen package: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if f.Name == numberingPart {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		switch f.Name {
		case "[Content_Types].xml":
			data, err = ensureContentType(data)
		case "word/_rels/document.xml.rels":
			data, err = ensureNumberingRel(data)
		case "word/styles.xml":
			data, err = ensureHeadingStyles(data)
		}
		if err != nil {
			return nil, err
		}
		if err := writeZipFile(zw, f.Name, data); err != nil {
			return nil, err
		}
	}
	if err := writeZipFile(zw, numberingPart, []byte(numberingXML)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return out.Bytes(), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func insertBefore(data []byte, closing, fragment, part string) ([]byte, error) {
	s := string(data)
	i := strings.LastIndex(s, closing)
	if i < 0 {
		return nil, fmt.Errorf("%s: missing %s", part, closing)
	}
	return []byte(s[:i] + fragment + s[i:]), nil
}

func ensureContentType(data []byte) ([]byte, error) {
	if bytes.Contains(data, []byte(`PartName="/`+numberingPart+`"`)) {
		return data, nil
	}
	return insertBefore(data, "</Types>",
		`<Override PartName="/`+numberingPart+`" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`,
		"content types")
}

func ensureNumberingRel(data []byte) ([]byte, error) {
	if bytes.Contains(data, []byte(`Target="numbering.xml"`)) {
		return data, nil
	}
	return insertBefore(data, "</Relationships>",
		`<Relationship Id="`+nextRelID(data)+`" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>`,
		"document relationships")
}

// nextRelID returns rId(N+1) for the highest numeric rIdN in the relationships part. Readers
// such as go-docx reject IDs that are not rId followed by an integer.
func nextRelID(rels []byte) string {
	highest := 0
	for _, m := range relIDPattern.FindAllSubmatch(rels, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

func ensureHeadingStyles(data []byte) ([]byte, error) {
	var add string
	if !bytes.Contains(data, []byte(`w:styleId="Heading1"`)) {
		add += headingStyle("Heading1", "heading 1", "0", docmodel.Heading1HalfPoints)
	}
	if !bytes.Contains(data, []byte(`w:styleId="Heading2"`)) {
		add += headingStyle("Heading2", "heading 2", "1", docmodel.Heading2HalfPoints)
	}
	if add == "" {
		return data, nil
	}
	return insertBefore(data, "</w:styles>", add, "styles")
}
