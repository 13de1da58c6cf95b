package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/markup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextParser handles plain text files. A byte-order mark selects UTF-16; otherwise UTF-8.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Imported, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	return wrap(baseTitle(filename), paragraphNodes(paragraphs)), nil
}

func paragraphNodes(paragraphs []string) []*markup.Node {
	out := make([]*markup.Node, 0, len(paragraphs))
	for _, para := range paragraphs {
		p := markup.NewElement("p")
		p.AppendChild(markup.NewText(para))
		out = append(out, p)
	}
	return out
}
