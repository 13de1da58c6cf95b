package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/markup"
)

// HTMLParser handles HTML files. Input is sanitized down to the markup the editor models.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Imported, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	title := baseTitle(filename)
	orig, err := markup.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if t := markup.Find(orig, "title"); t != nil {
		if s := strings.TrimSpace(markup.TextContent(t)); s != "" {
			title = s
		}
	}

	body, err := sanitizedBody(string(raw))
	if err != nil {
		return nil, err
	}
	return wrap(title, body), nil
}

// sanitizedBody sanitizes src and returns the detached children of its body.
func sanitizedBody(src string) ([]*markup.Node, error) {
	doc, err := markup.ParseString(markup.Sanitize(src))
	if err != nil {
		return nil, err
	}
	return childrenOf(markup.Body(doc)), nil
}

func childrenOf(n *markup.Node) []*markup.Node {
	var out []*markup.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
