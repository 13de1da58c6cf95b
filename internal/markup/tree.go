// Package markup wraps golang.org/x/net/html with the handful of tree operations the
// importer, walker and editor share.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is an alias so callers do not need to import x/net/html for signatures.
type Node = html.Node

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes n and its subtree.
func Render(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// InnerHTML renders only the children of n.
func InnerHTML(n *Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}

// Find returns the first element named tag in depth-first order.
func Find(n *Node, tag string) *Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := Find(c, tag); f != nil {
			return f
		}
	}
	return nil
}

// Body returns the <body> element, or n itself when there is none.
func Body(n *Node) *Node {
	if b := Find(n, "body"); b != nil {
		return b
	}
	return n
}

// Document builds a fresh document whose head carries an optional stylesheet and whose body
// holds the given children (moved, not copied).
func Document(stylesheet string, children ...*Node) *Node {
	doc := &Node{Type: html.DocumentNode}
	root := NewElement("html")
	head := NewElement("head")
	body := NewElement("body")
	doc.AppendChild(root)
	root.AppendChild(head)
	root.AppendChild(body)
	if stylesheet != "" {
		st := NewElement("style")
		st.AppendChild(NewText(stylesheet))
		head.AppendChild(st)
	}
	for _, c := range children {
		Detach(c)
		body.AppendChild(c)
	}
	return doc
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *Node {
	return &Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *Node {
	return &Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with one of the given tags.
func IsElement(n *Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text nodes.
func TextContent(n *Node) string {
	var buf strings.Builder
	var extract func(*Node)
	extract = func(n *Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// AttrVal returns the value of key or "".
func AttrVal(n *Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// Attr looks up an attribute.
func Attr(n *Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// Rename changes an element's tag in place.
func Rename(n *Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Detach removes n from its parent, if any.
func Detach(n *Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// WrapChildren moves every child of n into wrapper and appends wrapper to n.
func WrapChildren(n, wrapper *Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		wrapper.AppendChild(c)
		c = next
	}
	n.AppendChild(wrapper)
}

// InsertAfter places n directly after ref.
func InsertAfter(n, ref *Node) {
	Detach(n)
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(n, ref.NextSibling)
		return
	}
	ref.Parent.AppendChild(n)
}

// Elements collects the element descendants of n (excluding n) that match keep,
// in document order. Descent stops at elements for which skip returns true.
func Elements(n *Node, keep, skip func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if skip != nil && skip(c) {
				continue
			}
			if keep(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
