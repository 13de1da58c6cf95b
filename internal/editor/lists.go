package editor

import (
	"strings"

	"github.com/dgallion1/docedit/internal/markup"
	"golang.org/x/net/html"
)

// liftFromList moves li out of its list to sit between the two halves of the split list.
func liftFromList(li *markup.Node) {
	list := li.Parent
	if list == nil || !markup.IsElement(list, "ul", "ol") {
		return
	}
	tail := markup.NewElement(list.Data, append([]html.Attribute(nil), list.Attr...)...)
	for c := li.NextSibling; c != nil; {
		next := c.NextSibling
		list.RemoveChild(c)
		tail.AppendChild(c)
		c = next
	}

	markup.InsertAfter(li, list)
	if hasElementChild(tail) {
		markup.InsertAfter(tail, li)
	}
	if !hasElementChild(list) {
		markup.Detach(list)
	}
}

// insertList turns b into a list item. A list item switches its whole list; other blocks join
// an adjacent preceding list of the same kind or start a new one.
func insertList(b *markup.Node, tag string) {
	if markup.IsElement(b, "li") {
		if b.Parent != nil && markup.IsElement(b.Parent, "ul", "ol") && b.Parent.Data != tag {
			markup.Rename(b.Parent, tag)
		}
		return
	}

	prev := previousElement(b)
	markup.Rename(b, "li")
	if prev != nil && markup.IsElement(prev, tag) {
		markup.Detach(b)
		prev.AppendChild(b)
		return
	}
	list := markup.NewElement(tag)
	b.Parent.InsertBefore(list, b)
	markup.Detach(b)
	list.AppendChild(b)
}

func previousElement(n *markup.Node) *markup.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		switch p.Type {
		case html.ElementNode:
			return p
		case html.TextNode:
			if strings.TrimSpace(p.Data) != "" {
				return nil
			}
		}
	}
	return nil
}

func hasElementChild(n *markup.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}
