// Package docmodel holds the intermediate representation shared by the walker and the
// serializers: an ordered list of blocks, each an ordered list of style-homogeneous runs.
package docmodel

import "strings"

// Document is the ordered sequence of blocks. Order is visual top-to-bottom order.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Block is one paragraph, heading or list item.
type Block struct {
	Kind BlockKind `json:"kind"`
	Runs []Run     `json:"runs"`
}

// Run is a maximal span of text sharing one style snapshot.
type Run struct {
	Text  string     `json:"text"`
	Style StyleState `json:"style"`
}

// Append adds a block and returns a pointer to it.
func (d *Document) Append(b Block) *Block {
	d.Blocks = append(d.Blocks, b)
	return &d.Blocks[len(d.Blocks)-1]
}

// Len is the number of blocks.
func (d Document) Len() int { return len(d.Blocks) }

// Text concatenates every run in document order.
func (d Document) Text() string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		for _, r := range b.Runs {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// Text concatenates the block's runs.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Empty reports whether the block has no text content.
func (b Block) Empty() bool {
	for _, r := range b.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// Alignment is the paragraph-level alignment: the first run that declares one wins.
func (b Block) Alignment() Alignment {
	for _, r := range b.Runs {
		if r.Style.Alignment != AlignUnset {
			return r.Style.Alignment
		}
	}
	return AlignUnset
}

// Uniform reports whether all runs share one style (true for zero or one run).
func (b Block) Uniform() bool {
	for i := 1; i < len(b.Runs); i++ {
		if !b.Runs[i].Style.Equal(b.Runs[0].Style) {
			return false
		}
	}
	return true
}
