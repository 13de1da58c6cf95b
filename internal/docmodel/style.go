package docmodel

import (
	"encoding/json"
	"fmt"
)

// Alignment is a paragraph alignment. The zero value means no alignment was declared.
type Alignment string

const (
	AlignUnset   Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// ParseAlignment maps a CSS text-align keyword to an Alignment.
// start/end are treated as left/right.
func ParseAlignment(v string) (Alignment, bool) {
	switch v {
	case "left", "start":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "justify":
		return AlignJustify, true
	}
	return AlignUnset, false
}

// Heading presets in half-points.
const (
	Heading1HalfPoints = 48
	Heading2HalfPoints = 36
)

// HeadingPreset returns the fixed size for a heading shortcut level.
// Only levels 1 and 2 have presets.
func HeadingPreset(level int) (int, bool) {
	switch level {
	case 1:
		return Heading1HalfPoints, true
	case 2:
		return Heading2HalfPoints, true
	}
	return 0, false
}

// StyleState is the resolved set of formatting attributes in effect at a point in the tree.
// It is a value type; Merge returns a new state and never touches the receiver.
type StyleState struct {
	Bold               bool      `json:"bold"`
	Italic             bool      `json:"italic"`
	Underline          bool      `json:"underline"`
	FontSizeHalfPoints int       `json:"font_size_half_points,omitempty"` // 0 = document default
	Alignment          Alignment `json:"alignment,omitempty"`
}

// DefaultStyle is the state outside any styled container.
var DefaultStyle = StyleState{}

// StyleDelta holds the attributes a single node declares locally. Nil fields are absent.
type StyleDelta struct {
	Bold               *bool
	Italic             *bool
	Underline          *bool
	FontSizeHalfPoints *int
	Alignment          *Alignment
	HeadingLevel       int // 1 or 2 forces the heading preset size
}

// Empty reports whether the delta declares nothing.
func (d StyleDelta) Empty() bool {
	return d.Bold == nil && d.Italic == nil && d.Underline == nil &&
		d.FontSizeHalfPoints == nil && d.Alignment == nil && d.HeadingLevel == 0
}

// Merge composes the receiver (the parent state) with a node's local declarations.
func (s StyleState) Merge(local StyleDelta) StyleState {
	out := s
	if local.Bold != nil && *local.Bold {
		out.Bold = true
	}
	if local.Italic != nil && *local.Italic {
		out.Italic = true
	}
	if local.Underline != nil && *local.Underline {
		out.Underline = true
	}
	if local.FontSizeHalfPoints != nil && *local.FontSizeHalfPoints > 0 {
		out.FontSizeHalfPoints = *local.FontSizeHalfPoints
	}
	if local.Alignment != nil && *local.Alignment != AlignUnset {
		out.Alignment = *local.Alignment
	}
	if size, ok := HeadingPreset(local.HeadingLevel); ok {
		out.FontSizeHalfPoints = size
	}
	return out
}

// Equal compares all five attributes.
func (s StyleState) Equal(o StyleState) bool {
	return s == o
}

// Points returns the font size in points, 0 when unset.
func (s StyleState) Points() float64 {
	return float64(s.FontSizeHalfPoints) / 2
}

func (s StyleState) String() string {
	return fmt.Sprintf("b=%t i=%t u=%t sz=%d align=%q", s.Bold, s.Italic, s.Underline, s.FontSizeHalfPoints, s.Alignment)
}

// BlockKind classifies a Block. The set is closed.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading1
	KindHeading2
	KindBulletListItem
	KindNumberedListItem
)

var kindNames = [...]string{
	KindParagraph:        "paragraph",
	KindHeading1:         "heading1",
	KindHeading2:         "heading2",
	KindBulletListItem:   "bulletListItem",
	KindNumberedListItem: "numberedListItem",
}

func (k BlockKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseBlockKind is the inverse of String.
func ParseBlockKind(s string) (BlockKind, error) {
	for i, name := range kindNames {
		if name == s {
			return BlockKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown block kind %q", s)
}

// IsHeading reports whether the kind is one of the heading levels.
func (k BlockKind) IsHeading() bool {
	return k == KindHeading1 || k == KindHeading2
}

// IsListItem reports whether the kind is a list member.
func (k BlockKind) IsListItem() bool {
	return k == KindBulletListItem || k == KindNumberedListItem
}

// HeadingLevel returns 1 or 2 for heading kinds and 0 otherwise.
func (k BlockKind) HeadingLevel() int {
	switch k {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	}
	return 0
}

func (k BlockKind) MarshalJSON() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("marshal block kind: invalid value %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *BlockKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBlockKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
