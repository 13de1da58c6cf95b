package docmodel

import "strings"

// RunBuilder accumulates contiguous same-style text into runs.
// Structural equality of the style is the only merge rule.
type RunBuilder struct {
	runs    []Run
	pending strings.Builder
	style   StyleState
	active  bool
}

// Add feeds one text fragment. Empty fragments are ignored.
func (b *RunBuilder) Add(text string, style StyleState) {
	if text == "" {
		return
	}
	if b.active && b.style.Equal(style) {
		b.pending.WriteString(text)
		return
	}
	b.flushPending()
	b.style = style
	b.active = true
	b.pending.WriteString(text)
}

// Pending reports whether any text is buffered or emitted since the last Flush.
func (b *RunBuilder) Pending() bool {
	return b.active || len(b.runs) > 0
}

// Flush returns the runs built so far and resets the builder.
func (b *RunBuilder) Flush() []Run {
	b.flushPending()
	out := b.runs
	b.runs = nil
	return out
}

func (b *RunBuilder) flushPending() {
	if !b.active {
		return
	}
	if b.pending.Len() > 0 {
		b.runs = append(b.runs, Run{Text: b.pending.String(), Style: b.style})
	}
	b.pending.Reset()
	b.active = false
}
