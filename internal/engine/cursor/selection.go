package cursor

import (
	"fmt"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection is an unordered pair of positions.
// Anchor is where the selection started; Active is the end that moves with
// the caret. The pair is normalized on read, so a selection can extend
// forward or backward. Selection is an immutable value type.
type Selection struct {
	Anchor Position
	Active Position
}

// NewSelection creates a selection from anchor to active.
func NewSelection(anchor, active Position) Selection {
	return Selection{Anchor: anchor, Active: active}
}

// IsEmpty returns true if both ends are the same position.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// Range returns the selection in document order (Start <= End).
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// Start returns the earlier end of the selection.
func (s Selection) Start() Position {
	return buffer.MinPosition(s.Anchor, s.Active)
}

// End returns the later end of the selection.
func (s Selection) End() Position {
	return buffer.MaxPosition(s.Anchor, s.Active)
}

// IsBackward returns true if the active end precedes the anchor.
func (s Selection) IsBackward() bool {
	return s.Active.Before(s.Anchor)
}

// Extend returns a new selection with the active end moved to p.
// The anchor remains fixed.
func (s Selection) Extend(p Position) Selection {
	return Selection{Anchor: s.Anchor, Active: p}
}

// Flip returns a selection with anchor and active swapped.
func (s Selection) Flip() Selection {
	return Selection{Anchor: s.Active, Active: s.Anchor}
}

// Contains returns true if p lies within [Start, End).
func (s Selection) Contains(p Position) bool {
	return s.Range().Contains(p)
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%s%s%s)", s.Anchor, dir, s.Active)
}
