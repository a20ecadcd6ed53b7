package cursor

import (
	"fmt"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// TextRanger extracts the text covered by a range.
type TextRanger interface {
	TextRange(r Range) string
}

// Cursor is the caret plus an optional selection.
// The selection exists only while both of its endpoints are set.
type Cursor struct {
	pos Position

	anchor    Position
	active    Position
	hasAnchor bool
	hasActive bool
}

// New creates a cursor at the document start with no selection.
func New() *Cursor {
	return &Cursor{}
}

// NewAt creates a cursor at p with no selection.
func NewAt(p Position) *Cursor {
	return &Cursor{pos: p}
}

// Position returns the caret position.
func (c *Cursor) Position() Position {
	return c.pos
}

// SetPosition moves the caret without touching the selection.
func (c *Cursor) SetPosition(p Position) {
	c.pos = p
}

// MoveTo moves the caret and clears the selection.
func (c *Cursor) MoveTo(p Position) {
	c.pos = p
	c.ClearSelection()
}

// Extend moves the caret to p, growing the selection from the current
// caret if none exists yet.
func (c *Cursor) Extend(p Position) {
	if !c.HasSelection() {
		c.anchor, c.hasAnchor = c.pos, true
	}
	c.active, c.hasActive = p, true
	c.pos = p
}

// SetAnchor sets the fixed end of the selection.
func (c *Cursor) SetAnchor(p Position) {
	c.anchor, c.hasAnchor = p, true
}

// SetActive sets the moving end of the selection.
func (c *Cursor) SetActive(p Position) {
	c.active, c.hasActive = p, true
}

// SetSelection sets both ends of the selection and moves the caret to active.
func (c *Cursor) SetSelection(anchor, active Position) {
	c.anchor, c.hasAnchor = anchor, true
	c.active, c.hasActive = active, true
	c.pos = active
}

// ClearSelection drops both selection endpoints.
func (c *Cursor) ClearSelection() {
	c.hasAnchor = false
	c.hasActive = false
}

// HasSelection returns true if both endpoints are set.
// An empty (collapsed) selection still counts as UI state here.
func (c *Cursor) HasSelection() bool {
	return c.hasAnchor && c.hasActive
}

// Selection returns the raw selection and whether one exists.
func (c *Cursor) Selection() (Selection, bool) {
	if !c.HasSelection() {
		return Selection{}, false
	}
	return Selection{Anchor: c.anchor, Active: c.active}, true
}

// SelectionRange returns the normalized selection, or false if none exists.
func (c *Cursor) SelectionRange() (Range, bool) {
	sel, ok := c.Selection()
	if !ok {
		return Range{}, false
	}
	return sel.Range(), true
}

// SelectedText returns the selected text, or false when there is no
// selection or the selection is empty.
func (c *Cursor) SelectedText(src TextRanger) (string, bool) {
	r, ok := c.SelectionRange()
	if !ok || r.IsEmpty() {
		return "", false
	}
	return src.TextRange(r), true
}

// Reset moves the caret to the document start and clears the selection.
func (c *Cursor) Reset() {
	*c = Cursor{}
}

// State is a restorable copy of the caret and selection.
type State struct {
	Pos       Position
	Anchor    Position
	Active    Position
	HasAnchor bool
	HasActive bool
}

// State captures the current caret and selection.
func (c *Cursor) State() State {
	return State{
		Pos:       c.pos,
		Anchor:    c.anchor,
		Active:    c.active,
		HasAnchor: c.hasAnchor,
		HasActive: c.hasActive,
	}
}

// Restore replaces the caret and selection with a captured state.
func (c *Cursor) Restore(s State) {
	c.pos = s.Pos
	c.anchor, c.hasAnchor = s.Anchor, s.HasAnchor
	c.active, c.hasActive = s.Active, s.HasActive
}

// String returns a string representation of the cursor.
func (c *Cursor) String() string {
	if sel, ok := c.Selection(); ok {
		return fmt.Sprintf("Cursor(%s, %s)", c.pos, sel)
	}
	return fmt.Sprintf("Cursor(%s)", c.pos)
}
