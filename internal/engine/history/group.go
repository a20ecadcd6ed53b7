package history

import (
	"fmt"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
)

// openGroup is the composite under construction while grouping.
// entry is nil until the first command is pushed into the group.
type openGroup struct {
	label     string
	composite *CompositeCommand
	entry     *undoEntry
}

// BeginGroup starts a command group.
// Commands pushed while grouping are combined into a single undo unit.
// The group becomes an undo entry on its first push, so an empty group
// leaves no trace. Nested calls are ignored.
func (h *History) BeginGroup(label string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.group != nil {
		return
	}

	h.group = &openGroup{
		label:     label,
		composite: NewCompositeCommand(label),
	}
}

// EndGroup closes the open group, if any.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.group = nil
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.group != nil
}

// GroupLabel returns the label of the open group, or "" when none is open.
func (h *History) GroupLabel() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.group == nil {
		return ""
	}
	return h.group.label
}

// Transaction runs fn inside a fresh group. Commands fn executes through
// the history undo together. If fn returns an error, everything it pushed
// is undone and discarded without reaching the redo stack. If fn panics
// the group is closed and the panic continues; its edits stay on the stack.
func (h *History) Transaction(label string, buf *buffer.Buffer, cur *cursor.Cursor, fn func() error) error {
	h.EndGroup()
	h.BeginGroup(label)

	returned := false
	defer func() {
		if !returned {
			h.EndGroup()
		}
	}()

	err := fn()
	returned = true

	h.mu.Lock()
	g := h.group
	h.group = nil
	var rollback *undoEntry
	if err != nil && g != nil && g.entry != nil {
		if n := len(h.undoStack); n > 0 && h.undoStack[n-1] == g.entry {
			rollback = g.entry
			h.undoStack = h.undoStack[:n-1]
		}
	}
	h.mu.Unlock()

	if rollback != nil {
		if uerr := rollback.command.Undo(buf, cur); uerr != nil {
			return fmt.Errorf("rollback %q: %w (after %v)", label, uerr, err)
		}
	}
	return err
}
