package history

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
)

// Operation is a span edit: the text in Range is replaced by NewText.
// OldText is captured from the buffer before the edit so the inverse can be
// replayed without reading the document again.
type Operation struct {
	Range   Range
	OldText string
	NewText string
}

// NewOperation captures the text currently in r and returns an operation
// that replaces it with newText. The range is normalized and clamped.
func NewOperation(buf *buffer.Buffer, r Range, newText string) Operation {
	r = r.Normalize()
	r = Range{Start: buf.Clamp(r.Start), End: buf.Clamp(r.End)}
	return Operation{
		Range:   r,
		OldText: buf.TextRange(r),
		NewText: newText,
	}
}

// Apply performs the edit and returns the position just after NewText.
func (op Operation) Apply(buf *buffer.Buffer) Position {
	buf.DeleteRange(op.Range)
	return buf.InsertText(op.Range.Start, op.NewText)
}

// Revert undoes the edit. end is the position Apply returned.
func (op Operation) Revert(buf *buffer.Buffer, end Position) {
	buf.DeleteRange(Range{Start: op.Range.Start, End: end})
	buf.InsertText(op.Range.Start, op.OldText)
}

// IsInsert returns true if this operation is a pure insertion.
func (op Operation) IsInsert() bool {
	return op.Range.IsEmpty() && op.NewText != ""
}

// IsDelete returns true if this operation is a pure deletion.
func (op Operation) IsDelete() bool {
	return !op.Range.IsEmpty() && op.NewText == ""
}

// IsNoop returns true if this operation makes no changes.
func (op Operation) IsNoop() bool {
	return op.OldText == op.NewText
}

// CharDelta returns the change in document length in characters.
func (op Operation) CharDelta() int {
	return utf8.RuneCountInString(op.NewText) - utf8.RuneCountInString(op.OldText)
}

// spanCommand executes an Operation and leaves the caret after the new text.
type spanCommand struct {
	applyState
	op     Operation
	end    Position
	before cursor.State
}

func (c *spanCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	c.end = c.op.Apply(buf)
	cur.MoveTo(c.end)
	return nil
}

func (c *spanCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	c.op.Revert(buf, c.end)
	cur.Restore(c.before)
	return nil
}

// Operation returns the span edit the command performs.
func (c *spanCommand) Operation() Operation {
	return c.op
}

// InsertTextCommand inserts text, possibly spanning lines, at a position.
type InsertTextCommand struct {
	spanCommand
}

// NewInsertTextCommand creates a command that inserts text at the caret.
func NewInsertTextCommand(buf *buffer.Buffer, cur *cursor.Cursor, text string) *InsertTextCommand {
	return NewInsertTextCommandAt(buf, cur, cur.Position(), text)
}

// NewInsertTextCommandAt creates a command that inserts text at p.
func NewInsertTextCommandAt(buf *buffer.Buffer, cur *cursor.Cursor, p Position, text string) *InsertTextCommand {
	p = buf.Clamp(p)
	return &InsertTextCommand{spanCommand{
		op:     Operation{Range: Range{Start: p, End: p}, NewText: text},
		before: cur.State(),
	}}
}

// Description returns a human-readable description.
func (c *InsertTextCommand) Description() string {
	n := utf8.RuneCountInString(c.op.NewText)
	if n <= 20 {
		return fmt.Sprintf("Insert %q", c.op.NewText)
	}
	return fmt.Sprintf("Insert %d characters", n)
}

// ReplaceTextCommand replaces the text in a span. The original text is
// captured at construction so undo restores it exactly.
type ReplaceTextCommand struct {
	spanCommand
}

// NewReplaceTextCommand creates a command that replaces r with text.
func NewReplaceTextCommand(buf *buffer.Buffer, cur *cursor.Cursor, r Range, text string) *ReplaceTextCommand {
	return &ReplaceTextCommand{spanCommand{
		op:     NewOperation(buf, r, text),
		before: cur.State(),
	}}
}

// Description returns a human-readable description.
func (c *ReplaceTextCommand) Description() string {
	return fmt.Sprintf("Replace %d with %d characters",
		utf8.RuneCountInString(c.op.OldText), utf8.RuneCountInString(c.op.NewText))
}

// DeleteRangeCommand removes the text in a span and leaves the caret at its start.
type DeleteRangeCommand struct {
	spanCommand
}

// NewDeleteRangeCommand creates a command that deletes r.
func NewDeleteRangeCommand(buf *buffer.Buffer, cur *cursor.Cursor, r Range) *DeleteRangeCommand {
	return &DeleteRangeCommand{spanCommand{
		op:     NewOperation(buf, r, ""),
		before: cur.State(),
	}}
}

// Deleted returns the text the command removes.
func (c *DeleteRangeCommand) Deleted() string {
	return c.op.OldText
}

// Description returns a human-readable description.
func (c *DeleteRangeCommand) Description() string {
	return fmt.Sprintf("Delete %d characters", utf8.RuneCountInString(c.op.OldText))
}

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was pushed
}
