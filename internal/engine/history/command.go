package history

import (
	"errors"
	"fmt"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
)

// Command state errors.
var (
	// ErrAlreadyApplied is returned when Execute is called twice without Undo.
	ErrAlreadyApplied = errors.New("command already applied")

	// ErrNotApplied is returned when Undo is called on a command that is not applied.
	ErrNotApplied = errors.New("command not applied")
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Command represents an invertible edit that can be executed and undone.
// Execute and Undo strictly alternate, starting with Execute.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(buf *buffer.Buffer, cur *cursor.Cursor) error

	// Undo reverses the command and returns an error if it fails.
	Undo(buf *buffer.Buffer, cur *cursor.Cursor) error

	// Description returns a human-readable description of the command.
	Description() string
}

// applyState tracks the Unapplied/Applied state of a command.
type applyState struct {
	applied bool
}

func (s *applyState) toApplied() error {
	if s.applied {
		return ErrAlreadyApplied
	}
	s.applied = true
	return nil
}

func (s *applyState) toUnapplied() error {
	if !s.applied {
		return ErrNotApplied
	}
	s.applied = false
	return nil
}

// Applied reports whether the command is currently applied.
func (s *applyState) Applied() bool {
	return s.applied
}

// InsertCharCommand inserts one character at a fixed position.
type InsertCharCommand struct {
	applyState
	Pos    Position
	Char   rune
	before cursor.State
}

// NewInsertCharCommand creates a command that types ch at the caret.
func NewInsertCharCommand(buf *buffer.Buffer, cur *cursor.Cursor, ch rune) *InsertCharCommand {
	return &InsertCharCommand{
		Pos:    buf.Clamp(cur.Position()),
		Char:   ch,
		before: cur.State(),
	}
}

// Execute inserts the character and places the caret after it.
func (c *InsertCharCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	cur.MoveTo(buf.InsertChar(c.Pos.Line, c.Pos.Col, c.Char))
	return nil
}

// Undo removes the character and restores the caret.
func (c *InsertCharCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	buf.DeleteForward(c.Pos.Line, c.Pos.Col)
	cur.Restore(c.before)
	return nil
}

// Description returns a human-readable description.
func (c *InsertCharCommand) Description() string {
	switch c.Char {
	case '\t':
		return "Insert tab"
	case '\n':
		return "Insert newline"
	}
	return fmt.Sprintf("Type '%c'", c.Char)
}

// DeleteCharCommand removes the character before a position (backspace).
// At column 0 it joins the line onto the previous one.
type DeleteCharCommand struct {
	applyState
	Pos     Position
	Deleted string
	Merged  bool
	noop    bool
	joinAt  Position
	before  cursor.State
}

// NewDeleteCharCommand creates a backspace command at the caret.
func NewDeleteCharCommand(buf *buffer.Buffer, cur *cursor.Cursor) *DeleteCharCommand {
	p := buf.Clamp(cur.Position())
	c := &DeleteCharCommand{Pos: p, before: cur.State()}
	switch {
	case p.Col > 0:
		c.Deleted = buf.TextRange(buffer.Range{Start: Position{Line: p.Line, Col: p.Col - 1}, End: p})
	case p.Line > 0:
		c.Merged = true
		c.Deleted = "\n"
		c.joinAt = Position{Line: p.Line - 1, Col: buf.LineLen(p.Line - 1)}
	default:
		c.noop = true
	}
	return c
}

// IsNoop reports whether the command was created at the document start.
func (c *DeleteCharCommand) IsNoop() bool {
	return c.noop
}

// Execute deletes the character and moves the caret to where it was.
func (c *DeleteCharCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	if c.noop {
		return nil
	}
	res := buf.DeleteChar(c.Pos.Line, c.Pos.Col)
	cur.MoveTo(res.Pos)
	return nil
}

// Undo restores the character or splits the joined line.
func (c *DeleteCharCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	if c.noop {
		return nil
	}
	if c.Merged {
		buf.InsertNewline(c.joinAt.Line, c.joinAt.Col)
	} else {
		buf.InsertText(Position{Line: c.Pos.Line, Col: c.Pos.Col - 1}, c.Deleted)
	}
	cur.Restore(c.before)
	return nil
}

// Description returns a human-readable description.
func (c *DeleteCharCommand) Description() string {
	return "Backspace"
}

// DeleteForwardCommand removes the character at a position (delete key).
// At end of line it joins the next line onto this one.
type DeleteForwardCommand struct {
	applyState
	Pos     Position
	Deleted string
	Merged  bool
	noop    bool
	before  cursor.State
}

// NewDeleteForwardCommand creates a forward-delete command at the caret.
func NewDeleteForwardCommand(buf *buffer.Buffer, cur *cursor.Cursor) *DeleteForwardCommand {
	p := buf.Clamp(cur.Position())
	c := &DeleteForwardCommand{Pos: p, before: cur.State()}
	switch {
	case p.Col < buf.LineLen(p.Line):
		c.Deleted = buf.TextRange(buffer.Range{Start: p, End: Position{Line: p.Line, Col: p.Col + 1}})
	case p.Line < buf.LineCount()-1:
		c.Merged = true
		c.Deleted = "\n"
	default:
		c.noop = true
	}
	return c
}

// IsNoop reports whether the command was created at the document end.
func (c *DeleteForwardCommand) IsNoop() bool {
	return c.noop
}

// Execute deletes the character. The caret stays in place.
func (c *DeleteForwardCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	if c.noop {
		return nil
	}
	buf.DeleteForward(c.Pos.Line, c.Pos.Col)
	cur.MoveTo(c.Pos)
	return nil
}

// Undo restores the character or splits the joined line.
func (c *DeleteForwardCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	if c.noop {
		return nil
	}
	if c.Merged {
		buf.InsertNewline(c.Pos.Line, c.Pos.Col)
	} else {
		buf.InsertText(c.Pos, c.Deleted)
	}
	cur.Restore(c.before)
	return nil
}

// Description returns a human-readable description.
func (c *DeleteForwardCommand) Description() string {
	return "Delete"
}

// InsertNewlineCommand splits a line at a position.
type InsertNewlineCommand struct {
	applyState
	Pos    Position
	before cursor.State
}

// NewInsertNewlineCommand creates a command that splits the line at the caret.
func NewInsertNewlineCommand(buf *buffer.Buffer, cur *cursor.Cursor) *InsertNewlineCommand {
	return &InsertNewlineCommand{
		Pos:    buf.Clamp(cur.Position()),
		before: cur.State(),
	}
}

// Execute splits the line and moves the caret to the start of the new line.
func (c *InsertNewlineCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	cur.MoveTo(buf.InsertNewline(c.Pos.Line, c.Pos.Col))
	return nil
}

// Undo joins the two halves back together.
func (c *InsertNewlineCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	buf.DeleteForward(c.Pos.Line, c.Pos.Col)
	cur.Restore(c.before)
	return nil
}

// Description returns a human-readable description.
func (c *InsertNewlineCommand) Description() string {
	return "Insert newline"
}

// CompositeCommand groups multiple commands as one undo unit.
// Children execute in the order added and undo in reverse.
type CompositeCommand struct {
	applyState
	Name     string
	Commands []Command
}

// NewCompositeCommand creates a new, unapplied composite command.
func NewCompositeCommand(name string, commands ...Command) *CompositeCommand {
	return &CompositeCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order. If a child fails, the children
// already run are undone before the error is returned.
func (c *CompositeCommand) Execute(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toApplied(); err != nil {
		return err
	}
	for i, cmd := range c.Commands {
		if err := cmd.Execute(buf, cur); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(buf, cur)
			}
			c.applied = false
			return fmt.Errorf("composite command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompositeCommand) Undo(buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := c.toUnapplied(); err != nil {
		return err
	}
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(buf, cur); err != nil {
			c.applied = true
			return fmt.Errorf("undo composite command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the composite command's name.
func (c *CompositeCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the composite.
func (c *CompositeCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// Len returns the number of child commands.
func (c *CompositeCommand) Len() int {
	return len(c.Commands)
}

// IsEmpty returns true if the composite has no commands.
func (c *CompositeCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
