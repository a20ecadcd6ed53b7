// Package history provides undo/redo functionality for the text editor engine.
//
// The history system uses the Command pattern to encapsulate edit operations,
// enabling them to be executed, undone, and redone. Key concepts:
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Each command captures the buffer context it needs (the deleted character,
// the replaced span text, the prior cursor state) when it is constructed, so
// Undo replays captured data instead of reading the document. Execute and
// Undo strictly alternate; violations return ErrAlreadyApplied or
// ErrNotApplied.
//
// The command set is closed:
//   - InsertCharCommand, DeleteCharCommand, DeleteForwardCommand,
//     InsertNewlineCommand: single character edits at the caret
//   - InsertTextCommand, ReplaceTextCommand, DeleteRangeCommand: span edits
//     built on Operation
//   - CompositeCommand: an ordered group undone in reverse
//
// # History Stack
//
// The History type manages undo/redo stacks and command grouping:
//
//	h := NewHistory(1000) // Max 1000 undo entries
//
//	cmd := NewInsertCharCommand(buf, cur, 'x')
//	h.Execute(cmd, buf, cur)
//
//	h.Undo(buf, cur)
//	h.Redo(buf, cur)
//
// Pushing after an undo clears the redo stack. When the stack exceeds its
// maximum the oldest entries are forgotten.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("typing")
//	// ... several InsertCharCommands ...
//	h.EndGroup()
//
// Undo and Redo close any open group before acting.
//
// # Save Tracking
//
// MarkSaved records the current state; IsModified reports whether the
// history has moved away from it, including after eviction.
package history
