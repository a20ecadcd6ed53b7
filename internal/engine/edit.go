package engine

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/history"
)

// ============================================================================
// Typing
// ============================================================================

// InsertChar types one character at the caret. Consecutive printable
// characters undo together, as do consecutive spaces and tabs. A newline
// behaves like InsertNewline. Other control characters are ignored.
//
// Any selection is cleared, not replaced.
func (e *Editor) InsertChar(r rune) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("insert_char")
	return e.insertCharLocked(r)
}

func (e *Editor) insertCharLocked(r rune) Result {
	if e.readOnly {
		return noChange
	}
	switch {
	case r == '\n' || r == '\r':
		return e.insertNewlineLocked()
	case r == ' ' || r == '\t':
		e.groupLocked(groupWhitespace)
	case unicode.IsControl(r) || !utf8.ValidRune(r):
		return noChange
	default:
		e.groupLocked(groupTyping)
	}
	return e.execLocked(history.NewInsertCharCommand(e.buf, e.cur, r))
}

// InsertTab types the configured tab text as whitespace.
func (e *Editor) InsertTab() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("insert_tab")

	res := noChange
	for _, r := range e.tabText {
		res = res.Merge(e.insertCharLocked(r))
	}
	return res
}

// InsertNewline splits the line at the caret. It is its own undo step.
func (e *Editor) InsertNewline() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("insert_newline")
	return e.insertNewlineLocked()
}

func (e *Editor) insertNewlineLocked() Result {
	if e.readOnly {
		return noChange
	}
	e.closeGroupLocked()
	return e.execLocked(history.NewInsertNewlineCommand(e.buf, e.cur))
}

// InsertText pastes text, which may span lines, at the caret as a single
// undo step. The caret ends after the pasted text.
func (e *Editor) InsertText(text string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("insert_text")

	if e.readOnly || text == "" {
		return noChange
	}
	e.closeGroupLocked()
	return e.execLocked(history.NewInsertTextCommand(e.buf, e.cur, text))
}

// ============================================================================
// Deleting
// ============================================================================

// Backspace deletes the selection when it is non-empty, otherwise the
// character before the caret. At a line start it joins with the previous
// line. At the document start it does nothing.
func (e *Editor) Backspace() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("backspace")

	if e.readOnly {
		return noChange
	}
	e.closeGroupLocked()
	if res, ok := e.deleteSelectionLocked(); ok {
		return res
	}
	cmd := history.NewDeleteCharCommand(e.buf, e.cur)
	if cmd.IsNoop() {
		return noChange
	}
	return e.execLocked(cmd)
}

// DeleteForward deletes the selection when it is non-empty, otherwise the
// character after the caret. At a line end it joins with the next line.
// At the document end it does nothing.
func (e *Editor) DeleteForward() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("delete_forward")

	if e.readOnly {
		return noChange
	}
	e.closeGroupLocked()
	if res, ok := e.deleteSelectionLocked(); ok {
		return res
	}
	cmd := history.NewDeleteForwardCommand(e.buf, e.cur)
	if cmd.IsNoop() {
		return noChange
	}
	return e.execLocked(cmd)
}

// DeleteSelection removes the selected text as one undo step and leaves the
// caret at the selection start. A collapsed selection is only cleared.
func (e *Editor) DeleteSelection() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("delete_selection")

	if e.readOnly {
		return noChange
	}
	e.closeGroupLocked()
	if e.cur.HasSelection() {
		if res, ok := e.deleteSelectionLocked(); ok {
			return res
		}
		return repaint
	}
	return noChange
}

// deleteSelectionLocked deletes a non-empty selection. A collapsed one is
// cleared and reported as not handled so callers fall through.
func (e *Editor) deleteSelectionLocked() (Result, bool) {
	r, ok := e.cur.SelectionRange()
	if !ok {
		return noChange, false
	}
	if r.IsEmpty() {
		e.cur.ClearSelection()
		return noChange, false
	}
	return e.execLocked(history.NewDeleteRangeCommand(e.buf, e.cur, r)), true
}

// Cut removes the selection and returns its text. A collapsed selection is
// cleared and nothing is returned.
func (e *Editor) Cut() (string, Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("cut")

	if e.readOnly {
		return "", noChange
	}
	text, ok := e.cur.SelectedText(e.buf)
	if !ok {
		e.cur.ClearSelection()
		return "", noChange
	}
	e.closeGroupLocked()
	res, _ := e.deleteSelectionLocked()
	return text, res
}

// Copy returns the selected text.
func (e *Editor) Copy() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.observe("copy")
	return e.cur.SelectedText(e.buf)
}

// ============================================================================
// History
// ============================================================================

// Undo reverts the most recent undo unit and restores the caret and
// selection from before it. It is a no-op on an empty stack and inside a
// Transaction.
func (e *Editor) Undo() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("undo")

	if e.readOnly || e.txDepth > 0 {
		return noChange
	}
	ok, err := e.hist.Undo(e.buf, e.cur)
	if err != nil {
		e.logger.Error("undo failed", slog.Any("error", err))
		return noChange
	}
	if !ok {
		return noChange
	}
	e.afterEditLocked()
	return moved
}

// Redo reapplies the most recently undone unit.
func (e *Editor) Redo() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("redo")

	if e.readOnly || e.txDepth > 0 {
		return noChange
	}
	ok, err := e.hist.Redo(e.buf, e.cur)
	if err != nil {
		e.logger.Error("redo failed", slog.Any("error", err))
		return noChange
	}
	if !ok {
		return noChange
	}
	e.afterEditLocked()
	return moved
}

// MarkSaved records the current state as the save point. The host calls it
// after writing the document out.
func (e *Editor) MarkSaved() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("mark_saved")

	e.closeGroupLocked()
	e.hist.MarkSaved()
	return repaint
}

// Reset replaces the whole document. History is discarded, the caret goes
// to the start, the find bar closes and the new content counts as saved.
func (e *Editor) Reset(content string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("reset")

	e.buf = buffer.NewBufferFromString(content, e.bufOpts...)
	e.cur = cursor.New()
	e.hist = e.newHistory()
	e.search.Close()
	e.invalidateSearchLocked()
	e.metrics.SetUndoDepth(e.idStr, 0)

	e.logger.Debug("document reset",
		slog.Int("lines", e.buf.LineCount()),
		slog.String("line_ending", e.buf.LineEnding().String()))
	return moved
}
