package engine

import (
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/wrap"
)

// Move applies a horizontal motion. With extend the selection grows from
// its anchor; without it the selection is dropped. Left and Right on a
// non-empty selection collapse it to its start or end.
func (e *Editor) Move(m Motion, extend bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("move")

	e.closeGroupLocked()
	if !extend {
		if r, ok := e.cur.SelectionRange(); ok && !r.IsEmpty() {
			switch m {
			case cursor.MotionLeft:
				return e.moveLocked(r.Start, false)
			case cursor.MotionRight:
				return e.moveLocked(r.End, false)
			}
		}
	}
	return e.moveLocked(cursor.Apply(e.buf, e.cur.Position(), m), extend)
}

// MoveVertical moves delta visual rows, keeping the caret's offset within
// its row. Positive delta moves down.
func (e *Editor) MoveVertical(delta int, extend bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("move_vertical")
	return e.moveVerticalLocked(delta, extend)
}

// PageUp moves up by the configured page height.
func (e *Editor) PageUp(extend bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("page_up")
	return e.moveVerticalLocked(-e.pageRows, extend)
}

// PageDown moves down by the configured page height.
func (e *Editor) PageDown(extend bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("page_down")
	return e.moveVerticalLocked(e.pageRows, extend)
}

func (e *Editor) moveVerticalLocked(delta int, extend bool) Result {
	e.closeGroupLocked()
	vls := wrap.Compute(e.buf, e.wrap)
	return e.moveLocked(wrap.MoveVertical(vls, e.buf, e.cur.Position(), delta), extend)
}

// Click places the caret at pixel offset x of visual row row.
func (e *Editor) Click(row, x int, extend bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("click")

	e.closeGroupLocked()
	vls := wrap.Compute(e.buf, e.wrap)
	return e.moveLocked(wrap.VisualToLogical(vls, e.buf, row, x, e.wrap.Metrics), extend)
}

// SetCursor moves the caret to p, clamped to the document, and drops the
// selection.
func (e *Editor) SetCursor(p Position) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("set_cursor")

	e.closeGroupLocked()
	return e.moveLocked(e.buf.Clamp(p), false)
}

// Select sets the selection from anchor to active, both clamped. The caret
// goes to active.
func (e *Editor) Select(anchor, active Position) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("select")

	e.closeGroupLocked()
	e.cur.SetSelection(e.buf.Clamp(anchor), e.buf.Clamp(active))
	return moved
}

// SelectAll selects the whole document with the caret at its end.
func (e *Editor) SelectAll() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("select_all")

	e.closeGroupLocked()
	e.cur.SetSelection(Position{}, e.buf.End())
	return moved
}

// ClearSelection drops the selection and keeps the caret.
func (e *Editor) ClearSelection() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cur.HasSelection() {
		return noChange
	}
	e.cur.ClearSelection()
	return repaint
}

func (e *Editor) moveLocked(p Position, extend bool) Result {
	if extend {
		e.cur.Extend(p)
	} else {
		e.cur.MoveTo(p)
	}
	return moved
}
