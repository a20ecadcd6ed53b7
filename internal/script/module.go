package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/engine"
)

var motions = map[string]engine.Motion{
	"left":       engine.MotionLeft,
	"right":      engine.MotionRight,
	"word_left":  engine.MotionWordLeft,
	"word_right": engine.MotionWordRight,
	"home":       engine.MotionHome,
	"end":        engine.MotionEnd,
	"doc_start":  engine.MotionDocStart,
	"doc_end":    engine.MotionDocEnd,
}

// module builds the ed table.
func (r *Runner) module(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		// Editing
		"type":      r.typeText,
		"insert":    r.insert,
		"newline":   r.newline,
		"tab":       r.tab,
		"backspace": r.backspace,
		"delete":    r.deleteForward,
		"cut":       r.cut,
		"copy":      r.copy,

		// Navigation
		"move":            r.move,
		"vmove":           r.vmove,
		"click":           r.click,
		"set_cursor":      r.setCursor,
		"cursor":          r.cursor,
		"select":          r.selectRange,
		"select_all":      r.selectAll,
		"clear_selection": r.clearSelection,
		"selection":       r.selection,

		// History
		"undo":  r.undo,
		"redo":  r.redo,
		"group": r.group,

		// Search
		"find":         r.find,
		"next":         r.next,
		"prev":         r.prev,
		"replace":      r.replace,
		"replace_all":  r.replaceAll,
		"matches":      r.matches,
		"close_search": r.closeSearch,

		// Document
		"text":       r.text,
		"line":       r.line,
		"line_count": r.lineCount,
		"modified":   r.modified,
		"save":       r.save,
	})
}

// checkPos reads a 1-based line and column pair starting at argument n.
func checkPos(L *lua.LState, n int) engine.Position {
	line := L.CheckInt(n)
	col := L.CheckInt(n + 1)
	return engine.Position{Line: max(line-1, 0), Col: max(col-1, 0)}
}

// pushPos pushes p as a 1-based line and column pair.
func pushPos(L *lua.LState, p engine.Position) int {
	L.Push(lua.LNumber(p.Line + 1))
	L.Push(lua.LNumber(p.Col + 1))
	return 2
}

// ============================================================================
// Editing
// ============================================================================

// type(text)
// Types text one character at a time, as a user would.
func (r *Runner) typeText(L *lua.LState) int {
	for _, ch := range L.CheckString(1) {
		r.ed.InsertChar(ch)
	}
	return 0
}

// insert(text)
// Inserts text as a single paste.
func (r *Runner) insert(L *lua.LState) int {
	r.ed.InsertText(L.CheckString(1))
	return 0
}

func (r *Runner) newline(L *lua.LState) int {
	r.ed.InsertNewline()
	return 0
}

func (r *Runner) tab(L *lua.LState) int {
	r.ed.InsertTab()
	return 0
}

// backspace([n]) -> bool
// Deletes backward n times. Returns true if anything changed.
func (r *Runner) backspace(L *lua.LState) int {
	n := L.OptInt(1, 1)
	changed := false
	for i := 0; i < n; i++ {
		changed = r.ed.Backspace().Changed() || changed
	}
	L.Push(lua.LBool(changed))
	return 1
}

// delete([n]) -> bool
// Deletes forward n times.
func (r *Runner) deleteForward(L *lua.LState) int {
	n := L.OptInt(1, 1)
	changed := false
	for i := 0; i < n; i++ {
		changed = r.ed.DeleteForward().Changed() || changed
	}
	L.Push(lua.LBool(changed))
	return 1
}

// cut() -> string
func (r *Runner) cut(L *lua.LState) int {
	text, _ := r.ed.Cut()
	L.Push(lua.LString(text))
	return 1
}

// copy() -> string|nil
func (r *Runner) copy(L *lua.LState) int {
	text, ok := r.ed.Copy()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(text))
	return 1
}

// ============================================================================
// Navigation
// ============================================================================

// move(name[, extend])
// Moves the caret by a named motion. up, down, page_up and page_down follow
// visual rows.
func (r *Runner) move(L *lua.LState) int {
	name := L.CheckString(1)
	extend := L.OptBool(2, false)

	switch name {
	case "up":
		r.ed.MoveVertical(-1, extend)
	case "down":
		r.ed.MoveVertical(1, extend)
	case "page_up":
		r.ed.PageUp(extend)
	case "page_down":
		r.ed.PageDown(extend)
	default:
		m, ok := motions[name]
		if !ok {
			L.ArgError(1, "unknown motion "+name)
			return 0
		}
		r.ed.Move(m, extend)
	}
	return 0
}

// vmove(delta[, extend])
func (r *Runner) vmove(L *lua.LState) int {
	r.ed.MoveVertical(L.CheckInt(1), L.OptBool(2, false))
	return 0
}

// click(row, x[, extend])
// Places the caret at pixel x on visual row (1-based).
func (r *Runner) click(L *lua.LState) int {
	row := L.CheckInt(1)
	x := L.CheckInt(2)
	r.ed.Click(max(row-1, 0), x, L.OptBool(3, false))
	return 0
}

// set_cursor(line, col)
func (r *Runner) setCursor(L *lua.LState) int {
	r.ed.SetCursor(checkPos(L, 1))
	return 0
}

// cursor() -> line, col
func (r *Runner) cursor(L *lua.LState) int {
	return pushPos(L, r.ed.Cursor())
}

// select(anchor_line, anchor_col, line, col)
func (r *Runner) selectRange(L *lua.LState) int {
	r.ed.Select(checkPos(L, 1), checkPos(L, 3))
	return 0
}

func (r *Runner) selectAll(L *lua.LState) int {
	r.ed.SelectAll()
	return 0
}

func (r *Runner) clearSelection(L *lua.LState) int {
	r.ed.ClearSelection()
	return 0
}

// selection() -> string|nil
func (r *Runner) selection(L *lua.LState) int {
	text, ok := r.ed.SelectedText()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(text))
	return 1
}

// ============================================================================
// History
// ============================================================================

// undo() -> bool
func (r *Runner) undo(L *lua.LState) int {
	L.Push(lua.LBool(r.ed.Undo().Changed()))
	return 1
}

// redo() -> bool
func (r *Runner) redo(L *lua.LState) int {
	L.Push(lua.LBool(r.ed.Redo().Changed()))
	return 1
}

// group(label, fn)
// Runs fn so that its edits undo as one step. An error raised inside fn
// reverts them and propagates.
func (r *Runner) group(L *lua.LState) int {
	label := L.CheckString(1)
	fn := L.CheckFunction(2)

	err := r.ed.Transaction(label, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		cause := r.cause
		if cause == nil {
			cause = err
		}
		r.raise(L, "group: %v", cause)
	}
	return 0
}

// ============================================================================
// Search
// ============================================================================

// find(query[, case_sensitive]) -> count
// Opens the find bar with query and returns the number of matches.
func (r *Runner) find(L *lua.LState) int {
	query := L.CheckString(1)

	r.ed.OpenSearch(false)
	if L.GetTop() >= 2 && L.ToBool(2) != r.ed.CaseSensitive() {
		r.ed.ToggleCaseSensitive()
	}
	r.ed.SetSearchQuery(query)

	L.Push(lua.LNumber(r.ed.MatchCount()))
	return 1
}

// next() -> line, col | nil
func (r *Runner) next(L *lua.LState) int {
	if !r.ed.FindNext().Changed() {
		L.Push(lua.LNil)
		return 1
	}
	return pushPos(L, r.ed.Cursor())
}

// prev() -> line, col | nil
func (r *Runner) prev(L *lua.LState) int {
	if !r.ed.FindPrevious().Changed() {
		L.Push(lua.LNil)
		return 1
	}
	return pushPos(L, r.ed.Cursor())
}

// replace(text) -> bool
// Replaces the current match with text.
func (r *Runner) replace(L *lua.LState) int {
	r.ed.SetReplaceText(L.CheckString(1))
	L.Push(lua.LBool(r.ed.ReplaceCurrent().Changed()))
	return 1
}

// replace_all(text) -> count
func (r *Runner) replaceAll(L *lua.LState) int {
	r.ed.SetReplaceText(L.CheckString(1))
	n, _ := r.ed.ReplaceAll()
	L.Push(lua.LNumber(n))
	return 1
}

// matches() -> {{line=, col=, len=}, ...}
func (r *Runner) matches(L *lua.LState) int {
	list := r.ed.Matches()
	tbl := L.CreateTable(len(list), 0)
	for _, m := range list {
		entry := L.CreateTable(0, 3)
		entry.RawSetString("line", lua.LNumber(m.Line+1))
		entry.RawSetString("col", lua.LNumber(m.Col+1))
		entry.RawSetString("len", lua.LNumber(m.Len))
		tbl.Append(entry)
	}
	L.Push(tbl)
	return 1
}

func (r *Runner) closeSearch(L *lua.LState) int {
	r.ed.CloseSearch()
	return 0
}

// ============================================================================
// Document
// ============================================================================

// text() -> string
func (r *Runner) text(L *lua.LState) int {
	L.Push(lua.LString(r.ed.Text()))
	return 1
}

// line(n) -> string
// Returns line n (1-based), or nil when out of range.
func (r *Runner) line(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 1 || n > r.ed.LineCount() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(r.ed.Line(n - 1)))
	return 1
}

// line_count() -> number
func (r *Runner) lineCount(L *lua.LState) int {
	L.Push(lua.LNumber(r.ed.LineCount()))
	return 1
}

// modified() -> bool
func (r *Runner) modified(L *lua.LState) int {
	L.Push(lua.LBool(r.ed.IsModified()))
	return 1
}

// save()
// Hands the document to the save hook and marks it unmodified.
func (r *Runner) save(L *lua.LState) int {
	if r.onSave != nil {
		if err := r.onSave(r.ed.TextWithEnding()); err != nil {
			r.raise(L, "save: %v", err)
			return 0
		}
	}
	r.ed.MarkSaved()
	return 0
}
