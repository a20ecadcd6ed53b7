// Package engine provides the intent facade of the quill editing engine.
//
// An Editor owns one document and everything derived from it: the line
// buffer, the caret and selection, the undo history, the find/replace
// session and the wrap policy. Hosts translate keys, mouse events and menu
// commands into intent calls and repaint according to the returned Result.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: line-oriented text storage addressed by character columns
//   - cursor: caret, selection and grapheme-aware horizontal motions
//   - history: undoable commands, undo/redo stacks and grouping
//   - wrap: visual rows, column projection and vertical motion
//   - search: literal find with parallel scans and a find bar session
//
// # Thread Safety
//
// Each intent runs to completion under the editor's mutex, so calls from
// several goroutines are serialized. Read accessors take a shared lock.
//
// # Undo Grouping
//
// Consecutive printable characters form one undo step, as do consecutive
// spaces and tabs. Newlines, pastes, deletes, navigation, search replaces,
// undo, redo, save and focus loss all close the open group:
//
//	e := engine.New()
//	e.InsertChar('h')
//	e.InsertChar('i')
//	e.Move(engine.MotionLeft, false)
//	e.InsertChar('!')
//	e.Undo() // "hi"
//	e.Undo() // ""
//
// # Find and Replace
//
//	e.OpenSearch(true)
//	e.SetSearchQuery("foo")
//	e.SetReplaceText("bar")
//	n, _ := e.ReplaceAll()
//
// Matches are recomputed after every edit and the current match is
// re-anchored to the one nearest the caret.
package engine
