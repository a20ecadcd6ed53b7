package engine

import (
	"log/slog"

	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/engine/search"
)

// OpenSearch shows the find bar, in replace mode if requested, and scans
// for the last query.
func (e *Editor) OpenSearch(replaceMode bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("open_search")

	e.closeGroupLocked()
	e.search.Open(replaceMode)
	e.invalidateSearchLocked()
	e.refreshSearchLocked(true)
	return repaint
}

// CloseSearch hides the find bar. The query is kept.
func (e *Editor) CloseSearch() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("close_search")

	if !e.search.IsOpen() {
		return noChange
	}
	e.search.Close()
	e.invalidateSearchLocked()
	return repaint
}

// SetSearchQuery changes the query and rescans. The current match becomes
// the one nearest the caret.
func (e *Editor) SetSearchQuery(q string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("search_query")

	e.search.SetQuery(q)
	e.refreshSearchLocked(true)
	return repaint
}

// SetReplaceText changes the replacement text.
func (e *Editor) SetReplaceText(s string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search.SetReplace(s)
	return repaint
}

// ToggleCaseSensitive flips case sensitivity and rescans.
func (e *Editor) ToggleCaseSensitive() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("toggle_case")

	e.search.SetCaseSensitive(!e.search.CaseSensitive())
	e.refreshSearchLocked(true)
	return repaint
}

// ToggleSearchField moves focus between the query and replace inputs.
func (e *Editor) ToggleSearchField() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search.ToggleField()
	return repaint
}

// FindNext advances to the following match, wrapping around, and moves the
// caret to its start.
func (e *Editor) FindNext() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("find_next")

	e.closeGroupLocked()
	m, ok := e.search.Next()
	if !ok {
		return noChange
	}
	return e.moveLocked(m.Start(), false)
}

// FindPrevious steps back to the preceding match, wrapping around.
func (e *Editor) FindPrevious() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("find_previous")

	e.closeGroupLocked()
	m, ok := e.search.Previous()
	if !ok {
		return noChange
	}
	return e.moveLocked(m.Start(), false)
}

// ReplaceCurrent replaces the current match with the replacement text as
// one undo step, rescans, and advances to the first match after the
// replaced text.
func (e *Editor) ReplaceCurrent() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("replace")

	if e.readOnly {
		return noChange
	}
	m, ok := e.search.Current()
	if !ok {
		return noChange
	}
	e.closeGroupLocked()
	res := e.execLocked(history.NewReplaceTextCommand(e.buf, e.cur, m.Range(), e.search.Replacement()))
	if !res.Changed() {
		return res
	}

	if next, ok := e.selectMatchAfterLocked(e.cur.Position()); ok {
		e.cur.MoveTo(next.Start())
	}
	return res
}

// selectMatchAfterLocked makes the first match at or after p current,
// wrapping to the first match.
func (e *Editor) selectMatchAfterLocked(p Position) (search.Match, bool) {
	matches := e.search.Matches()
	if len(matches) == 0 {
		return search.Match{}, false
	}
	target := 0
	for i, m := range matches {
		if !m.Start().Before(p) {
			target = i
			break
		}
	}
	e.search.Select(target)
	return matches[target], true
}

// ReplaceAll replaces every match as one undo step and returns how many
// were replaced. Matches beyond the scan limit are left alone.
func (e *Editor) ReplaceAll() (int, Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observe("replace_all")

	if e.readOnly {
		return 0, noChange
	}
	matches := e.search.Matches()
	if len(matches) == 0 {
		return 0, noChange
	}
	e.closeGroupLocked()

	// Replacing from the end keeps earlier match positions valid.
	repl := e.search.Replacement()
	composite := history.NewCompositeCommand("Replace all")
	for i := len(matches) - 1; i >= 0; i-- {
		composite.Add(history.NewReplaceTextCommand(e.buf, e.cur, matches[i].Range(), repl))
	}
	res := e.execLocked(composite)
	if !res.Changed() {
		return 0, res
	}

	e.logger.Debug("replaced all",
		slog.String("query", e.search.Query()),
		slog.Int("count", len(matches)))
	return len(matches), res
}

// ============================================================================
// Search State
// ============================================================================

// SearchOpen reports whether the find bar is shown.
func (e *Editor) SearchOpen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.IsOpen()
}

// ReplaceMode reports whether the find bar shows the replace field.
func (e *Editor) ReplaceMode() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.ReplaceMode()
}

// SearchField returns the focused find bar input.
func (e *Editor) SearchField() search.Field {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Field()
}

// SearchQuery returns the find bar query.
func (e *Editor) SearchQuery() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Query()
}

// ReplaceText returns the replacement text.
func (e *Editor) ReplaceText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Replacement()
}

// CaseSensitive reports whether matching is case sensitive.
func (e *Editor) CaseSensitive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.CaseSensitive()
}

// CurrentMatch returns the current match, if any.
func (e *Editor) CurrentMatch() (Match, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Current()
}

// CurrentMatchIndex returns the index of the current match, or -1.
func (e *Editor) CurrentMatchIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.CurrentIndex()
}

// MatchCount returns the number of matches.
func (e *Editor) MatchCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Count()
}

// Matches returns the matches in document order.
func (e *Editor) Matches() []Match {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.search.Matches()
}
