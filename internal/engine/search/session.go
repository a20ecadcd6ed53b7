package search

import (
	"context"

	"github.com/dshills/quill/internal/engine/buffer"
)

// lineWeight makes one line of distance outweigh any column distance.
const lineWeight = 100000

// Field identifies which input of the find bar has focus.
type Field uint8

const (
	FieldQuery Field = iota
	FieldReplace
)

// String returns the field name.
func (f Field) String() string {
	if f == FieldReplace {
		return "replace"
	}
	return "query"
}

// Session is the state of a find/replace bar over one document.
// It is not thread-safe; the engine serializes access to it.
type Session struct {
	opts Options

	open        bool
	replaceMode bool
	field       Field

	query   string
	replace string

	matches []Match
	current int
}

// NewSession creates a closed session.
func NewSession(opts Options) *Session {
	return &Session{opts: opts, current: -1}
}

// Open shows the bar, in replace mode if requested, with the query field
// focused.
func (s *Session) Open(replaceMode bool) {
	s.open = true
	s.replaceMode = replaceMode
	s.field = FieldQuery
}

// Close hides the bar and drops the match list. The query is kept for the
// next Open.
func (s *Session) Close() {
	s.open = false
	s.replaceMode = false
	s.matches = nil
	s.current = -1
}

// IsOpen reports whether the bar is shown.
func (s *Session) IsOpen() bool { return s.open }

// ReplaceMode reports whether the replace field is shown.
func (s *Session) ReplaceMode() bool { return s.replaceMode }

// Field returns the focused input.
func (s *Session) Field() Field { return s.field }

// ToggleField moves focus between the query and replace inputs. Without
// replace mode focus stays on the query.
func (s *Session) ToggleField() {
	if !s.replaceMode {
		s.field = FieldQuery
		return
	}
	if s.field == FieldQuery {
		s.field = FieldReplace
	} else {
		s.field = FieldQuery
	}
}

// Query returns the search text.
func (s *Session) Query() string { return s.query }

// SetQuery changes the search text. Call Refresh to recompute matches.
func (s *Session) SetQuery(q string) { s.query = q }

// Replacement returns the replace text.
func (s *Session) Replacement() string { return s.replace }

// SetReplace changes the replace text.
func (s *Session) SetReplace(r string) { s.replace = r }

// CaseSensitive reports whether matching is case sensitive.
func (s *Session) CaseSensitive() bool { return s.opts.CaseSensitive }

// SetCaseSensitive changes case sensitivity. Call Refresh to recompute.
func (s *Session) SetCaseSensitive(v bool) { s.opts.CaseSensitive = v }

// Options returns the scan options.
func (s *Session) Options() Options { return s.opts }

// Refresh rescans lines for the query. The current match is reset; callers
// re-anchor it with SelectNearCursor.
func (s *Session) Refresh(ctx context.Context, lines buffer.Reader) error {
	s.current = -1
	if !s.open || s.query == "" {
		s.matches = nil
		return nil
	}
	matches, err := FindMatches(ctx, lines, s.query, s.opts)
	if err != nil {
		s.matches = nil
		return err
	}
	s.matches = matches
	return nil
}

// Distance is the line-weighted Manhattan distance from p to m.
func Distance(m Match, p Position) int {
	return abs(m.Line-p.Line)*lineWeight + abs(m.Col-p.Col)
}

// SelectNearCursor makes the match closest to p current. The earliest
// match wins ties. It returns false when there are no matches.
func (s *Session) SelectNearCursor(p Position) bool {
	s.current = -1
	best := 0
	for i, m := range s.matches {
		if d := Distance(m, p); s.current < 0 || d < best {
			s.current, best = i, d
		}
	}
	return s.current >= 0
}

// Select makes match i current. It returns false when i is out of range.
func (s *Session) Select(i int) bool {
	if i < 0 || i >= len(s.matches) {
		return false
	}
	s.current = i
	return true
}

// Next advances to the following match, wrapping to the first.
// It is a no-op on an empty list.
func (s *Session) Next() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = (s.current + 1) % len(s.matches)
	return s.matches[s.current], true
}

// Previous steps back to the preceding match, wrapping to the last.
// It is a no-op on an empty list.
func (s *Session) Previous() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	if s.current <= 0 {
		s.current = len(s.matches) - 1
	} else {
		s.current--
	}
	return s.matches[s.current], true
}

// Current returns the current match, if any.
func (s *Session) Current() (Match, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current], true
}

// CurrentIndex returns the index of the current match, or -1.
func (s *Session) CurrentIndex() int {
	return s.current
}

// Count returns the number of matches.
func (s *Session) Count() int {
	return len(s.matches)
}

// Matches returns a copy of the match list in document order.
func (s *Session) Matches() []Match {
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
