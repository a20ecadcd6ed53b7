package wrap

import (
	"fmt"
	"sort"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// Config is the wrap policy.
type Config struct {
	// Enabled turns wrapping on. When off, each logical line is one row.
	Enabled bool

	// WrapColumn, when positive, wraps at this many narrow characters
	// regardless of the viewport.
	WrapColumn int

	// ViewportWidth and GutterWidth are in pixels. The budget without a
	// wrap column is ViewportWidth - GutterWidth.
	ViewportWidth int
	GutterWidth   int

	Metrics Metrics
}

// Budget returns the pixel width available to a row, or 0 when rows are
// unbounded.
func (c Config) Budget() int {
	if !c.Enabled {
		return 0
	}
	m := c.Metrics.withDefaults()
	var budget int
	if c.WrapColumn > 0 {
		budget = c.WrapColumn * m.NarrowWidth
	} else {
		budget = c.ViewportWidth - c.GutterWidth
	}
	if budget < 0 {
		return 0
	}
	return budget
}

// VisualLine is one displayed row: the characters [StartCol, EndCol) of
// logical line Line. Segment is the row's index within that line.
type VisualLine struct {
	Line     int
	Segment  int
	StartCol int
	EndCol   int
}

// Len returns the number of characters in the row.
func (v VisualLine) Len() int {
	return v.EndCol - v.StartCol
}

// String returns a string representation of the row.
func (v VisualLine) String() string {
	return fmt.Sprintf("%d.%d[%d:%d)", v.Line, v.Segment, v.StartCol, v.EndCol)
}

// Compute derives the visual rows of every logical line in document order.
// The result always has at least one row per logical line.
func Compute(lines buffer.Reader, cfg Config) []VisualLine {
	budget := cfg.Budget()
	m := cfg.Metrics.withDefaults()

	n := lines.LineCount()
	vls := make([]VisualLine, 0, n)
	for i := 0; i < n; i++ {
		if budget <= 0 {
			vls = append(vls, VisualLine{Line: i, EndCol: lines.LineLen(i)})
			continue
		}
		vls = appendSegments(vls, i, lines.Line(i), budget, m)
	}
	return vls
}

// appendSegments breaks one line into rows of at most budget pixels.
// A row always takes at least one character so unbreakable runs progress.
func appendSegments(vls []VisualLine, line int, text string, budget int, m Metrics) []VisualLine {
	seg := VisualLine{Line: line}
	width := 0
	col := 0
	for _, r := range text {
		w := m.RuneWidth(r)
		if col > seg.StartCol && width+w > budget {
			seg.EndCol = col
			vls = append(vls, seg)
			seg = VisualLine{Line: line, Segment: seg.Segment + 1, StartCol: col}
			width = 0
		}
		width += w
		col++
	}
	seg.EndCol = col
	return append(vls, seg)
}

// SegmentsFor returns the rows of logical line line.
func SegmentsFor(vls []VisualLine, line int) []VisualLine {
	lo, hi := lineBounds(vls, line)
	return vls[lo:hi]
}

// lineBounds returns the index range of the rows of line.
func lineBounds(vls []VisualLine, line int) (int, int) {
	lo := sort.Search(len(vls), func(i int) bool { return vls[i].Line >= line })
	hi := sort.Search(len(vls), func(i int) bool { return vls[i].Line > line })
	return lo, hi
}

// isLastSegment reports whether row i ends its logical line.
func isLastSegment(vls []VisualLine, i int) bool {
	return i == len(vls)-1 || vls[i+1].Line != vls[i].Line
}

// LogicalToVisual returns the index of the row containing p. A row contains
// the columns [StartCol, EndCol); EndCol itself only matches the last row
// of the line, which holds the end-of-line caret. Positions past the
// document clamp to the nearest row.
func LogicalToVisual(vls []VisualLine, p Position) int {
	if len(vls) == 0 {
		return 0
	}
	if p.Line > vls[len(vls)-1].Line {
		return len(vls) - 1
	}
	lo, hi := lineBounds(vls, p.Line)
	if lo == hi {
		return 0
	}
	for i := lo; i < hi; i++ {
		if p.Col >= vls[i].StartCol && p.Col < vls[i].EndCol {
			return i
		}
	}
	if p.Col < vls[lo].StartCol {
		return lo
	}
	return hi - 1
}

// maxCol is the furthest caret column row i allows. The caret at EndCol of
// a non-last row belongs to the next row, so such rows stop one short.
func maxCol(vls []VisualLine, i int) int {
	if isLastSegment(vls, i) || vls[i].Len() == 0 {
		return vls[i].EndCol
	}
	return vls[i].EndCol - 1
}

// VisualToLogical maps a row and a pixel offset within it to a position.
// The caret lands before the character whose midpoint lies past x.
func VisualToLogical(vls []VisualLine, lines buffer.Reader, row, x int, m Metrics) Position {
	if len(vls) == 0 {
		return Position{}
	}
	row = clampInt(row, 0, len(vls)-1)
	vl := vls[row]
	m = m.withDefaults()

	runes := []rune(lines.Line(vl.Line))
	end := vl.EndCol
	if end > len(runes) {
		end = len(runes)
	}

	acc := 0
	for col := vl.StartCol; col < end; col++ {
		w := m.RuneWidth(runes[col])
		if x < acc+(w+1)/2 {
			return Position{Line: vl.Line, Col: col}
		}
		acc += w
	}
	return Position{Line: vl.Line, Col: maxCol(vls, row)}
}

// MoveVertical steps delta rows from p and re-projects the column. Within
// one logical line the caret keeps its character offset inside the row,
// clamped to the target row. Crossing into another logical line keeps the
// column, clamped to that line's length. Moving past the first or last row
// leaves p unchanged.
func MoveVertical(vls []VisualLine, lines buffer.Reader, p Position, delta int) Position {
	if len(vls) == 0 || delta == 0 {
		return p
	}
	p = clampPosition(lines, p)
	from := LogicalToVisual(vls, p)
	to := clampInt(from+delta, 0, len(vls)-1)
	if to == from {
		return p
	}

	target := vls[to]
	if target.Line != vls[from].Line {
		return Position{Line: target.Line, Col: min(p.Col, lines.LineLen(target.Line))}
	}

	offset := p.Col - vls[from].StartCol
	col := clampInt(target.StartCol+offset, target.StartCol, maxCol(vls, to))
	return Position{Line: target.Line, Col: col}
}

func clampPosition(lines buffer.Reader, p Position) Position {
	p.Line = clampInt(p.Line, 0, lines.LineCount()-1)
	p.Col = clampInt(p.Col, 0, lines.LineLen(p.Line))
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
