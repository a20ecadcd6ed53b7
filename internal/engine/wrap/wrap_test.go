package wrap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/quill/internal/engine/buffer"
)

var pos = buffer.Pos

func columns(n int) Config {
	return Config{Enabled: true, WrapColumn: n}
}

func lengths(vls []VisualLine) []int {
	out := make([]int, len(vls))
	for i, v := range vls {
		out[i] = v.Len()
	}
	return out
}

func TestComputeWrapColumn(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 47))

	vls := Compute(buf, columns(10))
	assert.Equal(t, []int{10, 10, 10, 10, 7}, lengths(vls))
	for i, v := range vls {
		assert.Equal(t, 0, v.Line)
		assert.Equal(t, i, v.Segment)
	}
}

func TestComputeDisabled(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 47) + "\n\nabc")

	vls := Compute(buf, Config{WrapColumn: 10})
	require.Len(t, vls, 3)
	assert.Equal(t, VisualLine{Line: 0, EndCol: 47}, vls[0])
	assert.Equal(t, VisualLine{Line: 1}, vls[1])
	assert.Equal(t, VisualLine{Line: 2, EndCol: 3}, vls[2])
}

func TestComputeEmptyLine(t *testing.T) {
	vls := Compute(buffer.NewBuffer(), columns(4))
	assert.Equal(t, []VisualLine{{Line: 0}}, vls)
}

func TestComputeViewportBudget(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdefgh")
	cfg := Config{Enabled: true, ViewportWidth: 40, GutterWidth: 8}

	// 32 pixels of 8-pixel glyphs per row.
	assert.Equal(t, []int{4, 4}, lengths(Compute(buf, cfg)))
	assert.Equal(t, 32, cfg.Budget())
}

func TestComputeNonPositiveBudgetDisables(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdefgh")
	cfg := Config{Enabled: true, ViewportWidth: 10, GutterWidth: 20}

	assert.Equal(t, 0, cfg.Budget())
	assert.Equal(t, []int{8}, lengths(Compute(buf, cfg)))
}

func TestComputeWideCharacters(t *testing.T) {
	// Each wide glyph is two narrow cells, so four columns hold two of them.
	buf := buffer.NewBufferFromString("日本語テキスト")
	assert.Equal(t, []int{2, 2, 2, 1}, lengths(Compute(buf, columns(4))))
}

func TestComputeForcesProgress(t *testing.T) {
	buf := buffer.NewBufferFromString("日日日")
	cfg := Config{Enabled: true, ViewportWidth: 10}

	// A wide glyph never fits in 10 pixels, but every row takes one.
	assert.Equal(t, []int{1, 1, 1}, lengths(Compute(buf, cfg)))
}

func TestMetricsRuneWidth(t *testing.T) {
	m := Metrics{NarrowWidth: 6, WideWidth: 12}
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 6},
		{'日', 12},
		{'\t', 0},
		{0x07, 0},
		{'\u0301', 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.RuneWidth(tt.r), "rune %U", tt.r)
	}
	assert.Equal(t, 18, m.StringWidth("a日"))
}

func TestLogicalToVisual(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 25) + "\nshort")
	vls := Compute(buf, columns(10))
	require.Len(t, vls, 4)

	tests := []struct {
		name string
		p    buffer.Position
		want int
	}{
		{"start", pos(0, 0), 0},
		{"inside first", pos(0, 9), 0},
		{"wrap boundary", pos(0, 10), 1},
		{"last segment", pos(0, 24), 2},
		{"end of line", pos(0, 25), 2},
		{"next line", pos(1, 3), 3},
		{"next line end", pos(1, 5), 3},
		{"past document", pos(9, 0), 3},
		{"past line end", pos(1, 99), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogicalToVisual(vls, tt.p))
		})
	}
}

func TestSegmentsFor(t *testing.T) {
	buf := buffer.NewBufferFromString("abc\n" + strings.Repeat("y", 12) + "\nz")
	vls := Compute(buf, columns(5))

	segs := SegmentsFor(vls, 1)
	assert.Equal(t, []int{5, 5, 2}, lengths(segs))
	assert.Empty(t, SegmentsFor(vls, 7))
}

func TestVisualToLogical(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 25) + "\nab")
	vls := Compute(buf, columns(10))
	m := DefaultMetrics()

	tests := []struct {
		name string
		row  int
		x    int
		want buffer.Position
	}{
		{"origin", 0, 0, pos(0, 0)},
		{"left half of glyph", 0, 3, pos(0, 0)},
		{"right half of glyph", 0, 4, pos(0, 1)},
		{"second row", 1, 16, pos(0, 12)},
		{"past end of wrapped row", 1, 500, pos(0, 19)},
		{"past end of last row", 2, 500, pos(0, 25)},
		{"short line", 3, 500, pos(1, 2)},
		{"row past document", 9, 0, pos(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisualToLogical(vls, buf, tt.row, tt.x, m))
		})
	}
}

func TestMoveVertical(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 25) + "\nab\n" + strings.Repeat("z", 8))
	vls := Compute(buf, columns(10))
	require.Len(t, vls, 5)

	tests := []struct {
		name  string
		from  buffer.Position
		delta int
		want  buffer.Position
	}{
		{"down within line keeps offset", pos(0, 3), 1, pos(0, 13)},
		{"down into short last segment", pos(0, 17), 1, pos(0, 25)},
		{"up within line", pos(0, 23), -1, pos(0, 13)},
		{"up clamps to wrapped row", pos(0, 25), -1, pos(0, 15)},
		{"down crosses line and clamps", pos(0, 24), 1, pos(1, 2)},
		{"down crosses to longer line", pos(1, 1), 1, pos(2, 1)},
		{"up from first row", pos(0, 4), -1, pos(0, 4)},
		{"down from last row", pos(2, 3), 1, pos(2, 3)},
		{"page down", pos(0, 2), 3, pos(1, 2)},
		{"page up past start", pos(2, 5), -10, pos(0, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoveVertical(vls, buf, tt.from, tt.delta))
		})
	}
}

func TestMoveVerticalAcrossWrappedLines(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("a", 25) + "\n" + strings.Repeat("b", 25))
	vls := Compute(buf, columns(10))
	require.Len(t, vls, 6)

	tests := []struct {
		name  string
		from  buffer.Position
		delta int
		want  buffer.Position
	}{
		{"down into next line keeps column", pos(0, 22), 1, pos(1, 22)},
		{"up into previous line keeps column", pos(1, 2), -1, pos(0, 2)},
		{"down within line keeps row offset", pos(1, 2), 1, pos(1, 12)},
		{"page down across lines", pos(0, 7), 4, pos(1, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoveVertical(vls, buf, tt.from, tt.delta))
		})
	}
}

func TestMoveVerticalEndOfWrappedRow(t *testing.T) {
	// Moving up from the end of a line onto a full wrapped row must stay on
	// that row rather than landing on the boundary that belongs to the next.
	buf := buffer.NewBufferFromString(strings.Repeat("x", 20))
	vls := Compute(buf, columns(10))

	got := MoveVertical(vls, buf, pos(0, 20), -1)
	assert.Equal(t, pos(0, 9), got)
	assert.Equal(t, 0, LogicalToVisual(vls, got))
}

func TestWrapCoverageProperty(t *testing.T) {
	alphabet := []rune{'a', ' ', '日', '\t', '\u0301', '\u00e9'}

	rapid.Check(t, func(t *rapid.T) {
		var lines []string
		for i, n := 0, rapid.IntRange(1, 5).Draw(t, "lines"); i < n; i++ {
			lines = append(lines, string(rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 60).Draw(t, "line")))
		}
		buf := buffer.NewBufferFromString(strings.Join(lines, "\n"))
		cfg := Config{
			Enabled:       true,
			WrapColumn:    rapid.IntRange(0, 20).Draw(t, "column"),
			ViewportWidth: rapid.IntRange(0, 200).Draw(t, "viewport"),
		}

		vls := Compute(buf, cfg)
		for line := 0; line < buf.LineCount(); line++ {
			segs := SegmentsFor(vls, line)
			if len(segs) == 0 {
				t.Fatalf("line %d has no rows", line)
			}
			next := 0
			for i, s := range segs {
				if s.StartCol != next {
					t.Fatalf("line %d row %d starts at %d, want %d", line, i, s.StartCol, next)
				}
				if s.Segment != i {
					t.Fatalf("line %d row %d has segment index %d", line, i, s.Segment)
				}
				if len(segs) > 1 && s.Len() == 0 {
					t.Fatalf("line %d row %d is empty", line, i)
				}
				next = s.EndCol
			}
			if next != buf.LineLen(line) {
				t.Fatalf("line %d rows end at %d, want %d", line, next, buf.LineLen(line))
			}
		}
	})
}
