package wrap

import (
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Default pixel widths. A wide glyph fills one text cell; a narrow glyph
// takes half of it.
const (
	DefaultNarrowWidth = 8
	DefaultWideWidth   = 16
)

// Metrics is the per-character width table, in pixels.
type Metrics struct {
	NarrowWidth int
	WideWidth   int
}

// DefaultMetrics returns the default width table.
func DefaultMetrics() Metrics {
	return Metrics{NarrowWidth: DefaultNarrowWidth, WideWidth: DefaultWideWidth}
}

// withDefaults fills unset widths.
func (m Metrics) withDefaults() Metrics {
	if m.NarrowWidth <= 0 {
		m.NarrowWidth = DefaultNarrowWidth
	}
	if m.WideWidth <= 0 {
		m.WideWidth = DefaultWideWidth
	}
	return m
}

// RuneWidth returns the display width of r. East Asian wide glyphs take
// WideWidth, control characters and zero-width marks take nothing, and
// everything else takes NarrowWidth.
func (m Metrics) RuneWidth(r rune) int {
	m = m.withDefaults()
	if unicode.IsControl(r) {
		return 0
	}
	switch runewidth.RuneWidth(r) {
	case 0:
		return 0
	case 2:
		return m.WideWidth
	default:
		return m.NarrowWidth
	}
}

// StringWidth returns the display width of s.
func (m Metrics) StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += m.RuneWidth(r)
	}
	return w
}
