package cursor

import (
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Motion names a caret movement within the logical document.
// Vertical movement lives in the wrap package because it depends on layout.
type Motion uint8

const (
	MotionLeft Motion = iota
	MotionRight
	MotionWordLeft
	MotionWordRight
	MotionHome
	MotionEnd
	MotionDocStart
	MotionDocEnd
)

// String returns the motion name.
func (m Motion) String() string {
	switch m {
	case MotionLeft:
		return "left"
	case MotionRight:
		return "right"
	case MotionWordLeft:
		return "word-left"
	case MotionWordRight:
		return "word-right"
	case MotionHome:
		return "home"
	case MotionEnd:
		return "end"
	case MotionDocStart:
		return "doc-start"
	case MotionDocEnd:
		return "doc-end"
	default:
		return "unknown"
	}
}

// Apply returns the position reached from p by motion m.
func Apply(lines buffer.Reader, p Position, m Motion) Position {
	switch m {
	case MotionLeft:
		return Left(lines, p)
	case MotionRight:
		return Right(lines, p)
	case MotionWordLeft:
		return WordLeft(lines, p)
	case MotionWordRight:
		return WordRight(lines, p)
	case MotionHome:
		return Home(lines, p)
	case MotionEnd:
		return End(lines, p)
	case MotionDocStart:
		return Position{}
	case MotionDocEnd:
		return DocEnd(lines)
	default:
		return p
	}
}

// graphemeStops returns the character columns at which grapheme clusters
// start in line, followed by the line length.
func graphemeStops(line string) []int {
	stops := []int{0}
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		col += len(g.Runes())
		stops = append(stops, col)
	}
	return stops
}

// Left moves one grapheme cluster back, wrapping to the end of the
// previous line at column 0.
func Left(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	if p.Col == 0 {
		if p.Line == 0 {
			return p
		}
		return Position{Line: p.Line - 1, Col: lines.LineLen(p.Line - 1)}
	}
	prev := 0
	for _, stop := range graphemeStops(lines.Line(p.Line)) {
		if stop >= p.Col {
			break
		}
		prev = stop
	}
	return Position{Line: p.Line, Col: prev}
}

// Right moves one grapheme cluster forward, wrapping to the start of the
// next line at end of line.
func Right(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	n := lines.LineLen(p.Line)
	if p.Col >= n {
		if p.Line >= lines.LineCount()-1 {
			return p
		}
		return Position{Line: p.Line + 1, Col: 0}
	}
	for _, stop := range graphemeStops(lines.Line(p.Line)) {
		if stop > p.Col {
			return Position{Line: p.Line, Col: stop}
		}
	}
	return Position{Line: p.Line, Col: n}
}

type charClass uint8

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classify(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunct
	}
}

// WordLeft moves to the start of the previous word.
func WordLeft(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	if p.Col == 0 {
		return Left(lines, p)
	}
	runes := []rune(lines.Line(p.Line))
	col := p.Col
	for col > 0 && classify(runes[col-1]) == classSpace {
		col--
	}
	if col == 0 {
		return Position{Line: p.Line, Col: 0}
	}
	class := classify(runes[col-1])
	for col > 0 && classify(runes[col-1]) == class {
		col--
	}
	return Position{Line: p.Line, Col: col}
}

// WordRight moves past the end of the current or next word.
func WordRight(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	runes := []rune(lines.Line(p.Line))
	if p.Col >= len(runes) {
		return Right(lines, p)
	}
	col := p.Col
	for col < len(runes) && classify(runes[col]) == classSpace {
		col++
	}
	if col == len(runes) {
		return Position{Line: p.Line, Col: col}
	}
	class := classify(runes[col])
	for col < len(runes) && classify(runes[col]) == class {
		col++
	}
	return Position{Line: p.Line, Col: col}
}

// Home moves to the first non-blank character, or to column 0 when the
// caret is already there.
func Home(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	indent := 0
	for _, r := range lines.Line(p.Line) {
		if r != ' ' && r != '\t' {
			break
		}
		indent++
	}
	if p.Col == indent {
		return Position{Line: p.Line, Col: 0}
	}
	return Position{Line: p.Line, Col: indent}
}

// End moves to the end of the line.
func End(lines buffer.Reader, p Position) Position {
	p = clamp(lines, p)
	return Position{Line: p.Line, Col: lines.LineLen(p.Line)}
}

// DocEnd returns the end of the last line.
func DocEnd(lines buffer.Reader) Position {
	last := lines.LineCount() - 1
	return Position{Line: last, Col: lines.LineLen(last)}
}

func clamp(lines buffer.Reader, p Position) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= lines.LineCount() {
		p.Line = lines.LineCount() - 1
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := lines.LineLen(p.Line); p.Col > n {
		p.Col = n
	}
	return p
}
