package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrBoundary marks a character index that does not fall on a character
// boundary of its line. It only ever appears inside a panic: reaching it means
// a caller skipped clamping, which is a programming error.
var ErrBoundary = errors.New("character index outside line")

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Reader is the read-only line view shared by Buffer and Snapshot.
type Reader interface {
	LineCount() int
	Line(idx int) string
	LineLen(idx int) int
}

// DeleteResult describes the outcome of a single-character deletion.
type DeleteResult struct {
	// Changed is false when the deletion was a no-op (document start/end).
	Changed bool

	// Merged is true when two lines were joined instead of a character removed.
	Merged bool

	// Deleted is the removed text exactly as stored, or "\n" for a line
	// join. Invalid UTF-8 bytes are returned unchanged.
	Deleted string

	// Pos is where the caret belongs after the deletion. For a backspace that
	// merged lines this is the old merge point at the end of the previous line.
	Pos Position
}

// Buffer owns the document as an ordered sequence of lines.
// There is always at least one line; an empty document is one empty line.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	lines      []string
	revision   uint64
	lineEnding LineEnding
	fixedEOL   bool
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lines:      []string{""},
		lineEnding: LineEndingLF,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
// CRLF and lone CR are normalized to line breaks. Unless a line ending option
// was given, the original style is detected and kept for StringWithEnding.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	if !b.fixedEOL {
		b.lineEnding = DetectLineEnding(s)
	}
	b.lines = splitLines(s)
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first: CRLF pairs may straddle read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read buffer content: %w", err)
	}
	return NewBufferFromString(string(data), opts...), nil
}

// splitLines normalizes line endings and splits text into lines.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// Read Operations

// Line returns the text of a line without its newline.
// Out-of-range indexes return the empty string.
func (b *Buffer) Line(idx int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if idx < 0 || idx >= len(b.lines) {
		return ""
	}
	return b.lines[idx]
}

// LineLen returns the length of a line in characters.
func (b *Buffer) LineLen(idx int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineLen(idx)
}

func (b *Buffer) lineLen(idx int) int {
	if idx < 0 || idx >= len(b.lines) {
		return 0
	}
	return utf8.RuneCountInString(b.lines[idx])
}

// LineCount returns the number of lines. It is always at least 1.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// String returns the full document joined with "\n".
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// StringWithEnding returns the document joined with the buffer's line ending.
func (b *Buffer) StringWithEnding() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, b.lineEnding.Sequence())
}

// IsEmpty returns true if the document is a single empty line.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) == 1 && b.lines[0] == ""
}

// CharAt returns the character at pos, or false at end of line or out of range.
func (b *Buffer) CharAt(pos Position) (rune, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos.Line < 0 || pos.Line >= len(b.lines) || pos.Col < 0 {
		return 0, false
	}
	i := 0
	for _, r := range b.lines[pos.Line] {
		if i == pos.Col {
			return r, true
		}
		i++
	}
	return 0, false
}

// TextRange returns the text covered by r. Multi-line spans are joined with
// "\n". The range is normalized and clamped first.
func (b *Buffer) TextRange(r Range) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.textRange(r)
}

func (b *Buffer) textRange(r Range) string {
	r = b.clampRange(r)
	if r.IsEmpty() {
		return ""
	}
	if r.IsSingleLine() {
		line := b.lines[r.Start.Line]
		return line[byteOffset(line, r.Start.Col):byteOffset(line, r.End.Col)]
	}

	var sb strings.Builder
	first := b.lines[r.Start.Line]
	sb.WriteString(first[byteOffset(first, r.Start.Col):])
	sb.WriteByte('\n')
	for i := r.Start.Line + 1; i < r.End.Line; i++ {
		sb.WriteString(b.lines[i])
		sb.WriteByte('\n')
	}
	last := b.lines[r.End.Line]
	sb.WriteString(last[:byteOffset(last, r.End.Col)])
	return sb.String()
}

// Clamp returns pos moved into the document: the line is clamped to
// [0, LineCount) and the column to [0, LineLen].
func (b *Buffer) Clamp(pos Position) Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clamp(pos)
}

func (b *Buffer) clamp(pos Position) Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		pos.Line = len(b.lines) - 1
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := b.lineLen(pos.Line); pos.Col > n {
		pos.Col = n
	}
	return pos
}

func (b *Buffer) clampRange(r Range) Range {
	r = r.Normalize()
	return Range{Start: b.clamp(r.Start), End: b.clamp(r.End)}
}

// End returns the position at the end of the document.
func (b *Buffer) End() Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	last := len(b.lines) - 1
	return Position{Line: last, Col: b.lineLen(last)}
}

// Write Operations

// InsertChar inserts one character at (line, col) and returns the caret
// position after it. A '\n' is treated as InsertNewline.
func (b *Buffer) InsertChar(line, col int, ch rune) Position {
	if ch == '\n' {
		return b.InsertNewline(line, col)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.clamp(Position{Line: line, Col: col})
	s := b.lines[pos.Line]
	off := byteOffset(s, pos.Col)
	b.lines[pos.Line] = s[:off] + string(ch) + s[off:]
	b.revision++
	return Position{Line: pos.Line, Col: pos.Col + 1}
}

// DeleteChar removes the character before (line, col) with backspace
// semantics. At column 0 the line is merged into the previous one and the
// result's Pos is the old merge point. At the document start it is a no-op.
func (b *Buffer) DeleteChar(line, col int) DeleteResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.clamp(Position{Line: line, Col: col})
	if pos.Col > 0 {
		s := b.lines[pos.Line]
		start := byteOffset(s, pos.Col-1)
		end := byteOffset(s, pos.Col)
		b.lines[pos.Line] = s[:start] + s[end:]
		b.revision++
		return DeleteResult{
			Changed: true,
			Deleted: s[start:end],
			Pos:     Position{Line: pos.Line, Col: pos.Col - 1},
		}
	}
	if pos.Line == 0 {
		return DeleteResult{Pos: pos}
	}

	mergeAt := Position{Line: pos.Line - 1, Col: b.lineLen(pos.Line - 1)}
	b.joinLocked(pos.Line - 1)
	return DeleteResult{Changed: true, Merged: true, Deleted: "\n", Pos: mergeAt}
}

// DeleteForward removes the character at (line, col). At end of line the
// next line is merged into this one. At the document end it is a no-op.
func (b *Buffer) DeleteForward(line, col int) DeleteResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.clamp(Position{Line: line, Col: col})
	s := b.lines[pos.Line]
	if pos.Col < b.lineLen(pos.Line) {
		start := byteOffset(s, pos.Col)
		_, size := utf8.DecodeRuneInString(s[start:])
		b.lines[pos.Line] = s[:start] + s[start+size:]
		b.revision++
		return DeleteResult{Changed: true, Deleted: s[start : start+size], Pos: pos}
	}
	if pos.Line >= len(b.lines)-1 {
		return DeleteResult{Pos: pos}
	}

	b.joinLocked(pos.Line)
	return DeleteResult{Changed: true, Merged: true, Deleted: "\n", Pos: pos}
}

// joinLocked appends line idx+1 to line idx and removes line idx+1.
func (b *Buffer) joinLocked(idx int) {
	b.lines[idx] += b.lines[idx+1]
	b.lines = append(b.lines[:idx+1], b.lines[idx+2:]...)
	b.revision++
}

// InsertNewline splits the line at col. Text before col stays, text from col
// onward becomes the next line. Returns the start of the new line.
func (b *Buffer) InsertNewline(line, col int) Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.clamp(Position{Line: line, Col: col})
	s := b.lines[pos.Line]
	off := byteOffset(s, pos.Col)

	b.lines = append(b.lines, "")
	copy(b.lines[pos.Line+2:], b.lines[pos.Line+1:])
	b.lines[pos.Line] = s[:off]
	b.lines[pos.Line+1] = s[off:]
	b.revision++
	return Position{Line: pos.Line + 1, Col: 0}
}

// InsertText inserts text, which may span several lines, at pos.
// Returns the position just after the inserted text.
func (b *Buffer) InsertText(pos Position, text string) Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos = b.clamp(pos)
	if text == "" {
		return pos
	}

	parts := splitLines(text)
	s := b.lines[pos.Line]
	off := byteOffset(s, pos.Col)
	head, tail := s[:off], s[off:]

	if len(parts) == 1 {
		b.lines[pos.Line] = head + parts[0] + tail
		b.revision++
		return Position{Line: pos.Line, Col: pos.Col + utf8.RuneCountInString(parts[0])}
	}

	last := parts[len(parts)-1]
	inserted := make([]string, len(parts))
	inserted[0] = head + parts[0]
	copy(inserted[1:], parts[1:len(parts)-1])
	inserted[len(parts)-1] = last + tail

	lines := make([]string, 0, len(b.lines)+len(parts)-1)
	lines = append(lines, b.lines[:pos.Line]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[pos.Line+1:]...)
	b.lines = lines
	b.revision++

	return Position{Line: pos.Line + len(parts) - 1, Col: utf8.RuneCountInString(last)}
}

// DeleteRange removes the text covered by r and returns it.
func (b *Buffer) DeleteRange(r Range) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	r = b.clampRange(r)
	if r.IsEmpty() {
		return ""
	}
	removed := b.textRange(r)

	first := b.lines[r.Start.Line]
	last := b.lines[r.End.Line]
	joined := first[:byteOffset(first, r.Start.Col)] + last[byteOffset(last, r.End.Col):]

	b.lines[r.Start.Line] = joined
	if r.End.Line > r.Start.Line {
		b.lines = append(b.lines[:r.Start.Line+1], b.lines[r.End.Line+1:]...)
	}
	b.revision++
	return removed
}

// Revision returns a counter that changes on every mutation.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// LineEnding returns the line ending style used by StringWithEnding.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the line ending style.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
	b.fixedEOL = true
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return &Snapshot{
		lines:      lines,
		revision:   b.revision,
		lineEnding: b.lineEnding,
	}
}

// byteOffset translates a character index into a byte offset within s.
// col == rune count maps to len(s). Any other out-of-range col is a
// programming error and panics.
func byteOffset(s string, col int) int {
	if col < 0 {
		panic(fmt.Errorf("%w: negative column %d", ErrBoundary, col))
	}
	i := 0
	for off := range s {
		if i == col {
			return off
		}
		i++
	}
	if i == col {
		return len(s)
	}
	panic(fmt.Errorf("%w: column %d in line of %d characters", ErrBoundary, col, i))
}

// ByteOffset translates a character column into a byte offset within line.
// Columns past the end clamp to len(line).
func ByteOffset(line string, col int) int {
	if col <= 0 {
		return 0
	}
	if n := utf8.RuneCountInString(line); col > n {
		col = n
	}
	return byteOffset(line, col)
}
