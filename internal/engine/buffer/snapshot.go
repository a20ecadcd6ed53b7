package buffer

import (
	"strings"
	"unicode/utf8"
)

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	lines      []string
	revision   uint64
	lineEnding LineEnding
}

// NewSnapshot wraps lines in a Snapshot. The slice must not be modified
// afterwards. An empty slice is treated as one empty line.
func NewSnapshot(lines []string) *Snapshot {
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &Snapshot{lines: lines}
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// Line returns the text of a specific line (without newline).
func (s *Snapshot) Line(idx int) string {
	if idx < 0 || idx >= len(s.lines) {
		return ""
	}
	return s.lines[idx]
}

// LineLen returns the length of a specific line in characters.
func (s *Snapshot) LineLen(idx int) int {
	return utf8.RuneCountInString(s.Line(idx))
}

// String returns the full snapshot content joined with "\n".
func (s *Snapshot) String() string {
	return strings.Join(s.lines, "\n")
}

// Revision returns the buffer revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// LineEnding returns the line ending style at snapshot time.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

var (
	_ Reader = (*Buffer)(nil)
	_ Reader = (*Snapshot)(nil)
)
