package buffer

import "fmt"

// Range is a span between two positions.
// Start is inclusive, End is exclusive: [Start, End).
// A Range built from user input may be reversed; call Normalize before use.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a normalized Range covering a and b.
func NewRange(a, b Position) Range {
	return Range{Start: a, End: b}.Normalize()
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start, r.End)
}

// Normalize returns the range with Start before or equal to End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// IsEmpty returns true if start equals end.
func (r Range) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if start <= end.
func (r Range) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// Contains returns true if the given position is within the range.
func (r Range) Contains(p Position) bool {
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) < 0
}

// IsSingleLine returns true if the range spans only one line.
func (r Range) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}
