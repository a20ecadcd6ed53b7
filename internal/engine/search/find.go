package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/quill/internal/engine/buffer"
)

// ErrSearchCanceled is returned when the context ends before a scan joins.
var ErrSearchCanceled = errors.New("search canceled")

// Defaults for Options.
const (
	DefaultLimit             = 10000
	DefaultParallelThreshold = 1000
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// Match is one occurrence: Len characters starting at (Line, Col).
type Match struct {
	Line int
	Col  int
	Len  int
}

// Start returns the match start.
func (m Match) Start() Position {
	return Position{Line: m.Line, Col: m.Col}
}

// End returns the position just past the match.
func (m Match) End() Position {
	return Position{Line: m.Line, Col: m.Col + m.Len}
}

// Range returns the span the match covers.
func (m Match) Range() buffer.Range {
	return buffer.Range{Start: m.Start(), End: m.End()}
}

// String returns a string representation of the match.
func (m Match) String() string {
	return fmt.Sprintf("match(%d:%d+%d)", m.Line, m.Col, m.Len)
}

// Options configures a scan.
type Options struct {
	// CaseSensitive disables case folding.
	CaseSensitive bool

	// Limit caps the number of matches returned. Zero means DefaultLimit;
	// negative means unlimited.
	Limit int

	// Workers is the number of parallel chunks. Zero means GOMAXPROCS.
	Workers int

	// ParallelThreshold is the line count at which scanning goes parallel.
	// Zero means DefaultParallelThreshold.
	ParallelThreshold int
}

// DefaultOptions returns case-insensitive options with default limits.
func DefaultOptions() Options {
	return Options{
		Limit:             DefaultLimit,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

func (o Options) limit() int {
	switch {
	case o.Limit == 0:
		return DefaultLimit
	case o.Limit < 0:
		return -1
	default:
		return o.Limit
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) threshold() int {
	if o.ParallelThreshold > 0 {
		return o.ParallelThreshold
	}
	return DefaultParallelThreshold
}

// FindMatches returns the occurrences of query in document order, capped at
// the limit. An empty query yields no matches. lines must not change while
// the scan runs; pass a buffer.Snapshot when the buffer may be edited.
func FindMatches(ctx context.Context, lines buffer.Reader, query string, opts Options) ([]Match, error) {
	if query == "" {
		return nil, nil
	}
	if !opts.CaseSensitive {
		query = Fold(query)
	}

	n := lines.LineCount()
	limit := opts.limit()
	workers := opts.workers()
	if workers > n {
		workers = n
	}

	if n < opts.threshold() || workers <= 1 {
		return scanLines(ctx, lines, 0, n, query, opts.CaseSensitive, limit)
	}

	// Scatter contiguous chunks, then join in chunk order.
	size := (n + workers - 1) / workers
	chunks := make([][]Match, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		start := w * size
		end := start + size
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			found, err := scanLines(gctx, lines, start, end, query, opts.CaseSensitive, limit)
			if err != nil {
				return err
			}
			chunks[w] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []Match
	for _, c := range chunks {
		matches = append(matches, c...)
		if limit >= 0 && len(matches) >= limit {
			return matches[:limit], nil
		}
	}
	return matches, nil
}

// scanLines searches lines [start, end). It stops once limit matches are
// found, since a chunk never contributes more than that to the result.
func scanLines(ctx context.Context, lines buffer.Reader, start, end int, query string, caseSensitive bool, limit int) ([]Match, error) {
	var matches []Match
	qlen := utf8.RuneCountInString(query)
	for i := start; i < end; i++ {
		if (i-start)%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSearchCanceled, err)
			}
		}
		line := lines.Line(i)
		if !caseSensitive {
			line = Fold(line)
		}
		matches = appendLineMatches(matches, line, query, i, qlen, limit)
		if limit >= 0 && len(matches) >= limit {
			return matches[:limit], nil
		}
	}
	return matches, nil
}

// appendLineMatches appends non-overlapping occurrences of query in line,
// scanning left to right.
func appendLineMatches(out []Match, line, query string, lineIdx, qlen, limit int) []Match {
	off, col := 0, 0
	for {
		if limit >= 0 && len(out) >= limit {
			return out
		}
		i := strings.Index(line[off:], query)
		if i < 0 {
			return out
		}
		col += utf8.RuneCountInString(line[off : off+i])
		out = append(out, Match{Line: lineIdx, Col: col, Len: qlen})
		off += i + len(query)
		col += qlen
	}
}

// Fold maps each character of s to a canonical case. The mapping is one
// character to one character, so columns in the folded string match the
// original.
func Fold(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	return unicode.ToLower(unicode.ToUpper(r))
}
