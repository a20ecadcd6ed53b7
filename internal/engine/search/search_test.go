package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/quill/internal/engine/buffer"
)

func cols(ms []Match) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Col
	}
	return out
}

func TestFindMatchesCaseInsensitive(t *testing.T) {
	buf := buffer.NewBufferFromString("foo bar FOO baz Foo")

	matches, err := FindMatches(context.Background(), buf, "foo", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 8, 16}, cols(matches))
	for _, m := range matches {
		assert.Equal(t, 3, m.Len)
	}
}

func TestFindMatchesCaseSensitive(t *testing.T) {
	buf := buffer.NewBufferFromString("foo bar FOO baz Foo")
	opts := DefaultOptions()
	opts.CaseSensitive = true

	matches, err := FindMatches(context.Background(), buf, "foo", opts)
	require.NoError(t, err)
	assert.Equal(t, []Match{{Line: 0, Col: 0, Len: 3}}, matches)
}

func TestFindMatchesEmptyQuery(t *testing.T) {
	matches, err := FindMatches(context.Background(), buffer.NewBufferFromString("abc"), "", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesNonOverlapping(t *testing.T) {
	buf := buffer.NewBufferFromString("aaaaa")
	matches, err := FindMatches(context.Background(), buf, "aa", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, cols(matches))
}

func TestFindMatchesMultibyteColumns(t *testing.T) {
	buf := buffer.NewBufferFromString("日本 Straße STRASSE straße")
	matches, err := FindMatches(context.Background(), buf, "STRASSE", DefaultOptions())
	require.NoError(t, err)
	// Folding is per character, so "ß" does not expand to "ss".
	assert.Equal(t, []int{10}, cols(matches))

	matches, err = FindMatches(context.Background(), buf, "straße", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 18}, cols(matches))
}

func TestFindMatchesLimitAcrossChunks(t *testing.T) {
	lines := make([]string, 11000)
	for i := range lines {
		lines[i] = "a foo line"
	}
	buf := buffer.NewBufferFromString(strings.Join(lines, "\n"))

	opts := DefaultOptions()
	opts.Workers = 4
	matches, err := FindMatches(context.Background(), buf.Snapshot(), "foo", opts)
	require.NoError(t, err)
	require.Len(t, matches, 10000)
	for i, m := range matches {
		if m.Line != i || m.Col != 2 {
			t.Fatalf("match %d = %s", i, m)
		}
	}
}

func TestFindMatchesUnlimited(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("x", 50))
	opts := Options{Limit: -1}
	matches, err := FindMatches(context.Background(), buf, "x", opts)
	require.NoError(t, err)
	assert.Len(t, matches, 50)
}

func TestFindMatchesCanceled(t *testing.T) {
	buf := buffer.NewBufferFromString(strings.Repeat("foo\n", 5000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindMatches(ctx, buf, "foo", Options{Workers: 4, ParallelThreshold: 10})
	assert.True(t, errors.Is(err, ErrSearchCanceled))
}

func TestParallelMatchesSerial(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := []string{"foo", "Foo", "bar", "fo", "o", "日本", " "}
		n := rapid.IntRange(1, 300).Draw(t, "lines")
		lines := make([]string, n)
		for i := range lines {
			parts := rapid.SliceOfN(rapid.SampledFrom(words), 0, 8).Draw(t, "line")
			lines[i] = strings.Join(parts, "")
		}
		snap := buffer.NewSnapshot(lines)
		query := rapid.SampledFrom([]string{"foo", "o", "oo", "日", "bar"}).Draw(t, "query")
		base := Options{
			CaseSensitive: rapid.Bool().Draw(t, "case"),
			Limit:         rapid.IntRange(-1, 200).Draw(t, "limit"),
		}

		serial := base
		serial.Workers = 1
		parallel := base
		parallel.Workers = rapid.IntRange(2, 9).Draw(t, "workers")
		parallel.ParallelThreshold = 1

		want, err := FindMatches(context.Background(), snap, query, serial)
		if err != nil {
			t.Fatal(err)
		}
		got, err := FindMatches(context.Background(), snap, query, parallel)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("parallel result differs (-serial +parallel):\n%s", diff)
		}
	})
}

// Session Tests

func newOpenSession(t *testing.T, text, query string) (*Session, *buffer.Buffer) {
	t.Helper()
	buf := buffer.NewBufferFromString(text)
	s := NewSession(DefaultOptions())
	s.Open(false)
	s.SetQuery(query)
	require.NoError(t, s.Refresh(context.Background(), buf))
	return s, buf
}

func TestSessionNextWraps(t *testing.T) {
	s, _ := newOpenSession(t, "foo bar foo baz foo", "foo")
	require.Equal(t, 3, s.Count())

	require.True(t, s.SelectNearCursor(buffer.Pos(0, 0)))
	assert.Equal(t, 0, s.CurrentIndex())

	var seen []int
	for i := 0; i < 3; i++ {
		_, ok := s.Next()
		require.True(t, ok)
		seen = append(seen, s.CurrentIndex())
	}
	assert.Equal(t, []int{1, 2, 0}, seen)
}

func TestSessionPreviousWraps(t *testing.T) {
	s, _ := newOpenSession(t, "foo bar foo", "foo")
	s.SelectNearCursor(buffer.Pos(0, 0))

	m, ok := s.Previous()
	require.True(t, ok)
	assert.Equal(t, 8, m.Col)
	m, _ = s.Previous()
	assert.Equal(t, 0, m.Col)
}

func TestSessionEmptyNavigationIsNoop(t *testing.T) {
	s, _ := newOpenSession(t, "abc", "zzz")
	_, ok := s.Next()
	assert.False(t, ok)
	_, ok = s.Previous()
	assert.False(t, ok)
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Equal(t, -1, s.CurrentIndex())
}

func TestSessionSelect(t *testing.T) {
	s, _ := newOpenSession(t, "foo foo foo", "foo")
	require.True(t, s.Select(2))
	m, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 8, m.Col)

	assert.False(t, s.Select(3))
	assert.False(t, s.Select(-1))
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestSessionSelectNearCursor(t *testing.T) {
	s, _ := newOpenSession(t, "foo\n\nx foo\nfoo foo", "foo")

	tests := []struct {
		name string
		at   buffer.Position
		want Match
	}{
		{"same line", buffer.Pos(2, 0), Match{Line: 2, Col: 2, Len: 3}},
		{"line distance dominates", buffer.Pos(2, 90), Match{Line: 2, Col: 2, Len: 3}},
		{"nearest column", buffer.Pos(3, 3), Match{Line: 3, Col: 4, Len: 3}},
		{"past document", buffer.Pos(9, 0), Match{Line: 3, Col: 0, Len: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, s.SelectNearCursor(tt.at))
			got, ok := s.Current()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionRefreshRequiresOpen(t *testing.T) {
	buf := buffer.NewBufferFromString("foo")
	s := NewSession(DefaultOptions())
	s.SetQuery("foo")
	require.NoError(t, s.Refresh(context.Background(), buf))
	assert.Zero(t, s.Count())

	s.Open(true)
	require.NoError(t, s.Refresh(context.Background(), buf))
	assert.Equal(t, 1, s.Count())

	s.Close()
	assert.Zero(t, s.Count())
	assert.Equal(t, "foo", s.Query())
}

func TestSessionToggleField(t *testing.T) {
	s := NewSession(DefaultOptions())
	s.Open(false)
	s.ToggleField()
	assert.Equal(t, FieldQuery, s.Field())

	s.Open(true)
	s.ToggleField()
	assert.Equal(t, FieldReplace, s.Field())
	s.ToggleField()
	assert.Equal(t, FieldQuery, s.Field())
}

func TestDistance(t *testing.T) {
	m := Match{Line: 3, Col: 10, Len: 2}
	assert.Equal(t, 0, Distance(m, buffer.Pos(3, 10)))
	assert.Equal(t, 2*lineWeight+4, Distance(m, buffer.Pos(1, 6)))
}
