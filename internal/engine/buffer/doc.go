// Package buffer provides the line-oriented text buffer at the bottom of the
// editing engine. It owns the document and every character-level mutation
// primitive.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Character (code point) addressing for every column, never bytes
//   - Backspace, delete-forward and newline primitives with line merge/split
//   - Multi-line span insertion and deletion for range commands
//   - Read-only snapshots for the parallel search scan
//   - Line ending detection and round-trip
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("hello")
//	buf.InsertChar(0, 5, '!')       // "hello!"
//	buf.InsertNewline(0, 2)          // "he\nllo!"
//	res := buf.DeleteChar(1, 0)      // merges back, res.Pos == (0:2)
//
// Coordinates:
//
// Position columns count Unicode code points. Go strings are UTF-8, so every
// column is translated to a byte offset by scanning rune boundaries before
// slicing. Coordinates coming from callers are clamped to the document; an
// unclamped index reaching the translation step is a bug and panics with
// ErrBoundary.
//
// The document always holds at least one line.
package buffer
