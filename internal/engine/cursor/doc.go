// Package cursor provides caret and selection management for text editing.
//
// The cursor package handles:
//
//   - The caret position in logical (line, column) coordinates
//   - An optional selection with an anchor/active model via Selection
//   - Normalization of selections into document order
//   - Extraction of selected text
//   - Horizontal and document motions over a buffer.Reader
//
// Selection Model:
//
// A selection exists only while both endpoints are set:
//   - Anchor: The position where the selection started
//   - Active: The moving end, which follows the caret
//
// The pair is unordered. SelectionRange normalizes it so Start precedes End.
// An empty selection (Start == End) is still UI state, but SelectedText
// reports no text for it.
//
// Motions:
//
// Left and Right step over whole grapheme clusters, so a base character and
// its combining marks move as one unit even though columns count code points.
//
// Thread Safety:
//
// Selection and State are immutable value types. Cursor is not thread-safe;
// the engine serializes access to it.
package cursor
