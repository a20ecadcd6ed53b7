// Package wrap derives visual rows from logical lines and maps between the
// two coordinate spaces.
//
// Rows are recomputed on demand with Compute; nothing is kept incrementally.
// Widths come from Metrics, which classifies each character as wide, narrow
// or zero width. A row closes before the character that would overflow the
// budget, but always holds at least one character.
//
// LogicalToVisual, VisualToLogical and MoveVertical answer the questions a
// renderer asks: which row holds the caret, where a click lands, and where
// arrow up/down or page up/down go.
package wrap
