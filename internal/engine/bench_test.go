package engine

import (
	"strings"
	"testing"

	"github.com/dshills/quill/internal/engine/wrap"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEditor(b *testing.B, lines int, opts ...Option) *Editor {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("x", 40) + " foo " + strings.Repeat("y", 35) + "\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}
	return New(append(opts, WithContent(sb.String()))...)
}

// ============================================================================
// Read Operation Benchmarks
// ============================================================================

func BenchmarkEditorText(b *testing.B) {
	e := setupLargeEditor(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Text()
	}
}

func BenchmarkEditorVisualLines(b *testing.B) {
	e := setupLargeEditor(b, 10000, WithWrap(wrap.Config{Enabled: true, WrapColumn: 30}))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.VisualLines()
	}
}

// ============================================================================
// Edit Benchmarks
// ============================================================================

func BenchmarkEditorInsertChar(b *testing.B) {
	e := setupLargeEditor(b, 1000)
	e.SetCursor(Position{Line: 500, Col: 10})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.InsertChar('a')
	}
}

func BenchmarkEditorInsertNewline(b *testing.B) {
	e := setupLargeEditor(b, 1000, WithMaxUndo(100))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.InsertNewline()
	}
}

func BenchmarkEditorUndoRedo(b *testing.B) {
	e := setupLargeEditor(b, 1000)
	e.InsertText("hello\nworld")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.Undo()
		e.Redo()
	}
}

func BenchmarkEditorTypingWorkflow(b *testing.B) {
	e := setupLargeEditor(b, 1000, WithMaxUndo(100))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		typeString(e, "func main() {")
		e.InsertNewline()
		e.InsertTab()
		e.Move(MotionWordLeft, false)
		e.Backspace()
	}
}

// ============================================================================
// Search Benchmarks
// ============================================================================

func BenchmarkEditorSearchRefresh(b *testing.B) {
	e := setupLargeEditor(b, 20000)
	e.OpenSearch(false)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			e.SetSearchQuery("foo")
		} else {
			e.SetSearchQuery("fo")
		}
	}
}

func BenchmarkEditorTypingWithSearchOpen(b *testing.B) {
	e := setupLargeEditor(b, 5000)
	e.OpenSearch(false)
	e.SetSearchQuery("foo")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.InsertChar('z')
	}
}
