package script

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quill/internal/engine"
)

func newRunner(t *testing.T, content string, opts ...Option) (*Runner, *engine.Editor) {
	t.Helper()
	ed := engine.New(engine.WithContent(content))
	r := New(ed, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r, ed
}

func run(t *testing.T, r *Runner, code string) {
	t.Helper()
	require.NoError(t, r.Run(context.Background(), "test", code))
}

// ============================================================================
// Sandbox
// ============================================================================

func TestSandboxLibraries(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, "", WithOutput(&out))

	run(t, r, `
print(type(io), type(os), type(debug), type(package))
print(type(load), type(loadstring), type(dofile), type(require))
print(string.upper("ok"), math.max(1, 2), table.concat({"a", "b"}, ","))
`)
	assert.Equal(t, "nil\tnil\tnil\tnil\nnil\tnil\tnil\tnil\nOK\t2\ta,b\n", out.String())
}

func TestSyntaxError(t *testing.T) {
	r, _ := newRunner(t, "")
	err := r.Run(context.Background(), "broken.lua", "ed.type(")

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "broken.lua", se.Chunk)
	assert.Contains(t, err.Error(), "script broken.lua")
}

func TestRuntimeError(t *testing.T) {
	r, _ := newRunner(t, "")
	err := r.Run(context.Background(), "test", `error("boom")`)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "boom")
}

func TestUnknownMotion(t *testing.T) {
	r, _ := newRunner(t, "")
	err := r.Run(context.Background(), "test", `ed.move("sideways")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestTimeout(t *testing.T) {
	r, _ := newRunner(t, "", WithTimeout(50*time.Millisecond))
	err := r.Run(context.Background(), "spin", `while true do end`)
	assert.True(t, errors.Is(err, ErrTimeout))

	// The state stays usable after a timeout.
	run(t, r, `ed.type("x")`)
}

func TestCancel(t *testing.T) {
	r, _ := newRunner(t, "", WithTimeout(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx, "spin", `while true do end`)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClosed(t *testing.T) {
	r, _ := newRunner(t, "")
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, ErrClosed, r.Run(context.Background(), "test", ""))
}

// ============================================================================
// Editing
// ============================================================================

func TestTypeAndUndo(t *testing.T) {
	r, ed := newRunner(t, "")
	run(t, r, `
ed.type("hello")
ed.newline()
ed.tab()
ed.type("world")
`)
	assert.Equal(t, "hello\n\tworld", ed.Text())

	run(t, r, `assert(ed.undo())`)
	assert.Equal(t, "hello\n\t", ed.Text())
}

func TestBackspaceAndDelete(t *testing.T) {
	r, ed := newRunner(t, "abcdef")
	run(t, r, `
ed.set_cursor(1, 4)
assert(ed.backspace(2))
assert(ed.delete())
assert(not ed.delete(0))
`)
	assert.Equal(t, "aef", ed.Text())
}

func TestSelectionAndClipboard(t *testing.T) {
	var out bytes.Buffer
	r, ed := newRunner(t, "one two\nthree", WithOutput(&out))
	run(t, r, `
ed.select(1, 5, 2, 3)
print(ed.selection())
print(ed.copy())
print(ed.cut())
print(ed.selection())
print(ed.cursor())
`)
	assert.Equal(t, "two\nth\ntwo\nth\ntwo\nth\nnil\n1\t5\n", out.String())
	assert.Equal(t, "one ree", ed.Text())
}

func TestInsertIsOneStep(t *testing.T) {
	r, ed := newRunner(t, "")
	run(t, r, `ed.insert("a\nb\nc")`)
	assert.Equal(t, 3, ed.LineCount())

	run(t, r, `ed.undo()`)
	assert.Equal(t, "", ed.Text())
}

// ============================================================================
// Navigation
// ============================================================================

func TestMove(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, "  foo bar\nbaz", WithOutput(&out))
	run(t, r, `
ed.move("end")       print(ed.cursor())
ed.move("home")      print(ed.cursor())
ed.move("word_right") print(ed.cursor())
ed.move("down")      print(ed.cursor())
ed.move("doc_start") print(ed.cursor())
ed.move("doc_end", true)
print(ed.selection())
`)
	assert.Equal(t, "1\t10\n1\t3\n1\t6\n2\t4\n1\t1\n  foo bar\nbaz\n", out.String())
}

func TestLineAccess(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, "a\nb", WithOutput(&out))
	run(t, r, `print(ed.line_count(), ed.line(1), ed.line(2), ed.line(3), ed.line(0))`)
	assert.Equal(t, "2\ta\tb\tnil\tnil\n", out.String())
}

// ============================================================================
// Search
// ============================================================================

func TestFindAndReplace(t *testing.T) {
	var out bytes.Buffer
	r, ed := newRunner(t, "foo bar foo\nFOO", WithOutput(&out))
	run(t, r, `
print(ed.find("foo"))
print(ed.find("foo", true))
for _, m in ipairs(ed.matches()) do print(m.line, m.col, m.len) end
print(ed.next())
print(ed.replace("qux"))
print(ed.replace_all("baz"))
print(ed.find("nothing"), ed.next())
`)
	assert.Equal(t,
		"3\n2\n1\t1\t3\n1\t9\t3\n1\t9\n"+
			"true\n1\n0\tnil\n", out.String())
	assert.Equal(t, "baz bar qux\nFOO", ed.Text())
}

// ============================================================================
// Groups
// ============================================================================

func TestGroup(t *testing.T) {
	r, ed := newRunner(t, "abc")
	run(t, r, `
ed.group("wrap", function()
  ed.move("doc_start")
  ed.insert("(")
  ed.move("doc_end")
  ed.insert(")")
end)
`)
	assert.Equal(t, "(abc)", ed.Text())

	run(t, r, `ed.undo()`)
	assert.Equal(t, "abc", ed.Text())
}

func TestGroupRollback(t *testing.T) {
	r, ed := newRunner(t, "abc")
	err := r.Run(context.Background(), "test", `
ed.group("fail", function()
  ed.insert("xyz")
  error("stop")
end)
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop")
	assert.Equal(t, "abc", ed.Text())
}

func TestGroupIgnoresUndo(t *testing.T) {
	r, ed := newRunner(t, "abc")
	err := r.Run(context.Background(), "test", `
ed.group("fail", function()
  ed.insert("xyz")
  assert(not ed.undo())
  error("stop")
end)
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop")
	assert.Equal(t, "abc", ed.Text())
}

func TestGroupNested(t *testing.T) {
	r, _ := newRunner(t, "")
	err := r.Run(context.Background(), "test", `
ed.group("outer", function()
  ed.group("inner", function() end)
end)
`)
	assert.True(t, errors.Is(err, engine.ErrNestedTransaction))
}

func TestGroupReadOnly(t *testing.T) {
	ed := engine.New(engine.WithContent("x"), engine.WithReadOnly())
	r := New(ed)
	defer r.Close()

	err := r.Run(context.Background(), "test", `ed.group("g", function() end)`)
	assert.True(t, errors.Is(err, engine.ErrReadOnly))
}

// ============================================================================
// Save
// ============================================================================

func TestSave(t *testing.T) {
	var saved string
	r, ed := newRunner(t, "a\r\nb", WithSaveFunc(func(text string) error {
		saved = text
		return nil
	}))
	run(t, r, `
ed.type("z")
assert(ed.modified())
ed.save()
assert(not ed.modified())
`)
	assert.Equal(t, "za\r\nb", saved)
	assert.False(t, ed.IsModified())
}

func TestSaveError(t *testing.T) {
	errDisk := errors.New("disk full")
	r, ed := newRunner(t, "", WithSaveFunc(func(string) error { return errDisk }))

	err := r.Run(context.Background(), "test", `ed.type("z") ed.save()`)
	assert.True(t, errors.Is(err, errDisk))
	assert.True(t, ed.IsModified())
}
