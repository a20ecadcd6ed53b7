package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/engine/search"
	"github.com/dshills/quill/internal/engine/wrap"
	"github.com/dshills/quill/internal/focus"
	"github.com/dshills/quill/internal/metrics"
)

// Re-export commonly used types for convenience.
type (
	// Position is a line/column location in characters.
	Position = buffer.Position

	// Range is a span between two positions.
	Range = buffer.Range

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// Selection is an anchor/active pair.
	Selection = cursor.Selection

	// Motion names a horizontal caret movement.
	Motion = cursor.Motion

	// Match is one search hit.
	Match = search.Match

	// VisualLine is one displayed row.
	VisualLine = wrap.VisualLine

	// OperationInfo describes an undo or redo entry.
	OperationInfo = history.OperationInfo
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR

	MotionLeft      = cursor.MotionLeft
	MotionRight     = cursor.MotionRight
	MotionWordLeft  = cursor.MotionWordLeft
	MotionWordRight = cursor.MotionWordRight
	MotionHome      = cursor.MotionHome
	MotionEnd       = cursor.MotionEnd
	MotionDocStart  = cursor.MotionDocStart
	MotionDocEnd    = cursor.MotionDocEnd
)

// Undo group labels.
const (
	groupTyping     = "typing"
	groupWhitespace = "whitespace"
)

// searchKey identifies the inputs of the last match scan.
type searchKey struct {
	revision      uint64
	query         string
	caseSensitive bool
}

// Editor is the intent facade over one document.
// It owns the buffer, cursor, history, search session and wrap policy, and
// turns user intents into commands.
//
// Every intent runs to completion under the editor mutex, so intents from
// several goroutines are serialized.
type Editor struct {
	mu sync.RWMutex

	// Core components
	buf    *buffer.Buffer
	cur    *cursor.Cursor
	hist   *history.History
	search *search.Session

	// Configuration
	id         uuid.UUID
	idStr      string
	language   string
	wrap       wrap.Config
	searchOpts search.Options
	tabText    string
	pageRows   int
	maxUndo    int
	readOnly   bool

	// Collaborators
	logger  *slog.Logger
	metrics *metrics.Metrics
	focus   *focus.Manager

	// Search scan cache
	lastScan  searchKey
	scanValid bool

	// txDepth is non-zero while Transaction runs; intents then leave the
	// open group alone.
	txDepth int

	// Initialization
	initContent string
	bufOpts     []buffer.Option
}

// New creates an editor with the given options.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:         uuid.New(),
		tabText:    DefaultTabText,
		pageRows:   DefaultPageRows,
		maxUndo:    DefaultMaxUndo,
		searchOpts: search.DefaultOptions(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.idStr = e.id.String()
	e.logger = e.logger.With(slog.String("editor", e.idStr))

	e.buf = buffer.NewBufferFromString(e.initContent, e.bufOpts...)
	e.initContent = ""
	e.cur = cursor.New()
	e.hist = e.newHistory()
	e.search = search.NewSession(e.searchOpts)

	if e.focus != nil {
		e.focus.Register(e.id, e.onFocusChange)
	}
	return e
}

// NewFromReader creates an editor with content read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Editor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read editor content: %w", err)
	}
	return New(append(opts, WithContent(string(data)))...), nil
}

func (e *Editor) newHistory() *history.History {
	h := history.NewHistory(e.maxUndo)
	h.OnEvict(func(evicted []history.OperationInfo) {
		e.logger.Debug("history evicted", slog.Int("entries", len(evicted)))
	})
	return h
}

// Close detaches the editor from its focus manager and metrics.
func (e *Editor) Close() {
	if e.focus != nil {
		e.focus.Unregister(e.id)
	}
	e.metrics.Forget(e.idStr)
}

// ============================================================================
// Read Operations
// ============================================================================

// ID returns the editor's unique identifier.
func (e *Editor) ID() uuid.UUID {
	return e.id
}

// Language returns the document's language identifier.
func (e *Editor) Language() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.language
}

// SetLanguage changes the document's language identifier.
func (e *Editor) SetLanguage(lang string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.language = lang
}

// Text returns the document with LF line endings.
func (e *Editor) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.String()
}

// TextWithEnding returns the document joined with its line ending.
func (e *Editor) TextWithEnding() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.StringWithEnding()
}

// Line returns the text of line idx without its newline.
func (e *Editor) Line(idx int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Line(idx)
}

// LineCount returns the number of lines. It is always at least 1.
func (e *Editor) LineCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineCount()
}

// LineEnding returns the ending used by TextWithEnding.
func (e *Editor) LineEnding() LineEnding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineEnding()
}

// Snapshot returns an immutable copy of the lines.
func (e *Editor) Snapshot() *buffer.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Snapshot()
}

// Cursor returns the caret position.
func (e *Editor) Cursor() Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.Position()
}

// Selection returns the raw anchor/active pair, if any.
func (e *Editor) Selection() (Selection, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.Selection()
}

// SelectionRange returns the normalized selection, if any.
func (e *Editor) SelectionRange() (Range, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.SelectionRange()
}

// SelectedText returns the selected text, or false when nothing is selected.
func (e *Editor) SelectedText() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.SelectedText(e.buf)
}

// IsReadOnly returns true if edit intents are disabled.
func (e *Editor) IsReadOnly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readOnly
}

// ============================================================================
// History State
// ============================================================================

// IsModified reports whether the document differs from the last save point.
func (e *Editor) IsModified() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.IsModified()
}

// CanUndo returns true if there is something to undo.
func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanUndo()
}

// CanRedo returns true if there is something to redo.
func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanRedo()
}

// UndoInfo describes the undo stack, most recent first.
func (e *Editor) UndoInfo() []OperationInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.UndoInfo()
}

// RedoInfo describes the redo stack, next redo first.
func (e *Editor) RedoInfo() []OperationInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.RedoInfo()
}

// ============================================================================
// Layout
// ============================================================================

// VisualLines computes the displayed rows under the current wrap policy.
func (e *Editor) VisualLines() []VisualLine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return wrap.Compute(e.buf, e.wrap)
}

// CaretRow returns the visual row holding the caret.
func (e *Editor) CaretRow() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return wrap.LogicalToVisual(wrap.Compute(e.buf, e.wrap), e.cur.Position())
}

// WrapConfig returns the wrap policy.
func (e *Editor) WrapConfig() wrap.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wrap
}

// SetWrap replaces the wrap policy.
func (e *Editor) SetWrap(cfg wrap.Config) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wrap = cfg
	return moved
}

// SetViewportWidth records a viewport resize in pixels.
func (e *Editor) SetViewportWidth(px int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.wrap.ViewportWidth == px {
		return noChange
	}
	e.wrap.ViewportWidth = px
	return moved
}

// ============================================================================
// Focus
// ============================================================================

// RequestFocus makes this editor the focused one. It returns false when no
// focus manager is configured.
func (e *Editor) RequestFocus() bool {
	if e.focus == nil {
		return false
	}
	return e.focus.Request(e.id)
}

// IsFocused reports whether this editor holds focus.
func (e *Editor) IsFocused() bool {
	if e.focus == nil {
		return false
	}
	return e.focus.IsFocused(e.id)
}

// Blur gives up focus. The open undo group is closed either way.
func (e *Editor) Blur() {
	if e.focus != nil && e.focus.Release(e.id) {
		return
	}
	e.onFocusChange(false)
}

// onFocusChange is called by the focus manager outside its lock.
func (e *Editor) onFocusChange(focused bool) {
	if focused {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeGroupLocked()
}

// ============================================================================
// Internal Helpers
// ============================================================================

func (e *Editor) observe(kind string) {
	e.metrics.ObserveIntent(kind)
}

// closeGroupLocked ends the open typing group unless a transaction owns it.
func (e *Editor) closeGroupLocked() {
	if e.txDepth == 0 {
		e.hist.EndGroup()
	}
}

// groupLocked makes label the open group, closing a group of another kind.
func (e *Editor) groupLocked(label string) {
	if e.txDepth > 0 || e.hist.GroupLabel() == label {
		return
	}
	e.hist.EndGroup()
	e.hist.BeginGroup(label)
}

// execLocked runs cmd through the history and refreshes derived state.
func (e *Editor) execLocked(cmd history.Command) Result {
	if err := e.hist.Execute(cmd, e.buf, e.cur); err != nil {
		e.logger.Error("command failed",
			slog.String("command", cmd.Description()),
			slog.Any("error", err))
		return noChange
	}
	e.afterEditLocked()
	return moved
}

// afterEditLocked re-derives state that depends on the buffer contents.
func (e *Editor) afterEditLocked() {
	e.refreshSearchLocked(true)
	e.metrics.SetUndoDepth(e.idStr, e.hist.UndoCount())
}

// refreshSearchLocked rescans when the buffer, query or case mode changed
// since the last scan. With reanchor set the current match becomes the one
// nearest the caret.
func (e *Editor) refreshSearchLocked(reanchor bool) {
	if !e.search.IsOpen() {
		return
	}
	key := searchKey{
		revision:      e.buf.Revision(),
		query:         e.search.Query(),
		caseSensitive: e.search.CaseSensitive(),
	}
	if e.scanValid && key == e.lastScan {
		if reanchor {
			e.search.SelectNearCursor(e.cur.Position())
		}
		return
	}

	start := time.Now()
	if err := e.search.Refresh(context.Background(), e.buf.Snapshot()); err != nil {
		e.scanValid = false
		e.logger.Warn("search failed", slog.String("query", key.query), slog.Any("error", err))
		return
	}
	took := time.Since(start)
	e.lastScan, e.scanValid = key, true
	e.search.SelectNearCursor(e.cur.Position())

	e.metrics.ObserveSearch(e.idStr, took, e.search.Count())
	e.logger.Debug("search refreshed",
		slog.String("query", key.query),
		slog.Int("matches", e.search.Count()),
		slog.Duration("took", took))
}

func (e *Editor) invalidateSearchLocked() {
	e.scanValid = false
}
