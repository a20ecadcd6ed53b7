package history

import (
	"sync"
	"time"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
)

// DefaultMaxSize is the undo depth used when none is configured.
const DefaultMaxSize = 1000

// undoEntry wraps a command with metadata.
// serial identifies the document state the entry leaves behind.
type undoEntry struct {
	command   Command
	timestamp time.Time
	serial    uint64
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	group *openGroup

	// Save tracking. Serial 0 is the state the history was created in.
	nextSerial  uint64
	baseSerial  uint64
	savedSerial uint64

	// Configuration
	maxSize int
	onEvict func(evicted []OperationInfo)
}

// NewHistory creates a new history manager.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History{
		maxSize:    maxSize,
		nextSerial: 1,
	}
}

// OnEvict registers a callback invoked, with the lock held, whenever the
// oldest entries are dropped to respect the maximum size.
func (h *History) OnEvict(fn func(evicted []OperationInfo)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvict = fn
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command, buf *buffer.Buffer, cur *cursor.Cursor) error {
	if err := cmd.Execute(buf, cur); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push records an already-executed command and clears the redo stack.
// While a group is open the command joins the group's composite instead of
// becoming a new entry.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil

	if h.group != nil {
		if h.group.entry == nil {
			h.group.composite.Add(cmd)
			h.group.composite.applied = true
			h.group.entry = h.pushLocked(h.group.composite)
			return
		}
		h.group.composite.Add(cmd)
		h.group.entry.serial = h.takeSerial()
		h.group.entry.timestamp = time.Now()
		return
	}

	h.pushLocked(cmd)
}

func (h *History) takeSerial() uint64 {
	s := h.nextSerial
	h.nextSerial++
	return s
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) *undoEntry {
	entry := &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
		serial:    h.takeSerial(),
	}
	h.undoStack = append(h.undoStack, entry)
	h.evictLocked()
	return entry
}

// evictLocked drops the oldest entries beyond maxSize.
func (h *History) evictLocked() {
	excess := len(h.undoStack) - h.maxSize
	if excess <= 0 {
		return
	}
	evicted := h.undoStack[:excess]
	h.baseSerial = evicted[excess-1].serial
	if h.onEvict != nil {
		infos := make([]OperationInfo, len(evicted))
		for i, e := range evicted {
			infos[i] = e.info()
		}
		h.onEvict(infos)
	}
	h.undoStack = append([]*undoEntry(nil), h.undoStack[excess:]...)
}

// currentSerial returns the serial of the document state the undo stack
// currently represents.
func (h *History) currentSerial() uint64 {
	if n := len(h.undoStack); n > 0 {
		return h.undoStack[n-1].serial
	}
	return h.baseSerial
}

// Undo undoes the last entry, closing any open group first.
// It returns false when there is nothing to undo.
// The lock is released during command execution to avoid holding it during
// potentially long-running buffer operations.
func (h *History) Undo(buf *buffer.Buffer, cur *cursor.Cursor) (bool, error) {
	h.mu.Lock()
	h.group = nil
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return false, nil
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	// Execute undo without holding the lock
	if err := entry.command.Undo(buf, cur); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return true, nil
}

// Redo re-executes the last undone entry, closing any open group first.
// It returns false when there is nothing to redo.
func (h *History) Redo(buf *buffer.Buffer, cur *cursor.Cursor) (bool, error) {
	h.mu.Lock()
	h.group = nil
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return false, nil
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	// Execute redo without holding the lock
	if err := entry.command.Execute(buf, cur); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.evictLocked()
	h.mu.Unlock()
	return true, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// MarkSaved records the current state as the saved one.
func (h *History) MarkSaved() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.savedSerial = h.currentSerial()
}

// IsModified returns true unless the history is exactly at the state
// recorded by the most recent MarkSaved.
func (h *History) IsModified() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentSerial() != h.savedSerial
}

// Clear removes all undo/redo history. The current state becomes the
// saved one.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.group = nil
	h.baseSerial = h.takeSerial()
	h.savedSerial = h.baseSerial
}

func (e *undoEntry) info() OperationInfo {
	return OperationInfo{
		Description: e.command.Description(),
		Timestamp:   e.timestamp,
	}
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = entry.info()
	}
	return result
}

// RedoInfo returns info about available redo operations.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = entry.info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxSize changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxSize(max int) {
	if max <= 0 {
		max = DefaultMaxSize
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxSize = max
	h.evictLocked()
}

// MaxSize returns the maximum number of undo entries.
func (h *History) MaxSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxSize
}
