// Package focus tracks which editor instance owns keyboard focus.
//
// A Manager is owned by the hosting layer and shared by the editors it
// hosts; there is no process-wide focus state.
package focus

import (
	"sync"

	"github.com/google/uuid"
)

// Listener is told when its editor gains or loses focus.
type Listener func(focused bool)

// Manager records the focused editor and notifies editors on change.
// All methods are thread-safe. Listeners run after the lock is released.
type Manager struct {
	mu        sync.Mutex
	focused   uuid.UUID
	listeners map[uuid.UUID]Listener
}

// NewManager creates a manager with nothing focused.
func NewManager() *Manager {
	return &Manager{listeners: make(map[uuid.UUID]Listener)}
}

// Register attaches a listener for id, replacing any previous one.
func (m *Manager) Register(id uuid.UUID, fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[id] = fn
}

// Unregister detaches id and releases focus if it held it.
func (m *Manager) Unregister(id uuid.UUID) {
	m.mu.Lock()
	delete(m.listeners, id)
	if m.focused == id {
		m.focused = uuid.Nil
	}
	m.mu.Unlock()
}

// Request gives focus to id. The previous holder, if any, is notified of the
// loss before id is notified of the gain. It returns false if id already had
// focus.
func (m *Manager) Request(id uuid.UUID) bool {
	m.mu.Lock()
	prev := m.focused
	if prev == id {
		m.mu.Unlock()
		return false
	}
	m.focused = id
	lost := m.listeners[prev]
	gained := m.listeners[id]
	m.mu.Unlock()

	if prev != uuid.Nil && lost != nil {
		lost(false)
	}
	if gained != nil {
		gained(true)
	}
	return true
}

// Release clears focus if id holds it. It returns false otherwise.
func (m *Manager) Release(id uuid.UUID) bool {
	m.mu.Lock()
	if m.focused != id || id == uuid.Nil {
		m.mu.Unlock()
		return false
	}
	m.focused = uuid.Nil
	fn := m.listeners[id]
	m.mu.Unlock()

	if fn != nil {
		fn(false)
	}
	return true
}

// IsFocused reports whether id holds focus.
func (m *Manager) IsFocused(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return id != uuid.Nil && m.focused == id
}

// Focused returns the focused id, or false when nothing has focus.
func (m *Manager) Focused() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused, m.focused != uuid.Nil
}
