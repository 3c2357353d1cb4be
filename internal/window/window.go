// Package window tracks the display state of dashboard widgets.
package window

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownWidget is returned for widget ids the manager does not track.
var ErrUnknownWidget = errors.New("unknown widget")

// State is the display state of a single widget.
type State string

const (
	// Normal widgets take their usual place in the grid.
	Normal State = "normal"
	// Minimized widgets are hidden and listed in the dock.
	Minimized State = "minimized"
	// Maximized widgets fill the whole dashboard.
	Maximized State = "maximized"
)

// Widget ids shown on the dashboard.
const (
	UserPoints = "user-points"
	BotStats   = "bot-stats"
	TotalStats = "total-stats"
	Chart      = "chart"
)

// DefaultWidgets lists the dashboard widgets in grid order.
var DefaultWidgets = []string{UserPoints, BotStats, TotalStats, Chart}

// Snapshot is a serialisable copy of every widget state plus dock order.
type Snapshot struct {
	States map[string]State `json:"states"`
	Dock   []string         `json:"dock"`
}

// Manager holds the state of a fixed set of widgets. At most one widget is
// maximized at a time.
type Manager struct {
	mu        sync.RWMutex
	order     []string
	states    map[string]State
	dock      []string
	maximized string
}

// NewManager creates a manager with every widget in the normal state.
// With no ids, DefaultWidgets is used.
func NewManager(ids ...string) *Manager {
	if len(ids) == 0 {
		ids = DefaultWidgets
	}
	m := &Manager{
		order:  append([]string(nil), ids...),
		states: make(map[string]State, len(ids)),
	}
	for _, id := range ids {
		m.states[id] = Normal
	}
	return m
}

// Widgets returns the tracked widget ids in grid order.
func (m *Manager) Widgets() []string {
	return append([]string(nil), m.order...)
}

// State returns the state of a widget.
func (m *Manager) State(id string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return s, nil
}

// Visible reports whether a widget is drawn. When a widget is maximized
// only that widget is visible.
func (m *Manager) Visible(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	if !ok || s == Minimized {
		return false
	}
	return m.maximized == "" || m.maximized == id
}

// Maximized returns the maximized widget, if any.
func (m *Manager) Maximized() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maximized, m.maximized != ""
}

// Minimized returns minimized widgets in the order they were minimized.
func (m *Manager) Minimized() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.dock...)
}

// Minimize hides a widget and adds it to the dock.
func (m *Manager) Minimize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return err
	}
	if m.states[id] == Minimized {
		return nil
	}
	if m.maximized == id {
		m.maximized = ""
	}
	m.states[id] = Minimized
	m.dock = append(m.dock, id)
	return nil
}

// Close behaves like Minimize.
func (m *Manager) Close(id string) error {
	return m.Minimize(id)
}

// Restore returns a widget to the normal state.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return err
	}
	m.setNormal(id)
	return nil
}

// ToggleMaximize maximizes a widget, or restores it if already maximized.
// Any other maximized widget returns to normal.
func (m *Manager) ToggleMaximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return err
	}

	if m.states[id] == Maximized {
		m.setNormal(id)
		return nil
	}

	if m.maximized != "" {
		m.setNormal(m.maximized)
	}
	m.removeFromDock(id)
	m.states[id] = Maximized
	m.maximized = id
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	states := make(map[string]State, len(m.states))
	for id, s := range m.states {
		states[id] = s
	}
	return Snapshot{States: states, Dock: append([]string{}, m.dock...)}
}

// Apply replaces the current state with a snapshot. Unknown ids and
// invalid states are ignored, and only the first maximized widget is kept.
func (m *Manager) Apply(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		m.states[id] = Normal
	}
	m.dock = nil
	m.maximized = ""

	for _, id := range s.Dock {
		if _, ok := m.states[id]; ok && s.States[id] == Minimized && m.states[id] != Minimized {
			m.states[id] = Minimized
			m.dock = append(m.dock, id)
		}
	}
	for _, id := range m.order {
		switch s.States[id] {
		case Minimized:
			if m.states[id] != Minimized {
				m.states[id] = Minimized
				m.dock = append(m.dock, id)
			}
		case Maximized:
			if m.maximized == "" {
				m.states[id] = Maximized
				m.maximized = id
			}
		}
	}
}

func (m *Manager) check(id string) error {
	if _, ok := m.states[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return nil
}

func (m *Manager) setNormal(id string) {
	if m.maximized == id {
		m.maximized = ""
	}
	m.removeFromDock(id)
	m.states[id] = Normal
}

func (m *Manager) removeFromDock(id string) {
	for i, d := range m.dock {
		if d == id {
			m.dock = append(m.dock[:i], m.dock[i+1:]...)
			return
		}
	}
}
