// Package dashboard provides the widget dashboard tab: balance, usage
// summary, per-bot totals and the usage chart.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/points-dashboard-tui/internal/app"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/webchart"
)

const balanceAnimation = 1500 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	FocusNext   key.Binding
	FocusPrev   key.Binding
	Minimize    key.Binding
	Maximize    key.Binding
	Restore     key.Binding
	Close       key.Binding
	Granularity key.Binding
	ViewMode    key.Binding
	OlderPeriod key.Binding
	NewerPeriod key.Binding
	Sync        key.Binding
	FullSync    key.Binding
	Export      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		FocusNext:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next widget")),
		FocusPrev:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev widget")),
		Minimize:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimize")),
		Maximize:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "maximize")),
		Restore:     key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "restore")),
		Close:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
		Granularity: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "granularity")),
		ViewMode:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "discrete/cumulative")),
		OlderPeriod: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "older period")),
		NewerPeriod: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "newer period")),
		Sync:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "sync")),
		FullSync:    key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "full sync")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export chart")),
	}
}

// AnimationState eases a displayed percentage towards its target.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state      *app.State
	keys       keyMap
	spinner    components.LoadingSpinner
	balanceBar components.BalanceBar
	balance    *AnimationState
	exportPath string
	focus      int
	frame      int
	ticking    bool
	width      int
	height     int
}

// New creates a new dashboard model. exportPath is where the HTML chart
// is written on request; empty disables the export key.
func New(state *app.State, exportPath string) *Model {
	return &Model{
		state:      state,
		keys:       defaultKeyMap(),
		spinner:    components.NewSpinner("Loading points history..."),
		balanceBar: components.NewBalanceBar(),
		exportPath: exportPath,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.ticking = true
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		m.frame++
		if m.stepBalance(time.Time(msg)) || !m.state.Loaded() {
			cmds = append(cmds, animationTickCmd())
		} else {
			m.ticking = false
		}

	case app.UserPointsLoadedMsg, app.DataLoadedMsg:
		if m.syncBalanceTarget(time.Now()) && !m.ticking {
			m.ticking = true
			cmds = append(cmds, animationTickCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	windows := m.state.Windows()
	ids := windows.Widgets()
	focused := ids[m.focus%len(ids)]
	view := m.state.View()

	var err error
	switch {
	case key.Matches(msg, m.keys.FocusNext):
		m.focus = (m.focus + 1) % len(ids)
		return nil
	case key.Matches(msg, m.keys.FocusPrev):
		m.focus = (m.focus - 1 + len(ids)) % len(ids)
		return nil

	case key.Matches(msg, m.keys.Minimize):
		err = windows.Minimize(focused)
	case key.Matches(msg, m.keys.Maximize):
		err = windows.ToggleMaximize(focused)
	case key.Matches(msg, m.keys.Close):
		err = windows.Close(focused)
	case key.Matches(msg, m.keys.Restore):
		err = windows.Restore(m.restoreTarget(focused))

	case key.Matches(msg, m.keys.Granularity):
		view.Granularity = view.Granularity.Next()
		return app.ChangeView(view)
	case key.Matches(msg, m.keys.ViewMode):
		view.Mode = view.Mode.Toggle()
		return app.ChangeView(view)
	case key.Matches(msg, m.keys.OlderPeriod):
		view.Offset--
		return app.ChangeView(view)
	case key.Matches(msg, m.keys.NewerPeriod):
		if view.Offset >= 0 {
			return nil
		}
		view.Offset++
		return app.ChangeView(view)

	case key.Matches(msg, m.keys.Sync):
		return app.RequestSync(false)
	case key.Matches(msg, m.keys.FullSync):
		return app.RequestSync(true)
	case key.Matches(msg, m.keys.Export):
		return m.exportChart()

	default:
		return nil
	}

	if err != nil {
		logger.Error("window action failed", "widget", focused, "error", err)
		return nil
	}
	return app.LayoutChanged()
}

// restoreTarget picks the focused widget when it is minimized, otherwise
// the most recently minimized one.
func (m *Model) restoreTarget(focused string) string {
	dock := m.state.Windows().Minimized()
	for _, id := range dock {
		if id == focused {
			return id
		}
	}
	if len(dock) > 0 {
		return dock[len(dock)-1]
	}
	return focused
}

func (m *Model) exportChart() tea.Cmd {
	if m.exportPath == "" {
		return nil
	}
	data := m.state.Data()
	view := m.state.View()
	path := m.exportPath

	return func() tea.Msg {
		err := webchart.WriteFile(path, data.Series, webchart.Options{
			Subtitle: fmt.Sprintf("%s · %s", data.Period.Label, view.Granularity.Label()),
			Mode:     view.Mode,
		})
		if err != nil {
			return app.ErrorMsg{Error: err, Context: "Chart export failed"}
		}
		return app.AddNotificationMsg{
			Type:     app.NotificationSuccess,
			Message:  "Chart written to " + path,
			Duration: app.DefaultNotificationDuration,
		}
	}
}

// syncBalanceTarget points the balance animation at the latest balance and
// reports whether it needs to move.
func (m *Model) syncBalanceTarget(now time.Time) bool {
	info, _ := m.state.UserPoints()
	if info == nil {
		return false
	}
	target := components.RemainingPercent(*info)

	if m.balance == nil {
		m.balance = &AnimationState{StartTime: now}
	}
	if target != m.balance.TargetPercent {
		m.balance.StartPercent = m.balance.CurrentPercent
		m.balance.TargetPercent = target
		m.balance.StartTime = now
	}
	return m.balance.CurrentPercent != m.balance.TargetPercent
}

// stepBalance advances the animation and reports whether it is still moving.
func (m *Model) stepBalance(now time.Time) bool {
	m.syncBalanceTarget(now)
	s := m.balance
	if s == nil || s.CurrentPercent == s.TargetPercent {
		return false
	}

	elapsed := now.Sub(s.StartTime)
	if elapsed >= balanceAnimation {
		s.CurrentPercent = s.TargetPercent
		return false
	}
	progress := elapsed.Seconds() / balanceAnimation.Seconds()
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	s.CurrentPercent = s.StartPercent + (s.TargetPercent-s.StartPercent)*ease
	return true
}

// Focused returns the id of the focused widget.
func (m *Model) Focused() string {
	ids := m.state.Windows().Widgets()
	return ids[m.focus%len(ids)]
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.FocusNext, m.keys.Minimize, m.keys.Maximize, m.keys.Restore, m.keys.Close,
		m.keys.Granularity, m.keys.ViewMode, m.keys.OlderPeriod, m.keys.NewerPeriod,
		m.keys.Sync, m.keys.FullSync, m.keys.Export,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.FocusNext, m.keys.FocusPrev},
		{m.keys.Minimize, m.keys.Maximize, m.keys.Restore, m.keys.Close},
		{m.keys.Granularity, m.keys.ViewMode, m.keys.OlderPeriod, m.keys.NewerPeriod},
		{m.keys.Sync, m.keys.FullSync, m.keys.Export},
	}
}
