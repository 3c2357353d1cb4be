package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/services/syncer"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabRecords is the ID for the records tab.
	TabRecords
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabRecords:
		return "Records"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that own the keyboard while a text
// input is focused.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the global keybindings.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "records")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application chrome styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Status      lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content   lipgloss.Style
	Toast     lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(subtle).Padding(0, 2),
		Status:      lipgloss.NewStyle().Foreground(subtle),

		NotificationSuccess: lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1),
		NotificationError:   lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1),
		NotificationWarning: lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1),
		NotificationInfo:    lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1),

		Content:   lipgloss.NewStyle().Padding(1, 2),
		Toast:     styles.ToastStyle,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(highlight),
		Subtle:    lipgloss.NewStyle().Foreground(subtle),
		Highlight: lipgloss.NewStyle().Foreground(highlight),
	}
}

// Model is the main application model.
type Model struct {
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	state    *State
	services Backend
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. With a nil backend the
// model only renders.
func NewModel(b Backend, g models.Granularity) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabDashboard,
		tabNames:  []string{TabDashboard.String(), TabRecords.String(), TabInfo.String()},
		tabs:      make([]Tab, 3),
		state:     NewState(g),
		services:  b,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// State returns the shared application state.
func (m *Model) State() *State {
	return m.state
}

// ActiveTab returns the currently active tab ID.
func (m *Model) ActiveTab() TabID {
	return m.activeTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds,
			subscribeToServicesCmd(m.services),
			loadDataCmd(m.services, m.state.NextSeq(), m.state.View()),
			loadUserPointsCmd(m.services),
			loadLayoutCmd(m.services),
		)
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		handled, cmd := m.handleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DataLoadedMsg, UserPointsLoadedMsg:
		cmds = append(cmds, m.handleAppMsg(msg)...)
		cmds = append(cmds, m.updateAllTabs(msg)...)
		return m, tea.Batch(cmds...)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		if m.services != nil {
			m.state.SetAutoFetch(m.services.AutoFetchStatus())
		}
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event)...)
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case DataLoadedMsg:
		cmds = append(cmds, m.handleDataLoaded(msg)...)
	case UserPointsLoadedMsg:
		cmds = append(cmds, m.handleUserPointsLoaded(msg)...)
	case ViewChangedMsg:
		seq := m.state.SetView(msg.View)
		if m.services != nil {
			cmds = append(cmds, loadDataCmd(m.services, seq, m.state.View()))
		}
	case RefreshMsg:
		cmds = append(cmds, m.refresh()...)
	case SyncRequestMsg:
		cmds = append(cmds, m.startSync(msg.Full)...)
	case SyncResultMsg:
		cmds = append(cmds, m.handleSyncResult(msg)...)
	case LayoutLoadedMsg:
		if msg.Error != nil {
			logger.Warn("failed to load layout", "error", msg.Error)
		} else if msg.Snapshot != nil {
			m.state.Windows().Apply(*msg.Snapshot)
		}
	case LayoutChangedMsg:
		if m.services != nil {
			cmds = append(cmds, saveLayoutCmd(m.services, m.state.Windows().Snapshot()))
		}
	case LayoutSavedMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Failed to save layout: %v", msg.Error)))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		text := msg.Error.Error()
		if msg.Context != "" {
			text = msg.Context + ": " + text
		}
		cmds = append(cmds, notifyErrorCmd(text))
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleDataLoaded(msg DataLoadedMsg) []tea.Cmd {
	if msg.Error != nil {
		if msg.Seq != m.state.Seq() {
			return nil
		}
		m.state.ClearLoadingNotification()
		return []tea.Cmd{notifyErrorCmd(msg.Error.Error())}
	}
	if m.state.ApplyData(msg.Seq, msg.Data) && !m.state.Syncing() {
		m.state.ClearLoadingNotification()
	}
	return nil
}

func (m *Model) handleUserPointsLoaded(msg UserPointsLoadedMsg) []tea.Cmd {
	m.state.SetUserPoints(msg.Info, msg.Error)
	if msg.Error == nil || errors.Is(msg.Error, services.ErrNoConfig) {
		return nil
	}
	return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to load balance: %v", msg.Error))}
}

func (m *Model) refresh() []tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.state.SetLoadingNotification("Refreshing...")
	return []tea.Cmd{
		loadDataCmd(m.services, m.state.NextSeq(), m.state.View()),
		loadUserPointsCmd(m.services),
	}
}

func (m *Model) startSync(full bool) []tea.Cmd {
	if m.services == nil {
		return nil
	}
	label := "Syncing points history..."
	if full {
		label = "Running full sync..."
	}
	m.state.SetSyncing(true)
	m.state.SetLoadingNotification(label)
	return []tea.Cmd{syncCmd(m.services, full)}
}

// handleSyncResult handles the return of a sync started from the UI.
// Failures of the run itself arrive as service error events.
func (m *Model) handleSyncResult(msg SyncResultMsg) []tea.Cmd {
	switch {
	case errors.Is(msg.Error, syncer.ErrSuperseded):
		return nil
	case errors.Is(msg.Error, services.ErrNoConfig):
		m.finishSync()
		return []tea.Cmd{notifyWarningCmd("No credentials saved: import a curl command first")}
	case msg.Error != nil:
		m.finishSync()
		if m.eventChannel == nil {
			return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Sync failed: %v", msg.Error))}
		}
		return nil
	}

	m.finishSync()
	cmds := []tea.Cmd{notifySuccessCmd(msg.Result.Message)}
	return append(cmds, m.refresh()...)
}

func (m *Model) finishSync() {
	m.state.SetSyncing(false)
	m.state.ClearLoadingNotification()
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) []tea.Cmd {
	switch e := event.(type) {
	case services.SyncStartedEvent:
		if e.Auto {
			m.state.SetSyncing(true)
			m.state.SetLoadingNotification("Auto-fetching...")
		}

	case services.SyncFinishedEvent:
		if !e.Auto || e.Result == nil {
			return nil
		}
		m.finishSync()
		cmds := m.refresh()
		if e.Result.NewRecords > 0 {
			cmds = append(cmds, notifyInfoCmd(e.Result.Message))
		}
		return cmds

	case services.CredentialsUpdatedEvent:
		cmds := []tea.Cmd{notifyInfoCmd("Credentials imported from curl file")}
		return append(cmds, m.refresh()...)

	case services.UserPointsEvent:
		m.state.SetUserPoints(e.Info, nil)

	case services.ErrorEvent:
		if e.Service == "sync" {
			m.finishSync()
		}
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))}
	}

	return nil
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

// updateAllTabs delivers data messages to every tab so hidden tabs stay current.
func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-4)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) {
	if int(id) < 0 || int(id) >= len(m.tabs) {
		return
	}
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

// handleKeyMsg handles global keys. It reports whether the key was
// consumed; unconsumed keys go to the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, tea.Quit
	}
	if m.capturingInput() {
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return true, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return true, nil

	case key.Matches(msg, m.keymap.Escape) && m.showHelp:
		m.showHelp = false
		return true, nil

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDashboard)
		return true, nil

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabRecords)
		return true, nil

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabInfo)
		return true, nil

	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		return true, nil

	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		return true, nil

	case key.Matches(msg, m.keymap.Refresh):
		return true, tea.Batch(m.refresh()...)
	}

	return m.showHelp, nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.styles.Content.Render(m.styles.Subtle.Render("Nothing to show here yet.")))
	}

	mainView := b.String()
	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}
	return mainView
}

func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := padLines(strings.Split(mainView, "\n"), m.height)
	overlayLines := strings.Split(overlay, "\n")

	x := max((m.width-lipgloss.Width(overlay))/2, 0)
	y := max((m.height-len(overlayLines))/2, 0)
	overlayWidth := lipgloss.Width(overlay)

	for i, overlayLine := range overlayLines {
		row := y + i
		if row >= len(mainLines) {
			break
		}
		line := mainLines[row]
		left := ansi.Truncate(line, x, "")
		right := ansi.TruncateLeft(line, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		mainLines[row] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

// padLines extends lines with empty ones up to n.
func padLines(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(m.tabNames))
	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := m.statusText()
	gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(status) - 4
	if status != "" && gap > 0 {
		tabBar += strings.Repeat(" ", gap) + m.styles.Status.Render(status)
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

// statusText summarises the selected period on the right of the tab bar.
func (m *Model) statusText() string {
	if !m.state.Loaded() {
		return ""
	}
	data := m.state.Data()
	view := m.state.View()
	parts := []string{data.Period.Label, view.Granularity.Label(), view.Mode.String()}
	if m.state.Syncing() {
		parts = append(parts, m.spinner.View()+" syncing")
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.Notifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationInfo:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		case NotificationLoading:
			style, prefix = m.styles.NotificationInfo, m.spinner.View()
		}

		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(stack, "\n")
	const startY = 2
	mainLines := padLines(strings.Split(mainView, "\n"), startY+len(toastLines))

	startX := max(m.width-lipgloss.Width(stack)-2, 0)

	for i, toastLine := range toastLines {
		row := startY + i
		if row >= len(mainLines) {
			break
		}
		line := mainLines[row]
		if w := lipgloss.Width(line); w < startX {
			mainLines[row] = line + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[row] = ansi.Truncate(line, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-3        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Reload data and balance",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, "", m.styles.Highlight.Render(m.tabNames[m.activeTab]+" Tab"))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
