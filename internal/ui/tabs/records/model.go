// Package records provides the records tab: the points history of the
// selected billing period as a sortable table, with a date filter and a
// per-model breakdown.
package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/points-dashboard-tui/internal/app"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/stats"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
)

const dateLayout = "2006-01-02"

// sortColumn is a table column the records can be ordered by.
type sortColumn struct {
	title string
	key   string
}

var sortColumns = []sortColumn{
	{title: "Time", key: models.ColumnTimestamp},
	{title: "Cost", key: models.ColumnCost},
	{title: "Bot", key: models.ColumnModel},
}

// keyMap defines the key bindings specific to the records tab.
type keyMap struct {
	SortColumn  key.Binding
	SortDir     key.Binding
	RankKey     key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Apply       key.Binding
	Cancel      key.Binding
	NextField   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SortColumn: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		SortDir: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort direction"),
		),
		RankKey: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "rank models by"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter dates"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filter"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch field"),
		),
	}
}

// Model represents the records tab state.
type Model struct {
	state *app.State
	keys  keyMap
	table table.Model

	sortCol int
	sortDir models.SortDirection
	rankKey models.SortKey

	filtering  bool
	startInput textinput.Model
	endInput   textinput.Model
	start      time.Time
	end        time.Time
	filterErr  string

	records []models.PointsRecord
	stats   models.Statistics

	width  int
	height int
}

// New creates a new records model, newest records first.
func New(state *app.State) *Model {
	startInput := textinput.New()
	startInput.Placeholder = dateLayout
	startInput.CharLimit = len(dateLayout)
	startInput.Width = 12
	startInput.Prompt = "From: "

	endInput := textinput.New()
	endInput.Placeholder = dateLayout
	endInput.CharLimit = len(dateLayout)
	endInput.Width = 12
	endInput.Prompt = "To: "

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	m := &Model{
		state:      state,
		keys:       defaultKeyMap(),
		table:      t,
		sortDir:    models.Descending,
		rankKey:    models.SortByCost,
		startInput: startInput,
		endInput:   endInput,
	}
	m.rebuild()
	return m
}

func columns(width int) []table.Column {
	bot := min(max(width-60, 16), 40)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Time", Width: 8},
		{Title: "Bot", Width: bot},
		{Title: "Cost", Width: 10},
		{Title: "ID", Width: 20},
	}
}

// Init initializes the records tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the records tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.filtering {
		return m, m.updateFilter(msg)
	}

	switch msg := msg.(type) {
	case app.DataLoadedMsg:
		if msg.Error == nil {
			m.rebuild()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.SortColumn):
			m.sortCol = (m.sortCol + 1) % len(sortColumns)
			m.rebuild()
		case key.Matches(msg, m.keys.SortDir):
			m.sortDir = m.sortDir.Toggle()
			m.rebuild()
		case key.Matches(msg, m.keys.RankKey):
			m.rankKey = m.rankKey.Next()
			m.rebuild()
		case key.Matches(msg, m.keys.Filter):
			return m, m.openFilter()
		case key.Matches(msg, m.keys.ClearFilter):
			m.start, m.end = time.Time{}, time.Time{}
			m.filterErr = ""
			m.rebuild()
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) openFilter() tea.Cmd {
	m.filtering = true
	m.filterErr = ""
	m.startInput.SetValue(formatDate(m.start))
	m.endInput.SetValue(formatDate(m.end))
	m.endInput.Blur()
	return m.startInput.Focus()
}

func (m *Model) closeFilter() {
	m.filtering = false
	m.startInput.Blur()
	m.endInput.Blur()
}

func (m *Model) updateFilter(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.closeFilter()
			m.filterErr = ""
			return nil
		case key.Matches(msg, m.keys.NextField):
			if m.startInput.Focused() {
				m.startInput.Blur()
				return m.endInput.Focus()
			}
			m.endInput.Blur()
			return m.startInput.Focus()
		case key.Matches(msg, m.keys.Apply):
			start, end, err := parseRange(m.startInput.Value(), m.endInput.Value())
			if err != nil {
				m.filterErr = err.Error()
				return nil
			}
			m.start, m.end = start, end
			m.filterErr = ""
			m.closeFilter()
			m.rebuild()
			return nil
		}
	}

	var cmd tea.Cmd
	if m.startInput.Focused() {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}
	return cmd
}

// parseRange parses the filter inputs in local time. Empty inputs leave
// that side of the range open.
func parseRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if start, err = time.ParseInLocation(dateLayout, from, time.Local); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", from)
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if end, err = time.ParseInLocation(dateLayout, to, time.Local); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", to)
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, errors.New("start date is after end date")
	}
	return start, end, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// rebuild recomputes the filtered records, their statistics and the table
// rows from the latest loaded data.
func (m *Model) rebuild() {
	m.records = stats.FilterByDateRange(m.state.Data().Records, m.start, m.end)
	rows := stats.RecordRows(m.records)
	m.stats = stats.Calculate(rows, models.ColumnCost, models.ColumnModel, m.rankKey, 0)

	rows = stats.SortRows(rows, sortColumns[m.sortCol].key, m.sortDir)
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			cell(r[models.ColumnDate]),
			cell(r[models.ColumnTime]),
			cell(r[models.ColumnModel]),
			humanize.Comma(int64(stats.CostFloat(r[models.ColumnCost]))),
			cell(r[models.ColumnID]),
		})
	}
	m.table.SetRows(tableRows)
	m.table.GotoTop()
}

func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// CapturingInput reports whether the date filter owns the keyboard.
func (m *Model) CapturingInput() bool {
	return m.filtering
}

// Filtered returns the records currently shown.
func (m *Model) Filtered() []models.PointsRecord {
	return m.records
}

// Statistics returns the statistics of the records currently shown.
func (m *Model) Statistics() models.Statistics {
	return m.stats
}

// SelectedRow returns the highlighted table row.
func (m *Model) SelectedRow() table.Row {
	return m.table.SelectedRow()
}

// SetSize sets the available size for the records tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-lipgloss.Height(m.renderSummary())-6, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.filtering {
		return []key.Binding{m.keys.NextField, m.keys.Apply, m.keys.Cancel}
	}
	return []key.Binding{m.keys.SortColumn, m.keys.SortDir, m.keys.RankKey, m.keys.Filter, m.keys.ClearFilter}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.SortColumn, m.keys.SortDir, m.keys.RankKey},
		{m.keys.Filter, m.keys.ClearFilter},
		{m.keys.NextField, m.keys.Apply, m.keys.Cancel},
	}
}
