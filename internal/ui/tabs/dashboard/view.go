package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/points-dashboard-tui/internal/window"
)

const (
	topRowHeight = 11
	maxBots      = 8
)

var widgetTitles = map[string]string{
	window.UserPoints: "Balance",
	window.TotalStats: "This period",
	window.BotStats:   "Top bots (all time)",
	window.Chart:      "Usage",
}

// View renders the dashboard.
func (m *Model) View() string {
	if !m.state.Loaded() {
		return m.renderLoading()
	}

	width := max(m.width-2, 40)
	header := m.renderHeader()
	dock := m.renderDock(width)
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(dock), 6)

	var body string
	if id, ok := m.state.Windows().Maximized(); ok {
		body = m.renderWidget(id, width, bodyHeight)
	} else {
		body = m.renderGrid(width, bodyHeight)
	}

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, dock))
}

func (m *Model) renderLoading() string {
	bar := components.RenderLoadingBar(min(max(m.width/2, 10), 60), m.frame)
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height, bar)
}

func (m *Model) renderHeader() string {
	data := m.state.Data()
	view := m.state.View()

	period := data.Period.Label
	if view.Offset == 0 {
		period += " (current)"
	} else {
		period += fmt.Sprintf(" (%d back)", -view.Offset)
	}

	title := styles.TitleStyle.MarginBottom(0).Render("Poe Points")
	sub := styles.HelpStyle.Render(fmt.Sprintf("  %s · %s buckets · %s", period, view.Granularity.Label(), view.Mode))
	return title + sub
}

// renderGrid lays out the visible widgets: the small ones side by side on
// top, the chart underneath.
func (m *Model) renderGrid(width, height int) string {
	windows := m.state.Windows()

	var top []string
	for _, id := range windows.Widgets() {
		if id != window.Chart && windows.Visible(id) {
			top = append(top, id)
		}
	}

	var rows []string
	topHeight := 0
	if len(top) > 0 {
		topHeight = topRowHeight
		if !windows.Visible(window.Chart) {
			topHeight = height
		}
		cell := width / len(top)
		cells := make([]string, 0, len(top))
		for i, id := range top {
			w := cell
			if i == len(top)-1 {
				w = width - cell*(len(top)-1)
			}
			cells = append(cells, m.renderWidget(id, w, topHeight))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	if windows.Visible(window.Chart) {
		rows = append(rows, m.renderWidget(window.Chart, width, max(height-topHeight, 8)))
	}

	if len(rows) == 0 {
		return styles.CenterBoth(styles.HelpStyle.Render("All widgets minimized. Press o to restore one."), width, height)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderWidget frames a widget's content; width and height are outer sizes.
func (m *Model) renderWidget(id string, width, height int) string {
	style := styles.WidgetStyle
	if id == m.Focused() {
		style = styles.FocusedWidgetStyle
	}

	inner := max(width-4, 10)
	title := styles.WidgetTitleStyle.Render(widgetTitles[id])

	var content string
	switch id {
	case window.UserPoints:
		content = m.renderBalance(inner)
	case window.TotalStats:
		content = m.renderTotals(inner)
	case window.BotStats:
		content = m.renderBotStats(inner)
	case window.Chart:
		content = m.renderChart(inner, max(height-5, 3))
	}

	return style.
		Width(width - 2).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *Model) renderBalance(width int) string {
	info, err := m.state.UserPoints()
	if info == nil {
		switch {
		case errors.Is(err, services.ErrNoConfig):
			return styles.WarningTextStyle.Render("No credentials saved.") + "\n" +
				styles.HelpStyle.Render("Import a curl command with `pdt import-curl`.")
		case err != nil:
			return styles.ErrorTextStyle.Render(err.Error())
		default:
			return components.RenderLoadingBar(width, m.frame)
		}
	}

	pct := components.RemainingPercent(*info)
	if m.balance != nil {
		pct = m.balance.CurrentPercent
	}

	lines := []string{
		styles.SubTitleStyle.Render(info.SubscriptionProduct),
		m.balanceBar.ViewPercent(*info, pct, width),
		"",
		keyValue("Used this cycle", fmt.Sprintf("%s (%.1f%%)", humanize.Comma(info.UsedPoints), info.UsagePercentage)),
		keyValue("Average per day", humanize.Comma(info.AvgPerDay)),
		keyValue("Days remaining", fmt.Sprintf("%d", info.RemainingDays)),
	}
	if info.NextGrantTime > 0 {
		lines = append(lines, keyValue("Next grant", humanize.Time(time.UnixMicro(info.NextGrantTime))))
	}
	if err != nil {
		lines = append(lines, styles.ErrorTextStyle.Render("refresh failed: "+err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTotals(width int) string {
	data := m.state.Data()
	s := data.Statistics.Summary

	lines := []string{
		keyValue("Total points", humanize.Comma(int64(s.Total))),
		keyValue("Records", humanize.Comma(int64(s.Count))),
		keyValue("Average", fmt.Sprintf("%.1f", s.Average)),
		keyValue("Largest", humanize.Comma(int64(s.Max))),
		keyValue("Smallest", humanize.Comma(int64(s.Min))),
		"",
		keyValue("Cycle", components.RenderCycleBar(cycleElapsed(data.Period, time.Now()), max(width-24, 5))),
	}
	if spark := components.RenderSparkline(aggregate.Project(data.Series, models.ViewDiscrete), max(width, 1)); spark != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.Cost).Render(spark))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBotStats(width int) string {
	bots := m.state.Data().BotStats
	if len(bots) == 0 {
		return styles.HelpStyle.Render("No records yet")
	}
	bots = bots[:min(len(bots), maxBots)]

	values := make([]float64, len(bots))
	labels := make([]string, len(bots))
	for i, b := range bots {
		values[i] = float64(b.TotalCost)
		labels[i] = truncate(b.BotName, 16)
	}
	return components.RenderBarChart(values, labels, width)
}

func (m *Model) renderChart(width, height int) string {
	// Leave room for the y-axis labels asciigraph draws on the left.
	return components.RenderUsageChart(m.state.Data().Series, m.state.View().Mode, max(width-10, 20), height)
}

func (m *Model) renderDock(width int) string {
	dock := m.state.Windows().Minimized()
	if len(dock) == 0 {
		return styles.HelpStyle.Render("j/k focus · m minimize · z maximize · x close · g granularity · v mode · [ ] period · f sync")
	}

	items := make([]string, 0, len(dock))
	for _, id := range dock {
		label := widgetTitles[id]
		if id == m.Focused() {
			label = "▸ " + label
		}
		items = append(items, styles.DockItemStyle.Render(label))
	}
	return styles.DockStyle.Width(width).Render("Minimized: " + lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

// cycleElapsed is the elapsed share of a billing period at now.
func cycleElapsed(p models.Period, now time.Time) float64 {
	if p.End <= p.Start {
		return 0
	}
	f := float64(now.UnixMicro()-p.Start) / float64(p.End-p.Start)
	return min(max(f, 0), 1)
}

func keyValue(k, v string) string {
	return styles.LabelStyle.Width(16).Render(k) + styles.ValueStyle.Render(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
