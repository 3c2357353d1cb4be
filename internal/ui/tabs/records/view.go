package records

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
)

const maxCategories = 5

// View renders the records tab.
func (m *Model) View() string {
	if !m.state.Loaded() {
		return styles.DocStyle.Render(styles.HelpStyle.Render("Loading records..."))
	}

	sections := []string{m.renderHeader(), m.renderSummary()}
	if m.filtering {
		sections = append(sections, m.renderFilter())
	}
	if len(m.records) == 0 {
		sections = append(sections, "", styles.HelpStyle.Render("No records in this range."))
	} else {
		sections = append(sections, m.table.View())
	}

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	data := m.state.Data()
	title := styles.TitleStyle.MarginBottom(0).Render("Records")

	parts := []string{data.Period.Label}
	if !m.start.IsZero() || !m.end.IsZero() {
		parts = append(parts, fmt.Sprintf("filtered %s → %s", orOpen(formatDate(m.start)), orOpen(formatDate(m.end))))
	}
	parts = append(parts, fmt.Sprintf("sorted by %s %s", strings.ToLower(sortColumns[m.sortCol].title), m.sortDir))
	return title + styles.HelpStyle.Render("  "+strings.Join(parts, " · "))
}

func orOpen(s string) string {
	if s == "" {
		return "…"
	}
	return s
}

// renderSummary shows the totals of the visible records and the top models
// ranked by the current key.
func (m *Model) renderSummary() string {
	s := m.stats.Summary
	totals := fmt.Sprintf("%s records · %s points · avg %.1f · max %s · min %s",
		humanize.Comma(int64(s.Count)),
		humanize.Comma(int64(s.Total)),
		s.Average,
		humanize.Comma(int64(s.Max)),
		humanize.Comma(int64(s.Min)),
	)

	lines := []string{styles.ValueStyle.Render(totals)}
	if len(m.stats.Categories) > 0 {
		lines = append(lines, styles.SubTitleStyle.Render("Models by "+m.rankKey.String()))
		for _, c := range m.stats.Categories[:min(len(m.stats.Categories), maxCategories)] {
			lines = append(lines, fmt.Sprintf("  %-24s %8s pts %5d× avg %7.1f %5.1f%%",
				truncate(c.Name, 24), humanize.Comma(int64(c.Cost)), c.Count, c.AvgCost, c.Percentage))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m *Model) renderFilter() string {
	start, end := m.startInput.View(), m.endInput.View()
	if m.startInput.Focused() {
		start = styles.FocusedStyle.Render("> ") + start
		end = "  " + end
	} else {
		start = "  " + start
		end = styles.FocusedStyle.Render("> ") + end
	}

	lines := []string{start, end}
	if m.filterErr != "" {
		lines = append(lines, styles.ErrorTextStyle.Render(m.filterErr))
	}
	lines = append(lines, styles.HelpStyle.Render("tab: switch field · enter: apply · esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
