// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
)

const separatorMark = '│'

// RenderUsageChart plots a series in the given view mode with the day
// markers on a row below the plot.
func RenderUsageChart(series models.Series, mode models.ViewMode, width, height int) string {
	if series.IsEmpty() {
		return styles.HelpStyle.Render("No usage in this period")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	values := aggregate.Project(series, mode)
	if len(values) == 1 {
		values = append(values, values[0])
	}

	color := seriesColor(mode)
	graph := asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(asciigraph.AnsiColor(color)),
	)

	lines := []string{graph}
	if len(series.Separators) > 0 {
		row := SeparatorLabels(series, width)
		lines = append(lines, strings.Repeat(" ", plotMargin(graph, width))+styles.SeparatorLabelStyle.Render(row))
	}
	caption := fmt.Sprintf("%s points per %s", mode, strings.ToLower(series.Granularity.Label()))
	lines = append(lines, RenderLegend([]LegendItem{
		{Label: caption, Color: lipgloss.Color(strconv.Itoa(color))},
	}))
	return strings.Join(lines, "\n")
}

// seriesColor is the 256-colour palette index of the plotted line, shared
// by the asciigraph series and its legend swatch.
func seriesColor(mode models.ViewMode) int {
	if mode == models.ViewCumulative {
		return 2
	}
	return 12
}

// plotMargin returns the width of the y-axis gutter to the left of the data.
func plotMargin(graph string, width int) int {
	widest := 0
	for _, line := range strings.Split(graph, "\n") {
		widest = max(widest, ansi.StringWidth(line))
	}
	return max(0, widest-width)
}

// SeparatorLabels lays out the date separators of a series on a row of
// the given width, each label starting at its bucket's column.
func SeparatorLabels(series models.Series, width int) string {
	row := []rune(strings.Repeat(" ", width))
	n := len(series.Points)
	if n == 0 || width <= 0 {
		return string(row)
	}

	index := make(map[int64]int, n)
	for i, p := range series.Points {
		index[p.BucketTime] = i
	}

	next := 0
	for _, sep := range series.Separators {
		i, ok := index[sep.BucketTime]
		if !ok {
			continue
		}
		col := 0
		if n > 1 {
			col = i * (width - 1) / (n - 1)
		}
		label := append([]rune{separatorMark}, []rune(sep.Label)...)
		if col+len(label) > width {
			col = width - len(label)
		}
		if col < next || col < 0 {
			continue
		}
		copy(row[col:], label)
		next = col + len(label) + 1
	}
	return string(row)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, ansi.StringWidth(l))
	}

	barWidth := max(width-maxLabelLen-12, 5)
	barStyle := lipgloss.NewStyle().Foreground(styles.Cost)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		padded := label + strings.Repeat(" ", maxLabelLen-ansi.StringWidth(label))
		lines = append(lines, fmt.Sprintf("%s │%s %.0f", padded, barStyle.Render(strings.Repeat("█", barLen)), v))
	}
	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Keep the most recent values when there are more than fit.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for _, v := range values {
		level := int((v / maxVal) * float64(len(sparkChars)-1))
		level = min(max(level, 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[level])
	}
	return b.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		box := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, box+" "+item.Label)
	}
	return strings.Join(parts, "  ")
}
