package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func fourHourSeries(t *testing.T) models.Series {
	t.Helper()
	records := []models.UsageRecord{
		{Timestamp: "2025-03-01T22:00:00Z", Cost: 120, Model: "GPT-4o"},
		{Timestamp: "2025-03-02T01:00:00Z", Cost: 30, Model: "Claude"},
	}
	s := aggregate.AggregateIn(records, models.GranularityHour, time.UTC)
	if len(s.Points) != 4 {
		t.Fatalf("got %d points, want 4", len(s.Points))
	}
	return s
}

func TestSpinner(t *testing.T) {
	s := NewSpinner("Syncing")
	if s.Label() != "Syncing" {
		t.Errorf("Label() = %q, want Syncing", s.Label())
	}

	s.SetLabel("Loading")
	if got := s.ViewWithLabel(); !strings.Contains(got, "Loading") {
		t.Errorf("ViewWithLabel() = %q, missing label", got)
	}
	if s.View() == "" {
		t.Error("View() returned empty")
	}
	if s.Init() == nil {
		t.Error("Init() should start ticking")
	}
	if view := RenderSpinnerCentered(s, 30, 5); !strings.Contains(view, "Loading") {
		t.Errorf("RenderSpinnerCentered() = %q, missing label", view)
	}
	view := ansi.Strip(RenderSpinnerCentered(s, 30, 7, "progress"))
	label, extra := strings.Index(view, "Loading"), strings.Index(view, "progress")
	if label < 0 || extra < label {
		t.Errorf("RenderSpinnerCentered() = %q, want extra line below the label", view)
	}
}

func TestSeparatorLabels(t *testing.T) {
	series := fourHourSeries(t)

	got := SeparatorLabels(series, 10)
	want := "      │3.2"
	if got != want {
		t.Errorf("SeparatorLabels() = %q, want %q", got, want)
	}
}

func TestSeparatorLabels_ShiftsAtRightEdge(t *testing.T) {
	series := models.Series{
		Points: []models.AggregatedPoint{
			{BucketTime: 1}, {BucketTime: 2}, {BucketTime: 3}, {BucketTime: 4},
		},
		Separators: []models.DateSeparator{{BucketTime: 4, Label: "3.2"}},
	}

	got := SeparatorLabels(series, 10)
	if want := "      │3.2"; got != want {
		t.Errorf("SeparatorLabels() = %q, want %q", got, want)
	}
}

func TestSeparatorLabels_SkipsOverlap(t *testing.T) {
	series := models.Series{
		Points: []models.AggregatedPoint{
			{BucketTime: 1}, {BucketTime: 2}, {BucketTime: 3},
		},
		Separators: []models.DateSeparator{
			{BucketTime: 1, Label: "12.31"},
			{BucketTime: 2, Label: "1.1"},
		},
	}

	got := SeparatorLabels(series, 12)
	if strings.Contains(got, "1.1") {
		t.Errorf("SeparatorLabels() = %q, overlapping label should be skipped", got)
	}
	if !strings.HasPrefix(got, "│12.31") {
		t.Errorf("SeparatorLabels() = %q, want first label at column 0", got)
	}
}

func TestRenderUsageChart(t *testing.T) {
	series := fourHourSeries(t)

	tests := []struct {
		name    string
		mode    models.ViewMode
		caption string
	}{
		{name: "Discrete", mode: models.ViewDiscrete, caption: "■ discrete points per hour"},
		{name: "Cumulative", mode: models.ViewCumulative, caption: "■ cumulative points per hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(RenderUsageChart(series, tt.mode, 40, 6))
			if !strings.Contains(out, tt.caption) {
				t.Errorf("missing caption %q in:\n%s", tt.caption, out)
			}
			if !strings.Contains(out, "│3.2") {
				t.Errorf("missing day marker in:\n%s", out)
			}
		})
	}
}

func TestRenderUsageChart_Empty(t *testing.T) {
	out := ansi.Strip(RenderUsageChart(models.Series{}, models.ViewDiscrete, 40, 6))
	if out != "No usage in this period" {
		t.Errorf("RenderUsageChart() = %q", out)
	}
}

func TestRenderBarChart(t *testing.T) {
	out := ansi.Strip(RenderBarChart([]float64{10, 20}, []string{"A", "B"}, 20))

	want := []string{
		"A │███ 10",
		"B │███████ 20",
	}
	if diff := cmp.Diff(want, strings.Split(out, "\n")); diff != "" {
		t.Errorf("RenderBarChart() mismatch (-want +got):\n%s", diff)
	}
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("RenderBarChart(nil) should be empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 7, 7}, 10); got != "▁██" {
		t.Errorf("RenderSparkline() = %q", got)
	}
	if got := RenderSparkline([]float64{1, 2, 3, 4}, 2); len([]rune(got)) != 2 {
		t.Errorf("RenderSparkline() = %q, want 2 runes", got)
	}
}

func TestRenderLegend(t *testing.T) {
	out := ansi.Strip(RenderLegend([]LegendItem{
		{Label: "Points", Color: lipgloss.Color("141")},
		{Label: "Records", Color: lipgloss.Color("80")},
	}))
	if out != "■ Points  ■ Records" {
		t.Errorf("RenderLegend() = %q", out)
	}
}
