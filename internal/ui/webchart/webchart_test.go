package webchart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func sampleSeries() models.Series {
	records := []models.UsageRecord{
		{Timestamp: "2025-03-01T22:00:00Z", Cost: 120, Model: "Claude"},
		{Timestamp: "2025-03-02T01:00:00Z", Cost: 30, Model: "GPT-4o"},
	}
	return aggregate.AggregateIn(records, models.GranularityHour, time.UTC)
}

func TestAxisLabels(t *testing.T) {
	got := AxisLabels(sampleSeries())
	want := []string{"3.1 22:00", "3.1 23:00", "3.2 00:00", "3.2 01:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AxisLabels mismatch (-want +got):\n%s", diff)
	}
}

func TestSeparatorItems(t *testing.T) {
	items := separatorItems(sampleSeries())
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Name != "3.2" || items[0].XAxis != "3.2 00:00" {
		t.Errorf("items[0] = %+v", items[0])
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		mode     models.ViewMode
		contains []string
	}{
		{"Discrete", models.ViewDiscrete, []string{"Points", "Records", "3.1 22:00"}},
		{"Cumulative", models.ViewCumulative, []string{"Cumulative points", "3.2 01:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Render(&buf, sampleSeries(), Options{Title: "Usage", Mode: tt.mode})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			html := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(html, s) {
					t.Errorf("output does not contain %q", s)
				}
			}
		})
	}
}

func TestRender_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, models.Series{}, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Poe points usage") {
		t.Error("default title missing")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	if err := WriteFile(path, sampleSeries(), Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<html")) {
		t.Error("file is not an HTML page")
	}
}
