package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func TestFindColumn(t *testing.T) {
	cols := []string{"id", "Model_Name", "point_cost", "creation_time"}

	tests := []struct {
		needle string
		want   string
		found  bool
	}{
		{"cost", "point_cost", true},
		{"model", "Model_Name", true},
		{"TIME", "creation_time", true},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			got, ok := FindColumn(cols, tt.needle)
			if got != tt.want || ok != tt.found {
				t.Errorf("FindColumn(%q) = %q, %v; want %q, %v", tt.needle, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	rows := []models.Row{{"b": 1, "a": 2}, {"c": 3}}
	if diff := cmp.Diff([]string{"a", "b", "c"}, Columns(rows)); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRows(t *testing.T) {
	rows := []models.Row{
		{"id": "1", "cost": 30.0, "name": "beta"},
		{"id": "2", "cost": "-", "name": "alpha"},
		{"id": "3", "cost": 10.0},
		{"id": "4", "cost": 20.0, "name": "gamma"},
	}

	ids := func(rs []models.Row) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r["id"].(string)
		}
		return out
	}

	tests := []struct {
		name string
		key  string
		dir  models.SortDirection
		want []string
	}{
		{"NumericAsc", "cost", models.Ascending, []string{"3", "4", "1", "2"}},
		{"NumericDesc", "cost", models.Descending, []string{"1", "4", "3", "2"}},
		{"StringAsc", "name", models.Ascending, []string{"2", "1", "4", "3"}},
		{"StringDesc", "name", models.Descending, []string{"4", "1", "2", "3"}},
		{"NoKey", "", models.Ascending, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortRows(rows, tt.key, tt.dir))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterByDateRange(t *testing.T) {
	at := func(s string) int64 {
		ts, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
		if err != nil {
			t.Fatal(err)
		}
		return ts.UnixMicro()
	}

	records := []models.PointsRecord{
		{ID: "a", CreationTime: at("2025-03-01 08:00")},
		{ID: "b", CreationTime: at("2025-03-05 23:59")},
		{ID: "c", CreationTime: at("2025-03-06 00:00")},
		{ID: "d"},
	}

	day := func(s string) time.Time {
		ts, _ := time.ParseInLocation("2006-01-02", s, time.Local)
		return ts
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{"Open", time.Time{}, time.Time{}, []string{"a", "b", "c", "d"}},
		{"EndIncludesWholeDay", time.Time{}, day("2025-03-05"), []string{"a", "b"}},
		{"StartOnly", day("2025-03-02"), time.Time{}, []string{"b", "c"}},
		{"Both", day("2025-03-05"), day("2025-03-06"), []string{"b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByDateRange(records, tt.start, tt.end)
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("FilterByDateRange() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
