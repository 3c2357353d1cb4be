package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// Column needles used to discover the cost, category and time columns.
const (
	CostNeedle     = "cost"
	CategoryNeedle = "model"
	TimeNeedle     = "time"
)

// FindColumn returns the first column whose lower-cased name contains needle.
func FindColumn(columns []string, needle string) (string, bool) {
	needle = strings.ToLower(needle)
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), needle) {
			return c, true
		}
	}
	return "", false
}

// Columns returns the union of row keys, sorted for stable discovery.
func Columns(rows []models.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// SortRows returns a copy of rows sorted by key. Missing values and "-"
// always sort last. Two numbers compare numerically, anything else is
// compared as strings.
func SortRows(rows []models.Row, key string, dir models.SortDirection) []models.Row {
	sorted := make([]models.Row, len(rows))
	copy(sorted, rows)
	if key == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i][key], sorted[j][key]
		aEmpty, bEmpty := isEmptyCell(a), isEmptyCell(b)
		switch {
		case aEmpty && bEmpty:
			return false
		case aEmpty:
			return false
		case bEmpty:
			return true
		}

		if af, ok := asNumber(a); ok {
			if bf, ok := asNumber(b); ok {
				if dir == models.Descending {
					return af > bf
				}
				return af < bf
			}
		}

		as, bs := formatValue(a), formatValue(b)
		if dir == models.Descending {
			return as > bs
		}
		return as < bs
	})
	return sorted
}

// FilterByDateRange keeps records created within [start, end]. A zero bound
// is open. The end bound covers the whole end day in its location.
func FilterByDateRange(records []models.PointsRecord, start, end time.Time) []models.PointsRecord {
	if start.IsZero() && end.IsZero() {
		return records
	}

	var endOfDay time.Time
	if !end.IsZero() {
		y, m, d := end.Date()
		endOfDay = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), end.Location())
	}

	filtered := make([]models.PointsRecord, 0, len(records))
	for _, r := range records {
		if r.CreationTime == 0 {
			continue
		}
		t := r.Time()
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !endOfDay.IsZero() && t.After(endOfDay) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// RecordRows converts records into table rows.
func RecordRows(records []models.PointsRecord) []models.Row {
	rows := make([]models.Row, len(records))
	for i, r := range records {
		rows[i] = r.ToRow()
	}
	return rows
}

func isEmptyCell(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return c == "-"
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func formatValue(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}
