// Package period computes monthly subscription periods.
package period

import (
	"fmt"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// ClampDay returns day if it is a valid day of month, otherwise 1.
func ClampDay(day int) int {
	if day < 1 || day > 31 {
		return 1
	}
	return day
}

// anchor returns local midnight of day in the given month. Days past the
// end of a short month fall on its last day.
func anchor(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// Bounds returns the half-open period [start, end) in microseconds that
// starts on day of the given month.
func Bounds(year int, month time.Month, day int, loc *time.Location) (start, end int64) {
	if loc == nil {
		loc = time.Local
	}
	day = ClampDay(day)
	s := anchor(year, month, day, loc)
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	e := anchor(next.Year(), next.Month(), day, loc)
	return s.UnixMicro(), e.UnixMicro()
}

// Current returns the period containing now.
func Current(day int, now time.Time) models.Period {
	return ForOffset(day, 0, now)
}

// ForOffset returns the period offset months away from the current one.
// Before the subscription day the current period started last month; that
// shift applies only to offset 0.
func ForOffset(day, offset int, now time.Time) models.Period {
	day = ClampDay(day)
	loc := now.Location()

	target := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, loc)
	if offset == 0 && now.Before(anchor(now.Year(), now.Month(), day, loc)) {
		target = target.AddDate(0, -1, 0)
	}

	start, end := Bounds(target.Year(), target.Month(), day, loc)
	return models.Period{
		Start:  start,
		End:    end,
		Offset: offset,
		Label:  Label(start, end, loc),
	}
}

// Label formats a period as "MM.DD - MM.DD".
func Label(start, end int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	s := time.UnixMicro(start).In(loc)
	e := time.UnixMicro(end).In(loc)
	return fmt.Sprintf("%02d.%02d - %02d.%02d", int(s.Month()), s.Day(), int(e.Month()), e.Day())
}

// CycleStart returns the start of the 30-day points cycle ending at the
// next grant time.
func CycleStart(nextGrant time.Time) time.Time {
	return nextGrant.Add(-30 * 24 * time.Hour)
}
