// Package aggregate buckets raw usage records into a gap-filled time series.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/stats"
)

const bucketTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// zoneLessLayouts are tried in the caller's location after RFC 3339 fails.
// Fractional seconds are accepted by time.Parse after a seconds field.
var zoneLessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a record timestamp. Zone-less forms are read in loc,
// a bare date is read as UTC midnight.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range zoneLessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006/01/02 15:04:05", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Aggregate buckets records at granularity g using the local time zone for
// parsing and date separators.
func Aggregate(records []models.UsageRecord, g models.Granularity) models.Series {
	return AggregateIn(records, g, time.Local)
}

type bucket struct {
	cost   decimal.Decimal
	count  int
	models []string
}

// AggregateIn is Aggregate with an explicit location.
func AggregateIn(records []models.UsageRecord, g models.Granularity, loc *time.Location) models.Series {
	if loc == nil {
		loc = time.Local
	}
	step := g.Milliseconds()
	series := models.Series{
		Points:      []models.AggregatedPoint{},
		Separators:  []models.DateSeparator{},
		Granularity: g,
	}

	buckets := make(map[int64]*bucket)
	var minBucket, maxBucket int64
	for _, r := range records {
		t, ok := ParseTimestamp(r.Timestamp, loc)
		if !ok {
			continue
		}
		key := floorDiv(t.UnixMilli(), step) * step

		b, ok := buckets[key]
		if !ok {
			b = &bucket{cost: decimal.Zero}
			buckets[key] = b
			if len(buckets) == 1 || key < minBucket {
				minBucket = key
			}
			if len(buckets) == 1 || key > maxBucket {
				maxBucket = key
			}
		}
		cost, _ := stats.ParseCost(r.Cost)
		b.cost = b.cost.Add(cost)
		b.count++
		if r.Model != "" && !contains(b.models, r.Model) {
			b.models = append(b.models, r.Model)
		}
	}

	if len(buckets) == 0 {
		return series
	}

	size := int((maxBucket-minBucket)/step) + 1
	series.Points = make([]models.AggregatedPoint, 0, size)

	running := decimal.Zero
	var prevDate string
	for key := minBucket; key <= maxBucket; key += step {
		b := buckets[key]
		if b == nil {
			b = &bucket{cost: decimal.Zero}
		}
		running = running.Add(b.cost)

		local := time.UnixMilli(key).In(loc)
		date := local.Format("2006-01-02")
		label := fmt.Sprintf("%d.%d", int(local.Month()), local.Day())
		firstOfDay := date != prevDate

		if firstOfDay && prevDate != "" {
			series.Separators = append(series.Separators, models.DateSeparator{
				BucketTime: key,
				Label:      label,
			})
		}
		prevDate = date

		modelNames := b.models
		if modelNames == nil {
			modelNames = []string{}
		}

		series.Points = append(series.Points, models.AggregatedPoint{
			Timestamp:      time.UnixMilli(key).UTC().Format(bucketTimestampLayout),
			BucketTime:     key,
			CostSum:        b.cost.InexactFloat64(),
			RecordCount:    b.count,
			CumulativeCost: running.InexactFloat64(),
			HasData:        b.cost.IsPositive() || b.count > 0,
			Models:         modelNames,
			DateLabel:      label,
			TimeLabel:      local.Format("15:04"),
			FirstOfDay:     firstOfDay,
		})
	}

	return series
}

// BucketSpan returns the number of points AggregateIn emits for records,
// counting the gap-filled buckets between the earliest and latest record.
func BucketSpan(records []models.UsageRecord, g models.Granularity, loc *time.Location) int64 {
	step := g.Milliseconds()
	var lo, hi int64
	seen := false
	for _, r := range records {
		t, ok := ParseTimestamp(r.Timestamp, loc)
		if !ok {
			continue
		}
		idx := floorDiv(t.UnixMilli(), step)
		if !seen || idx < lo {
			lo = idx
		}
		if !seen || idx > hi {
			hi = idx
		}
		seen = true
	}
	if !seen {
		return 0
	}
	return hi - lo + 1
}

// FromPoints adapts stored points records to aggregator input.
func FromPoints(records []models.PointsRecord) []models.UsageRecord {
	out := make([]models.UsageRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.UsageRecord{
			Timestamp: r.Time().UTC().Format(time.RFC3339Nano),
			Cost:      r.PointCost,
			Model:     r.BotName,
		})
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
