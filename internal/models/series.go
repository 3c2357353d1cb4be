package models

import "time"

// Granularity is the width of a time bucket used when charting usage.
type Granularity int

const (
	// GranularityMinute groups records into one-minute buckets.
	GranularityMinute Granularity = iota
	// GranularityHour groups records into one-hour buckets.
	GranularityHour
	// GranularityHalfDay groups records into twelve-hour buckets.
	GranularityHalfDay
	// GranularityDay groups records into one-day buckets.
	GranularityDay
)

// String returns the wire name of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityMinute:
		return "minute"
	case GranularityHour:
		return "hour"
	case GranularityHalfDay:
		return "halfday"
	case GranularityDay:
		return "day"
	default:
		return "hour"
	}
}

// Label returns a human readable name for the granularity.
func (g Granularity) Label() string {
	switch g {
	case GranularityMinute:
		return "Minute"
	case GranularityHalfDay:
		return "Half day"
	case GranularityDay:
		return "Day"
	default:
		return "Hour"
	}
}

// Duration returns the bucket width.
func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularityMinute:
		return time.Minute
	case GranularityHalfDay:
		return 12 * time.Hour
	case GranularityDay:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Milliseconds returns the bucket width in milliseconds.
func (g Granularity) Milliseconds() int64 {
	return g.Duration().Milliseconds()
}

// Next cycles to the next granularity.
func (g Granularity) Next() Granularity {
	return Granularity((int(g) + 1) % 4)
}

// ParseGranularity maps a wire name to a Granularity. Unknown names
// fall back to GranularityHour.
func ParseGranularity(s string) Granularity {
	g, ok := LookupGranularity(s)
	if !ok {
		return GranularityHour
	}
	return g
}

// LookupGranularity is like ParseGranularity but reports whether the name was known.
func LookupGranularity(s string) (Granularity, bool) {
	switch s {
	case "minute":
		return GranularityMinute, true
	case "hour":
		return GranularityHour, true
	case "halfday":
		return GranularityHalfDay, true
	case "day":
		return GranularityDay, true
	default:
		return GranularityHour, false
	}
}

// ViewMode selects which projection of a series is displayed.
type ViewMode int

const (
	// ViewDiscrete shows per-bucket cost and count.
	ViewDiscrete ViewMode = iota
	// ViewCumulative shows the running cost total.
	ViewCumulative
)

func (v ViewMode) String() string {
	if v == ViewCumulative {
		return "cumulative"
	}
	return "discrete"
}

// Toggle switches between discrete and cumulative.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewCumulative {
		return ViewDiscrete
	}
	return ViewCumulative
}

// ParseViewMode maps a wire name to a ViewMode, defaulting to discrete.
func ParseViewMode(s string) ViewMode {
	if s == "cumulative" {
		return ViewCumulative
	}
	return ViewDiscrete
}

// AggregatedPoint is one bucket of an aggregated usage series.
type AggregatedPoint struct {
	Timestamp      string   `json:"timestamp"`
	BucketTime     int64    `json:"bucket_time"`
	CostSum        float64  `json:"cost_sum"`
	RecordCount    int      `json:"record_count"`
	CumulativeCost float64  `json:"cumulative_cost"`
	HasData        bool     `json:"has_data"`
	Models         []string `json:"models"`
	DateLabel      string   `json:"date_label"`
	TimeLabel      string   `json:"time_label"`
	FirstOfDay     bool     `json:"first_of_day"`
}

// Time returns the bucket start as a time.Time.
func (p AggregatedPoint) Time() time.Time {
	return time.UnixMilli(p.BucketTime)
}

// DateSeparator marks the first bucket of a new calendar day.
type DateSeparator struct {
	BucketTime int64  `json:"bucket_time"`
	Label      string `json:"label"`
}

// Series is the gap-filled output of the aggregator.
type Series struct {
	Points      []AggregatedPoint `json:"processedData"`
	Separators  []DateSeparator   `json:"dateSeparators"`
	Granularity Granularity       `json:"-"`
}

// IsEmpty reports whether the series has no buckets.
func (s Series) IsEmpty() bool {
	return len(s.Points) == 0
}

// TotalCost returns the cost of the whole series.
func (s Series) TotalCost() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].CumulativeCost
}
