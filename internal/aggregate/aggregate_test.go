package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"RFC3339", "2025-01-02T03:04:05Z", want, true},
		{"RFC3339Offset", "2025-01-02T05:04:05+02:00", want, true},
		{"RFC3339Fraction", "2025-01-02T03:04:05.250Z", want.Add(250 * time.Millisecond), true},
		{"ZoneLess", "2025-01-02T03:04:05", want, true},
		{"ZoneLessMinutes", "2025-01-02T03:04", want.Add(-5 * time.Second), true},
		{"SpaceSeparated", "2025-01-02 03:04:05", want, true},
		{"SpaceSeparatedMinutes", "2025-01-02 03:04", want.Add(-5 * time.Second), true},
		{"Slashes", "2025/01/02 03:04:05", want, true},
		{"DateOnly", "2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"Padded", "  2025-01-02T03:04:05Z ", want, true},
		{"Garbage", "yesterday", time.Time{}, false},
		{"Empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in, time.UTC)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAggregateIn_GapFillAndCumulative(t *testing.T) {
	records := []models.UsageRecord{
		{Timestamp: "2025-01-01T00:10:00Z", Cost: 1.0, Model: "GPT-4o"},
		{Timestamp: "2025-01-01T02:50:00Z", Cost: "$2", Model: "Claude"},
	}

	series := AggregateIn(records, models.GranularityHour, time.UTC)

	if len(series.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(series.Points))
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	hour := time.Hour.Milliseconds()
	want := []models.AggregatedPoint{
		{
			Timestamp: "2025-01-01T00:00:00.000Z", BucketTime: base,
			CostSum: 1, RecordCount: 1, CumulativeCost: 1, HasData: true,
			Models: []string{"GPT-4o"}, DateLabel: "1.1", TimeLabel: "00:00", FirstOfDay: true,
		},
		{
			Timestamp: "2025-01-01T01:00:00.000Z", BucketTime: base + hour,
			CostSum: 0, RecordCount: 0, CumulativeCost: 1, HasData: false,
			Models: []string{}, DateLabel: "1.1", TimeLabel: "01:00",
		},
		{
			Timestamp: "2025-01-01T02:00:00.000Z", BucketTime: base + 2*hour,
			CostSum: 2, RecordCount: 1, CumulativeCost: 3, HasData: true,
			Models: []string{"Claude"}, DateLabel: "1.1", TimeLabel: "02:00",
		},
	}
	if diff := cmp.Diff(want, series.Points); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}
	if len(series.Separators) != 0 {
		t.Errorf("Separators = %v, want none", series.Separators)
	}
	if got := Project(series, models.ViewCumulative); !cmp.Equal(got, []float64{1, 1, 3}) {
		t.Errorf("cumulative projection = %v, want [1 1 3]", got)
	}
}

func TestAggregateIn_ZoneLessTimestamps(t *testing.T) {
	records := []models.UsageRecord{
		{Timestamp: "2025-01-01 00:10", Cost: 1.0, Model: "GPT-4o"},
		{Timestamp: "2025-01-01 02:50", Cost: 2.0, Model: "Claude"},
	}
	loc := time.FixedZone("", -5*3600)

	series := AggregateIn(records, models.GranularityHour, loc)

	var costs, cumulative []float64
	var times []string
	for _, p := range series.Points {
		costs = append(costs, p.CostSum)
		cumulative = append(cumulative, p.CumulativeCost)
		times = append(times, p.TimeLabel)
	}
	if diff := cmp.Diff([]float64{1, 0, 2}, costs); diff != "" {
		t.Errorf("costs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 1, 3}, cumulative); diff != "" {
		t.Errorf("cumulative mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"00:00", "01:00", "02:00"}, times); diff != "" {
		t.Errorf("time labels mismatch (-want +got):\n%s", diff)
	}
	if got, want := series.Points[0].BucketTime, time.Date(2025, 1, 1, 0, 0, 0, 0, loc).UnixMilli(); got != want {
		t.Errorf("first bucket = %d, want %d", got, want)
	}
	if len(series.Separators) != 0 {
		t.Errorf("separators = %+v, want none", series.Separators)
	}
}

func TestAggregateIn_Empty(t *testing.T) {
	tests := []struct {
		name    string
		records []models.UsageRecord
	}{
		{"Nil", nil},
		{"AllInvalid", []models.UsageRecord{{Timestamp: "not a date", Cost: 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := AggregateIn(tt.records, models.GranularityHour, time.UTC)
			if series.Points == nil || series.Separators == nil {
				t.Fatal("expected empty, non-nil slices")
			}
			if !series.IsEmpty() || len(series.Separators) != 0 {
				t.Errorf("expected empty series, got %+v", series)
			}
		})
	}
}

func TestAggregateIn_DateSeparators(t *testing.T) {
	records := []models.UsageRecord{
		{Timestamp: "2025-02-27T09:00:00Z", Cost: 1},
		{Timestamp: "2025-03-01T18:00:00Z", Cost: 1},
	}

	series := AggregateIn(records, models.GranularityDay, time.UTC)

	if len(series.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(series.Points))
	}
	labels := make([]string, len(series.Separators))
	for i, s := range series.Separators {
		labels[i] = s.Label
		if s.BucketTime != series.Points[i+1].BucketTime {
			t.Errorf("separator %d at %d, want %d", i, s.BucketTime, series.Points[i+1].BucketTime)
		}
	}
	if diff := cmp.Diff([]string{"2.28", "3.1"}, labels); diff != "" {
		t.Errorf("separator labels mismatch (-want +got):\n%s", diff)
	}
	for i, p := range series.Points {
		if !p.FirstOfDay {
			t.Errorf("point %d should start a new day", i)
		}
	}
}

func TestAggregateIn_DateSeparatorsOffsetZone(t *testing.T) {
	loc := time.FixedZone("", 8*3600)

	t.Run("Hour", func(t *testing.T) {
		records := []models.UsageRecord{
			{Timestamp: "2025-03-01T22:30:00+08:00", Cost: 1},
			{Timestamp: "2025-03-02T01:15:00+08:00", Cost: 1},
		}
		series := AggregateIn(records, models.GranularityHour, loc)

		if len(series.Points) != 4 {
			t.Fatalf("len(Points) = %d, want 4", len(series.Points))
		}
		want := []models.DateSeparator{{
			BucketTime: time.Date(2025, 3, 2, 0, 0, 0, 0, loc).UnixMilli(),
			Label:      "3.2",
		}}
		if diff := cmp.Diff(want, series.Separators); diff != "" {
			t.Errorf("separators mismatch (-want +got):\n%s", diff)
		}
		var first []bool
		for _, p := range series.Points {
			first = append(first, p.FirstOfDay)
		}
		if diff := cmp.Diff([]bool{true, false, true, false}, first); diff != "" {
			t.Errorf("FirstOfDay mismatch (-want +got):\n%s", diff)
		}
		if got := series.Points[2].TimeLabel; got != "00:00" {
			t.Errorf("TimeLabel = %q, want local midnight", got)
		}
	})

	t.Run("Day", func(t *testing.T) {
		// Day buckets start at 08:00 local, so 06:00 on 3.1 belongs to the
		// bucket labelled 2.28.
		records := []models.UsageRecord{
			{Timestamp: "2025-03-01T06:00:00+08:00", Cost: 1},
			{Timestamp: "2025-03-01T10:00:00+08:00", Cost: 2},
		}
		series := AggregateIn(records, models.GranularityDay, loc)

		if len(series.Points) != 2 {
			t.Fatalf("len(Points) = %d, want 2", len(series.Points))
		}
		var labels, times []string
		for _, p := range series.Points {
			labels = append(labels, p.DateLabel)
			times = append(times, p.TimeLabel)
		}
		if diff := cmp.Diff([]string{"2.28", "3.1"}, labels); diff != "" {
			t.Errorf("date labels mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"08:00", "08:00"}, times); diff != "" {
			t.Errorf("time labels mismatch (-want +got):\n%s", diff)
		}
		if len(series.Separators) != 1 || series.Separators[0].BucketTime != series.Points[1].BucketTime {
			t.Errorf("separators = %+v", series.Separators)
		}
		if series.Points[0].CostSum != 1 || series.Points[1].CostSum != 2 {
			t.Errorf("costs = %v, %v", series.Points[0].CostSum, series.Points[1].CostSum)
		}
	})
}

func TestAggregateIn_Invariants(t *testing.T) {
	records := []models.UsageRecord{
		{Timestamp: "2025-05-01T10:00:00Z", Cost: 100},
		{Timestamp: "2025-05-01T10:00:30Z", Cost: "$50"},
		{Timestamp: "2025-05-01T13:20:00Z", Cost: "bad"},
		{Timestamp: "2025-05-02T01:00:00Z", Cost: 25},
		{Timestamp: "garbage", Cost: 1000},
	}

	for _, g := range []models.Granularity{
		models.GranularityMinute,
		models.GranularityHour,
		models.GranularityHalfDay,
		models.GranularityDay,
	} {
		t.Run(g.String(), func(t *testing.T) {
			series := AggregateIn(records, g, time.UTC)
			step := g.Milliseconds()
			points := series.Points

			first, last := points[0].BucketTime, points[len(points)-1].BucketTime
			if want := int((last-first)/step) + 1; len(points) != want {
				t.Errorf("len = %d, want %d", len(points), want)
			}

			var sum float64
			count := 0
			for i, p := range points {
				if p.BucketTime%step != 0 {
					t.Errorf("bucket %d not aligned: %d", i, p.BucketTime)
				}
				if i > 0 && p.BucketTime != points[i-1].BucketTime+step {
					t.Errorf("bucket %d not contiguous", i)
				}
				sum += p.CostSum
				count += p.RecordCount
				if p.CumulativeCost != sum {
					t.Errorf("cumulative[%d] = %v, want %v", i, p.CumulativeCost, sum)
				}
			}
			if sum != 175 {
				t.Errorf("total cost = %v, want 175", sum)
			}
			if count != 4 {
				t.Errorf("record count = %d, want 4", count)
			}
		})
	}
}

func TestAggregateIn_ZeroCostRecordHasData(t *testing.T) {
	records := []models.UsageRecord{{Timestamp: "2025-01-01T00:00:00Z", Cost: 0}}
	series := AggregateIn(records, models.GranularityMinute, time.UTC)
	if len(series.Points) != 1 || !series.Points[0].HasData {
		t.Errorf("expected one bucket with data, got %+v", series.Points)
	}
}

func TestAggregateIn_Deterministic(t *testing.T) {
	records := []models.UsageRecord{
		{Timestamp: "2025-01-01T05:00:00Z", Cost: 3, Model: "b"},
		{Timestamp: "2025-01-01T01:00:00Z", Cost: 1, Model: "a"},
		{Timestamp: "2025-01-01T05:30:00Z", Cost: 2, Model: "a"},
	}
	first := AggregateIn(records, models.GranularityHour, time.UTC)
	second := AggregateIn(records, models.GranularityHour, time.UTC)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated aggregation differs (-first +second):\n%s", diff)
	}
	if got := first.Points[len(first.Points)-1].Models; !cmp.Equal(got, []string{"b", "a"}) {
		t.Errorf("models = %v, want first-seen order [b a]", got)
	}
}

func TestBucketSpan(t *testing.T) {
	tests := []struct {
		name    string
		records []models.UsageRecord
		g       models.Granularity
		want    int64
	}{
		{name: "Empty", g: models.GranularityHour, want: 0},
		{name: "Unparseable", records: []models.UsageRecord{{Timestamp: "never"}}, g: models.GranularityHour, want: 0},
		{name: "Single", records: []models.UsageRecord{{Timestamp: "2025-01-01T00:10:00Z"}}, g: models.GranularityHour, want: 1},
		{
			name: "Hours",
			records: []models.UsageRecord{
				{Timestamp: "2025-01-01T02:50:00Z"},
				{Timestamp: "2025-01-01T00:10:00Z"},
			},
			g:    models.GranularityHour,
			want: 3,
		},
		{
			name: "YearsOfMinutes",
			records: []models.UsageRecord{
				{Timestamp: "0001-01-01T00:00:00Z"},
				{Timestamp: "9999-12-31T23:59:00Z"},
			},
			g:    models.GranularityMinute,
			want: (time.Date(9999, 12, 31, 23, 59, 0, 0, time.UTC).Unix()-time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix())/60 + 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketSpan(tt.records, tt.g, time.UTC); got != tt.want {
				t.Errorf("BucketSpan() = %d, want %d", got, tt.want)
			}
			if tt.want > 0 && tt.want < 1000 {
				if n := len(AggregateIn(tt.records, tt.g, time.UTC).Points); int64(n) != tt.want {
					t.Errorf("AggregateIn emitted %d points, BucketSpan said %d", n, tt.want)
				}
			}
		})
	}
}

func TestFromPoints(t *testing.T) {
	ts := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	got := FromPoints([]models.PointsRecord{{PointCost: 42, CreationTime: ts.UnixMicro(), BotName: "Bot"}})
	want := []models.UsageRecord{{Timestamp: "2025-04-01T12:00:00Z", Cost: 42, Model: "Bot"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromPoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectCounts(t *testing.T) {
	series := models.Series{Points: []models.AggregatedPoint{{RecordCount: 2}, {RecordCount: 0}}}
	if got := ProjectCounts(series); !cmp.Equal(got, []float64{2, 0}) {
		t.Errorf("ProjectCounts() = %v", got)
	}
	if got := Project(series, models.ViewDiscrete); !cmp.Equal(got, []float64{0, 0}) {
		t.Errorf("Project(discrete) = %v", got)
	}
}
