package records

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/app"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func at(day, hour int) int64 {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.Local).UnixMicro()
}

func newLoaded(t *testing.T) *Model {
	t.Helper()
	state := app.NewState(models.GranularityHour)
	state.ApplyData(state.NextSeq(), app.DataSnapshot{
		Period: models.Period{Label: "03.01 - 04.01"},
		Records: []models.PointsRecord{
			{ID: "a", PointCost: 100, CreationTime: at(2, 10), BotName: "GPT-4o"},
			{ID: "b", PointCost: 20, CreationTime: at(5, 12), BotName: "Claude"},
			{ID: "c", PointCost: 50, CreationTime: at(9, 8), BotName: "GPT-4o"},
		},
	})

	m := New(state)
	m.SetSize(120, 40)
	m.Update(app.DataLoadedMsg{})
	return m
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ids(recs []models.PointsRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestModel_Sorting(t *testing.T) {
	m := newLoaded(t)

	if got := m.SelectedRow()[4]; got != "c" {
		t.Errorf("newest first: selected %q, want c", got)
	}

	send(m, runes("s"))
	if got := m.SelectedRow()[4]; got != "a" {
		t.Errorf("cost descending: selected %q, want a", got)
	}

	send(m, runes("S"))
	if got := m.SelectedRow()[4]; got != "b" {
		t.Errorf("cost ascending: selected %q, want b", got)
	}
	if got := m.SelectedRow()[3]; got != "20" {
		t.Errorf("cost cell = %q", got)
	}
}

func TestModel_RankKey(t *testing.T) {
	m := newLoaded(t)

	st := m.Statistics()
	if st.Summary.Total != 170 || st.Summary.Count != 3 {
		t.Errorf("summary = %+v", st.Summary)
	}
	if st.Categories[0].Name != "GPT-4o" {
		t.Errorf("top model by cost = %q", st.Categories[0].Name)
	}

	send(m, runes("c"))
	if m.rankKey != models.SortByAvgCost {
		t.Errorf("rankKey = %v, want avgCost", m.rankKey)
	}
	if !strings.Contains(m.View(), "Models by avgCost") {
		t.Error("View missing rank heading")
	}
}

func TestModel_DateFilter(t *testing.T) {
	m := newLoaded(t)

	send(m, runes("/"))
	if !m.CapturingInput() {
		t.Fatal("filter should capture input")
	}

	send(m,
		runes("2025-03-03"),
		tea.KeyMsg{Type: tea.KeyTab},
		runes("2025-03-06"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if m.CapturingInput() {
		t.Fatal("enter should close the filter")
	}
	if diff := cmp.Diff([]string{"b"}, ids(m.Filtered())); diff != "" {
		t.Errorf("filtered mismatch (-want +got):\n%s", diff)
	}
	if m.Statistics().Summary.Total != 20 {
		t.Errorf("filtered total = %v", m.Statistics().Summary.Total)
	}
	if !strings.Contains(m.View(), "filtered 2025-03-03 → 2025-03-06") {
		t.Error("View missing filter description")
	}

	send(m, runes("x"))
	if len(m.Filtered()) != 3 {
		t.Errorf("clear filter left %d records", len(m.Filtered()))
	}
}

func TestModel_DateFilterOpenEnd(t *testing.T) {
	m := newLoaded(t)

	send(m, runes("/"), runes("2025-03-05"), tea.KeyMsg{Type: tea.KeyEnter})
	if diff := cmp.Diff([]string{"b", "c"}, ids(m.Filtered())); diff != "" {
		t.Errorf("filtered mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_DateFilterInvalid(t *testing.T) {
	m := newLoaded(t)

	send(m, runes("/"), runes("2025-13-01"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.CapturingInput() {
		t.Fatal("invalid input should keep the filter open")
	}
	if !strings.Contains(m.View(), `invalid start date "2025-13-01"`) {
		t.Error("View missing validation error")
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.CapturingInput() {
		t.Error("esc should close the filter")
	}
	if len(m.Filtered()) != 3 {
		t.Errorf("cancelled filter changed records: %d", len(m.Filtered()))
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{name: "Open", from: "", to: " "},
		{
			name:      "Both",
			from:      "2025-03-01",
			to:        "2025-03-31",
			wantStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.Local),
		},
		{name: "SameDay", from: "2025-03-01", to: "2025-03-01",
			wantStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)},
		{name: "Reversed", from: "2025-03-02", to: "2025-03-01", wantErr: true},
		{name: "BadEnd", to: "03/01/2025", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseRange(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("range = %v..%v, want %v..%v", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := New(app.NewState(models.GranularityHour))
	if !strings.Contains(m.View(), "Loading records...") {
		t.Error("View before load should show the loading text")
	}

	m = newLoaded(t)
	view := m.View()
	for _, want := range []string{"Records", "03.01 - 04.01", "3 records · 170 points", "GPT-4o", "sorted by time desc"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}
