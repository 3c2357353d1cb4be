package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/app"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/window"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedState(t *testing.T) *app.State {
	t.Helper()
	state := app.NewState(models.GranularityHour)
	series := aggregate.AggregateIn([]models.UsageRecord{
		{Timestamp: "2025-03-01T22:00:00Z", Cost: 120, Model: "GPT-4o"},
		{Timestamp: "2025-03-02T01:00:00Z", Cost: 30, Model: "Claude"},
	}, models.GranularityHour, time.UTC)

	ok := state.ApplyData(state.NextSeq(), app.DataSnapshot{
		Series: series,
		Period: models.Period{Label: "03.01 - 04.01"},
		Statistics: models.Statistics{
			Summary: models.Summary{Total: 150, Count: 2, Average: 75, Max: 120, Min: 30},
		},
		BotStats: []models.BotStat{
			{BotName: "GPT-4o", TotalCost: 1200, Count: 10},
			{BotName: "Claude-3.5-Sonnet", TotalCost: 300, Count: 3},
		},
	})
	if !ok {
		t.Fatal("ApplyData rejected the snapshot")
	}
	return state
}

func newLoaded(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := loadedState(t)
	m := New(state, "")
	m.SetSize(120, 40)
	return m, state
}

func press(t *testing.T, m *Model, k tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(k)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(models.GranularityHour), "")
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState(models.GranularityHour), "")
	m.SetSize(80, 20)
	if !strings.Contains(m.View(), "Loading points history...") {
		t.Error("loading view missing spinner label")
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newLoaded(t)

	view := m.View()
	for _, want := range []string{"Poe Points", "03.01 - 04.01", "Balance", "This period", "Top bots", "Usage", "GPT-4o", "150"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewWithoutCredentials(t *testing.T) {
	m, state := newLoaded(t)
	state.SetUserPoints(nil, services.ErrNoConfig)

	if !strings.Contains(m.View(), "No credentials saved.") {
		t.Error("missing credentials hint")
	}
}

func TestModel_ViewKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		offset int
		want   tea.Msg
	}{
		{
			name: "Granularity",
			key:  runeKey('g'),
			want: app.ViewChangedMsg{View: app.ViewSettings{Granularity: models.GranularityHalfDay}},
		},
		{
			name: "Mode",
			key:  runeKey('v'),
			want: app.ViewChangedMsg{View: app.ViewSettings{Granularity: models.GranularityHour, Mode: models.ViewCumulative}},
		},
		{
			name: "OlderPeriod",
			key:  runeKey('['),
			want: app.ViewChangedMsg{View: app.ViewSettings{Granularity: models.GranularityHour, Offset: -1}},
		},
		{
			name:   "NewerPeriod",
			key:    runeKey(']'),
			offset: -2,
			want:   app.ViewChangedMsg{View: app.ViewSettings{Granularity: models.GranularityHour, Offset: -1}},
		},
		{name: "NewerPeriodAtCurrent", key: runeKey(']'), want: nil},
		{name: "Sync", key: runeKey('f'), want: app.SyncRequestMsg{Full: false}},
		{name: "FullSync", key: runeKey('F'), want: app.SyncRequestMsg{Full: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newLoaded(t)
			if tt.offset != 0 {
				state.SetView(app.ViewSettings{Granularity: models.GranularityHour, Offset: tt.offset})
			}

			got := press(t, m, tt.key)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModel_WindowKeys(t *testing.T) {
	m, state := newLoaded(t)
	windows := state.Windows()

	if m.Focused() != window.UserPoints {
		t.Fatalf("Focused() = %q, want %q", m.Focused(), window.UserPoints)
	}

	if msg := press(t, m, runeKey('m')); msg != (app.LayoutChangedMsg{}) {
		t.Errorf("minimize produced %#v", msg)
	}
	if s, _ := windows.State(window.UserPoints); s != window.Minimized {
		t.Errorf("state = %q, want minimized", s)
	}
	if !strings.Contains(m.View(), "Minimized:") {
		t.Error("dock not rendered")
	}

	press(t, m, runeKey('j'))
	press(t, m, runeKey('j'))
	press(t, m, runeKey('j'))
	if m.Focused() != window.Chart {
		t.Fatalf("Focused() = %q, want chart", m.Focused())
	}
	press(t, m, runeKey('z'))
	if id, ok := windows.Maximized(); !ok || id != window.Chart {
		t.Errorf("Maximized() = %q, %v", id, ok)
	}
	if strings.Contains(m.View(), "Top bots") {
		t.Error("other widgets rendered while the chart is maximized")
	}

	press(t, m, runeKey('o'))
	if s, _ := windows.State(window.UserPoints); s != window.Normal {
		t.Errorf("restore left user points %q", s)
	}

	press(t, m, runeKey('x'))
	if s, _ := windows.State(window.Chart); s != window.Minimized {
		t.Errorf("close left chart %q", s)
	}

	press(t, m, runeKey('k'))
	if m.Focused() != window.TotalStats {
		t.Errorf("Focused() = %q after k", m.Focused())
	}
}

func TestModel_BalanceAnimation(t *testing.T) {
	m, state := newLoaded(t)
	state.SetUserPoints(&models.UserPointsInfo{PointsInfo: models.PointsInfo{
		SubscriptionProduct: "Poe Monthly",
		CurrentBalance:      500000,
		TotalAllotment:      1000000,
	}}, nil)

	_, cmd := m.Update(app.UserPointsLoadedMsg{})
	if cmd == nil {
		t.Fatal("balance change should start the animation")
	}

	start := m.balance.StartTime
	if !m.stepBalance(start.Add(balanceAnimation / 2)) {
		t.Error("animation finished too early")
	}
	if p := m.balance.CurrentPercent; p <= 0 || p >= 50 {
		t.Errorf("midway percent = %v", p)
	}
	if m.stepBalance(start.Add(balanceAnimation)) {
		t.Error("animation still running after its duration")
	}
	if p := m.balance.CurrentPercent; p != 50 {
		t.Errorf("final percent = %v, want 50", p)
	}

	view := m.View()
	for _, want := range []string{"Poe Monthly", "500,000 / 1,000,000"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ExportChart(t *testing.T) {
	state := loadedState(t)
	path := filepath.Join(t.TempDir(), "chart.html")
	m := New(state, path)

	msg := press(t, m, runeKey('e'))
	note, ok := msg.(app.AddNotificationMsg)
	if !ok || note.Type != app.NotificationSuccess {
		t.Fatalf("export produced %#v", msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "03.01 - 04.01") {
		t.Error("exported chart missing the period subtitle")
	}

	if New(state, "").exportChart() != nil {
		t.Error("export without a path should be a no-op")
	}
}

func TestCycleElapsed(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := models.Period{Start: start.UnixMicro(), End: start.AddDate(0, 0, 10).UnixMicro()}

	tests := []struct {
		now  time.Time
		want float64
	}{
		{start.AddDate(0, 0, 5), 0.5},
		{start.AddDate(0, 0, -1), 0},
		{start.AddDate(0, 0, 20), 1},
	}
	for _, tt := range tests {
		if got := cycleElapsed(p, tt.now); got != tt.want {
			t.Errorf("cycleElapsed(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
	if got := cycleElapsed(models.Period{}, start); got != 0 {
		t.Errorf("empty period = %v", got)
	}
}
