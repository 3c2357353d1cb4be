package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func TestRemainingPercent(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		total   int64
		want    float64
	}{
		{name: "Quarter", balance: 250, total: 1000, want: 25},
		{name: "NoAllotment", balance: 250, total: 0, want: 0},
		{name: "Overdrawn", balance: -10, total: 1000, want: 0},
		{name: "Bonus", balance: 1500, total: 1000, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := models.UserPointsInfo{PointsInfo: models.PointsInfo{
				CurrentBalance: tt.balance,
				TotalAllotment: tt.total,
			}}
			if got := RemainingPercent(info); got != tt.want {
				t.Errorf("RemainingPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalanceBar_View(t *testing.T) {
	info := models.UserPointsInfo{PointsInfo: models.PointsInfo{
		CurrentBalance: 850000,
		TotalAllotment: 1000000,
	}}

	out := ansi.Strip(NewBalanceBar().View(info, 70))
	for _, want := range []string{"Balance", "85%", "850,000 / 1,000,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() = %q, missing %q", out, want)
		}
	}
}

func TestRenderCycleBar(t *testing.T) {
	out := ansi.Strip(RenderCycleBar(0.5, 10))
	if want := "█████░░░░░"; out != want {
		t.Errorf("RenderCycleBar() = %q, want %q", out, want)
	}
	if RenderCycleBar(0.5, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderLoadingBar(t *testing.T) {
	for _, frame := range []int{0, 30, 60, 119} {
		out := ansi.Strip(RenderLoadingBar(20, frame))
		if n := len([]rune(out)); n != 20 {
			t.Errorf("frame %d: width = %d, want 20", frame, n)
		}
	}
	if n := len([]rune(ansi.Strip(RenderLoadingBar(3, 0)))); n != 10 {
		t.Errorf("minimum width = %d, want 10", n)
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0.5); got != "#7f7f7f" {
		t.Errorf("interpolateColor() = %q", got)
	}
	if got := interpolateColor("#ff6b6b", "#51cf66", 0); got != "#ff6b6b" {
		t.Errorf("interpolateColor(t=0) = %q", got)
	}
	if got := hexToRGB("nothex"); got != [3]int{0, 0, 0} {
		t.Errorf("hexToRGB(invalid) = %v", got)
	}
}
