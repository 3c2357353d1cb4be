package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
)

const (
	balanceLow  = "#ff6b6b"
	balanceHigh = "#51cf66"
	cycleStart  = "#ffd93d"
	cycleEnd    = "#6c5ce7"
)

// BalanceBar renders the remaining subscription balance.
type BalanceBar struct {
	progress progress.Model
}

// NewBalanceBar creates a balance bar with a red to green gradient.
func NewBalanceBar() BalanceBar {
	return BalanceBar{
		progress: progress.New(
			progress.WithScaledGradient(balanceLow, balanceHigh),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// RemainingPercent is the share of the allotment still available.
func RemainingPercent(info models.UserPointsInfo) float64 {
	if info.TotalAllotment <= 0 {
		return 0
	}
	pct := float64(info.CurrentBalance) / float64(info.TotalAllotment) * 100
	return min(max(pct, 0), 100)
}

// View renders "label [bar] balance / allotment pct".
func (b BalanceBar) View(info models.UserPointsInfo, width int) string {
	return b.ViewPercent(info, RemainingPercent(info), width)
}

// ViewPercent is View with the bar drawn at pct, for animated transitions.
func (b BalanceBar) ViewPercent(info models.UserPointsInfo, pct float64, width int) string {
	amounts := fmt.Sprintf("%s / %s", humanize.Comma(info.CurrentBalance), humanize.Comma(info.TotalAllotment))
	pctStr := styles.GetBalanceStyle(pct).Width(5).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", pct))

	b.progress.Width = max(width-len(amounts)-18, 10)
	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.LabelStyle.Width(9).Render("Balance"),
		b.progress.ViewAs(pct/100),
		" ",
		pctStr,
		" ",
		styles.ValueStyle.Render(amounts),
	)
}

// RenderCycleBar shows how far the current billing cycle has progressed.
// elapsed is a fraction in [0, 1].
func RenderCycleBar(elapsed float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := min(max(int(float64(width)*elapsed), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(interpolateColor(cycleStart, cycleEnd, t)))
			b.WriteString(style.Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// RenderLoadingBar draws a shimmering placeholder while data is loading.
// frame drives the shimmer position.
func RenderLoadingBar(width, frame int) string {
	barWidth := max(width, 10)

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	pos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := pos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
