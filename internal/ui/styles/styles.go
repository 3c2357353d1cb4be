// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	Primary   = lipgloss.Color("99")  // Violet
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Series colors
	Cost  = lipgloss.Color("141")
	Count = lipgloss.Color("80")

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("39")

	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// DocStyle wraps a whole tab.
var DocStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// WidgetStyle frames a dashboard widget.
var WidgetStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// FocusedWidgetStyle frames the widget that receives window keys.
var FocusedWidgetStyle = WidgetStyle.
	BorderForeground(Primary)

// WidgetTitleStyle styles widget headers.
var WidgetTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// DockStyle renders the bar listing minimized widgets.
var DockStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 1)

// DockItemStyle styles one minimized widget in the dock.
var DockItemStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(BgAccent).
	Padding(0, 1).
	MarginRight(1)

// SeparatorLabelStyle styles the day markers under the chart.
var SeparatorLabelStyle = lipgloss.NewStyle().
	Foreground(Warning)

// LabelStyle styles the key side of key/value lines.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(22)

// ValueStyle styles the value side of key/value lines.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// BalanceHighStyle for a comfortable remaining balance (>50%).
var BalanceHighStyle = lipgloss.NewStyle().
	Foreground(Success)

// BalanceMediumStyle for a shrinking balance (10-50%).
var BalanceMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// BalanceLowStyle for a nearly exhausted balance.
var BalanceLowStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// GetBalanceStyle returns the style for the given remaining percentage.
func GetBalanceStyle(percentRemaining float64) lipgloss.Style {
	switch {
	case percentRemaining > 50:
		return BalanceHighStyle
	case percentRemaining > 10:
		return BalanceMediumStyle
	default:
		return BalanceLowStyle
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
