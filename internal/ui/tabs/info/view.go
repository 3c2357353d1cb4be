package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/points-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/points-dashboard-tui/internal/version"
)

const notSet = "(not set)"

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderCredentials(),
		m.renderAutoFetch(),
		m.renderPaths(),
		m.renderAbout(),
	)

	m.viewport.SetContent(content)
	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.MarginBottom(0).Render("Info")
	subtitle := styles.HelpStyle.Render("Credentials, auto-fetch and application information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCredentials() string {
	cfg := m.state.Data().Config

	rows := []string{styles.SubTitleStyle.Render("Credentials")}
	if cfg.Cookie == "" {
		rows = append(rows,
			styles.WarningTextStyle.Render("No credentials saved."),
			styles.HelpStyle.Render("Copy a points-history request as cURL and run `pdt import-curl`."),
		)
	} else {
		updated := notSet
		if !cfg.UpdatedAt.IsZero() {
			updated = humanize.Time(cfg.UpdatedAt)
		}
		rows = append(rows,
			row("Updated", updated),
			row("Cookie", m.secret(cfg.Cookie)),
			row("Form key", m.secret(cfg.FormKey)),
			row("TChannel", orNotSet(cfg.TChannel)),
			row("Revision", orNotSet(cfg.Revision)),
			row("Tag ID", orNotSet(cfg.TagID)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "")...)
}

func (m *Model) renderAutoFetch() string {
	data := m.state.Data()
	status := data.AutoFetch

	enabled := styles.WarningTextStyle.Render("disabled")
	if data.Config.AutoFetchEnabled {
		enabled = styles.SuccessTextStyle.Render("enabled")
	}

	last := "never"
	if status.LastFetchTime != nil {
		last = humanize.Time(*status.LastFetchTime)
	}

	rows := []string{
		styles.SubTitleStyle.Render("Auto-fetch"),
		row("Status", enabled),
		row("Interval", fmt.Sprintf("%d min", data.Config.AutoFetchInterval)),
		row("Subscription day", fmt.Sprintf("%d", data.Config.SubscriptionDay)),
		row("Last fetch", last),
		row("Last result", orNotSet(status.LastFetchResult)),
	}
	if status.IsRunning {
		rows = append(rows, row("Running", "yes"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "")...)
}

func (m *Model) renderPaths() string {
	rows := []string{styles.SubTitleStyle.Render("Files")}
	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		rows = append(rows,
			row("Database", m.config.DatabasePath),
			row("Log", m.config.LogPath),
			row("Frontend log", m.config.FrontendLogPath),
			row("cURL file", m.config.CurlPath),
			row("API address", m.config.ServerAddr),
			row("Poe endpoint", m.config.PoeEndpoint),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "")...)
}

func (m *Model) renderAbout() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.SubTitleStyle.Render("About"),
		row("Build", version.Info()),
		row("Go", runtime.Version()),
	)
}

func (m *Model) secret(s string) string {
	if m.reveal {
		return orNotSet(s)
	}
	return maskSecret(s)
}

// maskSecret keeps the first and last four characters of long values.
func maskSecret(s string) string {
	switch {
	case s == "":
		return notSet
	case len(s) <= 12:
		return strings.Repeat("•", 8)
	default:
		return s[:4] + strings.Repeat("•", 8) + s[len(s)-4:]
	}
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func row(label, value string) string {
	return styles.LabelStyle.Width(18).Render(label+":") + " " + styles.ValueStyle.Render(value)
}
