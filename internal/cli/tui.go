package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/points-dashboard-tui/internal/app"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/tabs/records"
)

const chartFileName = "chart.html"

// runTUI runs the terminal dashboard with the auto-fetch timer and the
// credentials watcher in the background.
func runTUI(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	e.manager.StartBackground(ctx)

	model := app.NewModel(e.manager, models.ParseGranularity(e.cfg.DefaultGranularity))
	state := model.State()
	model.SetTabs([]app.Tab{
		dashboard.New(state, filepath.Join(filepath.Dir(e.cfg.DatabasePath), chartFileName)),
		records.New(state),
		info.New(state, e.cfg),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
