// Package cli wires the pdt commands: the terminal dashboard, the HTTP API
// and one-shot sync, import, stats and chart commands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
)

// NewRootCmd builds the pdt command tree. Without a subcommand it runs the
// terminal dashboard.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdt",
		Short: "Poe points usage dashboard",
		Long: `pdt tracks Poe compute points: it syncs the points history into a local
SQLite database and shows the balance, usage per period and per bot.

Run without arguments to open the terminal dashboard. Credentials are taken
from a "Copy as cURL" of a points-history request; see 'pdt import-curl'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	root.AddCommand(
		newServeCmd(),
		newSyncCmd(),
		newImportCurlCmd(),
		newStatsCmd(),
		newChartCmd(),
		newVersionCmd(),
	)
	return root
}

// env is what every command needs: configuration, logging and the
// service manager.
type env struct {
	cfg     *config.Config
	manager *services.Manager
	logs    io.Closer
}

// openEnv loads the configuration, points the logger at the log file and
// opens the database.
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logs, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return &env{cfg: cfg, manager: mgr, logs: logs}, nil
}

func (e *env) Close() error {
	return errors.Join(e.manager.Close(), e.logs.Close())
}
