package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/points-dashboard-tui/internal/api"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API and the HTML chart. The auto-fetch timer and the
credentials file watcher run alongside the server until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			addr := e.cfg.ServerAddr
			if port > 0 {
				addr = fmt.Sprintf(":%d", port)
			}

			frontendLog := logger.NewSink(e.cfg.FrontendLogPath)
			defer frontendLog.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				e.manager.StartBackground(ctx)
				<-ctx.Done()
				return nil
			})
			g.Go(func() error {
				return api.NewServer(e.manager, frontendLog).Run(ctx, addr)
			})
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from SERVER_ADDR, :58232)")
	return cmd
}
