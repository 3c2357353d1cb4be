package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/points-dashboard-tui/internal/services"
)

func newSyncCmd() *cobra.Command {
	var (
		full  bool
		pages int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new points history once",
		Long: `Fetch the points history with the saved credentials. An incremental sync
stops at the first page that is already stored; --full walks every page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.manager.Sync(cmd.Context(), full, pages)
			if errors.Is(err, services.ErrNoConfig) {
				return errors.New("no credentials saved: run 'pdt import-curl' first")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			fmt.Fprintf(out, "new: %d, updated: %d, pages: %d, stopped by: %s\n",
				result.NewRecords, result.UpdatedRecords, result.Pages, result.StoppedBy)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "fetch every page instead of stopping at known records")
	cmd.Flags().IntVar(&pages, "pages", 0, "maximum number of pages (0 for no limit)")
	return cmd
}
