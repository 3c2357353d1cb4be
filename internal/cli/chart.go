package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/webchart"
)

func newChartCmd() *cobra.Command {
	var (
		out         string
		granularity string
		mode        string
		offset      int
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write the usage chart of a billing period as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, ok := models.LookupGranularity(granularity)
			if !ok {
				return fmt.Errorf("invalid granularity %q (want minute, hour, halfday or day)", granularity)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			series, p, err := e.manager.Series(cmd.Context(), g, offset)
			if err != nil {
				return err
			}

			err = webchart.WriteFile(out, series, webchart.Options{
				Subtitle: fmt.Sprintf("%s · %s", p.Label, g.Label()),
				Mode:     models.ParseViewMode(mode),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s (%d buckets)\n", out, len(series.Points))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "chart.html", "output file")
	f.StringVar(&granularity, "granularity", "hour", "bucket width: minute, hour, halfday or day")
	f.StringVar(&mode, "type", "discrete", "discrete or cumulative")
	f.IntVar(&offset, "period", 0, "billing period offset (0 current, -1 previous, ...)")
	return cmd
}
