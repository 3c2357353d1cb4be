package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// statsReport is what 'pdt stats' prints.
type statsReport struct {
	Period     string            `json:"period" yaml:"period"`
	Start      int64             `json:"start" yaml:"start"`
	End        int64             `json:"end" yaml:"end"`
	Statistics models.Statistics `json:"statistics" yaml:"statistics"`
}

func newStatsCmd() *cobra.Command {
	var (
		offset int
		sortBy string
		top    int
		format string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print usage statistics for a billing period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offset > 0 {
				return fmt.Errorf("--period must be zero or negative, got %d", offset)
			}
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			p, err := e.manager.Period(ctx, offset)
			if err != nil {
				return err
			}
			st, err := e.manager.Statistics(ctx, offset, models.ParseSortKey(sortBy), top)
			if err != nil {
				return err
			}

			report := statsReport{Period: p.Label, Start: p.Start, End: p.End, Statistics: st}
			return writeStats(cmd.OutOrStdout(), report, format)
		},
	}

	f := cmd.Flags()
	f.IntVar(&offset, "period", 0, "billing period offset (0 current, -1 previous, ...)")
	f.StringVar(&sortBy, "sort", "count", "rank models by count, cost or avgCost")
	f.IntVar(&top, "top", 10, "number of models to list (0 for all)")
	f.StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func writeStats(w io.Writer, r statsReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	s := r.Statistics.Summary
	fmt.Fprintf(w, "Period %s\n", r.Period)
	fmt.Fprintf(w, "%s records, %s points (avg %.1f, max %s, min %s)\n\n",
		humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.Total)), s.Average,
		humanize.Comma(int64(s.Max)), humanize.Comma(int64(s.Min)))

	if len(r.Statistics.Categories) == 0 {
		fmt.Fprintln(w, "No records in this period.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("MODEL", "COUNT", "POINTS", "AVG", "SHARE")
	for _, c := range r.Statistics.Categories {
		t.Row(c.Name,
			humanize.Comma(int64(c.Count)),
			humanize.Comma(int64(c.Cost)),
			fmt.Sprintf("%.1f", c.AvgCost),
			fmt.Sprintf("%.1f%%", c.Percentage))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
