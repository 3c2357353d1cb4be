package aggregate

import "github.com/j-veylop/points-dashboard-tui/internal/models"

// Project returns the per-bucket values shown in the given view mode.
func Project(series models.Series, mode models.ViewMode) []float64 {
	values := make([]float64, len(series.Points))
	for i, p := range series.Points {
		if mode == models.ViewCumulative {
			values[i] = p.CumulativeCost
		} else {
			values[i] = p.CostSum
		}
	}
	return values
}

// ProjectCounts returns per-bucket record counts.
func ProjectCounts(series models.Series) []float64 {
	counts := make([]float64, len(series.Points))
	for i, p := range series.Points {
		counts[i] = float64(p.RecordCount)
	}
	return counts
}
