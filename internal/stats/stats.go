// Package stats computes summary statistics and per-category breakdowns
// over usage rows.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// UnknownCategory is used for rows without a category value.
const UnknownCategory = "Unknown"

// Summarize computes total, average, max, min and count of the cost column.
// Every row counts, including rows whose cost is not numeric (as 0).
func Summarize(rows []models.Row, costColumn string) models.Summary {
	if len(rows) == 0 {
		return models.Summary{}
	}

	total := decimal.Zero
	maxCost := decimal.Zero
	minCost := decimal.Zero
	for i, row := range rows {
		cost, _ := ParseCost(row[costColumn])
		total = total.Add(cost)
		if i == 0 || cost.GreaterThan(maxCost) {
			maxCost = cost
		}
		if i == 0 || cost.LessThan(minCost) {
			minCost = cost
		}
	}

	count := len(rows)
	return models.Summary{
		Total:   total.InexactFloat64(),
		Average: total.Div(decimal.NewFromInt(int64(count))).InexactFloat64(),
		Max:     maxCost.InexactFloat64(),
		Min:     minCost.InexactFloat64(),
		Count:   count,
	}
}

// Breakdown groups rows by category and returns per-category counts and
// costs in first-seen order.
func Breakdown(rows []models.Row, costColumn, categoryColumn string) []models.CategoryStat {
	if len(rows) == 0 {
		return []models.CategoryStat{}
	}

	type acc struct {
		cost  decimal.Decimal
		count int
	}
	groups := make(map[string]*acc)
	var order []string

	for _, row := range rows {
		name := categoryName(row[categoryColumn])
		g, ok := groups[name]
		if !ok {
			g = &acc{cost: decimal.Zero}
			groups[name] = g
			order = append(order, name)
		}
		cost, _ := ParseCost(row[costColumn])
		g.cost = g.cost.Add(cost)
		g.count++
	}

	total := len(rows)
	result := make([]models.CategoryStat, 0, len(order))
	for _, name := range order {
		g := groups[name]
		avg := g.cost.Div(decimal.NewFromInt(int64(g.count)))
		result = append(result, models.CategoryStat{
			Name:       name,
			Count:      g.count,
			Cost:       g.cost.InexactFloat64(),
			AvgCost:    avg.InexactFloat64(),
			Percentage: float64(g.count) / float64(total) * 100,
		})
	}
	return result
}

// Rank sorts category stats descending by key and keeps the first topN.
// Ties keep their input order. A topN of zero or less keeps everything.
// The input slice is not modified.
func Rank(categories []models.CategoryStat, key models.SortKey, topN int) []models.CategoryStat {
	ranked := make([]models.CategoryStat, len(categories))
	copy(ranked, categories)

	sort.SliceStable(ranked, func(i, j int) bool {
		switch key {
		case models.SortByCost:
			return ranked[i].Cost > ranked[j].Cost
		case models.SortByAvgCost:
			return ranked[i].AvgCost > ranked[j].AvgCost
		default:
			return ranked[i].Count > ranked[j].Count
		}
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Calculate bundles Summarize and a ranked Breakdown.
func Calculate(rows []models.Row, costColumn, categoryColumn string, key models.SortKey, topN int) models.Statistics {
	return models.Statistics{
		Summary:    Summarize(rows, costColumn),
		Categories: Rank(Breakdown(rows, costColumn, categoryColumn), key, topN),
	}
}

func categoryName(v any) string {
	switch c := v.(type) {
	case nil:
		return UnknownCategory
	case string:
		if c == "" {
			return UnknownCategory
		}
		return c
	default:
		return formatValue(c)
	}
}
