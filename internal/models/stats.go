package models

// Summary holds descriptive statistics over a list of costs.
type Summary struct {
	Total   float64 `json:"total" yaml:"total"`
	Average float64 `json:"average" yaml:"average"`
	Max     float64 `json:"max" yaml:"max"`
	Min     float64 `json:"min" yaml:"min"`
	Count   int     `json:"count" yaml:"count"`
}

// CategoryStat is the usage of a single category (usually a model).
type CategoryStat struct {
	Name       string  `json:"name" yaml:"name"`
	Count      int     `json:"count" yaml:"count"`
	Cost       float64 `json:"cost" yaml:"cost"`
	AvgCost    float64 `json:"avg_cost" yaml:"avg_cost"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Statistics bundles the summary and per-category breakdown.
type Statistics struct {
	Summary    Summary        `json:"summary" yaml:"summary"`
	Categories []CategoryStat `json:"categories" yaml:"categories"`
}

// SortKey selects how category statistics are ranked.
type SortKey int

const (
	// SortByCount ranks categories by number of records.
	SortByCount SortKey = iota
	// SortByCost ranks categories by total cost.
	SortByCost
	// SortByAvgCost ranks categories by average cost per record.
	SortByAvgCost
)

func (k SortKey) String() string {
	switch k {
	case SortByCost:
		return "cost"
	case SortByAvgCost:
		return "avgCost"
	default:
		return "count"
	}
}

// Next cycles to the next sort key.
func (k SortKey) Next() SortKey {
	return (k + 1) % 3
}

// ParseSortKey maps a name to a SortKey, defaulting to SortByCount.
func ParseSortKey(s string) SortKey {
	switch s {
	case "cost":
		return SortByCost
	case "avgCost", "avg_cost", "avg":
		return SortByAvgCost
	default:
		return SortByCount
	}
}

// SortDirection is the order used by SortRows.
type SortDirection int

const (
	// Ascending sorts smallest first.
	Ascending SortDirection = iota
	// Descending sorts largest first.
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}
