package stats

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCost converts a loosely typed cost value into a decimal. Strings may
// carry a currency sign and thousands separators. The boolean is false when
// the value is missing or not numeric, in which case zero is returned.
func ParseCost(v any) (decimal.Decimal, bool) {
	switch c := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return c, true
	case float64:
		return fromFloat(c)
	case float32:
		return fromFloat(float64(c))
	case int:
		return decimal.NewFromInt(int64(c)), true
	case int32:
		return decimal.NewFromInt(int64(c)), true
	case int64:
		return decimal.NewFromInt(c), true
	case json.Number:
		return parseCostString(c.String())
	case string:
		return parseCostString(c)
	default:
		return decimal.Zero, false
	}
}

// CostFloat is ParseCost reduced to a float64, with invalid values as 0.
func CostFloat(v any) float64 {
	d, _ := ParseCost(v)
	return d.InexactFloat64()
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func parseCostString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
