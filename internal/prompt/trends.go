package prompt

import (
	"math"
	"strconv"
)

const (
	trendMin = 1
	trendMax = 3
)

// NormalizeTrend clamps an arbitrary input into [1,3]. Non-numeric or
// non-finite input defaults to 1. The function is total: it never errors.
func NormalizeTrend(v any) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return trendMin
	}
	n := int(math.Floor(f))
	if n < trendMin {
		return trendMin
	}
	if n > trendMax {
		return trendMax
	}
	return n
}

// NormalizeTrends normalizes a whole trend map, preserving keys.
func NormalizeTrends(in map[string]any) map[string]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = NormalizeTrend(v)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
