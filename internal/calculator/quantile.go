package calculator

import (
	"errors"
	"math"
	"sort"
)

// Quantile returns the p-th quantile of values using linear interpolation
// between order statistics: h = (n-1)*p, q = x[floor(h)] + (h-floor(h))*(x[floor(h)+1]-x[floor(h)]).
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySeries
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, errors.New("quantile must be within [0, 1]")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo]), nil
}
