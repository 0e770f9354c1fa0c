package calculator

import (
	"gonum.org/v1/gonum/stat"

	"FundRadar/internal/model"
)

// Volatility returns the sample standard deviation (n-1 denominator) of the
// returns. ok is false when there are fewer than two returns; callers must
// treat that as an exclusion, not as zero.
func Volatility(returns model.ReturnSeries) (vol float64, ok bool) {
	if returns.Len() < 2 {
		return 0, false
	}
	return stat.StdDev(returns.Values(), nil), true
}
