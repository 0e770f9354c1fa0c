package ranking

import (
	"gonum.org/v1/gonum/stat"

	"FundRadar/internal/model"
)

type direction float64

const (
	higherIsBetter direction = 1
	lowerIsBetter  direction = -1
)

// factor holds one column standardized across all rows.
type factor struct {
	name   string
	raw    []float64
	mean   float64
	std    float64
	weight float64
	dir    direction
}

func newFactor(name string, rows []model.ScorecardRow, pick func(model.ScorecardRow) float64, weight float64, dir direction) factor {
	raw := make([]float64, len(rows))
	for i, r := range rows {
		raw[i] = pick(r)
	}
	f := factor{name: name, raw: raw, weight: weight, dir: dir}
	if len(raw) > 1 {
		f.mean, f.std = stat.MeanStdDev(raw, nil)
	} else {
		f.mean = raw[0]
	}
	return f
}

// score returns the factor for row i. Zero dispersion contributes nothing.
func (f factor) score(i int) Factor {
	var z float64
	if f.std > 0 {
		z = float64(f.dir) * (f.raw[i] - f.mean) / f.std
	}
	return Factor{
		Name:     f.name,
		Raw:      f.raw[i],
		Z:        z,
		Weight:   f.weight,
		Weighted: z * f.weight,
	}
}
