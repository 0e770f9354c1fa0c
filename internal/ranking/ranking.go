package ranking

import (
	"sort"

	"FundRadar/internal/model"
)

// Weights sets how much each standardized factor counts toward the score.
type Weights struct {
	Discount   float64 `yaml:"discount_weight"`
	Volatility float64 `yaml:"volatility_weight"`
	Yield      float64 `yaml:"yield_weight"`
}

// DefaultWeights favours discount, then yield, then stability.
var DefaultWeights = Weights{Discount: 0.5, Volatility: 0.2, Yield: 0.3}

// Factor is one component of a fund's score.
type Factor struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Z        float64 `json:"z"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Ranked is a scorecard row with its combined score and grade.
type Ranked struct {
	model.ScorecardRow
	Score   float64  `json:"score"`
	Grade   string   `json:"grade"`
	Factors []Factor `json:"factors"`
}

// Grades maps a combined score to a label, checked top-down.
var Grades = []struct {
	MinScore float64
	Label    string
}{
	{1.0, "strong"},
	{0.3, "attractive"},
	{-0.3, "neutral"},
	{-1.0, "weak"},
}

// DefaultGrade applies below the lowest threshold.
const DefaultGrade = "avoid"

func gradeFor(score float64) string {
	for _, g := range Grades {
		if score >= g.MinScore {
			return g.Label
		}
	}
	return DefaultGrade
}

// Rank scores every row against the others and returns them best first.
// The input slice is left untouched.
func Rank(rows []model.ScorecardRow, w Weights) []Ranked {
	if len(rows) == 0 {
		return nil
	}
	disc := newFactor("discount", rows, func(r model.ScorecardRow) float64 { return r.Discount }, w.Discount, higherIsBetter)
	vol := newFactor("volatility", rows, func(r model.ScorecardRow) float64 { return r.Volatility }, w.Volatility, lowerIsBetter)
	dy := newFactor("dividend_yield", rows, func(r model.ScorecardRow) float64 { return r.DividendYield }, w.Yield, higherIsBetter)

	out := make([]Ranked, len(rows))
	for i, row := range rows {
		factors := []Factor{disc.score(i), vol.score(i), dy.score(i)}
		var total float64
		for _, f := range factors {
			total += f.Weighted
		}
		out[i] = Ranked{ScorecardRow: row, Score: total, Grade: gradeFor(total), Factors: factors}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}
