package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundRadar/internal/model"
)

func row(ticker string, discount, vol, dy float64) model.ScorecardRow {
	return model.ScorecardRow{Ticker: ticker, Discount: discount, Volatility: vol, DividendYield: dy, Sector: "Híbrido", PriceToBook: 1}
}

func TestRank_OrdersByScore(t *testing.T) {
	rows := []model.ScorecardRow{
		row("EXPENSIVE", -0.20, 0.03, 8),
		row("CHEAP", 0.25, 0.01, 13),
		row("MIDDLE", 0.05, 0.02, 10),
	}
	ranked := Rank(rows, DefaultWeights)
	require.Len(t, ranked, 3)
	assert.Equal(t, "CHEAP", ranked[0].Ticker)
	assert.Equal(t, "MIDDLE", ranked[1].Ticker)
	assert.Equal(t, "EXPENSIVE", ranked[2].Ticker)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Greater(t, ranked[1].Score, ranked[2].Score)
}

func TestRank_FactorBreakdown(t *testing.T) {
	rows := []model.ScorecardRow{row("A", 0.1, 0.01, 10), row("B", -0.1, 0.03, 10)}
	ranked := Rank(rows, Weights{Discount: 1, Volatility: 1, Yield: 1})

	top := ranked[0]
	require.Equal(t, "A", top.Ticker)
	require.Len(t, top.Factors, 3)

	byName := map[string]Factor{}
	var sum float64
	for _, f := range top.Factors {
		byName[f.Name] = f
		sum += f.Weighted
	}
	assert.InDelta(t, top.Score, sum, 1e-12)
	assert.Greater(t, byName["discount"].Z, 0.0)
	assert.Greater(t, byName["volatility"].Z, 0.0, "lower volatility must score positively")
	assert.Equal(t, 0.0, byName["dividend_yield"].Z, "equal yields carry no signal")
	assert.Equal(t, 0.1, byName["discount"].Raw)
}

func TestRank_TiesBrokenByTicker(t *testing.T) {
	rows := []model.ScorecardRow{row("ZZZ", 0, 0.02, 9), row("AAA", 0, 0.02, 9), row("MMM", 0, 0.02, 9)}
	ranked := Rank(rows, DefaultWeights)
	var got []string
	for _, r := range ranked {
		got = append(got, r.Ticker)
		assert.Equal(t, 0.0, r.Score)
		assert.Equal(t, "neutral", r.Grade)
	}
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, got)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	rows := []model.ScorecardRow{row("B", -0.1, 0.03, 8), row("A", 0.2, 0.01, 12)}
	before := append([]model.ScorecardRow(nil), rows...)
	_ = Rank(rows, DefaultWeights)
	assert.Equal(t, before, rows)
}

func TestRank_EmptyAndSingle(t *testing.T) {
	assert.Nil(t, Rank(nil, DefaultWeights))

	ranked := Rank([]model.ScorecardRow{row("ONLY", 0.3, 0.02, 11)}, DefaultWeights)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].Score)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.5, "strong"},
		{1.0, "strong"},
		{0.5, "attractive"},
		{0, "neutral"},
		{-0.3, "neutral"},
		{-0.7, "weak"},
		{-1.2, DefaultGrade},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gradeFor(tt.score), "score %.2f", tt.score)
	}
}
