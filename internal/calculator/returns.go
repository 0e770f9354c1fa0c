package calculator

import "FundRadar/internal/model"

// Returns computes the period-over-period fractional change of a price series.
// The first observation has no predecessor and is dropped, so a series with
// fewer than two observations yields an empty ReturnSeries.
func Returns(series model.PriceSeries) model.ReturnSeries {
	out := model.ReturnSeries{Ticker: series.Ticker}
	if series.Len() < 2 {
		return out
	}
	out.Points = make([]model.ReturnPoint, 0, series.Len()-1)
	for i := 1; i < series.Len(); i++ {
		prev := series.Points[i-1].AdjClose
		cur := series.Points[i].AdjClose
		out.Points = append(out.Points, model.ReturnPoint{
			Date:   series.Points[i].Date,
			Return: (cur - prev) / prev,
		})
	}
	return out
}
