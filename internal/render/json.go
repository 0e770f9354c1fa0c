package render

import (
	"encoding/json"
	"io"
	"time"

	"FundRadar/internal/pipeline"
	"FundRadar/internal/ranking"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Range       jsonRange     `json:"range"`
	Rows        []jsonRow     `json:"rows"`
	Dropped     []jsonDropped `json:"dropped"`
	Fallbacks   []string      `json:"discount_fallbacks,omitempty"`
}

type jsonRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type jsonRow struct {
	Ticker        string           `json:"ticker"`
	Discount      float64          `json:"discount"`
	Sector        string           `json:"sector"`
	DividendYield float64          `json:"dividend_yield"`
	PriceToBook   float64          `json:"price_to_book"`
	Volatility    float64          `json:"volatility"`
	Score         *float64         `json:"score,omitempty"`
	Grade         string           `json:"grade,omitempty"`
	Factors       []ranking.Factor `json:"factors,omitempty"`
}

type jsonDropped struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, res *pipeline.Result, opts Options) error {
	out := jsonModel{
		GeneratedAt: res.GeneratedAt,
		Range: jsonRange{
			Start: res.Range.Start.Format("2006-01-02"),
			End:   res.Range.End.Format("2006-01-02"),
		},
		Rows:      []jsonRow{},
		Dropped:   []jsonDropped{},
		Fallbacks: res.Report.DiscountFallbacks,
	}
	for _, e := range entries(res, opts) {
		row := jsonRow{
			Ticker:        e.Ticker,
			Discount:      e.Discount,
			Sector:        e.Sector,
			DividendYield: e.DividendYield,
			PriceToBook:   e.PriceToBook,
			Volatility:    e.Volatility,
		}
		if opts.Rank {
			score := e.Score
			row.Score, row.Grade, row.Factors = &score, e.Grade, e.Factors
		}
		out.Rows = append(out.Rows, row)
	}
	for _, d := range res.Report.Dropped {
		jd := jsonDropped{Ticker: d.Ticker, Reason: string(d.Reason)}
		if d.Err != nil {
			jd.Error = d.Err.Error()
		}
		out.Dropped = append(out.Dropped, jd)
	}

	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
