package model

// ReferenceAttributes are the static per-fund columns of the reference table.
// Values are kept exactly as the source formats them (e.g. "12,5%").
type ReferenceAttributes struct {
	Ticker        string `yaml:"ticker" json:"ticker"`
	Sector        string `yaml:"sector" json:"sector"`
	DividendYield string `yaml:"dividend_yield" json:"dividend_yield"`
	PriceToBook   string `yaml:"price_to_book" json:"price_to_book"`
}

// ScorecardRow is one fully populated output row.
// DividendYield is in percent units: 12.5 means 12.5%.
type ScorecardRow struct {
	Ticker        string  `json:"ticker"`
	Discount      float64 `json:"discount"`
	Sector        string  `json:"sector"`
	DividendYield float64 `json:"dividend_yield"`
	PriceToBook   float64 `json:"price_to_book"`
	Volatility    float64 `json:"volatility"`
}
