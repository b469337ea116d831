package models

// LiveQuote is a point-in-time market snapshot. It is never persisted and
// a nil *LiveQuote means no live data was available.
type LiveQuote struct {
	Symbol        string   `json:"symbol"`
	ShortName     string   `json:"short_name"`
	CurrentPrice  *float64 `json:"current_price"`
	Currency      string   `json:"currency"`
	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield"` // Absent for non-dividend payers
}
