package models

import "github.com/shopspring/decimal"

// Quote is a point-in-time market quote. Nil numeric fields mean the
// upstream did not report a value; they render as "N/A". Quotes are
// fetched fresh per request and never cached.
type Quote struct {
	Symbol        string           `json:"symbol"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	DayLow        *decimal.Decimal `json:"day_low,omitempty"`
	DayHigh       *decimal.Decimal `json:"day_high,omitempty"`
	PrevClose     *decimal.Decimal `json:"prev_close,omitempty"`
}

// Profile carries the descriptive asset-info package sent at session
// start. Empty strings and nil numerics render as "N/A".
type Profile struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	PrevClose *decimal.Decimal `json:"prev_close,omitempty"`
	DayLow    *decimal.Decimal `json:"day_low,omitempty"`
	DayHigh   *decimal.Decimal `json:"day_high,omitempty"`
	MarketCap *decimal.Decimal `json:"market_cap,omitempty"`
	Volume    *int64           `json:"volume,omitempty"`
	Sector    string           `json:"sector"`
	Industry  string           `json:"industry"`
	Website   string           `json:"website"`
}
