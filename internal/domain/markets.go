package domain

// Defaults applied by MarketsParams.WithDefaults.
const (
	DefaultCurrency = "usd"
	DefaultOrder    = SortMarketCapDesc
	DefaultPerPage  = 50
	DefaultPage     = 1
)

// DefaultChangeWindows are the price_change_percentage windows requested by default.
var DefaultChangeWindows = []string{"1h", "24h", "7d"}

// MarketsParams are the /coins/markets query fields.
// Zero fields fall back to the defaults; IDs nil means "no id filter".
type MarketsParams struct {
	Currency      string
	Order         SortOrder
	PerPage       int
	Page          int
	Sparkline     bool
	ChangeWindows []string
	IDs           []string
}

// WithDefaults returns p with every unset field replaced by its default.
func (p MarketsParams) WithDefaults() MarketsParams {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if len(p.ChangeWindows) == 0 {
		p.ChangeWindows = append([]string(nil), DefaultChangeWindows...)
	}
	return p
}
