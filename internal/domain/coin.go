package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketCoin is one row of /coins/markets.
// A snapshot is replaced wholesale by the next fetch, never patched.
type MarketCoin struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	MarketCap     decimal.Decimal `json:"market_cap"`
	MarketCapRank int             `json:"market_cap_rank"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	High24h       decimal.Decimal `json:"high_24h"`
	Low24h        decimal.Decimal `json:"low_24h"`

	PriceChangePct24h decimal.Decimal `json:"price_change_percentage_24h"`
	// Populated when price_change_percentage includes the window
	PriceChangePct1h decimal.Decimal `json:"price_change_percentage_1h_in_currency"`
	PriceChangePct7d decimal.Decimal `json:"price_change_percentage_7d_in_currency"`

	LastUpdated time.Time `json:"last_updated"`
}

// CoinDetail is the trimmed /coins/{id} payload.
type CoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	GenesisDate string `json:"genesis_date"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketCapRank int `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice      map[string]decimal.Decimal `json:"current_price"`
		ATH               map[string]decimal.Decimal `json:"ath"`
		ATL               map[string]decimal.Decimal `json:"atl"`
		MarketCap         map[string]decimal.Decimal `json:"market_cap"`
		PriceChangePct24h decimal.Decimal            `json:"price_change_percentage_24h"`
		CirculatingSupply decimal.Decimal            `json:"circulating_supply"`
		TotalSupply       decimal.Decimal            `json:"total_supply"`
		MaxSupply         decimal.Decimal            `json:"max_supply"`
	} `json:"market_data"`
}

// Homepage returns the first non-empty homepage link.
func (c *CoinDetail) Homepage() string {
	for _, h := range c.Links.Homepage {
		if h != "" {
			return h
		}
	}
	return ""
}

// PriceIn returns the current price in the given currency, zero if absent.
func (c *CoinDetail) PriceIn(currency string) decimal.Decimal {
	return c.MarketData.CurrentPrice[currency]
}

// PricePoint is a single (timestamp, price) sample.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// PriceHistory is the price series for one coin over a TimeRange.
type PriceHistory struct {
	CoinID string
	Range  TimeRange
	Points []PricePoint
}

// Bounds returns min and max price of the series.
func (h *PriceHistory) Bounds() (lo, hi decimal.Decimal) {
	for i, p := range h.Points {
		if i == 0 || p.Price.LessThan(lo) {
			lo = p.Price
		}
		if i == 0 || p.Price.GreaterThan(hi) {
			hi = p.Price
		}
	}
	return lo, hi
}

// Last returns the most recent sample, or false for an empty series.
func (h *PriceHistory) Last() (PricePoint, bool) {
	if len(h.Points) == 0 {
		return PricePoint{}, false
	}
	return h.Points[len(h.Points)-1], true
}

// SearchCoin is one hit of /search.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
	MarketCapRank int    `json:"market_cap_rank"`
}
