package fetch

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"coin_dash/internal/domain"
)

// Kind names the remote endpoint a Descriptor targets.
type Kind string

const (
	KindMarkets    Kind = "markets"
	KindCoinDetail Kind = "coin-detail"
	KindHistory    Kind = "history"
	KindSearch     Kind = "search"
)

// Descriptor is the structural key of one logical request.
// Two descriptors with the same Key address the same data; RefreshInterval
// only controls polling and is not part of identity.
type Descriptor struct {
	Kind            Kind
	Params          map[string]string
	RefreshInterval time.Duration
}

// Key returns kind plus the canonically encoded params (keys sorted).
func (d Descriptor) Key() string {
	if len(d.Params) == 0 {
		return string(d.Kind)
	}
	v := make(url.Values, len(d.Params))
	for k, p := range d.Params {
		v.Set(k, p)
	}
	return string(d.Kind) + "?" + v.Encode()
}

// Equal reports whether d and o address the same data.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.Key() == o.Key()
}

// WithInterval returns a copy of d polling at interval.
func (d Descriptor) WithInterval(interval time.Duration) Descriptor {
	d.RefreshInterval = interval
	return d
}

// Markets describes a /coins/markets request. Defaults are applied first so
// that an explicit default and an omitted field produce the same Key.
func Markets(params domain.MarketsParams, interval time.Duration) Descriptor {
	p := params.WithDefaults()
	m := map[string]string{
		"vs_currency":             p.Currency,
		"order":                   string(p.Order),
		"per_page":                strconv.Itoa(p.PerPage),
		"page":                    strconv.Itoa(p.Page),
		"sparkline":               strconv.FormatBool(p.Sparkline),
		"price_change_percentage": strings.Join(p.ChangeWindows, ","),
	}
	if p.IDs != nil {
		m["ids"] = strings.Join(p.IDs, ",")
	}
	return Descriptor{Kind: KindMarkets, Params: m, RefreshInterval: interval}
}

// WatchlistMarkets describes the markets filtered to ids. The ids param is
// always present, so an empty watchlist resolves to an empty result.
func WatchlistMarkets(ids []string, interval time.Duration) Descriptor {
	if ids == nil {
		ids = []string{}
	}
	return Markets(domain.MarketsParams{IDs: ids, PerPage: 250}, interval)
}

// CoinDetail describes a /coins/{id} request.
func CoinDetail(id string) Descriptor {
	return Descriptor{Kind: KindCoinDetail, Params: map[string]string{"id": id}}
}

// History describes a market_chart request in usd.
func History(id string, r domain.TimeRange) Descriptor {
	return Descriptor{Kind: KindHistory, Params: map[string]string{
		"id":          id,
		"days":        strconv.Itoa(r.Days()),
		"vs_currency": domain.DefaultCurrency,
	}}
}

// SearchQuery describes a /search request.
func SearchQuery(q string) Descriptor {
	return Descriptor{Kind: KindSearch, Params: map[string]string{"query": q}}
}
