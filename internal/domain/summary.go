package domain

import "github.com/shopspring/decimal"

// MarketSummary aggregates the dashboard header figures.
type MarketSummary struct {
	TotalMarketCap decimal.Decimal
	TotalVolume    decimal.Decimal
	ActiveCoins    int
}

// SummarizeMarket sums market cap and volume over coins.
func SummarizeMarket(coins []MarketCoin) MarketSummary {
	s := MarketSummary{ActiveCoins: len(coins)}
	for _, c := range coins {
		s.TotalMarketCap = s.TotalMarketCap.Add(c.MarketCap)
		s.TotalVolume = s.TotalVolume.Add(c.TotalVolume)
	}
	return s
}

// WatchlistSummary aggregates the watchlist header figures.
type WatchlistSummary struct {
	PortfolioValue   decimal.Decimal // Sum of one unit of each coin
	AverageChange24h decimal.Decimal
	Count            int
}

// SummarizeWatchlist computes the watchlist header.
// An empty slice (e.g. mid-refresh) yields a zero average instead of dividing by zero.
func SummarizeWatchlist(coins []MarketCoin) WatchlistSummary {
	s := WatchlistSummary{Count: len(coins)}
	if len(coins) == 0 {
		return s
	}

	var changeSum decimal.Decimal
	for _, c := range coins {
		s.PortfolioValue = s.PortfolioValue.Add(c.CurrentPrice)
		changeSum = changeSum.Add(c.PriceChangePct24h)
	}
	s.AverageChange24h = changeSum.Div(decimal.NewFromInt(int64(len(coins))))
	return s
}
