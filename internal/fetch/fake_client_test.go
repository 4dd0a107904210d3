package fetch

import (
	"context"
	"sync"
	"time"

	"coin_dash/internal/domain"
)

// fakeClient is an in-memory MarketDataClient. Each handler may sleep to
// simulate latency; sleeps end early when the request context is cancelled.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	markets func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error)
	detail  func(id string) (*domain.CoinDetail, time.Duration, error)
	history func(id string, r domain.TimeRange) (*domain.PriceHistory, time.Duration, error)
	search  func(q string) ([]domain.SearchCoin, time.Duration, error)
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeClient) GetMarkets(ctx context.Context, p domain.MarketsParams) ([]domain.MarketCoin, error) {
	f.record("markets")
	coins, delay, err := f.markets(p)
	if werr := wait(ctx, delay); werr != nil {
		return nil, werr
	}
	return coins, err
}

func (f *fakeClient) GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	f.record("coin-detail")
	d, delay, err := f.detail(id)
	if werr := wait(ctx, delay); werr != nil {
		return nil, werr
	}
	return d, err
}

func (f *fakeClient) GetHistory(ctx context.Context, id string, r domain.TimeRange, currency string) (*domain.PriceHistory, error) {
	f.record("history")
	h, delay, err := f.history(id, r)
	if werr := wait(ctx, delay); werr != nil {
		return nil, werr
	}
	return h, err
}

func (f *fakeClient) Search(ctx context.Context, q string) ([]domain.SearchCoin, error) {
	f.record("search")
	res, delay, err := f.search(q)
	if werr := wait(ctx, delay); werr != nil {
		return nil, werr
	}
	return res, err
}

func coins(ids ...string) []domain.MarketCoin {
	out := make([]domain.MarketCoin, len(ids))
	for i, id := range ids {
		out[i] = domain.MarketCoin{ID: id, MarketCapRank: i + 1}
	}
	return out
}
