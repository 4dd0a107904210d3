package fetch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/infra"
)

func TestQuery_FirstCycle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin", "ethereum"), 100 * time.Millisecond, nil
			},
		}
		var changes atomic.Int32
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Markets(domain.MarketsParams{}, 0), func() { changes.Add(1) })
		defer q.Close()

		synctest.Wait()
		st := q.State()
		if !st.Loading || st.Err != nil || st.Data != nil || st.HasData() {
			t.Fatalf("Expected initial loading state with no data, got %+v", st)
		}

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		st = q.State()
		if st.Loading || st.Err != nil {
			t.Fatalf("Expected settled state, got %+v", st)
		}
		if len(st.Data) != 2 || st.Data[0].ID != "bitcoin" {
			t.Errorf("Expected bitcoin,ethereum, got %+v", st.Data)
		}
		if st.Seq != 1 || !st.HasData() {
			t.Errorf("Expected seq 1 with data, got seq %d", st.Seq)
		}
		if changes.Load() != 2 {
			t.Errorf("Expected 2 change notifications, got %d", changes.Load())
		}
	})
}

func TestQuery_LatestDescriptorWins(t *testing.T) {
	// Each order answers with its own coin after its own latency
	latency := map[domain.SortOrder]time.Duration{
		domain.SortMarketCapDesc: 200 * time.Millisecond,
		domain.SortPriceDesc:     50 * time.Millisecond,
	}
	newClient := func() *fakeClient {
		return &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins(string(p.Order)), latency[p.Order], nil
			},
		}
	}

	t.Run("newer response arrives first", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			before := infra.GlobalMetrics.Snapshot().StaleDiscarded
			q := NewQuery[[]domain.MarketCoin](context.Background(), newClient(), Markets(domain.MarketsParams{}, 0), nil)
			defer q.Close()

			time.Sleep(10 * time.Millisecond)
			q.SetDescriptor(Markets(domain.MarketsParams{Order: domain.SortPriceDesc}, 0))

			time.Sleep(time.Second)
			synctest.Wait()

			st := q.State()
			if len(st.Data) != 1 || st.Data[0].ID != string(domain.SortPriceDesc) {
				t.Errorf("Expected price_desc data, got %+v", st.Data)
			}
			if st.Seq != 2 {
				t.Errorf("Expected seq 2, got %d", st.Seq)
			}
			if got := infra.GlobalMetrics.Snapshot().StaleDiscarded - before; got != 1 {
				t.Errorf("Expected 1 stale discard, got %d", got)
			}
		})
	})

	t.Run("older response arrives first", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			q := NewQuery[[]domain.MarketCoin](context.Background(), newClient(),
				Markets(domain.MarketsParams{Order: domain.SortPriceDesc}, 0), nil)
			defer q.Close()

			time.Sleep(10 * time.Millisecond)
			q.SetDescriptor(Markets(domain.MarketsParams{}, 0))

			// The first response lands at 50ms while the second is pending
			time.Sleep(100 * time.Millisecond)
			synctest.Wait()
			st := q.State()
			if !st.Loading || st.HasData() {
				t.Fatalf("Expected superseded response to be dropped, got %+v", st)
			}

			time.Sleep(time.Second)
			synctest.Wait()
			st = q.State()
			if len(st.Data) != 1 || st.Data[0].ID != string(domain.SortMarketCapDesc) {
				t.Errorf("Expected market_cap_desc data, got %+v", st.Data)
			}
		})
	})
}

func TestQuery_FailureKeepsData(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var fail atomic.Bool
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				if fail.Load() {
					return nil, 10 * time.Millisecond, domain.NormalizeError(&domain.TransportError{Op: "/coins/markets", Status: 500, Err: errors.New("500")})
				}
				return coins("bitcoin"), 10 * time.Millisecond, nil
			},
		}
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Markets(domain.MarketsParams{}, 0), nil)
		defer q.Close()

		time.Sleep(time.Second)
		synctest.Wait()

		fail.Store(true)
		q.Refetch()
		time.Sleep(time.Second)
		synctest.Wait()

		st := q.State()
		var apiErr *domain.APIError
		if !errors.As(st.Err, &apiErr) {
			t.Fatalf("Expected APIError, got %v", st.Err)
		}
		if st.Loading {
			t.Error("Expected loading to be false")
		}
		if len(st.Data) != 1 || st.Data[0].ID != "bitcoin" {
			t.Errorf("Expected stale data to be kept, got %+v", st.Data)
		}

		// Next cycle clears the error while in flight
		fail.Store(false)
		q.Refetch()
		synctest.Wait()
		st = q.State()
		if !st.Loading || st.Err != nil {
			t.Errorf("Expected loading with cleared error, got loading=%v err=%v", st.Loading, st.Err)
		}

		time.Sleep(time.Second)
		synctest.Wait()
		if st = q.State(); st.Err != nil || st.Loading {
			t.Errorf("Expected recovery, got %+v", st)
		}
	})
}

func TestQuery_UnknownKind(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{}
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Descriptor{Kind: "trending"}, nil)
		defer q.Close()

		synctest.Wait()
		st := q.State()
		if !errors.Is(st.Err, domain.ErrUnknownEndpoint) {
			t.Fatalf("Expected ErrUnknownEndpoint, got %v", st.Err)
		}
		if !strings.Contains(domain.ErrorMessage(st.Err), "unknown endpoint: trending") {
			t.Errorf("Unexpected message %q", domain.ErrorMessage(st.Err))
		}
		if domain.IsRetriable(st.Err) {
			t.Error("Config errors must not be retriable")
		}
		if client.callCount() != 0 {
			t.Errorf("Expected no client call, got %d", client.callCount())
		}
	})
}

func TestQuery_EmptyWatchlistIsEmptySuccess(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{}
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, WatchlistMarkets(nil, time.Minute), nil)
		defer q.Close()

		synctest.Wait()
		st := q.State()
		if st.Err != nil || st.Loading {
			t.Fatalf("Expected settled success, got %+v", st)
		}
		if st.Data == nil || len(st.Data) != 0 {
			t.Errorf("Expected empty non-nil data, got %v", st.Data)
		}
		if client.callCount() != 0 {
			t.Errorf("Expected no request, got %d", client.callCount())
		}
	})
}

func TestQuery_RefetchConverges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin", "ethereum", "solana"), 30 * time.Millisecond, nil
			},
		}
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Markets(domain.MarketsParams{}, 0), nil)
		defer q.Close()

		q.Refetch()
		q.Refetch()
		q.Refetch()
		time.Sleep(time.Second)
		synctest.Wait()

		st := q.State()
		if client.callCount() != 4 {
			t.Errorf("Expected 4 requests, got %d", client.callCount())
		}
		if st.Seq != 4 {
			t.Errorf("Expected seq 4, got %d", st.Seq)
		}
		if len(st.Data) != 3 {
			t.Errorf("Expected 3 coins (no accumulation), got %d", len(st.Data))
		}
	})
}

func TestQuery_Polling(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin"), 0, nil
			},
		}
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Markets(domain.MarketsParams{}, 300000*time.Millisecond), nil)

		synctest.Wait()
		if client.callCount() != 1 {
			t.Fatalf("Expected 1 request at mount, got %d", client.callCount())
		}

		time.Sleep(900001 * time.Millisecond)
		synctest.Wait()
		if client.callCount() != 4 {
			t.Errorf("Expected 4 requests after 3 intervals, got %d", client.callCount())
		}

		q.Close()
		time.Sleep(time.Hour)
		synctest.Wait()
		if client.callCount() != 4 {
			t.Errorf("Expected no requests after Close, got %d", client.callCount())
		}
	})
}

func TestQuery_IntervalChangeRestartsTimerOnly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin"), 0, nil
			},
		}
		d := Markets(domain.MarketsParams{}, time.Minute)
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, d, nil)
		defer q.Close()

		time.Sleep(30 * time.Second)
		q.SetDescriptor(d.WithInterval(2 * time.Minute))
		synctest.Wait()
		if client.callCount() != 1 {
			t.Fatalf("Interval change must not fetch, got %d requests", client.callCount())
		}

		// Old 1m tick would have fired at 60s
		time.Sleep(119 * time.Second)
		synctest.Wait()
		if client.callCount() != 1 {
			t.Errorf("Expected old timer to be stopped, got %d requests", client.callCount())
		}

		time.Sleep(2 * time.Second)
		synctest.Wait()
		if client.callCount() != 2 {
			t.Errorf("Expected tick at 150s, got %d requests", client.callCount())
		}

		// Same key and interval is a no-op
		q.SetDescriptor(d.WithInterval(2 * time.Minute))
		synctest.Wait()
		if client.callCount() != 2 {
			t.Errorf("Expected no fetch for identical descriptor, got %d", client.callCount())
		}
	})
}

func TestQuery_CloseMakesInFlightInert(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin"), 500 * time.Millisecond, nil
			},
		}
		var changes atomic.Int32
		q := NewQuery[[]domain.MarketCoin](context.Background(), client, Markets(domain.MarketsParams{}, time.Second), func() { changes.Add(1) })

		synctest.Wait()
		q.Close()
		afterClose := changes.Load()

		time.Sleep(time.Minute)
		synctest.Wait()

		if changes.Load() != afterClose {
			t.Errorf("Expected no notifications after Close, got %d more", changes.Load()-afterClose)
		}
		if st := q.State(); st.HasData() {
			t.Errorf("Expected no state mutation after Close, got %+v", st)
		}

		q.Refetch()
		q.SetDescriptor(CoinDetail("bitcoin"))
		if client.callCount() != 1 {
			t.Errorf("Expected closed query to ignore calls, got %d requests", client.callCount())
		}
	})
}

func TestQuery_ResultTypeMismatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			markets: func(p domain.MarketsParams) ([]domain.MarketCoin, time.Duration, error) {
				return coins("bitcoin"), 0, nil
			},
		}
		q := NewQuery[[]domain.SearchCoin](context.Background(), client, Markets(domain.MarketsParams{}, 0), nil)
		defer q.Close()

		synctest.Wait()
		var cfgErr *domain.ConfigError
		if !errors.As(q.State().Err, &cfgErr) {
			t.Errorf("Expected ConfigError, got %v", q.State().Err)
		}
	})
}

func TestQuery_DetailAndHistory(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{
			detail: func(id string) (*domain.CoinDetail, time.Duration, error) {
				return &domain.CoinDetail{ID: id, Name: "Bitcoin"}, 0, nil
			},
			history: func(id string, r domain.TimeRange) (*domain.PriceHistory, time.Duration, error) {
				return &domain.PriceHistory{CoinID: id, Range: r}, 0, nil
			},
		}

		detail := NewQuery[*domain.CoinDetail](context.Background(), client, CoinDetail("bitcoin"), nil)
		defer detail.Close()
		history := NewQuery[*domain.PriceHistory](context.Background(), client, History("bitcoin", domain.Range30D), nil)
		defer history.Close()

		synctest.Wait()
		if d := detail.State().Data; d == nil || d.Name != "Bitcoin" {
			t.Errorf("Unexpected detail %+v", d)
		}
		if h := history.State().Data; h == nil || h.Range != domain.Range30D {
			t.Errorf("Unexpected history %+v", h)
		}

		history.SetDescriptor(History("bitcoin", domain.Range1Y))
		synctest.Wait()
		if h := history.State().Data; h.Range != domain.Range1Y {
			t.Errorf("Expected 1Y range, got %v", h.Range)
		}
	})
}
