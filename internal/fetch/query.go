// Package fetch keeps remote market data fresh for one view at a time.
//
// A Query owns exactly one State. Every fetch cycle is tagged with a
// monotonically increasing token when it starts; its result is applied only
// if that token is still the latest when it completes. Superseded requests
// are not aborted, their results are dropped.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/infra"
)

// State is a snapshot of a Query.
type State[T any] struct {
	Data      T         // last successful result, zero until the first success
	Loading   bool      // a cycle is in flight
	Err       error     // *domain.APIError of the latest completed cycle, nil while loading
	Seq       uint64    // token of the cycle that produced this state
	UpdatedAt time.Time // time of the last success
}

// HasData reports whether any cycle has succeeded.
func (s State[T]) HasData() bool {
	return !s.UpdatedAt.IsZero()
}

// Query fetches the data a Descriptor names, optionally polling it.
type Query[T any] struct {
	mu       sync.Mutex
	desc     Descriptor
	state    State[T]
	latest   uint64
	closed   bool
	stopTick chan struct{}

	client   domain.MarketDataClient
	onChange func()
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *infra.Metrics
	logger   *slog.Logger
}

// NewQuery mounts a query and starts its first cycle immediately.
// onChange is called after every state transition, from a background
// goroutine; it must not call Close.
func NewQuery[T any](ctx context.Context, client domain.MarketDataClient, d Descriptor, onChange func()) *Query[T] {
	ctx, cancel := context.WithCancel(ctx)
	q := &Query[T]{
		desc:     d,
		client:   client,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		metrics:  infra.GlobalMetrics,
		logger:   slog.Default().With("module", "fetch", "kind", string(d.Kind)),
	}
	q.metrics.IncrementQueries()

	q.mu.Lock()
	q.restartTickerLocked()
	q.mu.Unlock()

	q.startCycle()
	return q
}

// State returns a snapshot of the current state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Descriptor returns the descriptor currently in effect.
func (q *Query[T]) Descriptor() Descriptor {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.desc
}

// SetDescriptor adopts d. A new cycle starts only when d addresses
// different data; an interval-only change just restarts the poll timer.
func (q *Query[T]) SetDescriptor(d Descriptor) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	keyChanged := d.Key() != q.desc.Key()
	intervalChanged := d.RefreshInterval != q.desc.RefreshInterval
	q.desc = d
	if keyChanged || intervalChanged {
		q.restartTickerLocked()
	}
	q.mu.Unlock()

	if keyChanged {
		q.startCycle()
	}
}

// Refetch starts a new cycle with the current descriptor.
func (q *Query[T]) Refetch() {
	q.startCycle()
}

// Close stops polling, makes pending completions inert and waits for the
// query's goroutines. No onChange call happens after Close returns.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.stopTickerLocked()
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	q.metrics.DecrementQueries()
}

func (q *Query[T]) startCycle() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.latest++
	token := q.latest
	d := q.desc
	q.state.Loading = true
	q.state.Err = nil
	q.wg.Add(1)
	q.mu.Unlock()

	q.notify()
	go q.run(token, d)
}

func (q *Query[T]) run(token uint64, d Descriptor) {
	defer q.wg.Done()

	res, err := dispatch(q.ctx, q.client, d)

	var data T
	if err == nil {
		v, ok := res.(T)
		if !ok {
			err = &domain.ConfigError{Field: "kind", Err: fmt.Errorf("%s returns %T, not %T", d.Kind, res, data)}
		} else {
			data = v
		}
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if token != q.latest {
		q.mu.Unlock()
		q.metrics.RecordStale()
		q.logger.Debug("Discarding stale response", slog.Uint64("token", token))
		return
	}
	q.state.Loading = false
	q.state.Seq = token
	if err != nil {
		q.state.Err = domain.NormalizeError(err)
	} else {
		q.state.Data = data
		q.state.UpdatedAt = time.Now()
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("Fetch failed", slog.String("key", d.Key()), slog.Any("error", err))
	}
	q.notify()
}

func (q *Query[T]) notify() {
	if q.onChange != nil {
		q.onChange()
	}
}

// restartTickerLocked replaces the poll goroutine. Caller holds mu.
func (q *Query[T]) restartTickerLocked() {
	q.stopTickerLocked()

	interval := q.desc.RefreshInterval
	if interval <= 0 {
		return
	}
	stop := make(chan struct{})
	q.stopTick = stop
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-q.ctx.Done():
				return
			case <-ticker.C:
				q.Refetch()
			}
		}
	}()
}

func (q *Query[T]) stopTickerLocked() {
	if q.stopTick != nil {
		close(q.stopTick)
		q.stopTick = nil
	}
}
