// Package search turns keystrokes into debounced coin searches and owns the
// state of the search results panel.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"coin_dash/internal/debounce"
	"coin_dash/internal/domain"
	"coin_dash/internal/event"
	"coin_dash/internal/infra"
)

const (
	DefaultDelay      = 300 * time.Millisecond
	DefaultMaxVisible = 8
)

// Searcher is the part of the market data client the coordinator needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchCoin, error)
}

// Options configures a Coordinator. Zero values select the defaults.
type Options struct {
	Delay      time.Duration
	MaxVisible int
	OnSelect   func(domain.SearchCoin)
}

// Coordinator debounces the query, runs searches and tracks panel visibility.
// Searches are not de-duplicated; whichever response lands last wins.
type Coordinator struct {
	mu       sync.Mutex
	results  []domain.SearchCoin
	loading  bool
	visible  bool
	inFlight int
	closed   bool

	client      Searcher
	query       *debounce.Value[string]
	opts        Options
	onChange    func()
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	metrics     *infra.Metrics
	logger      *slog.Logger
}

// New creates a coordinator. It listens for FocusLost on bus until Close.
func New(client Searcher, bus *event.Bus, opts Options, onChange func()) *Coordinator {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = DefaultMaxVisible
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		client:   client,
		opts:     opts,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		metrics:  infra.GlobalMetrics,
		logger:   slog.Default().With("module", "search"),
	}
	c.query = debounce.New("", opts.Delay, c.commit)
	if bus != nil {
		c.unsubscribe = bus.Subscribe(event.FocusLost, func(event.Event) { c.Dismiss() })
	}
	return c
}

// Query returns the raw (undebounced) query text.
func (c *Coordinator) Query() string {
	return c.query.Raw()
}

// SetQuery updates the raw query; a search follows once typing pauses.
func (c *Coordinator) SetQuery(s string) {
	c.query.Set(s)
	c.notify()
}

// Results returns every result of the latest search.
func (c *Coordinator) Results() []domain.SearchCoin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.SearchCoin(nil), c.results...)
}

// Visible returns at most MaxVisible results and how many were left out.
func (c *Coordinator) Visible() (rows []domain.SearchCoin, more int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) <= c.opts.MaxVisible {
		return append([]domain.SearchCoin(nil), c.results...), 0
	}
	return append([]domain.SearchCoin(nil), c.results[:c.opts.MaxVisible]...), len(c.results) - c.opts.MaxVisible
}

// Loading reports whether a search is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ResultsVisible reports whether the results panel is shown.
func (c *Coordinator) ResultsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Select clears the query and results, hides the panel and hands coin to
// the OnSelect callback.
func (c *Coordinator) Select(coin domain.SearchCoin) domain.SearchCoin {
	c.query.Set("")
	c.query.Flush()

	c.mu.Lock()
	c.results = nil
	c.visible = false
	c.mu.Unlock()

	c.notify()
	if c.opts.OnSelect != nil {
		c.opts.OnSelect(coin)
	}
	return coin
}

// Dismiss hides the panel without touching query or results.
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	changed := c.visible
	c.visible = false
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Focus shows the panel again when there is something to show.
func (c *Coordinator) Focus() {
	if strings.TrimSpace(c.query.Raw()) == "" {
		return
	}
	c.mu.Lock()
	changed := !c.visible && len(c.results) > 0
	if changed {
		c.visible = true
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Close cancels the pending commit, stops listening for focus events and
// drops any response still in flight.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.query.Close()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.cancel()
	c.wg.Wait()
}

// commit runs when the debounced query changes.
func (c *Coordinator) commit(q string) {
	q = strings.TrimSpace(q)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if q == "" {
		c.results = nil
		c.visible = false
		c.loading = c.inFlight > 0
		c.mu.Unlock()
		c.notify()
		return
	}
	c.inFlight++
	c.loading = true
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify()
	go c.run(q)
}

func (c *Coordinator) run(q string) {
	defer c.wg.Done()

	c.metrics.RecordSearch()
	results, err := c.client.Search(c.ctx, q)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.inFlight--
	c.loading = c.inFlight > 0
	if err != nil {
		c.results = nil
		c.visible = false
	} else if strings.TrimSpace(c.query.Committed()) != "" {
		c.results = results
		c.visible = true
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Search failed", slog.String("query", q), slog.Any("error", err))
	}
	c.notify()
}

func (c *Coordinator) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
