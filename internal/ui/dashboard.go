package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/fetch"
	"coin_dash/internal/format"
	"coin_dash/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// limitOptions are the page sizes the dashboard cycles through.
var limitOptions = []int{25, 50, 100}

// deps are the collaborators every view shares.
type deps struct {
	ctx       context.Context
	client    domain.MarketDataClient
	watchlist *service.WatchlistService
	notify    func()
}

// Dashboard lists the top coins by the selected order.
type Dashboard struct {
	deps
	query     *fetch.Query[[]domain.MarketCoin]
	order     domain.SortOrder
	limit     int
	limitStep int
	refresh   time.Duration
	cursor    int
}

func newDashboard(d deps, order domain.SortOrder, limit, limitStep int, refresh time.Duration) *Dashboard {
	if order == "" {
		order = domain.DefaultOrder
	}
	return &Dashboard{
		deps:      d,
		order:     order,
		limit:     limit,
		limitStep: limitStep,
		refresh:   refresh,
	}
}

func (v *Dashboard) descriptor() fetch.Descriptor {
	return fetch.Markets(domain.MarketsParams{Order: v.order, PerPage: v.limit}, v.refresh)
}

// Activate mounts the markets query.
func (v *Dashboard) Activate() {
	if v.query == nil {
		v.query = fetch.NewQuery[[]domain.MarketCoin](v.ctx, v.client, v.descriptor(), v.notify)
	}
}

// Deactivate unmounts the markets query.
func (v *Dashboard) Deactivate() {
	if v.query != nil {
		v.query.Close()
		v.query = nil
	}
}

func (v *Dashboard) state() fetch.State[[]domain.MarketCoin] {
	if v.query == nil {
		return fetch.State[[]domain.MarketCoin]{}
	}
	return v.query.State()
}

func (v *Dashboard) selected() (domain.MarketCoin, bool) {
	coins := v.state().Data
	if v.cursor < 0 || v.cursor >= len(coins) {
		return domain.MarketCoin{}, false
	}
	return coins[v.cursor], true
}

func (v *Dashboard) apply() {
	if v.query != nil {
		v.query.SetDescriptor(v.descriptor())
	}
}

// HandleKey reacts to a key press while the dashboard is active.
func (v *Dashboard) HandleKey(msg tea.KeyMsg) tea.Cmd {
	coins := v.state().Data

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(coins)-1 {
			v.cursor++
		}
	case "s":
		v.order = v.order.Next()
		v.cursor = 0
		v.apply()
		return status("Sort: " + v.order.Label())
	case "l":
		v.limit = nextLimit(v.limit)
		v.apply()
		return status(fmt.Sprintf("Showing %d coins", v.limit))
	case "m":
		if len(coins) >= v.limit {
			v.limit += v.limitStep
			v.apply()
			return status(fmt.Sprintf("Loading %d coins...", v.limit))
		}
	case "r":
		if v.query != nil {
			v.query.Refetch()
		}
	case "w":
		if c, ok := v.selected(); ok {
			return toggleWatch(v.watchlist, c)
		}
	case "enter":
		if c, ok := v.selected(); ok {
			return openChart(c.ID, c.Name, c.Symbol)
		}
	}
	return nil
}

func nextLimit(cur int) int {
	for _, l := range limitOptions {
		if l > cur {
			return l
		}
	}
	return limitOptions[0]
}

func toggleWatch(w *service.WatchlistService, c domain.MarketCoin) tea.Cmd {
	watched, err := w.Toggle(c)
	if err != nil {
		slog.Error("Failed to update watchlist", slog.String("id", c.ID), slog.Any("error", err))
		return status("Watchlist update failed")
	}
	if watched {
		return status(c.Name + " added to watchlist")
	}
	return status(c.Name + " removed from watchlist")
}

// View renders the summary and the coin table.
func (v *Dashboard) View(s Styles, height int) string {
	st := v.state()
	if !st.HasData() && st.Err == nil {
		return s.Muted.Render("Loading market data...")
	}

	var b strings.Builder
	if st.Err != nil {
		b.WriteString(s.Error.Render("Error loading market data\n" + st.Err.Error() + "\n" + s.Muted.Render("Press r to retry")))
		b.WriteString("\n")
		if !st.HasData() {
			return b.String()
		}
	}

	sum := domain.SummarizeMarket(st.Data)
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d   %s %s\n",
		s.Muted.Render("Market Cap"), s.Text.Render(format.Currency(sum.TotalMarketCap)),
		s.Muted.Render("24h Volume"), s.Text.Render(format.Currency(sum.TotalVolume)),
		s.Muted.Render("Active Coins"), sum.ActiveCoins,
		s.Muted.Render("Sort"), s.Accent.Render(v.order.Label()),
	))

	b.WriteString(renderCoinList(s, st.Data, v.cursor, height-4, v.watchlist.Contains))
	b.WriteString("\n")

	footer := fmt.Sprintf("Top %d · updated %s", v.limit, format.Ago(st.UpdatedAt))
	if st.Loading {
		footer += " · refreshing..."
	}
	if len(st.Data) >= v.limit {
		footer += " · m: load more"
	}
	b.WriteString(s.Muted.Render(footer))
	return b.String()
}
