package ui

import (
	"fmt"
	"strings"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/fetch"
	"coin_dash/internal/format"

	tea "github.com/charmbracelet/bubbletea"
)

// Watchlist shows live prices for the watched coins. No query is mounted
// while the watchlist is empty.
type Watchlist struct {
	deps
	query        *fetch.Query[[]domain.MarketCoin]
	refresh      time.Duration
	cursor       int
	active       bool
	confirmClear bool
}

func newWatchlist(d deps, refresh time.Duration) *Watchlist {
	return &Watchlist{deps: d, refresh: refresh}
}

// Activate mounts the query for the current ids.
func (v *Watchlist) Activate() {
	v.active = true
	v.sync()
}

// Deactivate unmounts the query.
func (v *Watchlist) Deactivate() {
	v.active = false
	v.confirmClear = false
	v.closeQuery()
}

func (v *Watchlist) closeQuery() {
	if v.query != nil {
		v.query.Close()
		v.query = nil
	}
}

// sync aligns the query with the watchlist contents.
func (v *Watchlist) sync() {
	if !v.active {
		return
	}
	ids := v.watchlist.IDs()
	if len(ids) == 0 {
		v.closeQuery()
		v.cursor = 0
		return
	}
	d := fetch.WatchlistMarkets(ids, v.refresh)
	if v.query == nil {
		v.query = fetch.NewQuery[[]domain.MarketCoin](v.ctx, v.client, d, v.notify)
		return
	}
	v.query.SetDescriptor(d)
}

// coins returns the fetched coins that are still watched, in watchlist order.
func (v *Watchlist) coins() []domain.MarketCoin {
	if v.query == nil {
		return nil
	}
	byID := make(map[string]domain.MarketCoin)
	for _, c := range v.query.State().Data {
		byID[c.ID] = c
	}
	out := make([]domain.MarketCoin, 0, len(byID))
	for _, id := range v.watchlist.IDs() {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// HandleKey reacts to a key press while the watchlist is active.
func (v *Watchlist) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if v.confirmClear {
		v.confirmClear = false
		if msg.String() == "y" {
			if err := v.watchlist.Clear(); err != nil {
				return status("Failed to clear watchlist")
			}
			v.sync()
			return status("Watchlist cleared")
		}
		return nil
	}

	coins := v.coins()
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(coins)-1 {
			v.cursor++
		}
	case "r":
		if v.query != nil {
			v.query.Refetch()
		}
	case "x", "w":
		if v.cursor < len(coins) {
			c := coins[v.cursor]
			cmd := toggleWatch(v.watchlist, c)
			if v.cursor > 0 && v.cursor >= len(coins)-1 {
				v.cursor--
			}
			v.sync()
			return cmd
		}
	case "c":
		if v.watchlist.Len() > 0 {
			v.confirmClear = true
		}
	case "enter":
		if v.cursor < len(coins) {
			c := coins[v.cursor]
			return openChart(c.ID, c.Name, c.Symbol)
		}
	}
	return nil
}

// View renders the summary and the watched coins.
func (v *Watchlist) View(s Styles, height int) string {
	if v.watchlist.Len() == 0 {
		return s.Panel.Render(s.Text.Render("Your watchlist is empty") + "\n" +
			s.Muted.Render("Press w on a coin in the dashboard to start tracking it."))
	}
	if v.query == nil {
		return ""
	}

	st := v.query.State()
	if !st.HasData() && st.Err == nil {
		return s.Muted.Render("Loading watchlist...")
	}

	var b strings.Builder
	if st.Err != nil {
		b.WriteString(s.Error.Render("Error loading watchlist\n" + st.Err.Error() + "\n" + s.Muted.Render("Press r to retry")))
		b.WriteString("\n")
	}

	coins := v.coins()
	sum := domain.SummarizeWatchlist(coins)
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d\n",
		s.Muted.Render("Portfolio Value"), s.Text.Render(format.Currency(sum.PortfolioValue)),
		s.Muted.Render("Avg 24h Change"), s.Change(sum.AverageChange24h, 0),
		s.Muted.Render("Coins"), sum.Count,
	))

	b.WriteString(renderCoinList(s, coins, v.cursor, height-4, func(string) bool { return true }))
	b.WriteString("\n")

	if v.confirmClear {
		b.WriteString(s.Accent.Render("Remove all coins from the watchlist? (y/n)"))
	} else {
		b.WriteString(s.Muted.Render("x: remove · c: clear all · updated " + format.Ago(st.UpdatedAt)))
	}
	return b.String()
}
