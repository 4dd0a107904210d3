package ui

import (
	"fmt"
	"strings"

	"coin_dash/internal/domain"
	"coin_dash/internal/fetch"
	"coin_dash/internal/format"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// Chart shows the price history and key figures of one coin.
type Chart struct {
	deps
	id, name, symbol string
	rng              domain.TimeRange
	history          *fetch.Query[*domain.PriceHistory]
	detail           *fetch.Query[*domain.CoinDetail]
}

func newChart(d deps, msg openChartMsg, rng domain.TimeRange) *Chart {
	if !rng.Valid() {
		rng = domain.Range7D
	}
	c := &Chart{deps: d, id: msg.ID, name: msg.Name, symbol: msg.Symbol, rng: rng}
	c.history = fetch.NewQuery[*domain.PriceHistory](d.ctx, d.client, fetch.History(c.id, c.rng), d.notify)
	c.detail = fetch.NewQuery[*domain.CoinDetail](d.ctx, d.client, fetch.CoinDetail(c.id), d.notify)
	return c
}

// Close unmounts both queries.
func (c *Chart) Close() {
	c.history.Close()
	c.detail.Close()
}

// HandleKey switches range (1-5) or retries (r).
func (c *Chart) HandleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "1", "2", "3", "4", "5":
		c.rng = domain.TimeRanges[int(key[0]-'1')]
		c.history.SetDescriptor(fetch.History(c.id, c.rng))
	case "r":
		c.history.Refetch()
		if c.detail.State().Err != nil {
			c.detail.Refetch()
		}
	case "w":
		return toggleWatch(c.watchlist, domain.MarketCoin{ID: c.id, Name: c.name, Symbol: c.symbol, Image: c.image()})
	}
	return nil
}

func (c *Chart) image() string {
	if d := c.detail.State().Data; d != nil {
		return d.Image.Large
	}
	return ""
}

// View renders header, range selector, sparkline and coin details.
func (c *Chart) View(s Styles, width int) string {
	var b strings.Builder

	star := "☆"
	if c.watchlist.Contains(c.id) {
		star = "★"
	}
	b.WriteString(s.Title.Render(fmt.Sprintf("%s (%s)", c.name, strings.ToUpper(c.symbol))))
	b.WriteString(" " + s.Star.Render(star) + "\n")

	tabs := make([]string, 0, len(domain.TimeRanges))
	for i, r := range domain.TimeRanges {
		label := fmt.Sprintf("%d:%s", i+1, r.Label())
		if r == c.rng {
			tabs = append(tabs, s.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, s.Tab.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "") + "\n\n")

	b.WriteString(c.renderHistory(s, width))
	b.WriteString("\n\n")
	b.WriteString(c.renderDetail(s))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("1-5: range · r: retry · w: watch · esc: back"))
	return b.String()
}

func (c *Chart) renderHistory(s Styles, width int) string {
	st := c.history.State()
	switch {
	case st.Err != nil:
		return s.Error.Render("Failed to load chart data\n" + st.Err.Error() + "\n" + s.Muted.Render("Press r to retry"))
	case st.Data == nil:
		return s.Muted.Render("Loading chart...")
	case len(st.Data.Points) == 0:
		return s.Muted.Render("No chart data available")
	}

	h := st.Data
	prices := make([]decimal.Decimal, len(h.Points))
	for i, p := range h.Points {
		prices[i] = p.Price
	}
	first := prices[0]
	last, _ := h.Last()
	lo, hi := h.Bounds()

	style := s.Up
	change := decimal.Zero
	if !first.IsZero() {
		change = last.Price.Sub(first).Div(first).Mul(decimal.NewFromInt(100))
	}
	if change.IsNegative() {
		style = s.Down
	}

	chartWidth := max(width-4, 10)
	line := style.Render(Sparkline(prices, chartWidth))

	labels := fmt.Sprintf("%s %s   %s %s   %s %s   %s",
		s.Muted.Render("Low"), s.Text.Render(format.Currency(lo)),
		s.Muted.Render("High"), s.Text.Render(format.Currency(hi)),
		s.Muted.Render("Last"), s.Text.Render(format.Currency(last.Price)),
		s.Change(change, 0),
	)
	when := s.Muted.Render(fmt.Sprintf("%s → %s (%s)",
		h.Points[0].Time.Format("Jan 02 15:04"), last.Time.Format("Jan 02 15:04"), c.rng.Label()))

	if st.Loading {
		when += s.Muted.Render(" · refreshing...")
	}
	return s.Panel.Render(line + "\n" + labels + "\n" + when)
}

func (c *Chart) renderDetail(s Styles) string {
	st := c.detail.State()
	d := st.Data
	if d == nil {
		if st.Err != nil {
			return s.Muted.Render("Coin details unavailable")
		}
		return s.Muted.Render("Loading details...")
	}

	md := d.MarketData
	rows := [][2]string{
		{"Price", format.Currency(d.PriceIn(domain.DefaultCurrency))},
		{"Market Cap", format.Currency(md.MarketCap[domain.DefaultCurrency])},
		{"All-Time High", format.Currency(md.ATH[domain.DefaultCurrency])},
		{"All-Time Low", format.Currency(md.ATL[domain.DefaultCurrency])},
		{"Circulating", format.Number(md.CirculatingSupply)},
		{"Max Supply", format.Number(md.MaxSupply)},
	}
	if d.MarketCapRank > 0 {
		rows = append([][2]string{{"Rank", fmt.Sprintf("#%d", d.MarketCapRank)}}, rows...)
	}
	if hp := d.Homepage(); hp != "" {
		rows = append(rows, [2]string{"Website", hp})
	}
	if e, ok := c.watchlist.Entry(c.id); ok && e.IconPath != "" {
		rows = append(rows, [2]string{"Icon", e.IconPath})
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(s.Muted.Width(15).Render(r[0]) + s.Text.Render(r[1]) + "\n")
	}
	if desc := firstSentence(d.Description.En); desc != "" {
		b.WriteString(s.Muted.Render(truncate(desc, 160)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
