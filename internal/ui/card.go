package ui

import (
	"fmt"
	"strings"

	"coin_dash/internal/domain"
	"coin_dash/internal/format"

	"github.com/charmbracelet/lipgloss"
)

// Column widths of a coin row.
const (
	colRank   = 5
	colStar   = 2
	colName   = 22
	colPrice  = 14
	colChange = 10
	colCap    = 11
	colRange  = 23
)

func cell(s lipgloss.Style, text string, width int, align lipgloss.Position) string {
	return s.Width(width).MaxWidth(width).Align(align).Render(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// coinHeader renders the column titles matching renderCoinRow.
func coinHeader(s Styles) string {
	m := s.Muted
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(m, "#", colRank, lipgloss.Left),
		cell(m, "", colStar, lipgloss.Left),
		cell(m, "Coin", colName, lipgloss.Left),
		cell(m, "Price", colPrice, lipgloss.Right),
		cell(m, "24h", colChange, lipgloss.Right),
		cell(m, "7d", colChange, lipgloss.Right),
		cell(m, "Mkt Cap", colCap, lipgloss.Right),
		cell(m, "Volume", colCap, lipgloss.Right),
		cell(m, "24h Range", colRange, lipgloss.Right),
	)
}

// renderCoinRow renders one coin card as a table row.
func renderCoinRow(s Styles, c domain.MarketCoin, selected, watched bool) string {
	star := "☆"
	if watched {
		star = "★"
	}
	name := truncate(fmt.Sprintf("%s %s", c.Name, strings.ToUpper(c.Symbol)), colName-1)
	rng := format.Currency(c.Low24h) + " - " + format.Currency(c.High24h)

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		cell(s.Muted, fmt.Sprintf("%d", c.MarketCapRank), colRank, lipgloss.Left),
		cell(s.Star, star, colStar, lipgloss.Left),
		cell(s.Text, name, colName, lipgloss.Left),
		cell(s.Text, format.Currency(c.CurrentPrice), colPrice, lipgloss.Right),
		s.Change(c.PriceChangePct24h, colChange),
		s.Change(c.PriceChangePct7d, colChange),
		cell(s.Text, format.Currency(c.MarketCap), colCap, lipgloss.Right),
		cell(s.Muted, format.Currency(c.TotalVolume), colCap, lipgloss.Right),
		cell(s.Muted, truncate(rng, colRange-1), colRange, lipgloss.Right),
	)
	if selected {
		return s.Selected.Render(row)
	}
	return row
}

// renderCoinList renders rows around cursor so that it stays visible in height rows.
func renderCoinList(s Styles, coins []domain.MarketCoin, cursor, height int, watched func(string) bool) string {
	if height <= 0 {
		height = len(coins)
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(coins))

	var b strings.Builder
	b.WriteString(coinHeader(s))
	for i := start; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(renderCoinRow(s, coins[i], i == cursor, watched(coins[i].ID)))
	}
	return b.String()
}
