package ui

import (
	"fmt"
	"strings"

	"coin_dash/internal/event"
	"coin_dash/internal/search"

	tea "github.com/charmbracelet/bubbletea"
)

// SearchBar is the header input and its results panel.
type SearchBar struct {
	coord   *search.Coordinator
	bus     *event.Bus
	focused bool
	cursor  int
}

func newSearchBar(coord *search.Coordinator, bus *event.Bus) *SearchBar {
	return &SearchBar{coord: coord, bus: bus}
}

// Focus gives the bar keyboard input.
func (b *SearchBar) Focus() {
	b.focused = true
	b.coord.Focus()
}

// Blur removes focus and tells listeners (the coordinator) about it.
func (b *SearchBar) Blur() {
	b.focused = false
	b.cursor = 0
	b.bus.Publish(event.Event{Kind: event.FocusLost})
}

// HandleKey edits the query or navigates results while focused.
func (b *SearchBar) HandleKey(msg tea.KeyMsg) tea.Cmd {
	rows, _ := b.coord.Visible()

	switch msg.Type {
	case tea.KeyEsc:
		b.Blur()
		return nil
	case tea.KeyEnter:
		if !b.coord.ResultsVisible() || b.cursor >= len(rows) {
			return nil
		}
		coin := b.coord.Select(rows[b.cursor])
		b.focused = false
		b.cursor = 0
		return openChart(coin.ID, coin.Name, coin.Symbol)
	case tea.KeyUp:
		if b.cursor > 0 {
			b.cursor--
		}
		return nil
	case tea.KeyDown:
		if b.cursor < len(rows)-1 {
			b.cursor++
		}
		return nil
	case tea.KeyBackspace:
		q := []rune(b.coord.Query())
		if len(q) > 0 {
			b.setQuery(string(q[:len(q)-1]))
		}
		return nil
	case tea.KeyCtrlU:
		b.setQuery("")
		return nil
	case tea.KeySpace:
		b.setQuery(b.coord.Query() + " ")
		return nil
	case tea.KeyRunes:
		b.setQuery(b.coord.Query() + string(msg.Runes))
		return nil
	}
	return nil
}

func (b *SearchBar) setQuery(q string) {
	b.cursor = 0
	b.coord.SetQuery(q)
}

// View renders the input line.
func (b *SearchBar) View(s Styles) string {
	q := b.coord.Query()
	switch {
	case b.focused:
		return s.Accent.Render("/ ") + s.Text.Render(q) + s.Accent.Render("▌")
	case q != "":
		return s.Muted.Render("/ " + q)
	default:
		return s.Muted.Render("/ Search coins...")
	}
}

// Panel renders the results dropdown, empty when hidden.
func (b *SearchBar) Panel(s Styles) string {
	if b.coord.Loading() && !b.coord.ResultsVisible() {
		return s.Muted.Render("Searching...")
	}
	if !b.coord.ResultsVisible() {
		return ""
	}

	rows, more := b.coord.Visible()
	if len(rows) == 0 {
		return s.Panel.Render(s.Muted.Render("No coins found"))
	}

	var out strings.Builder
	for i, c := range rows {
		rank := "-"
		if c.MarketCapRank > 0 {
			rank = fmt.Sprintf("#%d", c.MarketCapRank)
		}
		line := fmt.Sprintf("%-6s %s %s", rank, c.Name, s.Muted.Render(strings.ToUpper(c.Symbol)))
		if i == b.cursor && b.focused {
			line = s.Selected.Render(line)
		}
		out.WriteString(line)
		if i < len(rows)-1 {
			out.WriteString("\n")
		}
	}
	if more > 0 {
		out.WriteString("\n" + s.Muted.Render(fmt.Sprintf("+%d more results...", more)))
	}
	return s.Panel.Render(out.String())
}
