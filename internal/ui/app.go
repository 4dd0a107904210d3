package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/event"
	"coin_dash/internal/infra"
	"coin_dash/internal/search"
	"coin_dash/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tab int

const (
	tabDashboard tab = iota
	tabWatchlist
)

// Options are the App collaborators.
type Options struct {
	Config    *infra.Config
	Client    domain.MarketDataClient
	Watchlist *service.WatchlistService
	Theme     *service.ThemeService
	Bus       *event.Bus
}

// App is the root Bubble Tea model: header with search, tabs, the active
// view or chart, and a status footer.
type App struct {
	cfg     *infra.Config
	theme   *service.ThemeService
	bus     *event.Bus
	changes notifier
	styles  Styles

	tab       tab
	dashboard *Dashboard
	watchlist *Watchlist
	chart     *Chart
	search    *SearchBar
	coord     *search.Coordinator

	status        string
	width, height int
	closed        bool
}

// NewApp builds the app and mounts the dashboard. Close releases every
// query; the program calls it on quit.
func NewApp(ctx context.Context, opts Options) *App {
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	a := &App{
		cfg:     opts.Config,
		theme:   opts.Theme,
		bus:     bus,
		changes: newNotifier(),
		styles:  NewStyles(opts.Theme.Theme()),
	}

	d := deps{ctx: ctx, client: opts.Client, watchlist: opts.Watchlist, notify: a.changes.Notify}
	cfg := opts.Config
	a.dashboard = newDashboard(d, domain.SortOrder(cfg.Dashboard.DefaultOrder), cfg.Dashboard.DefaultLimit, cfg.Dashboard.LimitStep, cfg.DashboardRefresh())
	a.watchlist = newWatchlist(d, cfg.WatchlistRefresh())
	a.coord = search.New(opts.Client, bus, search.Options{
		Delay:      cfg.DebounceDelay(),
		MaxVisible: cfg.Search.MaxVisible,
	}, a.changes.Notify)
	a.search = newSearchBar(a.coord, bus)

	a.dashboard.Activate()
	return a
}

func (a *App) Init() tea.Cmd {
	return a.changes.wait()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return a, a.changes.wait()

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case openChartMsg:
		a.openChart(msg)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		a.Close()
		return tea.Quit
	}
	if a.search.focused {
		return a.search.HandleKey(msg)
	}

	switch msg.String() {
	case "q":
		a.Close()
		return tea.Quit
	case "/":
		a.search.Focus()
		return nil
	case "t":
		next := a.theme.Toggle()
		a.styles = NewStyles(next)
		a.bus.Publish(event.Event{Kind: event.ThemeChanged, Payload: next})
		return nil
	case "esc", "backspace":
		if a.chart != nil {
			a.closeChart()
			return nil
		}
		a.bus.Publish(event.Event{Kind: event.FocusLost})
		return nil
	case "tab", "shift+tab":
		if a.chart == nil {
			a.switchTab()
		}
		return nil
	}

	if a.chart != nil {
		return a.chart.HandleKey(msg)
	}
	if a.tab == tabWatchlist {
		return a.watchlist.HandleKey(msg)
	}
	return a.dashboard.HandleKey(msg)
}

func (a *App) switchTab() {
	if a.tab == tabDashboard {
		a.dashboard.Deactivate()
		a.watchlist.Activate()
		a.tab = tabWatchlist
		return
	}
	a.watchlist.Deactivate()
	a.dashboard.Activate()
	a.tab = tabDashboard
}

func (a *App) openChart(msg openChartMsg) {
	a.closeChart()
	d := a.dashboard.deps
	a.chart = newChart(d, msg, domain.TimeRange(a.cfg.Chart.DefaultDays))
}

func (a *App) closeChart() {
	if a.chart != nil {
		a.chart.Close()
		a.chart = nil
		// the watchlist may have changed from the chart
		a.watchlist.sync()
	}
}

// Close unmounts every query and the search coordinator.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.closeChart()
	a.dashboard.Deactivate()
	a.watchlist.Deactivate()
	a.coord.Close()
}

func (a *App) View() string {
	if a.closed {
		return ""
	}
	s := a.styles
	width := a.width
	if width <= 0 {
		width = 120
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Title.Render("CoinDash")+"  ",
		a.search.View(s),
		s.Muted.Render(fmt.Sprintf("   theme: %s", s.Theme)),
	)

	var tabs []string
	labels := []string{"Dashboard", fmt.Sprintf("Watchlist (%d)", a.watchlist.watchlist.Len())}
	for i, l := range labels {
		if tab(i) == a.tab {
			tabs = append(tabs, s.ActiveTab.Render(l))
		} else {
			tabs = append(tabs, s.Tab.Render(l))
		}
	}

	bodyHeight := a.height - 6
	var body string
	switch {
	case a.chart != nil:
		body = a.chart.View(s, width)
	case a.tab == tabWatchlist:
		body = a.watchlist.View(s, bodyHeight)
	default:
		body = a.dashboard.View(s, bodyHeight)
	}
	if panel := a.search.Panel(s); panel != "" {
		body = panel + "\n" + body
	}

	return strings.Join([]string{header, strings.Join(tabs, ""), body, a.footer(s)}, "\n")
}

func (a *App) footer(s Styles) string {
	m := infra.GlobalMetrics.Snapshot()
	stats := fmt.Sprintf("req %d · err %d · stale %d · avg %s",
		m.RequestsTotal, m.ErrorsTotal, m.StaleDiscarded, m.AvgLatency.Round(time.Millisecond))
	help := "/: search · tab: switch · s: sort · l: limit · r: refresh · w: watch · enter: chart · t: theme · q: quit"
	if a.status != "" {
		help = a.status + " · " + help
	}
	return s.Muted.Render(stats + "  " + help)
}
