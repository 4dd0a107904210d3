package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// changedMsg tells the program that some query or the search state moved.
type changedMsg struct{}

// notifier coalesces change callbacks from background goroutines into a
// single pending signal that the Bubble Tea loop drains.
type notifier chan struct{}

func newNotifier() notifier {
	return make(notifier, 1)
}

// Notify never blocks; a pending signal already covers this change.
func (n notifier) Notify() {
	select {
	case n <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next signal.
func (n notifier) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-n; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// openChartMsg asks the app to show the chart for a coin.
type openChartMsg struct {
	ID     string
	Name   string
	Symbol string
}

func openChart(id, name, symbol string) tea.Cmd {
	return func() tea.Msg {
		return openChartMsg{ID: id, Name: name, Symbol: symbol}
	}
}

// statusMsg is a transient footer message.
type statusMsg string

func status(s string) tea.Cmd {
	return func() tea.Msg { return statusMsg(s) }
}
