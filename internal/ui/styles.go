// Package ui is the terminal front end: Bubble Tea models rendered with Lip Gloss.
package ui

import (
	"coin_dash/internal/domain"
	"coin_dash/internal/format"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type palette struct {
	text, muted, accent, up, down, selected, border, warn string
}

var palettes = map[domain.Theme]palette{
	domain.ThemeDark: {
		text: "#e5e7eb", muted: "#9ca3af", accent: "#a3b3ff",
		up: "#22c55e", down: "#ef4444", selected: "#1f2937",
		border: "#374151", warn: "#f59e0b",
	},
	domain.ThemeLight: {
		text: "#111827", muted: "#6b7280", accent: "#4f46e5",
		up: "#16a34a", down: "#dc2626", selected: "#e5e7eb",
		border: "#d1d5db", warn: "#b45309",
	},
}

// Styles is the set of Lip Gloss styles for one theme.
type Styles struct {
	Theme     domain.Theme
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Up        lipgloss.Style
	Down      lipgloss.Style
	Selected  lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Panel     lipgloss.Style
	Error     lipgloss.Style
	Star      lipgloss.Style
}

// NewStyles builds the styles for theme, dark when unknown.
func NewStyles(theme domain.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		theme = domain.ThemeDark
		p = palettes[theme]
	}

	return Styles{
		Theme:     theme,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)),
		Up:        lipgloss.NewStyle().Foreground(lipgloss.Color(p.up)),
		Down:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.down)),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color(p.selected)).Bold(true),
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color(p.muted)),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(lipgloss.Color(p.accent)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.down)).
			Foreground(lipgloss.Color(p.down)).
			Padding(0, 1),
		Star: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warn)),
	}
}

// Change renders a percentage green or red by sign.
func (s Styles) Change(v decimal.Decimal, width int) string {
	style := s.Up
	if v.IsNegative() {
		style = s.Down
	}
	return style.Width(width).Align(lipgloss.Right).Render(format.Percentage(v))
}
