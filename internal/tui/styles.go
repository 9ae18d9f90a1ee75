package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	Title   lipgloss.Style
	Section lipgloss.Style
	Offline lipgloss.Style
	Online  lipgloss.Style

	// Command list
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemFrames   lipgloss.Style

	// Profile fields
	Label lipgloss.Style
	Value lipgloss.Style

	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	Help lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#00807A", Dark: "#3CC8BE"}
	dim := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	text := lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}
	good := lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),

		Section: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Offline: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),

		Online: lipgloss.NewStyle().
			Foreground(good).
			Bold(true),

		Item: lipgloss.NewStyle(),

		ItemSelected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		ItemFrames: lipgloss.NewStyle().
			Foreground(dim),

		Label: lipgloss.NewStyle().
			Foreground(dim).
			Width(14),

		Value: lipgloss.NewStyle().
			Foreground(text),

		Muted: lipgloss.NewStyle().
			Foreground(dim),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),

		Success: lipgloss.NewStyle().
			Foreground(good),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")),

		Help: lipgloss.NewStyle().
			Foreground(dim).
			MarginTop(1),
	}
}
