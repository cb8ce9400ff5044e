// Package themes holds the color schemes of the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	// Gradient endpoints of the progress bar.
	ProgressStart string
	ProgressEnd   string
}

// Default is the default theme.
var Default = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	RoundedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),

	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")).
		Bold(true),

	ProgressStart: "#7c3aed",
	ProgressEnd:   "#a78bfa",
}

// Plain is a colorless theme for logs and tests.
var Plain = Theme{
	Title:         lipgloss.NewStyle().MarginBottom(1),
	Subtitle:      lipgloss.NewStyle(),
	Normal:        lipgloss.NewStyle(),
	Bold:          lipgloss.NewStyle(),
	Muted:         lipgloss.NewStyle(),
	RoundedBox:    lipgloss.NewStyle().Padding(1, 2),
	StatusSuccess: lipgloss.NewStyle(),
	StatusWarning: lipgloss.NewStyle(),
	StatusError:   lipgloss.NewStyle(),
	StatusInfo:    lipgloss.NewStyle(),
	ProgressStart: "#ffffff",
	ProgressEnd:   "#ffffff",
}
