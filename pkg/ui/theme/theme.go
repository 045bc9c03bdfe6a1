// Package theme is the palette shared by the watcher screens and the
// one-shot quote output.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Violet = lipgloss.Color("#6D28D9")
	Lilac  = lipgloss.Color("#A78BFA")
	Green  = lipgloss.Color("#10B981")
	Red    = lipgloss.Color("#EF4444")
	Amber  = lipgloss.Color("#F59E0B")
	Gray   = lipgloss.Color("#6B7280")
	Slate  = lipgloss.Color("#374151")
	White  = lipgloss.Color("#FFFFFF")
)

var (
	Box = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Slate).Padding(0, 1)

	Title  = lipgloss.NewStyle().Bold(true).Foreground(White).Background(Violet).Padding(0, 2)
	Header = lipgloss.NewStyle().Bold(true).Foreground(Lilac)
	Value  = lipgloss.NewStyle().Bold(true).Foreground(White)
	Faint  = lipgloss.NewStyle().Foreground(Gray)

	Good     = lipgloss.NewStyle().Foreground(Green)
	GoodBold = Good.Bold(true)
	Bad      = lipgloss.NewStyle().Foreground(Red)
	BadBold  = Bad.Bold(true)
	Warn     = lipgloss.NewStyle().Foreground(Amber)

	Paused = Warn.Bold(true)
	Help   = Faint.Padding(0, 1)
)
