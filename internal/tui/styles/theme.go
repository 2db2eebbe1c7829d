package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette, limited to the shades the session view uses.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Overlay0 = lipgloss.Color("#6c7086")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Teal   = lipgloss.Color("#94e2d5")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(1, 2).
			Margin(1, 0)

	TimestampStyle = lipgloss.NewStyle().Foreground(Subtext0)
	EventStyle     = lipgloss.NewStyle().Foreground(Teal).Italic(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// Line renders a modem line name coloured by its level.
func Line(name string, high bool) string {
	if high {
		return lipgloss.NewStyle().Foreground(Green).Render(name + "↑")
	}
	return lipgloss.NewStyle().Foreground(Overlay0).Render(name + "↓")
}
