package tui

import "github.com/charmbracelet/lipgloss"

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	dimWhite    = lipgloss.Color("#B0B0B0")

	// PanelStyle frames the profile summary.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 2)

	// TitleStyle is used for panel headings.
	TitleStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			PaddingLeft(2)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(dimWhite).
				Faint(true)
)
