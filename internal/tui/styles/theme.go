package styles

import (
	"github.com/allbin/go-nullmodem/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Signal state styles
	SignalHighStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	SignalLowStyle = lipgloss.NewStyle().
			Foreground(colors.Surface2)

	// Side selection styles
	SelectedSideStyle = lipgloss.NewStyle().
				Foreground(colors.Peach).
				Bold(true)

	UnselectedSideStyle = lipgloss.NewStyle().
				Foreground(colors.Subtext0)

	// Status bar styles
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Background(colors.Surface0).
			Padding(0, 1)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)
)
