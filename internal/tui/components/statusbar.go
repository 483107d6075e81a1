package components

import (
	"fmt"

	"github.com/allbin/go-nullmodem/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar is the single-line footer of the dashboard
type StatusBar struct {
	title string
	width int
}

func NewStatusBar(title string) *StatusBar {
	return &StatusBar{title: title}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// Render produces the footer line: title, the side key presses act on, and
// the last event observed on the wire
func (sb *StatusBar) Render(selected string, lastEvent string) string {
	left := styles.TitleStyle.Render(sb.title)
	side := styles.SelectedSideStyle.Render(fmt.Sprintf("controlling %s", selected))
	event := styles.UnselectedSideStyle.Render(lastEvent)

	bar := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", side, "  ", event)
	if sb.width > 0 {
		return styles.StatusBarStyle.Width(sb.width).Render(bar)
	}
	return styles.StatusBarStyle.Render(bar)
}
