package components

import (
	"fmt"

	nullmodem "github.com/allbin/go-nullmodem"
	"github.com/allbin/go-nullmodem/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// SideState is one endpoint's view for the dashboard
type SideState struct {
	Label   string
	Signals nullmodem.ModemSignals
	Counts  nullmodem.TransitionCounts
}

// SignalTable renders both sides of a null-modem pair: signal levels on
// the left, transition counters on the right
type SignalTable struct {
	table table.Model
}

func NewSignalTable(width, height int) *SignalTable {
	if width < 60 {
		width = 60
	}
	if height < 11 {
		height = 11
	}

	columns := []table.Column{
		{Title: "Signal", Width: 10},
		{Title: "A", Width: 6},
		{Title: "B", Width: 6},
		{Title: "A edges", Width: 10},
		{Title: "B edges", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	return &SignalTable{table: t}
}

func (st *SignalTable) SetSize(width, height int) {
	st.table.SetWidth(width)
	st.table.SetHeight(height)
}

// Refresh rebuilds the rows from both sides' current state
func (st *SignalTable) Refresh(a, b SideState) {
	st.table.SetColumns([]table.Column{
		{Title: "Signal", Width: 10},
		{Title: a.Label, Width: 6},
		{Title: b.Label, Width: 6},
		{Title: a.Label + " edges", Width: 11},
		{Title: b.Label + " edges", Width: 11},
	})

	rows := []table.Row{
		{"RTS", level(a.Signals.RTS), level(b.Signals.RTS), "-", "-"},
		{"DTR", level(a.Signals.DTR), level(b.Signals.DTR), "-", "-"},
		{"LOOP", level(a.Signals.LOOP), level(b.Signals.LOOP), "-", "-"},
		{"CTS", level(a.Signals.CTS), level(b.Signals.CTS), count(a.Counts.CTS), count(b.Counts.CTS)},
		{"DSR", level(a.Signals.DSR), level(b.Signals.DSR), count(a.Counts.DSR), count(b.Counts.DSR)},
		{"RI", level(a.Signals.RI), level(b.Signals.RI), count(a.Counts.RI), count(b.Counts.RI)},
		{"DCD", level(a.Signals.DCD), level(b.Signals.DCD), count(a.Counts.DCD), count(b.Counts.DCD)},
		{"TX bytes", "", "", count(a.Counts.TX), count(b.Counts.TX)},
		{"RX bytes", "", "", count(a.Counts.RX), count(b.Counts.RX)},
	}
	st.table.SetRows(rows)
}

func (st *SignalTable) View() string {
	return st.table.View()
}

func level(high bool) string {
	if high {
		return "HIGH"
	}
	return "low"
}

func count(n uint32) string {
	return fmt.Sprintf("%d", n)
}
