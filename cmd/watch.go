/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	nullmodem "github.com/allbin/go-nullmodem"
	"github.com/allbin/go-nullmodem/internal/tui/components"
	"github.com/allbin/go-nullmodem/internal/tui/keys"
	"github.com/allbin/go-nullmodem/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchPair int

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive dashboard over a null-modem pair",
	Long: `Open both sides of a virtual null-modem pair and watch the wire.

The dashboard shows live signal levels and transition counters for both
endpoints. Keys drive the control lines of the selected side, so you can
observe the wiring rule (RTS -> partner CTS, DTR -> partner DSR+DCD) and
the edge counters in real time.

Examples:
  nullmodem watch
  nullmodem watch --pair 1`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWatchTUI(watchPair); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVarP(&watchPair, "pair", "p", 0, "pair to watch (pair k is endpoints 2k and 2k+1)")
}

// signalEventMsg reports a line transition observed on one side of the pair
type signalEventMsg struct {
	side    int
	changed nullmodem.SignalMask
	err     error
}

// watchModel represents the Bubble Tea model for the watch command
type watchModel struct {
	ports    [2]nullmodem.Port
	labels   [2]string
	selected int

	table     *components.SignalTable
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.WatchKeys

	lastEvent string
	ready     bool
}

func runWatchTUI(pair int) error {
	ports := viper.GetInt("ports")
	reg, err := nullmodem.NewRegistry(nullmodem.WithPortCount(ports))
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	if pair < 0 || pair >= reg.PairCount() {
		return fmt.Errorf("pair %d out of range (registry has %d pairs)", pair, reg.PairCount())
	}

	indexA := 2 * pair
	indexB := nullmodem.PartnerIndex(indexA)

	a, err := reg.Open(indexA)
	if err != nil {
		return err
	}
	defer a.Close()
	b, err := reg.Open(indexB)
	if err != nil {
		return err
	}
	defer b.Close()

	m := &watchModel{
		ports:     [2]nullmodem.Port{a, b},
		labels:    [2]string{fmt.Sprintf("tnt%d", indexA), fmt.Sprintf("tnt%d", indexB)},
		table:     components.NewSignalTable(0, 0),
		statusBar: components.NewStatusBar("Null-Modem Watch"),
		help:      help.New(),
		keys:      keys.NewWatchKeys(),
		lastEvent: "no transitions yet",
	}
	m.refresh()

	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for side, port := range m.ports {
		// One waiter per side feeds edges into the UI; the wire itself does
		// the bookkeeping.
		go func(side int, port nullmodem.Port) {
			for {
				_, changed, err := port.WaitForSignalChangeContext(ctx, nullmodem.StatusSignals)
				p.Send(signalEventMsg{side: side, changed: changed, err: err})
				if err != nil {
					return
				}
			}
		}(side, port)

		// Drain forwarded probe bytes so the inbound stream stays empty
		go func(port nullmodem.Port) {
			buf := make([]byte, 256)
			for {
				if _, err := port.ReadContext(ctx, buf); err != nil {
					return
				}
			}
		}(port)
	}

	_, err = p.Run()
	return err
}

// refresh pulls both sides' state into the table
func (m *watchModel) refresh() {
	var sides [2]components.SideState
	for i, port := range m.ports {
		signals, err := port.GetModemSignals()
		if err != nil {
			continue
		}
		counts, err := port.TransitionCounts()
		if err != nil {
			continue
		}
		sides[i] = components.SideState{Label: m.labels[i], Signals: signals, Counts: counts}
	}
	m.table.Refresh(sides[0], sides[1])
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		helpHeight := 2
		m.table.SetSize(msg.Width, msg.Height-statusBarHeight-helpHeight-2)
		m.statusBar.SetWidth(msg.Width)
		m.ready = true

	case signalEventMsg:
		if msg.err != nil {
			if errors.Is(msg.err, nullmodem.ErrInterrupted) || errors.Is(msg.err, nullmodem.ErrNoChange) {
				return m, nil
			}
			m.lastEvent = fmt.Sprintf("wait error: %v", msg.err)
			return m, nil
		}
		m.lastEvent = fmt.Sprintf("%s saw edges on %s", m.labels[msg.side], describeMask(msg.changed))
		m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.SwitchSide):
			m.selected = 1 - m.selected

		case key.Matches(msg, m.keys.ToggleRTS):
			m.toggle(nullmodem.SignalRTS)

		case key.Matches(msg, m.keys.ToggleDTR):
			m.toggle(nullmodem.SignalDTR)

		case key.Matches(msg, m.keys.ToggleLOOP):
			m.toggle(nullmodem.SignalLOOP)

		case key.Matches(msg, m.keys.SendProbe):
			port := m.ports[m.selected]
			if _, err := port.Write([]byte{0x55}); err == nil {
				m.lastEvent = fmt.Sprintf("%s sent a probe byte", m.labels[m.selected])
			}
			m.refresh()
		}
	}

	return m, nil
}

// toggle flips one control line on the selected side
func (m *watchModel) toggle(signal nullmodem.SignalMask) {
	port := m.ports[m.selected]
	signals, err := port.GetModemSignals()
	if err != nil {
		return
	}
	asserted := false
	switch signal {
	case nullmodem.SignalRTS:
		asserted = signals.RTS
	case nullmodem.SignalDTR:
		asserted = signals.DTR
	case nullmodem.SignalLOOP:
		asserted = signals.LOOP
	}
	if asserted {
		port.SetModemSignals(0, signal)
	} else {
		port.SetModemSignals(signal, 0)
	}
	m.refresh()
}

func (m *watchModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	content := styles.ContentBorderStyle.Render(m.table.View())
	statusBar := m.statusBar.Render(m.labels[m.selected], m.lastEvent)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		statusBar,
		m.help.View(m.keys),
	)
}

func describeMask(mask nullmodem.SignalMask) string {
	names := ""
	add := func(name string) {
		if names != "" {
			names += ","
		}
		names += name
	}
	if mask&nullmodem.SignalCTS != 0 {
		add("CTS")
	}
	if mask&nullmodem.SignalDSR != 0 {
		add("DSR")
	}
	if mask&nullmodem.SignalRI != 0 {
		add("RI")
	}
	if mask&nullmodem.SignalDCD != 0 {
		add("DCD")
	}
	if names == "" {
		return "nothing"
	}
	return names
}
