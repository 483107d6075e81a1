package keys

import "github.com/charmbracelet/bubbles/key"

// WatchKeys are the key bindings for the pair dashboard
type WatchKeys struct {
	Quit       key.Binding
	Help       key.Binding
	SwitchSide key.Binding
	ToggleRTS  key.Binding
	ToggleDTR  key.Binding
	ToggleLOOP key.Binding
	SendProbe  key.Binding
}

func NewWatchKeys() WatchKeys {
	return WatchKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		SwitchSide: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch side"),
		),
		ToggleRTS: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle RTS"),
		),
		ToggleDTR: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle DTR"),
		),
		ToggleLOOP: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle LOOP"),
		),
		SendProbe: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "send probe byte"),
		),
	}
}

func (k WatchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchSide, k.ToggleRTS, k.ToggleDTR, k.Help, k.Quit}
}

func (k WatchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchSide, k.ToggleRTS, k.ToggleDTR, k.ToggleLOOP},
		{k.SendProbe, k.Help, k.Quit},
	}
}
