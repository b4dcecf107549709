package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextViz key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextViz: key.NewBinding(
			key.WithKeys("v", "tab"),
			key.WithHelp("v", "next viz"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextViz, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
