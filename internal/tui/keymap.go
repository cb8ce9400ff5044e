package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	Interrupt key.Binding
	ForceQuit key.Binding
	Close     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Interrupt: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "interromper"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancelar"),
		),
		Close: key.NewBinding(
			key.WithKeys("enter", "q", "esc", "ctrl+c"),
			key.WithHelp("enter", "fechar"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Interrupt, k.ForceQuit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
