package confirm

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the decision prompt.
type KeyMap struct {
	Accept key.Binding // Accept the applied edit
	Reject key.Binding // Reject the applied edit
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Accept: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "N", "esc", "ctrl+c"),
			key.WithHelp("n", "reject"),
		),
	}
}
