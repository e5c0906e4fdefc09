package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
// Function keys and navigation work in every mode; the letter bindings only
// apply while scrolling, since search and create mode route runes to the inputs.
type KeyMap struct {
	Quit         key.Binding
	Help         key.Binding
	Create       key.Binding
	Sync         key.Binding
	Reset        key.Binding
	ToggleSearch key.Binding
	NextField    key.Binding
	Confirm      key.Binding
	Delete       key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding

	// Scrolling only
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Yank         key.Binding
	RemoveFilter key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Create: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "create"),
		),
		Sync: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("F5", "sync"),
		),
		Reset: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "reset"),
		),
		ToggleSearch: key.NewBinding(
			key.WithKeys("`"),
			key.WithHelp("`", "search"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next field"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("Del", "delete"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "unselect"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "move up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "move down"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yank url"),
		),
		RemoveFilter: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "drop filter"),
		),
	}
}
