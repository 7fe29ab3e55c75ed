package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Escape      key.Binding
	Street      key.Binding
	Satellite   key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Focus       key.Binding
	Activate    key.Binding
	Info        key.Binding
	TogglePanel key.Binding
	Help        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Street:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "street")),
		Satellite:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "satellite")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "map/panel")),
		Activate:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		Info:        key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
		TogglePanel: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "panel")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Street, k.Satellite, k.Focus, k.TogglePanel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Street, k.Satellite},
		{k.Focus, k.Activate, k.Info, k.TogglePanel},
		{k.Escape, k.Help, k.Quit},
	}
}
