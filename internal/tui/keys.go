package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap 定义了所有按键绑定，help 组件会用它来渲染底部提示。
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Search  key.Binding
	SortN   key.Binding
	SortC   key.Binding
	SortM   key.Binding
	NextTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Kill    key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Export  key.Binding
	Reload  key.Binding
	Theme   key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		SortN: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort name"),
		),
		SortC: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sort cpu"),
		),
		SortM: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sort mem"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		Tab1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "processes")),
		Tab2: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "system")),
		Tab3: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "settings")),
		Kill: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "kill parent"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "kill parent"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload logs"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.SortN, k.SortC, k.SortM, k.Kill, k.Export, k.NextTab, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped by area.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Search, k.SortN, k.SortC, k.SortM},
		{k.Kill, k.Delete, k.Confirm, k.Cancel},
		{k.NextTab, k.Tab1, k.Tab2, k.Tab3},
		{k.Export, k.Reload, k.Theme, k.Refresh},
		{k.Help, k.Quit},
	}
}

// confirmKeys is the footer shown while a kill waits for confirmation.
type confirmKeys struct{ keyMap }

func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Quit}
}

func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// searchKeys is the footer shown while the filter input has focus.
type searchKeys struct{ keyMap }

func (k searchKeys) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "done")),
		k.Delete,
	}
}

func (k searchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
