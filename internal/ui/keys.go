package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit    key.Binding
	Help    key.Binding
	Escape  key.Binding
	Refresh key.Binding
	Search  key.Binding

	// View switching
	ViewChains    key.Binding
	ViewStores    key.Binding
	ViewProducts  key.Binding
	ViewFavorites key.Binding
	ViewCompare   key.Binding
	ViewSettings  key.Binding
	ViewArchives  key.Binding
	ViewLogs      key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Confirm  key.Binding
	Tab      key.Binding

	// Row actions
	Favorite   key.Binding
	Compare    key.Binding
	Sort       key.Binding
	Reverse    key.Binding
	Filter     key.Binding
	AltFilter  key.Binding
	Remove     key.Binding
	ClearAll   key.Binding
	NearMe     key.Binding
	Date       key.Binding
	Special    key.Binding
	Preferred  key.Binding
	LevelCycle key.Binding
	Follow     key.Binding
	Sidebar    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back / close"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh / retry"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),

		ViewChains: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Chains"),
		),
		ViewStores: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Stores"),
		),
		ViewProducts: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Products"),
		),
		ViewFavorites: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Favorites"),
		),
		ViewCompare: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Compare"),
		),
		ViewSettings: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "Settings"),
		),
		ViewArchives: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "Archives"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "-"),
			key.WithHelp("←/-", "Decrease"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "+", "="),
			key.WithHelp("→/+", "Increase"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / confirm"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Switch section"),
		),

		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle favorite"),
		),
		Compare: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Toggle compare"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Reverse sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Cycle filter"),
		),
		AltFilter: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Cycle second filter"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Clear all"),
		),
		NearMe: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Toggle nearby"),
		),
		Date: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Price date"),
		),
		Special: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Special offers only"),
		),
		Preferred: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle preferred chain"),
		),
		LevelCycle: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Cycle level filter"),
		),
		Follow: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pause / follow"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Toggle history sidebar"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewChains, k.ViewStores, k.ViewProducts, k.ViewFavorites, k.ViewCompare, k.ViewSettings, k.ViewArchives, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Search, k.Confirm, k.Escape, k.Refresh},
		{k.Favorite, k.Compare, k.Sort, k.Reverse, k.Filter, k.AltFilter},
		{k.NearMe, k.Date, k.Special, k.Preferred, k.Remove, k.ClearAll},
		{k.LevelCycle, k.Follow, k.Sidebar},
		{k.Help, k.Quit},
	}
}
