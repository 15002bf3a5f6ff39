package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Tabs
	NextTab key.Binding
	PrevTab key.Binding

	// Paging
	LoadMore key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Refresh  key.Binding

	// Actions
	Quit        key.Binding
	Escape      key.Binding
	Filter      key.Binding
	EditQuery   key.Binding
	Complete    key.Binding
	Enter       key.Binding
	Like        key.Binding
	JoinLive    key.Binding
	Remove      key.Binding
	OpenChannel key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev tab"),
		),

		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		EditQuery: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "edit search"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like/unlike"),
		),
		JoinLive: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "join live"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		OpenChannel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "open channel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
