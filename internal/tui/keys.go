package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Search    key.Binding
	Filter    key.Binding
	Rating    key.Binding
	Sort      key.Binding
	Delete    key.Binding
	Featured  key.Binding
	Published key.Binding
	Revoke    key.Binding
	Generate  key.Binding
	Theme     key.Binding
	Enter     key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Logout    key.Binding
	Refresh   key.Binding
	Confirm   key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
	PrevPage:  key.NewBinding(key.WithKeys("[", "h", "left"), key.WithHelp("[/h", "previous page")),
	NextPage:  key.NewBinding(key.WithKeys("]", "l", "right"), key.WithHelp("]/l", "next page")),
	FirstPage: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	LastPage:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle status filter")),
	Rating:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle minimum rating")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Featured:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "toggle featured")),
	Published: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "toggle published")),
	Revoke:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "revoke token")),
	Generate:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "invite link for project")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel/clear")),
	Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
}

// helpBindings is the order keys appear on the help screen
func helpBindings() []key.Binding {
	return []key.Binding{
		keys.NextTab, keys.PrevTab, keys.Up, keys.Down,
		keys.PrevPage, keys.NextPage, keys.FirstPage, keys.LastPage,
		keys.Search, keys.Filter, keys.Rating, keys.Sort, keys.Escape,
		keys.Delete, keys.Featured, keys.Published, keys.Revoke, keys.Generate,
		keys.Refresh, keys.Theme, keys.Logout, keys.Help, keys.Quit,
	}
}
