package tui

import "github.com/charmbracelet/bubbles/key"

// StandardKeys defines common key bindings used across TUI components.
type StandardKeys struct {
	Quit   key.Binding
	Select key.Binding
	Back   key.Binding
	Help   key.Binding
}

// NewStandardKeys creates a standard set of key bindings.
func NewStandardKeys() StandardKeys {
	return StandardKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// BrowserKeys are the bindings of the level browser.
type BrowserKeys struct {
	StandardKeys

	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Install  key.Binding
	Queue    key.Binding
	Remove   key.Binding
	Shuffle  key.Binding
	Refresh  key.Binding
}

// NewBrowserKeys creates key bindings for the level browser.
func NewBrowserKeys() BrowserKeys {
	return BrowserKeys{
		StandardKeys: NewStandardKeys(),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		NextTab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		NextPage:     key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		PrevPage:     key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Install:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "install")),
		Queue:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "queue")),
		Remove:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Shuffle:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

// ShortHelp returns a slice of key bindings for the short help view.
func (k BrowserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Select, k.Install, k.Queue, k.Quit}
}

// FullHelp returns bindings grouped into columns for the full help view.
func (k BrowserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextTab, k.PrevTab, k.NextPage, k.PrevPage},
		{k.Search, k.Select, k.Install, k.Refresh},
		{k.Queue, k.Remove, k.Shuffle, k.Quit},
	}
}
