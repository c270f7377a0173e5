package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Mode    key.Binding
	Filter  key.Binding
	Clear   key.Binding
	Pane    key.Binding
	Open    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse/parent")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand/child")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Mode:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compact/expanded")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Pane:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Open:    key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open in editor")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// syncMode enables the tree-only bindings in compact mode so the help bar
// only advertises keys that do something.
func (k *keyMap) syncMode(leavesOnly bool) {
	k.Left.SetEnabled(!leavesOnly)
	k.Right.SetEnabled(!leavesOnly)
	k.Toggle.SetEnabled(!leavesOnly)
}

// action maps a key press to a navigation action.
func (k keyMap) action(msg tea.KeyMsg) (previewtree.Action, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return previewtree.ActionUp, true
	case key.Matches(msg, k.Down):
		return previewtree.ActionDown, true
	case key.Matches(msg, k.Left):
		return previewtree.ActionLeft, true
	case key.Matches(msg, k.Right):
		return previewtree.ActionRight, true
	case key.Matches(msg, k.Toggle):
		return previewtree.ActionToggle, true
	case key.Matches(msg, k.Top):
		return previewtree.ActionTop, true
	case key.Matches(msg, k.Bottom):
		return previewtree.ActionBottom, true
	}
	return 0, false
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Mode, k.Filter, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Left, k.Right, k.Toggle, k.Mode},
		{k.Filter, k.Clear, k.Pane, k.Open},
		{k.Refresh, k.Help, k.Quit},
	}
}
