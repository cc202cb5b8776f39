// Package menu lists the screens and opens the selected one.
package menu

import (
	"charm.land/bubbles/v2/key"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/widgets/help"
	"github.com/olivoil/mvu/internal/widgets/list"
)

// OpenMsg asks the owner to switch to screen ID.
type OpenMsg struct {
	ID string
}

// Entry describes a screen.
type Entry struct {
	ID          string
	Title       string
	Description string
}

// KeyMap defines the menu keys.
type KeyMap struct {
	Open key.Binding
}

// DefaultKeyMap returns the menu keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "open")),
	}
}

// Model is the menu screen.
type Model struct {
	list   list.Model
	keys   KeyMap
	styles ui.Styles
}

// New creates a menu of entries.
func New(entries []Entry, styles ui.Styles) Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = list.Item{ID: e.ID, Title: e.Title, Desc: e.Description}
	}
	return Model{
		list:   list.New(items, styles),
		keys:   DefaultKeyMap(),
		styles: styles,
	}
}

// Selected returns the id of the highlighted entry.
func (m Model) Selected() string {
	it, ok := m.list.Selected()
	if !ok {
		return ""
	}
	return it.ID
}

func (m Model) Init() mvu.Cmd { return nil }

func (m Model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.ResizeMsg:
		m.list.SetSize(msg.Width, max(1, msg.Height-2))
		return m, nil
	case mvu.KeyMsg:
		if key.Matches(msg, m.keys.Open) {
			if id := m.Selected(); id != "" {
				return m, mvu.Emit(OpenMsg{ID: id})
			}
			return m, nil
		}
	}
	var cmd mvu.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.styles.Header.Render("Screens") + "\n\n" + m.list.View()
}

// Help returns the menu's key hints.
func (m Model) Help() help.KeyMap {
	lk := m.list.Keys()
	return help.Bindings{Short: []key.Binding{lk.Up, lk.Down, m.keys.Open}}
}
