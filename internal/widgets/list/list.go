// Package list is a scrollable, selectable list of items.
package list

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
)

// Item is one row.
type Item struct {
	ID    string
	Title string
	Desc  string
}

// KeyMap defines navigation keys.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap returns arrow and vi style navigation.
func DefaultKeyMap() KeyMap {
	return KeyMap{
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
	}
}

// Model is a list.
type Model struct {
	items  []Item
	cursor int
	offset int
	height int
	width  int
	keys   KeyMap
	styles ui.Styles
}

// New creates a list of items.
func New(items []Item, styles ui.Styles) Model {
	return Model{
		items:  items,
		keys:   DefaultKeyMap(),
		styles: styles,
	}
}

// Keys returns the list's key bindings.
func (m Model) Keys() KeyMap { return m.keys }

// Items returns the list's items.
func (m Model) Items() []Item { return m.items }

// SetItems replaces the items, keeping the cursor in range.
func (m *Model) SetItems(items []Item) {
	m.items = items
	m.move(0)
}

// SetSize sets the visible area. A height of 0 shows every row.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.move(0)
}

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }

// Selected returns the selected item.
func (m Model) Selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.cursor], true
}

// Select moves the cursor to the item with the given id.
func (m *Model) Select(id string) bool {
	for i, it := range m.items {
		if it.ID == id {
			m.move(i - m.cursor)
			return true
		}
	}
	return false
}

// Update moves the cursor on navigation keys and the mouse wheel.
func (m Model) Update(msg mvu.Msg) (Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Top):
			m.move(-len(m.items))
		case key.Matches(msg, m.keys.Bottom):
			m.move(len(m.items))
		}
	case mvu.MouseMsg:
		if msg.Action != mvu.MouseWheel {
			break
		}
		switch msg.Button {
		case "wheelup":
			m.move(-1)
		case "wheeldown":
			m.move(1)
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.items) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	if m.height <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// View renders the visible rows.
func (m Model) View() string {
	if len(m.items) == 0 {
		return m.styles.Dim.Render("  (empty)")
	}
	end := len(m.items)
	if m.height > 0 {
		end = min(end, m.offset+m.height)
	}

	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		it := m.items[i]
		line := it.Title
		if it.Desc != "" {
			line += "  " + m.styles.Dim.Render(it.Desc)
		}
		if i == m.cursor {
			line = m.styles.Selected.Render("> " + it.Title)
			if it.Desc != "" {
				line += "  " + m.styles.Dim.Render(it.Desc)
			}
		} else {
			line = "  " + line
		}
		if m.width > 0 {
			line = ui.Truncate(line, m.width)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}
