// Package help renders key binding hints, short or full.
package help

import (
	bhelp "charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
)

// KeyMap is implemented by anything that can describe its bindings.
type KeyMap = bhelp.KeyMap

// Model renders help for a KeyMap.
type Model struct {
	h bhelp.Model
}

// New creates a help view in short mode.
func New() Model {
	return Model{h: bhelp.New()}
}

// ShowAll reports whether the full help is shown.
func (m Model) ShowAll() bool { return m.h.ShowAll }

// Toggle switches between short and full help.
func (m *Model) Toggle() { m.h.ShowAll = !m.h.ShowAll }

// SetWidth limits the short help to w cells.
func (m *Model) SetWidth(w int) { m.h.SetWidth(w) }

// View renders help for k.
func (m Model) View(k KeyMap) string { return m.h.View(k) }

// Bindings is a KeyMap built from plain binding lists.
type Bindings struct {
	Short []key.Binding
	Full  [][]key.Binding
}

func (b Bindings) ShortHelp() []key.Binding { return b.Short }

func (b Bindings) FullHelp() [][]key.Binding {
	if len(b.Full) == 0 {
		return [][]key.Binding{b.Short}
	}
	return b.Full
}
