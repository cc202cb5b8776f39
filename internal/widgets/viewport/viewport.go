// Package viewport shows a window onto a longer block of text. It wraps the
// bubbles viewport and adds top and bottom keys.
package viewport

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/terminal"
)

// KeyMap defines scrolling keys.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the scrolling keys. Single letter page keys are left
// free for the screens that host a viewport.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+f", "space"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	}
}

// Model is a viewport.
type Model struct {
	vp   viewport.Model
	keys KeyMap
}

// New creates a viewport of the given size.
func New(w, h int) Model {
	keys := DefaultKeyMap()
	vp := viewport.New(viewport.WithWidth(w), viewport.WithHeight(h))
	vp.KeyMap.Up = keys.Up
	vp.KeyMap.Down = keys.Down
	vp.KeyMap.PageUp = keys.PageUp
	vp.KeyMap.PageDown = keys.PageDown
	vp.KeyMap.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	vp.KeyMap.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	return Model{vp: vp, keys: keys}
}

// Keys returns the viewport's key bindings.
func (m Model) Keys() KeyMap { return m.keys }

// SetSize resizes the viewport.
func (m *Model) SetSize(w, h int) {
	m.vp.SetWidth(w)
	m.vp.SetHeight(h)
	m.vp.SetYOffset(m.vp.YOffset())
}

// Height returns the number of visible lines.
func (m Model) Height() int { return m.vp.Height() }

// SetContent replaces the text.
func (m *Model) SetContent(s string) {
	m.vp.SetContentLines(strings.Split(s, "\n"))
}

// SetLines replaces the text with the given lines. The slice is not kept.
func (m *Model) SetLines(lines []string) {
	m.vp.SetContentLines(slices.Clone(lines))
}

// TotalLines returns the number of lines of content.
func (m Model) TotalLines() int { return m.vp.TotalLineCount() }

// Offset returns the index of the first visible line.
func (m Model) Offset() int { return m.vp.YOffset() }

// AtTop reports whether the first line is visible.
func (m Model) AtTop() bool { return m.vp.AtTop() }

// AtBottom reports whether the last line is visible.
func (m Model) AtBottom() bool { return m.vp.AtBottom() }

// GotoTop scrolls to the first line.
func (m *Model) GotoTop() { m.vp.GotoTop() }

// GotoBottom scrolls to the last line.
func (m *Model) GotoBottom() { m.vp.GotoBottom() }

// ScrollUp scrolls up by n lines.
func (m *Model) ScrollUp(n int) { m.vp.ScrollUp(n) }

// ScrollDown scrolls down by n lines.
func (m *Model) ScrollDown(n int) { m.vp.ScrollDown(n) }

// Update scrolls on keys and the mouse wheel.
func (m Model) Update(msg mvu.Msg) (Model, mvu.Cmd) {
	if k, ok := msg.(mvu.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Top):
			m.GotoTop()
			return m, nil
		case key.Matches(k, m.keys.Bottom):
			m.GotoBottom()
			return m, nil
		}
	}
	vp, cmd := m.vp.Update(terminal.TeaMsg(msg))
	m.vp = vp
	return m, terminal.Cmd(cmd)
}

// View renders the visible lines, cut and padded to the viewport size.
func (m Model) View() string { return m.vp.View() }
