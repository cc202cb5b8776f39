// Package confirm is a yes/no dialog. The answer is handed back to the
// owner as a ResultMsg on the next turn of the program loop.
package confirm

import (
	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
)

// ResultMsg carries the answer of dialog ID.
type ResultMsg struct {
	ID        string
	Confirmed bool
}

// KeyMap defines the dialog keys.
type KeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
}

// DefaultKeyMap returns the dialog keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "no")),
		Toggle: key.NewBinding(key.WithKeys("left", "right", "tab", "h", "l"), key.WithHelp("←/→", "choose")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	}
}

// Model is a dialog.
type Model struct {
	id     string
	prompt string
	open   bool
	yes    bool
	keys   KeyMap
	styles ui.Styles
}

// New creates a closed dialog.
func New(id, prompt string, styles ui.Styles) Model {
	return Model{id: id, prompt: prompt, keys: DefaultKeyMap(), styles: styles}
}

// Open shows the dialog with "No" selected.
func (m *Model) Open() {
	m.open = true
	m.yes = false
}

// IsOpen reports whether the dialog is showing.
func (m Model) IsOpen() bool { return m.open }

// Update handles keys while the dialog is open. Answering closes the dialog
// and emits a ResultMsg.
func (m Model) Update(msg mvu.Msg) (Model, mvu.Cmd) {
	k, ok := msg.(mvu.KeyMsg)
	if !ok || !m.open {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Yes):
		return m.answer(true)
	case key.Matches(k, m.keys.No):
		return m.answer(false)
	case key.Matches(k, m.keys.Toggle):
		m.yes = !m.yes
	case key.Matches(k, m.keys.Submit):
		return m.answer(m.yes)
	}
	return m, nil
}

func (m Model) answer(yes bool) (Model, mvu.Cmd) {
	m.open = false
	return m, mvu.Emit(ResultMsg{ID: m.id, Confirmed: yes})
}

// View renders the dialog, or nothing when closed.
func (m Model) View() string {
	if !m.open {
		return ""
	}
	yes, no := "  Yes  ", "  No  "
	if m.yes {
		yes = m.styles.Selected.Render("[ Yes ]")
		no = m.styles.Dim.Render(no)
	} else {
		yes = m.styles.Dim.Render(yes)
		no = m.styles.Selected.Render("[ No ]")
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render(m.prompt),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no),
	)
	return m.styles.Dialog.Render(body)
}
