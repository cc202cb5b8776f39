// Package textinput is a single line text field backed by the bubbles text
// input.
package textinput

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/terminal"
	"github.com/olivoil/mvu/internal/ui"
)

// DefaultWidth is the field width until the parent sets one.
const DefaultWidth = 40

// Model is a text field. It only reacts to input while focused.
type Model struct {
	in textinput.Model
}

// New creates an empty, blurred text field.
func New(styles ui.Styles) Model {
	in := textinput.New()
	in.SetStyles(newStyles(styles))
	in.SetWidth(DefaultWidth)
	return Model{in: in}
}

func newStyles(styles ui.Styles) textinput.Styles {
	s := textinput.DefaultDarkStyles()
	s.Focused.Prompt = styles.Accent
	s.Focused.Placeholder = styles.Dim
	s.Focused.Suggestion = styles.Dim
	s.Blurred.Prompt = styles.Dim
	s.Blurred.Placeholder = styles.Dim
	s.Blurred.Suggestion = styles.Dim
	s.Cursor.Color = styles.Accent.GetForeground()
	s.Cursor.Blink = false
	return s
}

// SetPrompt replaces the "> " prompt.
func (m *Model) SetPrompt(p string) { m.in.Prompt = p }

// SetPlaceholder sets the text shown while the field is empty.
func (m *Model) SetPlaceholder(p string) { m.in.Placeholder = p }

// SetCharLimit caps the text length in runes; 0 means unlimited.
func (m *Model) SetCharLimit(n int) { m.in.CharLimit = n }

// Value returns the current text.
func (m Model) Value() string { return m.in.Value() }

// SetValue replaces the text and moves the cursor to the end.
func (m *Model) SetValue(s string) {
	m.in.SetValue(s)
	m.in.CursorEnd()
}

// Reset clears the text.
func (m *Model) Reset() { m.in.Reset() }

// Position returns the cursor position in runes.
func (m Model) Position() int { return m.in.Position() }

// Focused reports whether the field accepts input.
func (m Model) Focused() bool { return m.in.Focused() }

// Focus makes the field accept input.
func (m *Model) Focus() mvu.Cmd { return terminal.Cmd(m.in.Focus()) }

// Blur stops the field from accepting input.
func (m *Model) Blur() { m.in.Blur() }

// SetWidth sets how many cells the text occupies before it scrolls.
func (m *Model) SetWidth(w int) { m.in.SetWidth(w) }

// Update edits the text. Keys, pastes and the input's own messages are
// handled; everything else is ignored.
func (m Model) Update(msg mvu.Msg) (Model, mvu.Cmd) {
	if !m.in.Focused() {
		return m, nil
	}
	// The bubbles input edits its rune slice in place. Detach it so earlier
	// model values keep their text.
	m.in.SetValue(m.in.Value())

	var cmd tea.Cmd
	m.in, cmd = m.in.Update(terminal.TeaMsg(msg))
	return m, terminal.Cmd(cmd)
}

// View renders the prompt and the text with the cursor.
func (m Model) View() string { return m.in.View() }
