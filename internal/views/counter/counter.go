// Package counter is the simplest screen: a number moved by keys.
package counter

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/widgets/help"
)

// KeyMap defines the counter keys.
type KeyMap struct {
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding
}

// DefaultKeyMap returns the counter keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increment: key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑/k", "increment")),
		Decrement: key.NewBinding(key.WithKeys("down", "j", "-"), key.WithHelp("↓/j", "decrement")),
		Reset:     key.NewBinding(key.WithKeys("r", "0"), key.WithHelp("r", "reset")),
	}
}

// Model is the counter screen.
type Model struct {
	count  int
	keys   KeyMap
	styles ui.Styles
}

// New creates a counter at zero.
func New(styles ui.Styles) Model {
	return Model{keys: DefaultKeyMap(), styles: styles}
}

// Count returns the current value.
func (m Model) Count() int { return m.count }

func (m Model) Init() mvu.Cmd { return nil }

func (m Model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	k, ok := msg.(mvu.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Increment):
		m.count++
	case key.Matches(k, m.keys.Decrement):
		m.count--
	case key.Matches(k, m.keys.Reset):
		m.count = 0
	}
	return m, nil
}

func (m Model) View() string {
	value := m.styles.Title.Render(fmt.Sprintf("count: %d", m.count))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render("Counter"),
		"",
		"  "+value,
	)
}

// Help returns the counter's key hints.
func (m Model) Help() help.KeyMap {
	return help.Bindings{Short: []key.Binding{m.keys.Increment, m.keys.Decrement, m.keys.Reset}}
}
