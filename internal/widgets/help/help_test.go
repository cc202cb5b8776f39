package help

import (
	"testing"

	"charm.land/bubbles/v2/key"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestHelp_ShortAndFull(t *testing.T) {
	quit := key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	next := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen"))
	reset := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset"))

	b := Bindings{
		Short: []key.Binding{quit, next},
		Full:  [][]key.Binding{{quit, next}, {reset}},
	}

	m := New()
	short := ansi.Strip(m.View(b))
	assert.Contains(t, short, "quit")
	assert.NotContains(t, short, "reset")

	m.Toggle()
	assert.True(t, m.ShowAll())
	assert.Contains(t, ansi.Strip(m.View(b)), "reset")
}

func TestBindings_FullDefaultsToShort(t *testing.T) {
	quit := key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	b := Bindings{Short: []key.Binding{quit}}
	assert.Len(t, b.FullHelp(), 1)
}
