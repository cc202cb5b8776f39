package menu

import (
	"context"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
)

func entries() []Entry {
	return []Entry{
		{ID: "counter", Title: "Counter", Description: "a number"},
		{ID: "wizard", Title: "Wizard", Description: "a form"},
	}
}

func TestMenu_OpenSelected(t *testing.T) {
	var m mvu.Model = New(entries(), ui.NewStyles(ui.DefaultTheme(), true))
	m, _ = m.Update(mvu.KeyMsg{Key: "down"})
	assert.Equal(t, "wizard", m.(Model).Selected())

	_, cmd := m.Update(mvu.KeyMsg{Key: "enter"})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenMsg{ID: "wizard"}, cmd(context.Background()))
}

func TestMenu_Empty(t *testing.T) {
	m := New(nil, ui.NewStyles(ui.DefaultTheme(), true))
	_, cmd := m.Update(mvu.KeyMsg{Key: "enter"})
	assert.Nil(t, cmd)
}

func TestMenu_View(t *testing.T) {
	m := New(entries(), ui.NewStyles(ui.DefaultTheme(), true))
	v := ansi.Strip(m.View())
	assert.Contains(t, v, "> Counter")
	assert.Contains(t, v, "Wizard")
	assert.Contains(t, v, "a form")
}
