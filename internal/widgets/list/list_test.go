package list

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
)

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{ID: string(rune('a' + i)), Title: "item " + string(rune('a'+i))}
	}
	return out
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.Update(mvu.KeyMsg{Key: k})
	}
	return m
}

func TestList_Navigation(t *testing.T) {
	m := New(items(3), ui.NewStyles(ui.DefaultTheme(), true))

	m = press(m, "down", "j")
	assert.Equal(t, 2, m.Cursor())

	m = press(m, "down")
	assert.Equal(t, 2, m.Cursor(), "cursor stops at the last item")

	m = press(m, "g")
	assert.Equal(t, 0, m.Cursor())

	m = press(m, "up")
	assert.Equal(t, 0, m.Cursor())

	m = press(m, "G")
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.ID)
}

func TestList_Wheel(t *testing.T) {
	m := New(items(3), ui.NewStyles(ui.DefaultTheme(), true))
	m, _ = m.Update(mvu.MouseMsg{Button: "wheeldown", Action: mvu.MouseWheel})
	assert.Equal(t, 1, m.Cursor())
	m, _ = m.Update(mvu.MouseMsg{Button: "wheelup", Action: mvu.MouseWheel})
	assert.Equal(t, 0, m.Cursor())
}

func TestList_ScrollsWithinHeight(t *testing.T) {
	m := New(items(5), ui.NewStyles(ui.DefaultTheme(), true))
	m.SetSize(20, 2)
	m = press(m, "down", "down", "down")

	lines := strings.Split(ansi.Strip(m.View()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "  item c", lines[0])
	assert.Equal(t, "> item d", lines[1])
}

func TestList_SelectAndEmpty(t *testing.T) {
	m := New(items(4), ui.NewStyles(ui.DefaultTheme(), true))
	assert.True(t, m.Select("c"))
	assert.Equal(t, 2, m.Cursor())
	assert.False(t, m.Select("zz"))

	m.SetItems(nil)
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, ansi.Strip(m.View()), "(empty)")
}
