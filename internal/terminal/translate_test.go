package terminal

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/olivoil/mvu/internal/mvu"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"a", true},
		{"Z", true},
		{"é", true},
		{"enter", true},
		{"ctrl+c", true},
		{"alt+x", true},
		{"ctrl+alt+up", true},
		{"shift+tab", true},
		{"", false},
		{"\x1b", false},
		{"\x00", false},
		{"[<35;1", false},
		{"ctrl+", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidKey(tc.name))
		})
	}
}

func TestTranslate_WindowSize(t *testing.T) {
	msg, ok := translate(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.True(t, ok)
	assert.Equal(t, mvu.ResizeMsg{Width: 100, Height: 30}, msg)

	_, ok = translate(tea.WindowSizeMsg{Width: 0, Height: 30})
	assert.False(t, ok)
}

func TestTranslate_Ignored(t *testing.T) {
	_, ok := translate(frameMsg("frame"))
	assert.False(t, ok)
	_, ok = translate(struct{}{})
	assert.False(t, ok)
}
