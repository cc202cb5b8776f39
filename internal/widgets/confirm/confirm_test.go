package confirm

import (
	"context"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
)

func newDialog() Model {
	m := New("quit", "Quit?", ui.NewStyles(ui.DefaultTheme(), true))
	m.Open()
	return m
}

func result(t *testing.T, cmd mvu.Cmd) ResultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd(context.Background()).(ResultMsg)
	require.True(t, ok)
	return msg
}

func TestConfirm_Answers(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{"y confirms", []string{"y"}, true},
		{"n declines", []string{"n"}, false},
		{"esc declines", []string{"esc"}, false},
		{"enter takes default no", []string{"enter"}, false},
		{"toggle then enter", []string{"left", "enter"}, true},
		{"toggle twice then enter", []string{"tab", "tab", "enter"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDialog()
			var cmd mvu.Cmd
			for _, k := range tt.keys {
				m, cmd = m.Update(mvu.KeyMsg{Key: k})
			}
			got := result(t, cmd)
			assert.Equal(t, "quit", got.ID)
			assert.Equal(t, tt.want, got.Confirmed)
			assert.False(t, m.IsOpen())
		})
	}
}

func TestConfirm_ClosedIgnoresKeys(t *testing.T) {
	m := New("quit", "Quit?", ui.NewStyles(ui.DefaultTheme(), true))
	m, cmd := m.Update(mvu.KeyMsg{Key: "y"})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}

func TestConfirm_View(t *testing.T) {
	m := newDialog()
	v := ansi.Strip(m.View())
	assert.Contains(t, v, "Quit?")
	assert.Contains(t, v, "[ No ]")

	m, _ = m.Update(mvu.KeyMsg{Key: "right"})
	assert.Contains(t, ansi.Strip(m.View()), "[ Yes ]")
}
