package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTheme_MergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	require.NoError(t, os.WriteFile(path, []byte(`accent = "#ff0000"
red = "#aa0000"
`), 0o644))

	th, err := LoadTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", th.Accent)
	assert.Equal(t, "#aa0000", th.Red)
	assert.Equal(t, DefaultTheme().Green, th.Green)
}

func TestLoadTheme_Errors(t *testing.T) {
	th, err := LoadTheme("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme(), th)

	_, err = LoadTheme(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("accent = "), 0o644))
	th, err = LoadTheme(bad)
	assert.Error(t, err)
	assert.Equal(t, DefaultTheme(), th)
}

func TestNewStyles_NoColorKeepsText(t *testing.T) {
	s := NewStyles(DefaultTheme(), true)
	assert.True(t, s.NoColor)
	assert.Equal(t, "error", ansi.Strip(s.Error.Render("error")))
	assert.Equal(t, "✘", ansi.Strip(s.StatusIcon("error")))
	assert.Equal(t, " ", s.StatusIcon("unknown"))
}

func TestRule(t *testing.T) {
	s := NewStyles(DefaultTheme(), true)
	assert.Equal(t, "━━━", ansi.Strip(s.Rule(3)))
	assert.Empty(t, s.Rule(0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(0))
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "", Truncate("hello", 0))
}
