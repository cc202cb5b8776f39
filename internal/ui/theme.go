package ui

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Theme holds the resolved color palette as hex strings.
type Theme struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Accent     string `toml:"accent"`
	Dim        string `toml:"dim"`
	Red        string `toml:"red"`
	Green      string `toml:"green"`
	Yellow     string `toml:"yellow"`
	Blue       string `toml:"blue"`
	Border     string `toml:"border"`
	Header     string `toml:"header"`
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Foreground: "#e5e7eb",
		Background: "#1a1b26",
		Accent:     "#8b5cf6",
		Dim:        "#6b7280",
		Red:        "#ef4444",
		Green:      "#22c55e",
		Yellow:     "#eab308",
		Blue:       "#3b82f6",
		Border:     "#374151",
		Header:     "#f9fafb",
	}
}

// LoadTheme reads a TOML palette from path. Keys missing from the file keep
// their default value. An empty path returns the default theme.
func LoadTheme(path string) (Theme, error) {
	t := DefaultTheme()
	if path == "" {
		return t, nil
	}
	if _, err := os.Stat(path); err != nil {
		return t, fmt.Errorf("theme: %w", err)
	}

	var file Theme
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return t, fmt.Errorf("theme %s: %w", path, err)
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&t.Foreground, file.Foreground)
	merge(&t.Background, file.Background)
	merge(&t.Accent, file.Accent)
	merge(&t.Dim, file.Dim)
	merge(&t.Red, file.Red)
	merge(&t.Green, file.Green)
	merge(&t.Yellow, file.Yellow)
	merge(&t.Blue, file.Blue)
	merge(&t.Border, file.Border)
	merge(&t.Header, file.Header)
	return t, nil
}
