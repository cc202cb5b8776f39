package ui

import (
	"fmt"
	"image/color"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Styles is the set of styles views render with. It is built once when the
// application starts and passed by value to every view; nothing mutates it
// afterwards.
type Styles struct {
	NoColor bool

	Header   lipgloss.Style
	Title    lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Dim      lipgloss.Style
	Accent   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Dialog   lipgloss.Style
	Divider  lipgloss.Style
}

// NewStyles builds styles from a theme. With noColor set every style keeps
// its attributes (bold, borders, padding) but carries no color.
func NewStyles(t Theme, noColor bool) Styles {
	c := func(hex string) color.Color {
		if noColor {
			return lipgloss.NoColor{}
		}
		return lipgloss.Color(hex)
	}

	return Styles{
		NoColor: noColor,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Header)),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Accent)),

		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Green)),

		Inactive: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Red)),

		Dim: lipgloss.NewStyle().
			Foreground(c(t.Dim)),

		Accent: lipgloss.NewStyle().
			Foreground(c(t.Accent)),

		Error: lipgloss.NewStyle().
			Foreground(c(t.Red)),

		Success: lipgloss.NewStyle().
			Foreground(c(t.Green)),

		Warning: lipgloss.NewStyle().
			Foreground(c(t.Yellow)),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Background)).
			Background(c(t.Accent)),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(c(t.Border)).
			PaddingLeft(1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Accent)).
			Padding(1, 2),

		Divider: lipgloss.NewStyle().
			Foreground(c(t.Border)),
	}
}

// StatusIcon returns an icon for a load status.
func (s Styles) StatusIcon(status string) string {
	switch status {
	case "ok":
		return s.Success.Render("✔")
	case "loading":
		return s.Accent.Render("…")
	case "error":
		return s.Error.Render("✘")
	case "stale":
		return s.Warning.Render("!")
	default:
		return " "
	}
}

// Rule renders a horizontal divider of the given width.
func (s Styles) Rule(width int) string {
	if width <= 0 {
		return ""
	}
	line := make([]rune, width)
	for i := range line {
		line[i] = '━'
	}
	return s.Divider.Render(string(line))
}

// FormatDuration formats a duration in a compact human form.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// Truncate shortens s to width cells, ending with an ellipsis when cut.
// Escape sequences in s are preserved and not counted.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
