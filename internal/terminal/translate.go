package terminal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/mvu/internal/mvu"
)

// namedKeys are the multi-character key names accepted from the driver.
// Anything else longer than one character is treated as garbage, which is
// what fragmented escape sequences look like after a burst of mouse input.
var namedKeys = map[string]bool{
	"enter": true, "tab": true, "shift+tab": true, "esc": true, "space": true,
	"backspace": true, "delete": true, "insert": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pgup": true, "pgdown": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

// ValidKey reports whether name is a key the runtime should see.
func ValidKey(name string) bool {
	if name == "" {
		return false
	}
	if namedKeys[name] {
		return true
	}
	for _, mod := range []string{"ctrl+", "alt+", "shift+"} {
		if rest, ok := strings.CutPrefix(name, mod); ok {
			return ValidKey(rest)
		}
	}
	if utf8.RuneCountInString(name) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && !unicode.IsControl(r)
}

// translate turns a driver message into a runtime message. The boolean is
// false for messages the runtime does not care about or that are malformed.
func translate(msg tea.Msg) (mvu.Msg, bool) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		name := msg.String()
		if !ValidKey(name) {
			return nil, false
		}
		text := msg.Text
		if name == "space" {
			text = " "
		}
		return mvu.KeyMsg{Key: name, Text: text}, true

	case tea.WindowSizeMsg:
		if msg.Width <= 0 || msg.Height <= 0 {
			return nil, false
		}
		return mvu.ResizeMsg{Width: msg.Width, Height: msg.Height}, true

	case tea.MouseClickMsg:
		return mouse(msg.Mouse(), mvu.MousePress)
	case tea.MouseReleaseMsg:
		return mouse(msg.Mouse(), mvu.MouseRelease)
	case tea.MouseMotionMsg:
		return mouse(msg.Mouse(), mvu.MouseMotion)
	case tea.MouseWheelMsg:
		return mouse(msg.Mouse(), mvu.MouseWheel)
	}
	return nil, false
}

func mouse(m tea.Mouse, action mvu.MouseAction) (mvu.Msg, bool) {
	if m.X < 0 || m.Y < 0 {
		return nil, false
	}
	return mvu.MouseMsg{X: m.X, Y: m.Y, Button: m.Button.String(), Action: action}, true
}
