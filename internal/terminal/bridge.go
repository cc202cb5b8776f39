package terminal

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/mvu/internal/mvu"
)

// Components from charm.land/bubbles speak tea.Msg and tea.Cmd. The
// functions below let an mvu model host one: runtime messages are turned
// back into the tea messages the component expects, and its commands run
// on the mvu scheduler. Messages private to a component (paste results,
// cursor blinks) travel through the runtime queue untouched and find their
// way back to it through ordinary routing.

var (
	keyCodes   = map[string]rune{}
	mouseNames = map[string]tea.MouseButton{}
)

func init() {
	codes := []rune{
		tea.KeyEnter, tea.KeyTab, tea.KeyBackspace, tea.KeyEscape, tea.KeySpace,
		tea.KeyUp, tea.KeyDown, tea.KeyLeft, tea.KeyRight,
		tea.KeyHome, tea.KeyEnd, tea.KeyPgUp, tea.KeyPgDown,
		tea.KeyInsert, tea.KeyDelete,
		tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
		tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12,
	}
	for _, c := range codes {
		keyCodes[tea.Key{Code: c}.Keystroke()] = c
	}

	buttons := []tea.MouseButton{
		tea.MouseLeft, tea.MouseMiddle, tea.MouseRight,
		tea.MouseWheelUp, tea.MouseWheelDown, tea.MouseWheelLeft, tea.MouseWheelRight,
		tea.MouseBackward, tea.MouseForward,
	}
	for _, b := range buttons {
		mouseNames[b.String()] = b
	}
}

// KeyPress rebuilds the tea key press a KeyMsg was translated from. The
// result's String() is k.Key, so bubbles key bindings match it.
func KeyPress(k mvu.KeyMsg) tea.KeyPressMsg {
	var mod tea.KeyMod
	name := k.Key
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+") && len(name) > len("ctrl+"):
			mod |= tea.ModCtrl
			name = name[len("ctrl+"):]
			continue
		case strings.HasPrefix(name, "alt+") && len(name) > len("alt+"):
			mod |= tea.ModAlt
			name = name[len("alt+"):]
			continue
		case strings.HasPrefix(name, "shift+") && len(name) > len("shift+"):
			mod |= tea.ModShift
			name = name[len("shift+"):]
			continue
		}
		break
	}

	key := tea.Key{Mod: mod}
	if code, ok := keyCodes[name]; ok {
		key.Code = code
		if code == tea.KeySpace && mod == 0 {
			key.Text = " "
		}
		return tea.KeyPressMsg(key)
	}

	r := []rune(name)
	if len(r) == 1 {
		key.Code = r[0]
	} else {
		key.Code = tea.KeyExtended
	}
	// Text takes precedence over the keystroke in String(), so it is only
	// carried for unmodified keys.
	if mod == 0 {
		key.Text = k.Text
		if key.Code == tea.KeyExtended && key.Text == "" {
			key.Text = name
		}
	}
	return tea.KeyPressMsg(key)
}

// TeaMsg converts msg into what a bubbles component expects. Messages the
// runtime did not produce are returned as is.
func TeaMsg(msg mvu.Msg) tea.Msg {
	switch msg := msg.(type) {
	case mvu.KeyMsg:
		return KeyPress(msg)
	case mvu.ResizeMsg:
		return tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height}
	case mvu.MouseMsg:
		m := tea.Mouse{X: msg.X, Y: msg.Y, Button: mouseNames[msg.Button]}
		switch msg.Action {
		case mvu.MouseWheel:
			return tea.MouseWheelMsg(m)
		case mvu.MousePress:
			return tea.MouseClickMsg(m)
		case mvu.MouseRelease:
			return tea.MouseReleaseMsg(m)
		case mvu.MouseMotion:
			return tea.MouseMotionMsg(m)
		}
	}
	return msg
}

// Cmd runs a bubbles command on the mvu scheduler. Batches are expanded
// into mvu batches so their members still run independently.
func Cmd(c tea.Cmd) mvu.Cmd {
	if c == nil {
		return nil
	}
	return func(ctx context.Context) mvu.Msg {
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			cmds := make([]mvu.Cmd, len(batch))
			for i, b := range batch {
				cmds[i] = Cmd(b)
			}
			if cmd := mvu.Batch(cmds...); cmd != nil {
				return cmd(ctx)
			}
			return nil
		}
		return msg
	}
}
