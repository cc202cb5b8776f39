package mvu

import (
	"fmt"
	"time"
)

// Msg is an event delivered to a Model's Update. Any Go value can be a
// message; the types below are the ones the runtime produces itself.
type Msg any

// KeyMsg is a key press.
type KeyMsg struct {
	// Key is the canonical key name: "a", "enter", "up", "ctrl+c", "alt+x".
	Key string
	// Text is the printable text the key produced, empty for control keys.
	Text string
}

// String returns the canonical key name, so KeyMsg works with key bindings.
func (k KeyMsg) String() string { return k.Key }

// MouseAction identifies what the mouse did.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMotion
	MouseWheel
)

func (a MouseAction) String() string {
	switch a {
	case MousePress:
		return "press"
	case MouseRelease:
		return "release"
	case MouseMotion:
		return "motion"
	case MouseWheel:
		return "wheel"
	}
	return "unknown"
}

// MouseMsg is a mouse report in cell coordinates (zero based).
type MouseMsg struct {
	X, Y   int
	Button string
	Action MouseAction
}

func (m MouseMsg) String() string {
	return fmt.Sprintf("%s %s (%d,%d)", m.Button, m.Action, m.X, m.Y)
}

// ResizeMsg reports the terminal size. One is sent when the program starts.
type ResizeMsg struct {
	Width  int
	Height int
}

// TickMsg is a general purpose timer message. Tag lets a model tell its
// own ticks apart from others.
type TickMsg struct {
	Tag  string
	Time time.Time
}

// CommandResult is produced by commands built with Attempt and by any
// command that panics. Err is nil on success.
type CommandResult struct {
	Payload any
	Err     error
}

// QuitMsg asks the runtime to stop. It is consumed by the runtime and is
// never passed to a model.
type QuitMsg struct{}

// batchMsg and sequenceMsg are how combined commands reach the scheduler.
// They never reach the message queue.
type (
	batchMsg    []Cmd
	sequenceMsg []Cmd
)
