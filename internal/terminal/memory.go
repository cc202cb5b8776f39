package terminal

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/olivoil/mvu/internal/mvu"
)

// Memory is a headless terminal. It records every frame and lets callers
// inject input with Feed. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	width    int
	height   int
	frames   []string
	send     func(mvu.Msg)
	pending  []mvu.Msg
	started  bool
	restored bool
	changed  chan struct{}
}

// NewMemory returns a headless terminal of the given size.
func NewMemory(width, height int) *Memory {
	return &Memory{
		width:   width,
		height:  height,
		changed: make(chan struct{}, 1),
	}
}

// Start begins delivering input. Input fed before Start is delivered now.
func (t *Memory) Start(_ context.Context, send func(mvu.Msg)) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return errors.New("memory terminal already started")
	}
	t.started = true
	t.send = send
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, msg := range pending {
		send(msg)
	}
	return nil
}

// Feed injects input. Invalid keys are dropped the same way the TTY driver
// drops them.
func (t *Memory) Feed(msgs ...mvu.Msg) {
	for _, msg := range msgs {
		if k, ok := msg.(mvu.KeyMsg); ok && !ValidKey(k.Key) {
			continue
		}
		t.mu.Lock()
		if r, ok := msg.(mvu.ResizeMsg); ok {
			t.width, t.height = r.Width, r.Height
		}
		send := t.send
		if send == nil {
			t.pending = append(t.pending, msg)
		}
		t.mu.Unlock()
		if send != nil {
			send(msg)
		}
	}
}

// Keys feeds one KeyMsg per name, with Text set for single characters.
func (t *Memory) Keys(names ...string) {
	for _, name := range names {
		k := mvu.KeyMsg{Key: name}
		if len([]rune(name)) == 1 {
			k.Text = name
		}
		t.Feed(k)
	}
}

// Type feeds one KeyMsg per rune of s.
func (t *Memory) Type(s string) {
	for _, r := range s {
		name := string(r)
		if r == ' ' {
			name = "space"
		}
		t.Feed(mvu.KeyMsg{Key: name, Text: string(r)})
	}
}

// Render records frame.
func (t *Memory) Render(frame string) error {
	t.mu.Lock()
	t.frames = append(t.frames, frame)
	t.mu.Unlock()
	select {
	case t.changed <- struct{}{}:
	default:
	}
	return nil
}

// Size returns the configured size.
func (t *Memory) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Restore marks the terminal restored.
func (t *Memory) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restored = true
	return nil
}

// Restored reports whether Restore has been called.
func (t *Memory) Restored() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restored
}

// Frames returns a copy of every frame rendered so far.
func (t *Memory) Frames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.frames...)
}

// Last returns the most recent frame, or "" if nothing was rendered.
func (t *Memory) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		return ""
	}
	return t.frames[len(t.frames)-1]
}

// LastPlain returns the most recent frame with styling removed.
func (t *Memory) LastPlain() string {
	return ansi.Strip(t.Last())
}

// Changed is signalled after each render. Only one pending signal is kept.
func (t *Memory) Changed() <-chan struct{} {
	return t.changed
}
