package mvu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// fakeTerminal records frames and lets tests feed input.
type fakeTerminal struct {
	mu       sync.Mutex
	frames   []string
	width    int
	height   int
	send     func(Msg)
	started  bool
	restored bool
	startErr error
}

func (t *fakeTerminal) Start(_ context.Context, send func(Msg)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startErr != nil {
		return t.startErr
	}
	t.started = true
	t.send = send
	return nil
}

func (t *fakeTerminal) Render(frame string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, frame)
	return nil
}

func (t *fakeTerminal) Size() (int, int) {
	return t.width, t.height
}

func (t *fakeTerminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restored = true
	return nil
}

func (t *fakeTerminal) last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		return ""
	}
	return t.frames[len(t.frames)-1]
}

func (t *fakeTerminal) wasRestored() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restored
}

var errFetch = errors.New("connection refused")

type fetchedMsg struct {
	Source string
	Body   string
}

// counterModel is a small model covering keys, commands and errors.
type counterModel struct {
	Count   int
	Err     string
	Loaded  map[string]string
	Seen    []string
	Width   int
	onKey   map[string]Cmd
	panicOn string
	init    Cmd
}

func newCounter() counterModel {
	return counterModel{Loaded: map[string]string{}}
}

func (m counterModel) Init() Cmd { return m.init }

func (m counterModel) Update(msg Msg) (Model, Cmd) {
	switch msg := msg.(type) {
	case KeyMsg:
		m.Seen = append(append([]string(nil), m.Seen...), msg.Key)
		if msg.Key == m.panicOn {
			panic("boom")
		}
		if cmd, ok := m.onKey[msg.Key]; ok {
			return m, cmd
		}
		switch msg.Key {
		case "up":
			m.Count++
		case "down":
			m.Count--
		case "q":
			return m, Quit
		}
	case ResizeMsg:
		m.Width = msg.Width
	case fetchedMsg:
		loaded := make(map[string]string, len(m.Loaded)+1)
		for k, v := range m.Loaded {
			loaded[k] = v
		}
		loaded[msg.Source] = msg.Body
		m.Loaded = loaded
	case CommandResult:
		if msg.Err != nil {
			m.Err = msg.Err.Error()
		}
	case string:
		m.Seen = append(append([]string(nil), m.Seen...), msg)
	}
	return m, nil
}

func (m counterModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "count: %d", m.Count)
	if len(m.Loaded) > 0 {
		fmt.Fprintf(&b, "\nloaded: %d", len(m.Loaded))
	}
	if m.Err != "" {
		fmt.Fprintf(&b, "\nerror: %s", m.Err)
	}
	return b.String()
}
