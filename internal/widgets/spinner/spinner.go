// Package spinner is an animated activity indicator driven by its own ticks.
package spinner

import (
	"sync/atomic"
	"time"

	bspinner "charm.land/bubbles/v2/spinner"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/mvu/internal/mvu"
)

var lastID atomic.Int64

// TickMsg advances a spinner by one frame. ID and tag make sure a spinner
// only reacts to its own ticks, and only to the latest one.
type TickMsg struct {
	ID   int
	tag  int
	Time time.Time
}

// Model is a spinner.
type Model struct {
	frames  []string
	fps     time.Duration
	frame   int
	id      int
	tag     int
	running bool
	Style   lipgloss.Style
}

// Option configures a spinner.
type Option func(*Model)

// WithFrames picks one of the frame sets from bubbles, e.g. spinner.Line.
func WithFrames(s bspinner.Spinner) Option {
	return func(m *Model) {
		m.frames = s.Frames
		m.fps = s.FPS
	}
}

// WithStyle sets the style frames are rendered with.
func WithStyle(st lipgloss.Style) Option {
	return func(m *Model) { m.Style = st }
}

// New creates a stopped spinner with a unique id.
func New(opts ...Option) Model {
	m := Model{
		frames: bspinner.Dot.Frames,
		fps:    bspinner.Dot.FPS,
		id:     int(lastID.Add(1)),
		Style:  lipgloss.NewStyle(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns the spinner's id.
func (m Model) ID() int { return m.id }

// Running reports whether the spinner is animating.
func (m Model) Running() bool { return m.running }

// Start returns the running spinner and the command for its first tick.
// Ticks from an earlier run are ignored.
func (m Model) Start() (Model, mvu.Cmd) {
	m.running = true
	m.tag++
	return m, m.tick()
}

// Tick returns the command for the next frame of a running spinner, for
// owners that start it at construction and schedule the tick from Init.
func (m Model) Tick() mvu.Cmd {
	if !m.running {
		return nil
	}
	return m.tick()
}

// Stop halts the animation. Ticks already in flight are ignored.
func (m Model) Stop() Model {
	m.running = false
	m.tag++
	return m
}

// Update advances the frame on the spinner's own ticks.
func (m Model) Update(msg mvu.Msg) (Model, mvu.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || tick.tag != m.tag || !m.running {
		return m, nil
	}
	m.frame = (m.frame + 1) % len(m.frames)
	m.tag++
	return m, m.tick()
}

// View renders the current frame.
func (m Model) View() string {
	if len(m.frames) == 0 {
		return ""
	}
	return m.Style.Render(m.frames[m.frame])
}

func (m Model) tick() mvu.Cmd {
	id, tag := m.id, m.tag
	return mvu.Tick(m.fps, func(t time.Time) mvu.Msg {
		return TickMsg{ID: id, tag: tag, Time: t}
	})
}
