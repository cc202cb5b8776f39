// Package terminal provides the terminals a program renders to: Driver for
// a real TTY and Memory for tests and scripted runs.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/mvu/internal/mvu"
)

const restoreTimeout = 2 * time.Second

// frameMsg carries a rendered frame into the driver's own loop.
type frameMsg string

// Driver is a TTY terminal backed by a bubbletea program. Bubbletea owns raw
// mode, the alternate screen, input decoding and frame diffing; the driver
// only forwards input to the runtime and frames to bubbletea.
type Driver struct {
	input     io.Reader
	output    io.Writer
	altScreen bool
	mouse     bool
	log       *slog.Logger

	mu        sync.Mutex
	prog      *tea.Program
	send      func(mvu.Msg)
	width     int
	height    int
	done      chan struct{}
	runErr    error
	restoring bool
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithAltScreen renders in the alternate screen buffer.
func WithAltScreen(on bool) DriverOption {
	return func(d *Driver) { d.altScreen = on }
}

// WithMouse enables cell-motion mouse reporting.
func WithMouse(on bool) DriverOption {
	return func(d *Driver) { d.mouse = on }
}

// WithIO overrides stdin and stdout.
func WithIO(in io.Reader, out io.Writer) DriverOption {
	return func(d *Driver) {
		d.input = in
		d.output = out
	}
}

// WithSize fixes the screen size for outputs that cannot report one, such
// as a pipe. A real TTY still reports resizes.
func WithSize(width, height int) DriverOption {
	return func(d *Driver) {
		d.width = width
		d.height = height
	}
}

// WithDriverLogger sets the logger for driver diagnostics.
func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) { d.log = l }
}

// NewDriver creates a driver. Nothing touches the terminal until Start.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start puts the terminal in raw mode and begins forwarding input.
func (d *Driver) Start(ctx context.Context, send func(mvu.Msg)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.prog != nil {
		return errors.New("driver already started")
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if d.input != nil {
		opts = append(opts, tea.WithInput(d.input))
	}
	if d.output != nil {
		opts = append(opts, tea.WithOutput(d.output))
	}
	if d.width > 0 && d.height > 0 {
		opts = append(opts, tea.WithWindowSize(d.width, d.height))
	}

	d.send = send
	d.done = make(chan struct{})
	d.prog = tea.NewProgram(driverModel{d: d}, opts...)

	go d.run()
	return nil
}

func (d *Driver) run() {
	_, err := d.prog.Run()

	d.mu.Lock()
	d.runErr = err
	restoring := d.restoring
	send := d.send
	d.mu.Unlock()
	close(d.done)

	if restoring {
		return
	}
	// The driver stopped on its own, for example on SIGINT or a closed
	// input. Tell the runtime so it can shut down cleanly.
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		d.log.Error("terminal driver stopped", "err", err)
	}
	send(mvu.QuitMsg{})
}

// Render hands frame to bubbletea, which diffs it against the screen.
func (d *Driver) Render(frame string) error {
	d.mu.Lock()
	prog := d.prog
	d.mu.Unlock()
	if prog == nil {
		return errors.New("driver not started")
	}
	prog.Send(frameMsg(frame))
	return nil
}

// Size returns the last size reported by the terminal.
func (d *Driver) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Restore stops the bubbletea program, which leaves raw mode and the
// alternate screen, and waits for it to finish.
func (d *Driver) Restore() error {
	d.mu.Lock()
	prog, done := d.prog, d.done
	d.restoring = true
	d.mu.Unlock()
	if prog == nil {
		return nil
	}

	prog.Quit()
	select {
	case <-done:
	case <-time.After(restoreTimeout):
		prog.Kill()
		<-done
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runErr != nil && !errors.Is(d.runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal driver: %w", d.runErr)
	}
	return nil
}

func (d *Driver) forward(msg tea.Msg) {
	m, ok := translate(msg)
	if !ok {
		return
	}
	if r, ok := m.(mvu.ResizeMsg); ok {
		d.mu.Lock()
		d.width, d.height = r.Width, r.Height
		d.mu.Unlock()
	}
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	send(m)
}

// driverModel is the bubbletea side of the bridge. Its only state is the
// latest frame produced by the runtime.
type driverModel struct {
	d     *Driver
	frame string
}

func (m driverModel) Init() tea.Cmd { return nil }

func (m driverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = string(msg)
		return m, nil
	default:
		m.d.forward(msg)
	}
	return m, nil
}

func (m driverModel) View() tea.View {
	v := tea.NewView(m.frame)
	v.AltScreen = m.d.altScreen
	if m.d.mouse {
		v.MouseMode = tea.MouseModeCellMotion
	}
	return v
}
