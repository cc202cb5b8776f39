package mvu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Program owns a running application: the current model, the message queue,
// the command scheduler and the terminal. Exactly one goroutine, the one
// calling Run, ever touches the model.
type Program struct {
	initial     Model
	term        Terminal
	parent      context.Context
	log         *slog.Logger
	observer    Observer
	maxCommands int64
	skipResize  bool

	ctx    context.Context
	cancel context.CancelFunc
	queue  *queue
	sched  *scheduler

	mu        sync.Mutex
	width     int
	height    int
	lastFrame string
	rendered  bool

	running atomic.Bool
	killed  atomic.Bool
}

// NewProgram creates a program for the given root model.
func NewProgram(model Model, opts ...Option) *Program {
	p := &Program{
		initial:  model,
		term:     nullTerminal{},
		parent:   context.Background(),
		log:      slog.New(slog.DiscardHandler),
		observer: nopObserver{},
		queue:    newQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.ctx, p.cancel = context.WithCancel(p.parent)
	p.sched = newScheduler(p.ctx, p.queue, p.maxCommands, p.log)
	return p
}

// Send injects a message from outside the loop, for example from a file
// watcher. It never blocks and is a no-op once the program has stopped.
func (p *Program) Send(msg Msg) {
	if msg == nil {
		return
	}
	p.queue.push(msg)
}

// Quit asks the program to stop as if the model had returned Quit.
func (p *Program) Quit() {
	p.Send(QuitMsg{})
}

// Kill stops the program without waiting for its queue to drain.
func (p *Program) Kill() {
	p.killed.Store(true)
	p.cancel()
}

// Size returns the last terminal size the program saw.
func (p *Program) Size() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Run starts the terminal, runs the model's Init command and processes
// messages until quit. It returns the last committed model. A panic in
// Update or View is returned as a *PanicError after the terminal has been
// restored.
func (p *Program) Run() (final Model, err error) {
	if !p.running.CompareAndSwap(false, true) {
		return p.initial, errors.New("program is already running")
	}

	model := p.initial
	if model == nil {
		return nil, ErrNilModel
	}

	if !p.skipResize {
		if w, h := p.term.Size(); w > 0 && h > 0 {
			p.Send(ResizeMsg{Width: w, Height: h})
		}
	}
	if err := p.term.Start(p.ctx, p.Send); err != nil {
		p.cancel()
		return model, fmt.Errorf("start terminal: %w", err)
	}

	defer func() {
		p.cancel()
		p.observer.Finished(final, err)
	}()
	defer func() {
		if rerr := p.term.Restore(); rerr != nil {
			p.log.Error("restore terminal", "err", rerr)
			if err == nil {
				err = fmt.Errorf("restore terminal: %w", rerr)
			}
		}
	}()
	defer p.shutdown()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("model panicked", "panic", r)
			final = model
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	p.observer.Started()
	p.log.Debug("program started")

	p.sched.dispatch(model.Init())
	if err := p.render(model.View()); err != nil {
		return model, err
	}

	for {
		msg, ok := p.queue.pop(p.ctx)
		if !ok {
			if p.killed.Load() {
				return model, ErrProgramKilled
			}
			return model, fmt.Errorf("%w: %w", ErrProgramKilled, context.Cause(p.ctx))
		}

		if _, ok := msg.(QuitMsg); ok {
			p.log.Debug("quit requested", "pending", p.queue.len())
			return model, nil
		}
		if r, ok := msg.(ResizeMsg); ok {
			p.mu.Lock()
			p.width, p.height = r.Width, r.Height
			p.mu.Unlock()
		}

		next, cmd := model.Update(msg)
		if next == nil {
			return model, ErrNilModel
		}
		model = next
		p.observer.Processed(msg)
		p.sched.dispatch(cmd)

		if err := p.render(model.View()); err != nil {
			return model, err
		}
	}
}

// render draws frame unless it is identical to the previous one.
func (p *Program) render(frame string) error {
	if p.rendered && frame == p.lastFrame {
		return nil
	}
	if err := p.term.Render(frame); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	p.lastFrame = frame
	p.rendered = true
	p.observer.Rendered(frame)
	return nil
}

// shutdown stops command dispatch and closes the queue. The program context
// stays alive until the terminal has been restored.
func (p *Program) shutdown() {
	p.sched.stop()
	p.queue.close()
	p.log.Debug("program stopped")
}

func typeName(msg Msg) string {
	return fmt.Sprintf("%T", msg)
}
