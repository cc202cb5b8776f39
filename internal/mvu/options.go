package mvu

import (
	"context"
	"log/slog"
)

// Option configures a Program.
type Option func(*Program)

// WithTerminal sets the terminal the program renders to and reads from.
// Without one the program has no input and discards its frames.
func WithTerminal(t Terminal) Option {
	return func(p *Program) {
		p.term = t
	}
}

// WithContext ties the program to ctx. Cancelling it stops the program and
// Run returns ErrProgramKilled.
func WithContext(ctx context.Context) Option {
	return func(p *Program) {
		p.parent = ctx
	}
}

// WithLogger sets the logger used for runtime diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Program) {
		if l != nil {
			p.log = l
		}
	}
}

// WithObserver registers an observer of loop activity.
func WithObserver(o Observer) Option {
	return func(p *Program) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithMaxConcurrentCommands limits how many commands execute at once.
// Commands over the limit wait for a slot; messages are never dropped.
func WithMaxConcurrentCommands(n int) Option {
	return func(p *Program) {
		p.maxCommands = int64(n)
	}
}

// WithoutInitialResize suppresses the ResizeMsg sent at startup.
func WithoutInitialResize() Option {
	return func(p *Program) {
		p.skipResize = true
	}
}
