package mvu

import "context"

// InputSource produces input events. Start must not block; events are
// delivered through send until ctx is cancelled or Restore is called.
// Malformed input is dropped by the source and never sent.
type InputSource interface {
	Start(ctx context.Context, send func(Msg)) error
}

// Renderer draws frames. The runtime is the only caller and never calls it
// from more than one goroutine.
type Renderer interface {
	Render(frame string) error
	Size() (width, height int)
}

// Terminal is the collaborator the runtime owns for the life of a program.
// Restore returns the terminal to its normal mode and is always called,
// including after a fatal error.
type Terminal interface {
	InputSource
	Renderer
	Restore() error
}

// nullTerminal has no input and discards frames.
type nullTerminal struct{}

func (nullTerminal) Start(context.Context, func(Msg)) error { return nil }
func (nullTerminal) Render(string) error                    { return nil }
func (nullTerminal) Size() (int, int)                       { return 0, 0 }
func (nullTerminal) Restore() error                         { return nil }
