package mvu

import (
	"context"
	"time"
)

// Cmd is a deferred unit of work run off the update path. It returns at most
// one message; nil means nothing to report. The context is cancelled when the
// program shuts down and long running commands should honor it.
type Cmd func(ctx context.Context) Msg

// Quit is the reserved command that stops the program.
func Quit(context.Context) Msg {
	return QuitMsg{}
}

// Emit returns a command that yields msg. Children use it to hand a message
// to their parent on the next turn of the loop.
func Emit(msg Msg) Cmd {
	return func(context.Context) Msg { return msg }
}

// Batch runs cmds concurrently. Their messages arrive in no particular order
// and a failing member does not affect the others.
func Batch(cmds ...Cmd) Cmd {
	valid := compact(cmds)
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return func(context.Context) Msg { return batchMsg(valid) }
}

// Sequence runs cmds one at a time. A member starts only after the previous
// member's message has been placed on the queue.
func Sequence(cmds ...Cmd) Cmd {
	valid := compact(cmds)
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return func(context.Context) Msg { return sequenceMsg(valid) }
}

// Attempt wraps a fallible operation. The result is always a CommandResult.
func Attempt(fn func(ctx context.Context) (any, error)) Cmd {
	return func(ctx context.Context) Msg {
		v, err := fn(ctx)
		return CommandResult{Payload: v, Err: err}
	}
}

// Tick fires once after d. Nothing is produced if the program stops first.
func Tick(d time.Duration, fn func(time.Time) Msg) Cmd {
	return func(ctx context.Context) Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			return fn(now)
		}
	}
}

// Every is like Tick but fires on the next multiple of d on the wall clock,
// so several Every commands with the same interval fire together.
func Every(d time.Duration, fn func(time.Time) Msg) Cmd {
	return func(ctx context.Context) Msg {
		now := time.Now()
		next := now.Truncate(d).Add(d)
		t := time.NewTimer(next.Sub(now))
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case fired := <-t.C:
			return fn(fired)
		}
	}
}

func compact(cmds []Cmd) []Cmd {
	var valid []Cmd
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	return valid
}
