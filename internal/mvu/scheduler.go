package mvu

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/semaphore"
)

// scheduler runs commands on their own goroutines and feeds their messages
// back onto the queue. Batches fan out, sequences run in order on a single
// goroutine. Once stopped, nothing new starts and late results are dropped.
type scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	queue  *queue
	sem    *semaphore.Weighted
	log    *slog.Logger

	stopped  atomic.Bool
	inflight sync.WaitGroup
}

func newScheduler(parent context.Context, q *queue, maxConcurrent int64, log *slog.Logger) *scheduler {
	ctx, cancel := context.WithCancel(parent)
	s := &scheduler{
		ctx:    ctx,
		cancel: cancel,
		queue:  q,
		log:    log,
	}
	if maxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(maxConcurrent)
	}
	return s
}

// dispatch hands cmd off without blocking the caller.
func (s *scheduler) dispatch(cmd Cmd) {
	if cmd == nil || s.stopped.Load() {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.settle(cmd)
	}()
}

// settle runs cmd to completion, including every member of a batch or
// sequence it expands to, and queues the resulting messages.
func (s *scheduler) settle(cmd Cmd) {
	if cmd == nil || s.stopped.Load() {
		return
	}
	switch msg := s.exec(cmd).(type) {
	case nil:
	case batchMsg:
		var wg sync.WaitGroup
		for _, c := range msg {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.settle(c)
			}()
		}
		wg.Wait()
	case sequenceMsg:
		for _, c := range msg {
			s.settle(c)
		}
	default:
		if !s.queue.push(msg) {
			s.log.Debug("dropped command result after shutdown", "msg", typeName(msg))
		}
		// Nothing may start after a quit, including later sequence members.
		if _, ok := msg.(QuitMsg); ok {
			s.stop()
		}
	}
}

// exec runs a single command. A panic becomes a CommandResult. With a
// concurrency limit the command waits for a slot; that wait is the only
// backpressure the runtime applies.
func (s *scheduler) exec(cmd Cmd) Msg {
	if s.sem != nil {
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			return nil
		}
		defer s.sem.Release(1)
	}

	var msg Msg
	if r := panics.Try(func() { msg = cmd(s.ctx) }); r != nil {
		s.log.Warn("command panicked", "panic", r.Value)
		return CommandResult{Err: &PanicError{Value: r.Value, Stack: r.Stack}}
	}
	return msg
}

// stop cancels in-flight commands and prevents new dispatches. It does not
// wait for running commands; their results are discarded by the closed queue.
func (s *scheduler) stop() {
	if s.stopped.Swap(true) {
		return
	}
	s.cancel()
}

// wait blocks until every dispatched command has returned. Tests use it.
func (s *scheduler) wait() {
	s.inflight.Wait()
}
