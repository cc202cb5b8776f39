package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/olivoil/mvu/internal/mvu"
)

const (
	bufferSize   = 1024
	flushEvery   = 200 * time.Millisecond
	maxDetailLen = 200
)

// Recorder is an mvu.Observer that writes the run to the journal. Callbacks
// only queue work; a background goroutine does the writes so the program
// loop never waits on the disk. Events are dropped, and counted, when the
// writer falls too far behind.
type Recorder struct {
	db     *DB
	log    *slog.Logger
	runID  string
	screen string
	now    func() time.Time

	ch      chan op
	done    chan struct{}
	seq     int
	renders int
	last    string
	dropped atomic.Int64

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

type op struct {
	event  *Event
	start  *time.Time
	finish *finish
}

type finish struct {
	at      time.Time
	status  Status
	err     string
	view    string
	renders int
}

// NewRecorder creates a recorder for a new run and starts its writer.
func NewRecorder(db *DB, screen string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &Recorder{
		db:     db,
		log:    log,
		runID:  uuid.NewString(),
		screen: screen,
		now:    time.Now,
		ch:     make(chan op, bufferSize),
		done:   make(chan struct{}),
	}
	go r.write()
	return r
}

// RunID returns the id of the recorded run.
func (r *Recorder) RunID() string { return r.runID }

// Dropped returns how many events were not recorded.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

func (r *Recorder) Started() {
	t := r.now()
	r.ch <- op{start: &t}
}

func (r *Recorder) Processed(msg mvu.Msg) {
	r.seq++
	e := Event{Seq: r.seq, At: r.now(), Type: Describe(msg), Detail: Detail(msg)}
	select {
	case r.ch <- op{event: &e}:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) Rendered(frame string) {
	r.renders++
	r.last = frame
}

func (r *Recorder) Finished(_ mvu.Model, err error) {
	f := &finish{at: r.now(), status: StatusOK, view: r.last, renders: r.renders}
	switch {
	case errors.Is(err, mvu.ErrProgramKilled):
		f.status = StatusKilled
		f.err = err.Error()
	case err != nil:
		f.status = StatusError
		f.err = err.Error()
	}
	r.ch <- op{finish: f}
}

// Close flushes pending writes and stops the writer. It returns the first
// write error, if any.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() { close(r.ch) })
	<-r.done
	if n := r.dropped.Load(); n > 0 {
		r.log.Warn("journal dropped events", "run", r.runID, "dropped", n)
	}
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

func (r *Recorder) fail(err error) {
	r.log.Error("journal write failed", "run", r.runID, "err", err)
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) write() {
	defer close(r.done)
	ctx := context.Background()

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	var (
		pending []Event
		started bool
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		// Without a run row the events have nowhere to go.
		if !started {
			r.dropped.Add(int64(len(pending)))
			pending = pending[:0]
			return
		}
		if err := r.db.AppendEvents(ctx, r.runID, pending); err != nil {
			r.fail(err)
		}
		pending = pending[:0]
	}

	for {
		select {
		case o, ok := <-r.ch:
			if !ok {
				flush()
				return
			}
			switch {
			case o.start != nil:
				if err := r.db.CreateRun(ctx, Run{ID: r.runID, StartedAt: *o.start, Screen: r.screen}); err != nil {
					r.fail(err)
					continue
				}
				started = true
			case o.event != nil:
				pending = append(pending, *o.event)
				if len(pending) >= bufferSize/4 {
					flush()
				}
			case o.finish != nil:
				flush()
				if !started {
					continue
				}
				f := o.finish
				if err := r.db.FinishRun(ctx, r.runID, f.at, f.status, f.err, f.view, f.renders); err != nil {
					r.fail(err)
				}
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Describe names a message for the journal.
func Describe(msg mvu.Msg) string {
	if env, ok := msg.(mvu.Envelope); ok {
		return fmt.Sprintf("%s>%s", env.Target, Describe(env.Msg))
	}
	return fmt.Sprintf("%T", msg)
}

// Detail summarises the interesting fields of a message.
func Detail(msg mvu.Msg) string {
	var s string
	switch m := msg.(type) {
	case mvu.Envelope:
		return Detail(m.Msg)
	case mvu.KeyMsg:
		s = m.Key
	case mvu.MouseMsg:
		s = m.String()
	case mvu.ResizeMsg:
		s = fmt.Sprintf("%dx%d", m.Width, m.Height)
	case mvu.CommandResult:
		if m.Err != nil {
			s = "error: " + m.Err.Error()
		} else {
			s = fmt.Sprintf("%T", m.Payload)
		}
	case fmt.Stringer:
		s = m.String()
	default:
		s = fmt.Sprintf("%+v", m)
	}
	if r := []rune(s); len(r) > maxDetailLen {
		s = string(r[:maxDetailLen-1]) + "…"
	}
	return s
}
