package mvu

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAsync(p *Program) <-chan runResult {
	ch := make(chan runResult, 1)
	go func() {
		m, err := p.Run()
		ch <- runResult{model: m, err: err}
	}()
	return ch
}

type runResult struct {
	model Model
	err   error
}

func waitResult(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("program did not stop")
		return runResult{}
	}
}

func TestProgram_CounterIncrements(t *testing.T) {
	term := &fakeTerminal{width: 80, height: 24}
	p := NewProgram(newCounter(), WithTerminal(term))

	for range 3 {
		p.Send(KeyMsg{Key: "up"})
	}
	p.Quit()

	final, err := p.Run()
	require.NoError(t, err)
	assert.Contains(t, final.View(), "3")
	assert.Equal(t, 3, final.(counterModel).Count)
	assert.True(t, term.wasRestored())
}

func TestProgram_QuitReturnsLastRenderedModel(t *testing.T) {
	m := newCounter()
	m.Count = 7

	next, cmd := m.Update(KeyMsg{Key: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, QuitMsg{}, cmd(context.Background()))

	term := &fakeTerminal{width: 80, height: 24}
	p := NewProgram(next, WithTerminal(term))
	p.Send(KeyMsg{Key: "up"})
	p.Send(KeyMsg{Key: "q"})

	r := waitResult(t, runAsync(p))
	require.NoError(t, r.err)
	assert.Equal(t, 8, r.model.(counterModel).Count)
	assert.Equal(t, term.last(), r.model.View())
}

func TestProgram_InitialResize(t *testing.T) {
	term := &fakeTerminal{width: 120, height: 40}
	p := NewProgram(newCounter(), WithTerminal(term))

	ch := runAsync(p)
	require.Eventually(t, func() bool {
		w, _ := p.Size()
		return w == 120
	}, time.Second, 5*time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, 120, r.model.(counterModel).Width)
}

func TestProgram_WithoutInitialResize(t *testing.T) {
	term := &fakeTerminal{width: 120, height: 40}
	p := NewProgram(newCounter(), WithTerminal(term), WithoutInitialResize())
	p.Quit()

	final, err := p.Run()
	require.NoError(t, err)
	assert.Zero(t, final.(counterModel).Width)
}

func TestProgram_FailedCommandReachesUpdate(t *testing.T) {
	m := newCounter()
	m.onKey = map[string]Cmd{
		"f": Attempt(func(context.Context) (any, error) {
			return nil, errFetch
		}),
	}
	term := &fakeTerminal{}
	p := NewProgram(m, WithTerminal(term))
	ch := runAsync(p)

	p.Send(KeyMsg{Key: "f"})
	require.Eventually(t, func() bool {
		return strings.Contains(term.last(), "connection refused")
	}, time.Second, 5*time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, "connection refused", r.model.(counterModel).Err)
	assert.Contains(t, r.model.View(), "error: connection refused")
}

func TestProgram_CommandPanicBecomesResult(t *testing.T) {
	m := newCounter()
	m.onKey = map[string]Cmd{
		"p": func(context.Context) Msg { panic("command exploded") },
	}
	term := &fakeTerminal{}
	p := NewProgram(m, WithTerminal(term))
	ch := runAsync(p)

	p.Send(KeyMsg{Key: "p"})
	require.Eventually(t, func() bool {
		return strings.Contains(term.last(), "command exploded")
	}, time.Second, 5*time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
}

func TestProgram_BatchIndependence(t *testing.T) {
	m := newCounter()
	m.onKey = map[string]Cmd{
		"b": Batch(
			Attempt(func(context.Context) (any, error) { return nil, errFetch }),
			func(context.Context) Msg { return fetchedMsg{Source: "b", Body: "ok"} },
		),
	}
	term := &fakeTerminal{}
	p := NewProgram(m, WithTerminal(term))
	ch := runAsync(p)

	p.Send(KeyMsg{Key: "b"})
	require.Eventually(t, func() bool {
		last := term.last()
		return strings.Contains(last, "connection refused") && strings.Contains(last, "loaded: 1")
	}, time.Second, 5*time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	final := r.model.(counterModel)
	assert.Equal(t, "ok", final.Loaded["b"])
	assert.Equal(t, "connection refused", final.Err)
}

func TestProgram_SequenceOrdering(t *testing.T) {
	var aDone atomic.Bool
	var bSawA atomic.Bool

	m := newCounter()
	m.onKey = map[string]Cmd{
		"s": Sequence(
			func(context.Context) Msg {
				time.Sleep(20 * time.Millisecond)
				aDone.Store(true)
				return "a"
			},
			func(context.Context) Msg {
				bSawA.Store(aDone.Load())
				return "b"
			},
		),
	}
	term := &fakeTerminal{}
	p := NewProgram(m, WithTerminal(term))
	ch := runAsync(p)

	p.Send(KeyMsg{Key: "s"})
	time.Sleep(100 * time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	assert.True(t, bSawA.Load())
	assert.Equal(t, []string{"s", "a", "b"}, r.model.(counterModel).Seen)
}

func TestProgram_UpdatePanicIsFatalAndRestores(t *testing.T) {
	m := newCounter()
	m.panicOn = "x"
	term := &fakeTerminal{}
	p := NewProgram(m, WithTerminal(term))
	p.Send(KeyMsg{Key: "up"})
	p.Send(KeyMsg{Key: "x"})

	final, err := p.Run()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, 1, final.(counterModel).Count)
	assert.True(t, term.wasRestored())
}

func TestProgram_StartErrorIsReturned(t *testing.T) {
	term := &fakeTerminal{startErr: errors.New("no tty")}
	_, err := NewProgram(newCounter(), WithTerminal(term)).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
}

func TestProgram_Kill(t *testing.T) {
	p := NewProgram(newCounter())
	ch := runAsync(p)
	p.Send(KeyMsg{Key: "up"})
	p.Kill()

	r := waitResult(t, ch)
	assert.ErrorIs(t, r.err, ErrProgramKilled)
}

func TestProgram_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProgram(newCounter(), WithContext(ctx))
	ch := runAsync(p)
	cancel()

	r := waitResult(t, ch)
	assert.ErrorIs(t, r.err, ErrProgramKilled)
	assert.ErrorIs(t, r.err, context.Canceled)
}

func TestProgram_QuitStopsScheduling(t *testing.T) {
	cancelled := make(chan struct{})
	m := newCounter()
	m.onKey = map[string]Cmd{
		"w": func(ctx context.Context) Msg {
			<-ctx.Done()
			close(cancelled)
			return "late"
		},
	}
	p := NewProgram(m)
	p.Send(KeyMsg{Key: "w"})
	p.Quit()

	final, err := p.Run()
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight command was not cancelled")
	}

	var ran atomic.Bool
	p.sched.dispatch(func(context.Context) Msg {
		ran.Store(true)
		return nil
	})
	p.Send("after")
	p.sched.wait()
	assert.False(t, ran.Load())
	assert.NotContains(t, final.(counterModel).Seen, "late")
}

func TestProgram_QuitEndsSequence(t *testing.T) {
	var ran atomic.Bool
	m := newCounter()
	m.init = Sequence(Quit, func(context.Context) Msg {
		ran.Store(true)
		return "after quit"
	})
	p := NewProgram(m, WithTerminal(&fakeTerminal{width: 80, height: 24}))

	final, err := p.Run()
	require.NoError(t, err)
	p.sched.wait()
	assert.False(t, ran.Load())
	assert.Empty(t, final.(counterModel).Seen)
}

func TestProgram_MaxConcurrentCommands(t *testing.T) {
	var running, peak atomic.Int32
	slow := func(context.Context) Msg {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return "done"
	}
	m := newCounter()
	m.onKey = map[string]Cmd{"go": Batch(slow, slow, slow, slow)}

	p := NewProgram(m, WithMaxConcurrentCommands(1))
	ch := runAsync(p)
	p.Send(KeyMsg{Key: "go"})
	time.Sleep(150 * time.Millisecond)
	p.Quit()

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, int32(1), peak.Load())
	assert.Len(t, r.model.(counterModel).Seen, 5)
}

func TestProgram_SkipsIdenticalFrames(t *testing.T) {
	term := &fakeTerminal{}
	p := NewProgram(newCounter(), WithTerminal(term), WithoutInitialResize())
	p.Send(KeyMsg{Key: "noop"})
	p.Send(KeyMsg{Key: "noop"})
	p.Send(KeyMsg{Key: "up"})
	p.Quit()

	_, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"count: 0", "count: 1"}, term.frames)
}

type recordingObserver struct {
	mu        sync.Mutex
	started   bool
	processed []Msg
	frames    int
	finished  bool
}

func (o *recordingObserver) Started() { o.started = true }
func (o *recordingObserver) Processed(msg Msg) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed = append(o.processed, msg)
}
func (o *recordingObserver) Rendered(string)       { o.frames++ }
func (o *recordingObserver) Finished(Model, error) { o.finished = true }

func TestProgram_Observer(t *testing.T) {
	obs := &recordingObserver{}
	p := NewProgram(newCounter(), WithObserver(obs))
	p.Send(KeyMsg{Key: "up"})
	p.Quit()

	_, err := p.Run()
	require.NoError(t, err)
	assert.True(t, obs.started)
	assert.True(t, obs.finished)
	assert.Equal(t, []Msg{KeyMsg{Key: "up"}}, obs.processed)
	assert.Equal(t, 2, obs.frames)
}

func TestProgram_RunTwice(t *testing.T) {
	p := NewProgram(newCounter())
	p.Quit()
	_, err := p.Run()
	require.NoError(t, err)
	_, err = p.Run()
	assert.Error(t, err)
}
