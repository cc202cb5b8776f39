package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/mvu/internal/backend"
	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/terminal"
	"github.com/olivoil/mvu/internal/ui"
)

type fakeFetcher map[string]error

func (f fakeFetcher) Fetch(ctx context.Context, source string) (backend.Document, error) {
	if err := f[source]; err != nil {
		return backend.Document{Source: source}, err
	}
	return backend.Document{Source: source, Lines: 2, Size: 10, Preview: "hello from " + source}, nil
}

func styles() ui.Styles { return ui.NewStyles(ui.DefaultTheme(), true) }

func apply(t *testing.T, m mvu.Model, msg mvu.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	f, ok := next.(Model)
	require.True(t, ok)
	return f
}

func TestFetch_FailureRendersError(t *testing.T) {
	m := New(fakeFetcher{"a": errors.New("connection refused")}, []string{"a"}, styles())

	m = apply(t, m, mvu.CommandResult{Payload: Loaded{Index: 0}, Err: errors.New("connection refused")})
	require.Equal(t, Failed, m.Slots()[0].Status)
	assert.Zero(t, m.Pending())
	assert.Contains(t, m.View(), "error: connection refused")
}

func TestFetch_ArrivalOrderDoesNotMatter(t *testing.T) {
	m := New(fakeFetcher{}, []string{"a", "b"}, styles())
	first := mvu.CommandResult{Payload: Loaded{Index: 0, Doc: backend.Document{Lines: 1}}}
	second := mvu.CommandResult{Payload: Loaded{Index: 1}, Err: errors.New("timeout")}

	ab := apply(t, apply(t, m, first), second)
	ba := apply(t, apply(t, m, second), first)

	assert.Equal(t, ab, ba)
	assert.Equal(t, ab.View(), ba.View())
	assert.Zero(t, ab.Pending())
}

func TestFetch_IgnoresForeignAndDuplicateResults(t *testing.T) {
	m := New(fakeFetcher{}, []string{"a"}, styles())

	same := apply(t, m, mvu.CommandResult{Payload: "not ours"})
	assert.Equal(t, m, same)

	out := apply(t, m, mvu.CommandResult{Payload: Loaded{Index: 7}})
	assert.Equal(t, m, out)

	done := apply(t, m, mvu.CommandResult{Payload: Loaded{Index: 0}})
	again := apply(t, done, mvu.CommandResult{Payload: Loaded{Index: 0}, Err: errors.New("late")})
	assert.Equal(t, Done, again.Slots()[0].Status)
	assert.Zero(t, again.Pending())
}

func TestFetch_ReloadAsksOwner(t *testing.T) {
	m := New(fakeFetcher{}, []string{"a"}, styles())
	_, cmd := m.Update(mvu.KeyMsg{Key: "r"})
	require.NotNil(t, cmd)
	assert.Equal(t, ReloadMsg{}, cmd(context.Background()))
}

func TestFetch_NoSources(t *testing.T) {
	m := New(fakeFetcher{}, nil, styles())
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "no sources configured")
}

func TestFetch_RunsInProgram(t *testing.T) {
	fetcher := fakeFetcher{"bad": errors.New("connection refused")}
	term := terminal.NewMemory(80, 24)
	p := mvu.NewProgram(New(fetcher, []string{"good", "bad"}, styles()), mvu.WithTerminal(term))

	done := make(chan mvu.Model, 1)
	go func() {
		final, err := p.Run()
		assert.NoError(t, err)
		done <- final
	}()

	require.Eventually(t, func() bool {
		v := term.LastPlain()
		return strings.Contains(v, "hello from good") && strings.Contains(v, "error: connection refused")
	}, 2*time.Second, 5*time.Millisecond)

	p.Quit()
	final := <-done
	assert.Zero(t, final.(Model).Pending())
}

type panickyFetcher struct{ fakeFetcher }

func (f panickyFetcher) Fetch(ctx context.Context, source string) (backend.Document, error) {
	if source == "boom" {
		panic("fetcher blew up")
	}
	return f.fakeFetcher.Fetch(ctx, source)
}

func TestFetch_PanickingFetcherFailsItsSlot(t *testing.T) {
	term := terminal.NewMemory(80, 24)
	p := mvu.NewProgram(New(panickyFetcher{}, []string{"good", "boom"}, styles()), mvu.WithTerminal(term))

	done := make(chan mvu.Model, 1)
	go func() {
		final, err := p.Run()
		assert.NoError(t, err)
		done <- final
	}()

	require.Eventually(t, func() bool {
		v := term.LastPlain()
		return strings.Contains(v, "hello from good") && strings.Contains(v, "error: panic: fetcher blew up")
	}, 2*time.Second, 5*time.Millisecond)

	p.Quit()
	final := (<-done).(Model)
	assert.Zero(t, final.Pending())
	assert.Equal(t, Failed, final.Slots()[1].Status)
}
