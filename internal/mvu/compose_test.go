package mvu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreens(t *testing.T) Screens {
	t.Helper()
	var s Screens
	a := newCounter()
	a.Count = 1
	b := newCounter()
	b.Count = 2
	c := newCounter()
	c.Count = 3
	s, _ = s.Add("a", a)
	s, _ = s.Add("b", b)
	s, _ = s.Add("c", c)
	return s
}

func TestScreens_RouteOnlyTouchesActive(t *testing.T) {
	s := newTestScreens(t)
	s, ok := s.Focus("b")
	require.True(t, ok)

	beforeA, _ := s.Get("a")
	beforeC, _ := s.Get("c")

	next, _ := s.Route(KeyMsg{Key: "up"})

	gotB, _ := next.Get("b")
	assert.Equal(t, 3, gotB.(counterModel).Count)

	afterA, _ := next.Get("a")
	afterC, _ := next.Get("c")
	assert.Equal(t, beforeA, afterA)
	assert.Equal(t, beforeC, afterC)

	// the receiver is a value and must not change
	oldB, _ := s.Get("b")
	assert.Equal(t, 2, oldB.(counterModel).Count)
}

func TestScreens_FocusCycling(t *testing.T) {
	s := newTestScreens(t)
	assert.Equal(t, "a", s.Active())
	assert.Equal(t, "b", s.Next().Active())
	assert.Equal(t, "a", s.Next().Next().Next().Active())
	assert.Equal(t, "c", s.Prev().Active())

	_, ok := s.Focus("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
}

func TestScreens_CommandResultsReturnToIssuer(t *testing.T) {
	var s Screens
	a := newCounter()
	a.onKey = map[string]Cmd{"f": Emit(fetchedMsg{Source: "x", Body: "y"})}
	s, _ = s.Add("a", a)
	s, _ = s.Add("b", newCounter())

	s, cmd := s.Route(KeyMsg{Key: "f"})
	require.NotNil(t, cmd)
	msg := cmd(context.Background())
	env, ok := msg.(Envelope)
	require.True(t, ok)
	assert.Equal(t, "a", env.Target)

	// the result reaches "a" even after focus moved to "b"
	s, _ = s.Focus("b")
	s, _, delivered := s.Deliver(env)
	assert.True(t, delivered)
	got, _ := s.Get("a")
	assert.Equal(t, "y", got.(counterModel).Loaded["x"])
}

func TestScreens_StaleGenerationDropped(t *testing.T) {
	var s Screens
	a := newCounter()
	a.onKey = map[string]Cmd{"f": Emit(fetchedMsg{Source: "x", Body: "y"})}
	s, _ = s.Add("a", a)

	s, cmd := s.Route(KeyMsg{Key: "f"})
	env := cmd(context.Background()).(Envelope)

	s, _ = s.Reset("a", newCounter())
	s, _, delivered := s.Deliver(env)
	assert.False(t, delivered)
	got, _ := s.Get("a")
	assert.Empty(t, got.(counterModel).Loaded)

	_, _, delivered = s.Deliver(Envelope{Target: "nobody", Generation: 1})
	assert.False(t, delivered)
}

func TestWrap_BatchMembersAndQuit(t *testing.T) {
	cmd := Wrap("child", 4, Batch(Emit("one"), Quit))
	msg := cmd(context.Background())
	batch, ok := msg.(batchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	assert.Equal(t, Envelope{Target: "child", Generation: 4, Msg: "one"}, batch[0](context.Background()))
	assert.Equal(t, QuitMsg{}, batch[1](context.Background()))
	assert.Nil(t, Wrap("child", 1, nil))
}

func TestScreens_Broadcast(t *testing.T) {
	s := newTestScreens(t)
	s, _ = s.Broadcast(ResizeMsg{Width: 90, Height: 30})
	for _, id := range s.IDs() {
		m, _ := s.Get(id)
		assert.Equal(t, 90, m.(counterModel).Width)
	}
}

func TestScreens_EmptyIsSafe(t *testing.T) {
	var s Screens
	next, cmd := s.Route(KeyMsg{Key: "up"})
	assert.Nil(t, cmd)
	assert.Equal(t, "", next.View())
	assert.Equal(t, "", next.Active())
}
