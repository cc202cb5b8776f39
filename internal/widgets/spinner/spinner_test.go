package spinner

import (
	"context"
	"testing"
	"time"

	bspinner "charm.land/bubbles/v2/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinner_AdvancesOnOwnTicks(t *testing.T) {
	s := New(WithFrames(bspinner.Spinner{Frames: []string{"a", "b", "c"}, FPS: time.Millisecond}))
	s, cmd := s.Start()
	require.NotNil(t, cmd)
	assert.True(t, s.Running())
	assert.Equal(t, "a", s.View())

	tick := cmd(context.Background()).(TickMsg)
	assert.Equal(t, s.ID(), tick.ID)

	s, cmd = s.Update(tick)
	require.NotNil(t, cmd)
	assert.Equal(t, "b", s.View())

	// replaying the same tick does nothing
	s, cmd = s.Update(tick)
	assert.Nil(t, cmd)
	assert.Equal(t, "b", s.View())
}

func TestSpinner_IgnoresOtherSpinners(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a.ID(), b.ID())

	a, _ = a.Start()
	b, cmd := b.Start()
	tick := cmd(context.Background()).(TickMsg)

	next, cmd := a.Update(tick)
	assert.Nil(t, cmd)
	assert.Equal(t, a, next)
}

func TestSpinner_StopDropsInflightTicks(t *testing.T) {
	s := New(WithFrames(bspinner.Spinner{Frames: []string{"x", "y"}, FPS: time.Millisecond}))
	s, cmd := s.Start()
	tick := cmd(context.Background()).(TickMsg)

	s = s.Stop()
	s, cmd = s.Update(tick)
	assert.Nil(t, cmd)
	assert.False(t, s.Running())
	assert.Equal(t, "x", s.View())
}
