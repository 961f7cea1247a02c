package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownDecrementsOncePerTick(t *testing.T) {
	c := New(2)
	c.Start(5)
	for want := 4; want >= 1; want-- {
		expired := c.Tick(c.Gen())
		require.False(t, expired)
		require.Equal(t, want, c.TimeLeft())
		require.True(t, c.Running())
		st := c.State()
		require.GreaterOrEqual(t, st.TimeLeft, 0)
		require.LessOrEqual(t, st.TimeLeft, st.Duration)
	}
	require.True(t, c.Tick(c.Gen()))
	assert.Equal(t, 0, c.TimeLeft())
	assert.False(t, c.Running())
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	c := New(3)
	c.Start(3)
	gen := c.Gen()
	expiries := 0
	for i := 0; i < 10; i++ {
		if c.Tick(gen) {
			expiries++
		}
	}
	assert.Equal(t, 1, expiries)
	assert.Equal(t, 0, c.TimeLeft())
}

func TestCountdownIgnoresStaleGeneration(t *testing.T) {
	c := New(4)
	c.Start(4)
	stale := c.Gen()
	c.Start(4)
	require.False(t, c.Tick(stale))
	assert.Equal(t, 4, c.TimeLeft())

	c.Tick(c.Gen())
	assert.Equal(t, 3, c.TimeLeft())
}

func TestCountdownPauseKeepsTimeLeft(t *testing.T) {
	c := New(5)
	c.Start(5)
	c.Tick(c.Gen())
	gen := c.Gen()
	c.Pause()
	assert.False(t, c.Running())
	assert.Equal(t, 4, c.TimeLeft())
	assert.False(t, c.Tick(gen))
	assert.False(t, c.Tick(c.Gen()))
	assert.Equal(t, 4, c.TimeLeft())
}

func TestCountdownResetAndStop(t *testing.T) {
	c := New(2)
	c.Start(2)
	c.Reset(0)
	assert.Equal(t, 2, c.TimeLeft())
	assert.False(t, c.Running())

	c.Reset(7)
	assert.Equal(t, 7, c.State().Duration)
	assert.Equal(t, 7, c.TimeLeft())

	c.Start(0)
	assert.Equal(t, 7, c.TimeLeft())
	assert.True(t, c.Running())

	c.Stop()
	assert.Equal(t, 0, c.TimeLeft())
	assert.False(t, c.Running())
	assert.False(t, c.Tick(c.Gen()), "a stopped countdown has not expired")
}

func TestSchedulerKeepsOneTickPerGeneration(t *testing.T) {
	s := NewScheduler()
	c := New(2)
	c.Start(2)
	countdowns := map[ID]*Countdown{"read": c}

	require.NotNil(t, s.Sync(countdowns))
	assert.Nil(t, s.Sync(countdowns), "tick already pending for this generation")

	stale := TickMsg{ID: "read", Gen: c.Gen()}
	c.Start(2)
	require.NotNil(t, s.Sync(countdowns))
	assert.False(t, s.Delivered(stale))
	assert.True(t, s.Delivered(TickMsg{ID: "read", Gen: c.Gen()}))
	assert.NotNil(t, s.Sync(countdowns))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:02", Format(2))
	assert.Equal(t, "10:00", Format(600))
	assert.Equal(t, "00:00", Format(-3))
}
