package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/model"
)

func newController(t *testing.T, length int, loop bool) (*Controller, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c, err := New(clock, length, model.TimelineSettings{
		Duration:        10,
		Loop:            loop,
		LoopDelayBefore: 1,
		LoopDelayAfter:  1,
	})
	require.NoError(t, err)
	return c, clock
}

func TestNewRejectsEmptyTimeline(t *testing.T) {
	_, err := New(clockwork.NewFakeClock(), 0, model.DefaultSettings().Timeline)
	require.ErrorIs(t, err, dataset.ErrInvalidDataset)
}

func TestTickAdvancesAtConfiguredSpeed(t *testing.T) {
	c, clock := newController(t, 5, false)
	assert.InDelta(t, 0.5, c.State().Speed, 1e-9)

	c.Play()
	clock.Advance(2 * time.Second)
	st := c.Tick()
	assert.InDelta(t, 1.0, st.Position, 1e-9)
	assert.Equal(t, Playing, st.Phase)
}

func TestTickWhileStoppedDoesNothing(t *testing.T) {
	c, clock := newController(t, 5, false)
	clock.Advance(3 * time.Second)
	st := c.Tick()
	assert.Equal(t, 0.0, st.Position)
	assert.Equal(t, Stopped, st.Phase)
}

func TestNonLoopingStopsAtEnd(t *testing.T) {
	c, clock := newController(t, 5, false)
	c.Play()
	clock.Advance(30 * time.Second)
	st := c.Tick()
	assert.Equal(t, 4.0, st.Position)
	assert.False(t, st.Playing)
	assert.Equal(t, Stopped, st.Phase)

	c.Play()
	assert.Equal(t, 0.0, c.Position(), "play at the end rewinds")
	assert.True(t, c.Playing())
}

func TestLoopHoldsResetsAndResumes(t *testing.T) {
	c, clock := newController(t, 5, true)
	c.Play()

	clock.Advance(8 * time.Second)
	st := c.Tick()
	require.Equal(t, 4.0, st.Position)
	require.Equal(t, LoopDelayAfter, st.Phase)
	assert.True(t, st.Playing)

	clock.Advance(500 * time.Millisecond)
	st = c.Tick()
	assert.Equal(t, 4.0, st.Position, "holds during the after-delay")

	clock.Advance(500 * time.Millisecond)
	st = c.Tick()
	assert.Equal(t, 0.0, st.Position)
	assert.Equal(t, LoopDelayBefore, st.Phase)

	clock.Advance(500 * time.Millisecond)
	st = c.Tick()
	assert.Equal(t, 0.0, st.Position, "holds during the before-delay")

	clock.Advance(500 * time.Millisecond)
	st = c.Tick()
	assert.Equal(t, Playing, st.Phase)
	assert.Equal(t, 0.0, st.Position)

	clock.Advance(time.Second)
	st = c.Tick()
	assert.InDelta(t, 0.5, st.Position, 1e-9)
}

func TestInfiniteLoopDelayHoldsAfterNormalize(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Timeline = model.TimelineSettings{Duration: 10, Loop: true, LoopDelayAfter: math.Inf(1)}
	settings, warnings := settings.Normalize()
	require.NotEmpty(t, warnings)

	clock := clockwork.NewFakeClock()
	c, err := New(clock, 5, settings.Timeline)
	require.NoError(t, err)
	assert.Positive(t, c.State().LoopDelayAfter)

	c.Play()
	clock.Advance(8 * time.Second)
	st := c.Tick()
	require.Equal(t, LoopDelayAfter, st.Phase)

	clock.Advance(time.Hour)
	st = c.Tick()
	assert.Equal(t, LoopDelayAfter, st.Phase)
	assert.Equal(t, 4.0, st.Position)
}

func TestZeroLoopDelaysFireInOneTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, err := New(clock, 3, model.TimelineSettings{Duration: 3, Loop: true})
	require.NoError(t, err)
	c.Play()
	clock.Advance(2 * time.Second)
	require.Equal(t, LoopDelayAfter, c.Tick().Phase)

	st := c.Tick()
	assert.Equal(t, Playing, st.Phase)
	assert.Equal(t, 0.0, st.Position)
}

func TestSeekDuringLoopDelayCancelsReset(t *testing.T) {
	c, clock := newController(t, 5, true)
	c.Play()
	clock.Advance(8 * time.Second)
	c.Tick()

	token, _, ok := c.PendingDelay()
	require.True(t, ok)

	require.NoError(t, c.Seek(2))
	assert.False(t, c.FireDelay(token), "stale delay must be ignored")
	assert.Equal(t, 2.0, c.Position())
	assert.Equal(t, Playing, c.State().Phase)

	clock.Advance(2 * time.Second)
	assert.InDelta(t, 3.0, c.Tick().Position, 1e-9)
}

func TestPauseCancelsPendingDelay(t *testing.T) {
	c, clock := newController(t, 5, true)
	c.Play()
	clock.Advance(8 * time.Second)
	c.Tick()
	token, _, ok := c.PendingDelay()
	require.True(t, ok)

	c.Pause()
	_, _, ok = c.PendingDelay()
	assert.False(t, ok)
	assert.False(t, c.FireDelay(token))

	clock.Advance(5 * time.Second)
	st := c.Tick()
	assert.Equal(t, 4.0, st.Position)
	assert.Equal(t, Stopped, st.Phase)
}

func TestSeekClampsAndReports(t *testing.T) {
	c, _ := newController(t, 5, false)

	err := c.Seek(9)
	require.ErrorIs(t, err, dataset.ErrInvalidPosition)
	assert.Equal(t, 4.0, c.Position())

	err = c.Seek(-1)
	require.ErrorIs(t, err, dataset.ErrInvalidPosition)
	assert.Equal(t, 0.0, c.Position())

	require.NoError(t, c.Seek(2.5))
	assert.Equal(t, 2.5, c.Position())
	assert.False(t, c.Playing(), "seek keeps the playing flag")
}

func TestStepClampsSilently(t *testing.T) {
	c, _ := newController(t, 3, false)
	c.Step(1)
	c.Step(5)
	assert.Equal(t, 2.0, c.Position())
	c.Step(-10)
	assert.Equal(t, 0.0, c.Position())
}

func TestScrubSuspendsAdvancement(t *testing.T) {
	c, clock := newController(t, 5, false)
	c.Play()
	c.BeginScrub()
	require.NoError(t, c.Seek(1))

	clock.Advance(2 * time.Second)
	st := c.Tick()
	assert.Equal(t, 1.0, st.Position)
	assert.Equal(t, Scrubbing, st.Phase)

	c.EndScrub()
	clock.Advance(2 * time.Second)
	assert.InDelta(t, 2.0, c.Tick().Position, 1e-9)
}

func TestDisablingLoopDuringAfterDelayStops(t *testing.T) {
	c, clock := newController(t, 5, true)
	c.Play()
	clock.Advance(8 * time.Second)
	c.Tick()

	c.SetLoop(false)
	st := c.State()
	assert.False(t, st.Playing)
	assert.Equal(t, Stopped, st.Phase)
	assert.Equal(t, 4.0, st.Position)
}

func TestPositionListeners(t *testing.T) {
	c, clock := newController(t, 5, false)
	var seen []float64
	unsubscribe := c.OnPositionChange(func(st State) {
		seen = append(seen, st.Position)
	})

	c.Play()
	clock.Advance(time.Second)
	c.Tick()
	c.Tick() // no elapsed time, no notification
	require.NoError(t, c.Seek(3))

	unsubscribe()
	require.NoError(t, c.Seek(1))

	assert.Equal(t, []float64{0.5, 3}, seen)
}

func TestPositionListenersRunInSubscriptionOrder(t *testing.T) {
	c, _ := newController(t, 5, false)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		c.OnPositionChange(func(State) { order = append(order, i) })
	}
	drop := c.OnPositionChange(func(State) { order = append(order, 99) })
	c.OnPositionChange(func(State) { order = append(order, 5) })
	drop()

	for _, pos := range []float64{1, 2, 3} {
		order = order[:0]
		require.NoError(t, c.Seek(pos))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
	}
}

func TestToggle(t *testing.T) {
	c, _ := newController(t, 5, false)
	c.Toggle()
	assert.True(t, c.Playing())
	c.Toggle()
	assert.False(t, c.Playing())
	assert.Equal(t, "stopped", c.State().Phase.String())
}
