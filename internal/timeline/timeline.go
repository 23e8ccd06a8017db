// Package timeline advances the play position over wall-clock time.
//
// A Controller is a small state machine. It is not safe for concurrent use:
// a single driver (the TUI message loop or race.Player) calls Tick and the
// control methods from one goroutine, which is what keeps a seek from ever
// being observed half-applied by a tick.
package timeline

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/model"
)

// Phase is the controller's current mode.
type Phase int

const (
	Stopped Phase = iota
	Playing
	Scrubbing
	LoopDelayBefore
	LoopDelayAfter
)

func (p Phase) String() string {
	switch p {
	case Playing:
		return "playing"
	case Scrubbing:
		return "scrubbing"
	case LoopDelayBefore:
		return "loop-delay-before"
	case LoopDelayAfter:
		return "loop-delay-after"
	default:
		return "stopped"
	}
}

// State is a copy of the playback state.
type State struct {
	Position        float64
	Length          int
	Playing         bool
	Loop            bool
	LoopDelayBefore time.Duration
	LoopDelayAfter  time.Duration
	Speed           float64 // positions per second
	Phase           Phase
}

// Token identifies one scheduled delay. Tokens are never reused.
type Token uint64

type pendingDelay struct {
	token    Token
	deadline time.Time
}

// Controller drives a play position through [0, L-1].
type Controller struct {
	clock       clockwork.Clock
	length      int
	speed       float64
	loop        bool
	delayBefore time.Duration
	delayAfter  time.Duration

	position float64
	playing  bool
	phase    Phase
	lastTick time.Time

	pending   *pendingDelay
	lastToken Token

	listeners    []listener
	nextListener int
}

type listener struct {
	id int
	fn func(State)
}

// New creates a stopped controller at position 0 for a timeline of length
// labels. cfg must already be normalized.
func New(clock clockwork.Clock, length int, cfg model.TimelineSettings) (*Controller, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: timeline needs at least one label", dataset.ErrInvalidDataset)
	}
	duration := cfg.Duration
	if duration < model.MinTimelineDuration {
		duration = model.MinTimelineDuration
	}
	return &Controller{
		clock:       clock,
		length:      length,
		speed:       float64(length) / duration,
		loop:        cfg.Loop,
		delayBefore: seconds(cfg.LoopDelayBefore),
		delayAfter:  seconds(cfg.LoopDelayAfter),
		lastTick:    clock.Now(),
	}, nil
}

// State returns a snapshot of the playback state.
func (c *Controller) State() State {
	return State{
		Position:        c.position,
		Length:          c.length,
		Playing:         c.playing,
		Loop:            c.loop,
		LoopDelayBefore: c.delayBefore,
		LoopDelayAfter:  c.delayAfter,
		Speed:           c.speed,
		Phase:           c.phase,
	}
}

// Position returns the current play position.
func (c *Controller) Position() float64 {
	return c.position
}

// Playing reports whether playback is on, including loop delays.
func (c *Controller) Playing() bool {
	return c.playing
}

// OnPositionChange registers fn to run after every position change and
// returns a function that removes it. fn must not call back into c.
func (c *Controller) OnPositionChange(fn func(State)) func() {
	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		c.listeners = slices.DeleteFunc(c.listeners, func(l listener) bool { return l.id == id })
	}
}

// Tick advances playback by the wall time elapsed since the previous tick
// and fires a due loop delay.
func (c *Controller) Tick() State {
	now := c.clock.Now()
	elapsed := now.Sub(c.lastTick)
	c.lastTick = now

	switch c.phase {
	case Playing:
		if elapsed > 0 {
			next := c.position + c.speed*elapsed.Seconds()
			if next >= c.last() {
				c.setPosition(c.last())
				c.reachEnd(now)
			} else {
				c.setPosition(next)
			}
		} else if c.position >= c.last() {
			c.reachEnd(now)
		}
	case LoopDelayAfter, LoopDelayBefore:
		// An after-delay may be followed by an already-due zero before-delay.
		for i := 0; i < 2 && c.pending != nil && !now.Before(c.pending.deadline); i++ {
			c.FireDelay(c.pending.token)
		}
	}
	return c.State()
}

// PendingDelay returns the currently scheduled delay, if any.
func (c *Controller) PendingDelay() (Token, time.Time, bool) {
	if c.pending == nil {
		return 0, time.Time{}, false
	}
	return c.pending.token, c.pending.deadline, true
}

// FireDelay completes the delay identified by token. A token that was
// cancelled or already fired is ignored and false is returned.
func (c *Controller) FireDelay(token Token) bool {
	if c.pending == nil || c.pending.token != token {
		return false
	}
	c.pending = nil
	now := c.clock.Now()
	switch c.phase {
	case LoopDelayAfter:
		c.phase = LoopDelayBefore
		c.setPosition(0)
		c.schedule(now, c.delayBefore)
	case LoopDelayBefore:
		c.phase = Playing
		c.lastTick = now
	}
	return true
}

// Play starts or resumes playback. A timeline stopped at its end with
// looping off restarts from 0.
func (c *Controller) Play() {
	if c.playing {
		return
	}
	c.playing = true
	if c.phase == Scrubbing {
		return
	}
	if !c.loop && c.position >= c.last() && c.length > 1 {
		c.setPosition(0)
	}
	c.phase = Playing
	c.lastTick = c.clock.Now()
}

// Pause stops playback and cancels any pending loop delay so nothing
// resumes on its own later.
func (c *Controller) Pause() {
	c.playing = false
	c.cancel()
	if c.phase != Scrubbing {
		c.phase = Stopped
	}
}

// Toggle flips between Play and Pause.
func (c *Controller) Toggle() {
	if c.playing {
		c.Pause()
		return
	}
	c.Play()
}

// Seek moves to position immediately, cancelling any pending delay while
// keeping the playing flag. Out-of-range positions are clamped and the
// returned error wraps dataset.ErrInvalidPosition.
func (c *Controller) Seek(position float64) error {
	clamped := c.clamp(position)
	c.cancel()
	c.setPosition(clamped)
	if c.phase != Scrubbing {
		c.resume()
	}
	if clamped != position {
		return fmt.Errorf("%w: %v clamped to %v", dataset.ErrInvalidPosition, position, clamped)
	}
	return nil
}

// Step seeks by delta positions from the current one, clamping at the ends.
func (c *Controller) Step(delta float64) {
	_ = c.Seek(c.clamp(c.position + delta))
}

// BeginScrub suspends advancement while the user drags the position.
func (c *Controller) BeginScrub() {
	c.cancel()
	c.phase = Scrubbing
}

// EndScrub leaves scrubbing and resumes if playback is on.
func (c *Controller) EndScrub() {
	if c.phase != Scrubbing {
		return
	}
	c.resume()
}

// SetLoop toggles looping. Turning it off during a loop delay ends playback
// the way a non-looping timeline would.
func (c *Controller) SetLoop(loop bool) {
	c.loop = loop
	if loop {
		return
	}
	switch c.phase {
	case LoopDelayAfter:
		c.cancel()
		c.playing = false
		c.phase = Stopped
	case LoopDelayBefore:
		c.cancel()
		c.resume()
	}
}

func (c *Controller) resume() {
	if c.playing {
		c.phase = Playing
		c.lastTick = c.clock.Now()
		return
	}
	c.phase = Stopped
}

func (c *Controller) reachEnd(now time.Time) {
	if !c.loop {
		c.playing = false
		c.phase = Stopped
		return
	}
	c.phase = LoopDelayAfter
	c.schedule(now, c.delayAfter)
}

func (c *Controller) schedule(now time.Time, d time.Duration) {
	c.lastToken++
	c.pending = &pendingDelay{token: c.lastToken, deadline: now.Add(d)}
}

func (c *Controller) cancel() {
	c.pending = nil
}

func (c *Controller) setPosition(p float64) {
	if p == c.position {
		return
	}
	c.position = p
	if len(c.listeners) == 0 {
		return
	}
	st := c.State()
	for _, l := range slices.Clone(c.listeners) {
		l.fn(st)
	}
}

func (c *Controller) last() float64 {
	return float64(c.length - 1)
}

func (c *Controller) clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, c.last())
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
