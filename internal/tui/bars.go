package tui

import (
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/verte-zerg/tuirace/internal/animation"
)

// barState is the on-screen state of one ranked bar. Targets come from the
// latest frame; the displayed row and width chase them according to the
// frame's directive.
type barState struct {
	row       float64
	rowVel    float64
	rowFrom   float64
	rowTarget float64
	moveStart time.Time
	moveDur   time.Duration
	easing    animation.Easing

	pct       float64
	pctFrom   float64
	pctTarget float64
	growStart time.Time
	growDur   time.Duration

	enterUntil time.Time
	flipUntil  time.Time
	flipAxis   animation.Axis
	flipTarget animation.Target
}

func newBarState(row float64) *barState {
	return &barState{row: row, rowFrom: row, rowTarget: row}
}

// retarget applies a new frame's targets and directive at now.
func (b *barState) retarget(now time.Time, row, pct float64, d animation.Directive) {
	if row != b.rowTarget {
		b.rowTarget = row
		if d.PositionDuration <= 0 || d.Easing == animation.EasingNone {
			b.row, b.rowVel, b.moveDur = row, 0, 0
		} else {
			b.rowFrom = b.row
			b.moveStart = now
			b.moveDur = d.PositionDuration
			b.easing = d.Easing
		}
	}

	if pct != b.pctTarget {
		b.pctTarget = pct
		if d.WidthDuration <= 0 {
			b.pct, b.growDur = pct, 0
		} else {
			b.pctFrom = b.pct
			b.growStart = now
			b.growDur = d.WidthDuration
		}
	}

	switch d.Kind {
	case animation.KindEnter:
		b.enterUntil = now.Add(d.PositionDuration)
	case animation.KindFlip:
		if d.FlipAxis != animation.AxisNone {
			b.flipUntil = now.Add(d.PositionDuration)
			b.flipAxis = d.FlipAxis
			b.flipTarget = d.FlipTarget
		}
	}
}

// step advances the displayed row and width to now.
func (b *barState) step(now time.Time, spring harmonica.Spring) {
	if b.moveDur > 0 {
		elapsed := now.Sub(b.moveStart)
		switch {
		case elapsed >= b.moveDur:
			b.row, b.rowVel, b.moveDur = b.rowTarget, 0, 0
		case b.easing == animation.EasingSpring:
			b.row, b.rowVel = spring.Update(b.row, b.rowVel, b.rowTarget)
		default:
			b.row = lerp(b.rowFrom, b.rowTarget, progressOf(elapsed, b.moveDur))
		}
	}
	if b.growDur > 0 {
		elapsed := now.Sub(b.growStart)
		if elapsed >= b.growDur {
			b.pct, b.growDur = b.pctTarget, 0
		} else {
			b.pct = lerp(b.pctFrom, b.pctTarget, progressOf(elapsed, b.growDur))
		}
	}
}

func (b *barState) entering(now time.Time) bool {
	return now.Before(b.enterUntil)
}

func (b *barState) flipping(now time.Time) bool {
	return now.Before(b.flipUntil)
}

func (b *barState) settled() bool {
	return b.moveDur == 0 && b.growDur == 0
}

func progressOf(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return min(1, max(0, float64(elapsed)/float64(total)))
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
