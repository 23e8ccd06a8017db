package tui

import (
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/verte-zerg/tuirace/internal/animation"
)

func TestBarLinearMove(t *testing.T) {
	start := time.Unix(0, 0)
	spring := harmonica.NewSpring(harmonica.FPS(30), springFrequency, springDamping)
	b := newBarState(4)
	b.retarget(start, 0, 50, animation.Directive{
		Kind:             animation.KindFlip,
		PositionDuration: time.Second,
		WidthDuration:    time.Second,
		Easing:           animation.EasingLinear,
		FlipAxis:         animation.AxisY,
		FlipTarget:       animation.TargetBorder,
	})

	b.step(start.Add(500*time.Millisecond), spring)
	if b.row != 2 {
		t.Fatalf("expected halfway row 2, got %v", b.row)
	}
	if b.pct != 25 {
		t.Fatalf("expected halfway width 25, got %v", b.pct)
	}
	if !b.flipping(start.Add(500 * time.Millisecond)) {
		t.Fatalf("expected flip in progress")
	}

	b.step(start.Add(time.Second), spring)
	if b.row != 0 || b.pct != 50 || !b.settled() {
		t.Fatalf("expected settled at row 0 width 50, got %v %v", b.row, b.pct)
	}
	if b.flipping(start.Add(time.Second)) {
		t.Fatalf("expected flip finished")
	}
}

func TestBarSpringMoveApproachesTarget(t *testing.T) {
	start := time.Unix(0, 0)
	spring := harmonica.NewSpring(harmonica.FPS(30), springFrequency, springDamping)
	b := newBarState(0)
	b.retarget(start, 6, 0, animation.Directive{
		Kind:             animation.KindEnter,
		PositionDuration: time.Second,
		Easing:           animation.EasingSpring,
	})
	if !b.entering(start) {
		t.Fatalf("expected entering state")
	}

	for i := 1; i <= 10; i++ {
		b.step(start.Add(time.Duration(i)*33*time.Millisecond), spring)
	}
	if b.row <= 0 || math.IsNaN(b.row) {
		t.Fatalf("expected spring to move toward 6, got %v", b.row)
	}

	b.step(start.Add(time.Second), spring)
	if b.row != 6 || !b.settled() {
		t.Fatalf("expected snap to 6 once the move ends, got %v", b.row)
	}
}

func TestBarInstantDirectiveJumps(t *testing.T) {
	b := newBarState(3)
	b.retarget(time.Unix(0, 0), 1, 80, animation.Directive{})
	if b.row != 1 || b.pct != 80 || !b.settled() {
		t.Fatalf("expected instant jump, got row %v width %v", b.row, b.pct)
	}
}
