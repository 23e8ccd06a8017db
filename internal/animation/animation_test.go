package animation

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/ranking"
)

func smoothConfig(flip model.FlipStyle) model.AnimationSettings {
	return model.AnimationSettings{
		BarJump:        model.BarJumpSmooth,
		JumpDuration:   0.4,
		EntryDuration:  0.6,
		GrowthDuration: 0.25,
		FlipStyle:      flip,
	}
}

func TestInstantSuppressesEverything(t *testing.T) {
	cfg := smoothConfig(model.FlipImageVertical)
	cfg.BarJump = model.BarJumpInstant
	for _, kind := range []ranking.Kind{ranking.Enter, ranking.Move, ranking.Stable, ranking.Exit} {
		d := Translate(ranking.Transition{Key: "A", Kind: kind}, true, cfg)
		if d != (Directive{}) {
			t.Fatalf("%s: expected empty directive, got %+v", kind, d)
		}
	}
}

func TestEnterDirective(t *testing.T) {
	d := Translate(ranking.Transition{Key: "A", Kind: ranking.Enter, From: -1, To: 0}, true, smoothConfig(model.FlipImageVertical))
	if d.Kind != KindEnter || d.Easing != EasingSpring {
		t.Fatalf("expected spring enter, got %+v", d)
	}
	if d.PositionDuration != 600*time.Millisecond {
		t.Fatalf("expected entry duration, got %v", d.PositionDuration)
	}
	if d.FlipAxis != AxisNone {
		t.Fatalf("expected no flip on enter, got %v", d.FlipAxis)
	}
	if d.WidthDuration != 250*time.Millisecond {
		t.Fatalf("expected growth duration, got %v", d.WidthDuration)
	}
}

func TestMoveFlipAxes(t *testing.T) {
	cases := []struct {
		style  model.FlipStyle
		axis   Axis
		target Target
	}{
		{model.FlipNone, AxisNone, TargetNone},
		{model.FlipImageVertical, AxisX, TargetImage},
		{model.FlipImageHorizontal, AxisY, TargetImage},
		{model.FlipBorderVertical, AxisX, TargetBorder},
		{model.FlipBorderHorizontal, AxisY, TargetBorder},
	}
	for _, tc := range cases {
		d := Translate(ranking.Transition{Key: "A", Kind: ranking.Move, From: 2, To: 0}, false, smoothConfig(tc.style))
		if d.Kind != KindFlip || d.Easing != EasingLinear {
			t.Fatalf("%s: expected linear flip, got %+v", tc.style, d)
		}
		if d.PositionDuration != 400*time.Millisecond {
			t.Fatalf("%s: expected jump duration even without a flip axis, got %v", tc.style, d.PositionDuration)
		}
		if d.FlipAxis != tc.axis || d.FlipTarget != tc.target {
			t.Fatalf("%s: expected axis %v target %v, got %v %v", tc.style, tc.axis, tc.target, d.FlipAxis, d.FlipTarget)
		}
		if d.WidthDuration != 0 {
			t.Fatalf("%s: expected no width animation for unchanged value", tc.style)
		}
	}
}

func TestStableAndExit(t *testing.T) {
	cfg := smoothConfig(model.FlipImageVertical)
	stable := Translate(ranking.Transition{Key: "A", Kind: ranking.Stable}, true, cfg)
	if stable.Kind != KindNone || stable.Easing != EasingSpring || stable.PositionDuration != 400*time.Millisecond {
		t.Fatalf("unexpected stable directive %+v", stable)
	}
	if stable.WidthDuration != 250*time.Millisecond {
		t.Fatalf("expected growth on a stable bar whose value changed, got %v", stable.WidthDuration)
	}

	exit := Translate(ranking.Transition{Key: "A", Kind: ranking.Exit, From: 1, To: -1}, true, cfg)
	if exit != (Directive{}) {
		t.Fatalf("expected empty exit directive, got %+v", exit)
	}
}

func TestTranslateAllKeysByEntity(t *testing.T) {
	transitions := []ranking.Transition{
		{Key: "A", Kind: ranking.Move, From: 1, To: 0},
		{Key: "B", Kind: ranking.Move, From: 0, To: 1},
		{Key: "C", Kind: ranking.Enter, From: -1, To: 2},
	}
	got := TranslateAll(transitions, map[string]bool{"A": true}, smoothConfig(model.FlipNone))
	if len(got) != 3 {
		t.Fatalf("expected 3 directives, got %d", len(got))
	}
	if got["A"].WidthDuration == 0 || got["B"].WidthDuration != 0 {
		t.Fatalf("expected growth only for A, got %+v %+v", got["A"], got["B"])
	}
	if got["C"].Kind != KindEnter {
		t.Fatalf("expected C to enter, got %v", got["C"].Kind)
	}
}
