package model

import (
	"math"
	"testing"
)

func TestDefaultSettingsAreAlreadyNormal(t *testing.T) {
	s, warnings := DefaultSettings().Normalize()
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if s.Bars.MaxCount != 10 || s.Animations.BarJump != BarJumpInstant {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	s := DefaultSettings()
	s.Bars.MaxCount = 0
	s.Bars.WidthRatio = 1.5
	s.Bars.HeightRatio = -2
	s.Labels.SizeRatio = math.NaN()
	s.Bars.CustomSpacing = []float64{4, -1}
	s.Timeline.Duration = 0
	s.Timeline.LoopDelayAfter = -3
	s.Animations.JumpDuration = -1
	s.Animations.BarJump = "bouncy"
	s.Animations.FlipStyle = "sideways"

	got, warnings := s.Normalize()
	if got.Bars.MaxCount != 1 {
		t.Fatalf("expected max count 1, got %d", got.Bars.MaxCount)
	}
	if got.Bars.WidthRatio != 1 {
		t.Fatalf("expected width ratio 1, got %v", got.Bars.WidthRatio)
	}
	if got.Bars.HeightRatio != MinRatio {
		t.Fatalf("expected height ratio %v, got %v", MinRatio, got.Bars.HeightRatio)
	}
	if got.Labels.SizeRatio != 1 {
		t.Fatalf("expected NaN ratio to become 1, got %v", got.Labels.SizeRatio)
	}
	if got.Bars.CustomSpacing[0] != 4 || got.Bars.CustomSpacing[1] != 0 {
		t.Fatalf("unexpected custom spacing: %v", got.Bars.CustomSpacing)
	}
	if got.Timeline.Duration != MinTimelineDuration {
		t.Fatalf("expected min duration, got %v", got.Timeline.Duration)
	}
	if got.Timeline.LoopDelayAfter != 0 || got.Animations.JumpDuration != 0 {
		t.Fatalf("expected negative durations raised to 0")
	}
	if got.Animations.BarJump != BarJumpInstant || got.Animations.FlipStyle != FlipNone {
		t.Fatalf("expected unknown enums to fall back, got %+v", got.Animations)
	}
	if len(warnings) != 10 {
		t.Fatalf("expected 10 warnings, got %d: %v", len(warnings), warnings)
	}
	if s.Bars.CustomSpacing[1] != -1 {
		t.Fatalf("expected input slice untouched")
	}
}

func TestNormalizeClampsInfinity(t *testing.T) {
	s := DefaultSettings()
	s.Timeline.Duration = math.Inf(1)
	s.Timeline.LoopDelayAfter = math.Inf(1)
	s.Timeline.LoopDelayBefore = math.Inf(-1)
	s.Bars.Spacing = math.Inf(1)
	s.Images.WidthRatio = math.Inf(1)
	s.Labels.SizeRatio = math.Inf(-1)
	s.Animations.GrowthDuration = 1e300

	got, warnings := s.Normalize()
	if got.Timeline.Duration != MaxMagnitude {
		t.Fatalf("expected duration %v, got %v", MaxMagnitude, got.Timeline.Duration)
	}
	if got.Timeline.LoopDelayAfter != MaxMagnitude || got.Timeline.LoopDelayBefore != 0 {
		t.Fatalf("expected finite loop delays, got %v and %v", got.Timeline.LoopDelayAfter, got.Timeline.LoopDelayBefore)
	}
	if got.Bars.Spacing != MaxMagnitude || got.Animations.GrowthDuration != MaxMagnitude {
		t.Fatalf("expected capped magnitudes, got %v and %v", got.Bars.Spacing, got.Animations.GrowthDuration)
	}
	if got.Images.WidthRatio != 1 || got.Labels.SizeRatio != MinRatio {
		t.Fatalf("expected clamped ratios, got %v and %v", got.Images.WidthRatio, got.Labels.SizeRatio)
	}
	if len(warnings) != 7 {
		t.Fatalf("expected 7 warnings, got %d: %v", len(warnings), warnings)
	}
	if again, more := got.Normalize(); len(more) != 0 || again.Timeline != got.Timeline {
		t.Fatalf("expected normalized settings to be stable, got %v", more)
	}
}
