package model

import (
	"fmt"
	"math"
)

// MinRatio is the smallest decay ratio accepted; ratios must be in (0, 1].
const MinRatio = 0.01

// MinTimelineDuration keeps the implied playback speed finite.
const MinTimelineDuration = 0.1

// MaxMagnitude caps sizes, spacings and durations (seconds) so they stay
// finite and convert to time.Duration without overflow.
const MaxMagnitude = 1e6

// Normalize clamps every out-of-range field to its nearest valid value and
// returns one warning per adjustment. It never fails.
func (s Settings) Normalize() (Settings, []string) {
	n := normalizer{}

	if s.Bars.MaxCount < 1 {
		n.warnf("bars.max-count %d raised to 1", s.Bars.MaxCount)
		s.Bars.MaxCount = 1
	}
	s.Bars.Spacing = n.nonNegative("bars.spacing", s.Bars.Spacing)
	s.Bars.AreaHeight = n.nonNegative("bars.area-height", s.Bars.AreaHeight)
	if len(s.Bars.CustomSpacing) > 0 {
		custom := make([]float64, len(s.Bars.CustomSpacing))
		for i, v := range s.Bars.CustomSpacing {
			custom[i] = n.nonNegative(fmt.Sprintf("bars.custom-spacing[%d]", i), v)
		}
		s.Bars.CustomSpacing = custom
	}
	s.Bars.WidthRatio = n.ratio("bars.width-ratio", s.Bars.WidthRatio)
	s.Bars.HeightRatio = n.ratio("bars.height-ratio", s.Bars.HeightRatio)

	s.Images.Size = n.nonNegative("images.size", s.Images.Size)
	s.Images.WidthRatio = n.ratio("images.width-ratio", s.Images.WidthRatio)
	s.Images.HeightRatio = n.ratio("images.height-ratio", s.Images.HeightRatio)
	s.Images.Border.Width = n.nonNegative("images.border.width", s.Images.Border.Width)
	s.Images.Border.Spacing = n.nonNegative("images.border.spacing", s.Images.Border.Spacing)
	s.Images.Border.WidthRatio = n.ratio("images.border.width-ratio", s.Images.Border.WidthRatio)
	s.Images.Border.SpacingRatio = n.ratio("images.border.spacing-ratio", s.Images.Border.SpacingRatio)

	s.Labels.Size = n.nonNegative("labels.size", s.Labels.Size)
	s.Labels.SizeRatio = n.ratio("labels.size-ratio", s.Labels.SizeRatio)

	switch d := s.Timeline.Duration; {
	case math.IsNaN(d) || d < MinTimelineDuration:
		n.warnf("timeline.duration %v raised to %v", d, MinTimelineDuration)
		s.Timeline.Duration = MinTimelineDuration
	case d > MaxMagnitude:
		n.warnf("timeline.duration %v lowered to %v", d, MaxMagnitude)
		s.Timeline.Duration = MaxMagnitude
	}
	s.Timeline.LoopDelayBefore = n.nonNegative("timeline.loop-delay-before", s.Timeline.LoopDelayBefore)
	s.Timeline.LoopDelayAfter = n.nonNegative("timeline.loop-delay-after", s.Timeline.LoopDelayAfter)

	switch s.Animations.BarJump {
	case BarJumpInstant, BarJumpSmooth:
	default:
		n.warnf("animations.bar-jump %q unknown, using %q", s.Animations.BarJump, BarJumpInstant)
		s.Animations.BarJump = BarJumpInstant
	}
	switch s.Animations.FlipStyle {
	case FlipNone, FlipImageVertical, FlipImageHorizontal, FlipBorderVertical, FlipBorderHorizontal:
	default:
		n.warnf("animations.flip-style %q unknown, using %q", s.Animations.FlipStyle, FlipNone)
		s.Animations.FlipStyle = FlipNone
	}
	s.Animations.JumpDuration = n.nonNegative("animations.jump-duration", s.Animations.JumpDuration)
	s.Animations.EntryDuration = n.nonNegative("animations.entry-duration", s.Animations.EntryDuration)
	s.Animations.GrowthDuration = n.nonNegative("animations.growth-duration", s.Animations.GrowthDuration)

	return s, n.warnings
}

type normalizer struct {
	warnings []string
}

func (n *normalizer) warnf(format string, args ...any) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) nonNegative(name string, v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		n.warnf("%s %v raised to 0", name, v)
		return 0
	case v > MaxMagnitude:
		n.warnf("%s %v lowered to %v", name, v, MaxMagnitude)
		return MaxMagnitude
	}
	return v
}

func (n *normalizer) ratio(name string, v float64) float64 {
	switch {
	case math.IsNaN(v):
		n.warnf("%s is NaN, using 1", name)
		return 1
	case v < MinRatio:
		n.warnf("%s %v raised to %v", name, v, MinRatio)
		return MinRatio
	case v > 1:
		n.warnf("%s %v lowered to 1", name, v)
		return 1
	}
	return v
}
