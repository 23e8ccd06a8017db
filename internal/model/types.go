// Package model defines shared data structures.
package model

// BarJump selects how rank changes are animated.
type BarJump string

const (
	BarJumpInstant BarJump = "instant"
	BarJumpSmooth  BarJump = "smooth"
)

// FlipStyle selects the rotation played when two bars swap.
type FlipStyle string

const (
	FlipNone             FlipStyle = "none"
	FlipImageVertical    FlipStyle = "imageVertical"
	FlipImageHorizontal  FlipStyle = "imageHorizontal"
	FlipBorderVertical   FlipStyle = "borderVertical"
	FlipBorderHorizontal FlipStyle = "borderHorizontal"
)

// Settings is the complete engine configuration. Build it with
// DefaultSettings and pass it through Normalize before use.
type Settings struct {
	Bars       BarSettings
	Images     ImageSettings
	Labels     LabelSettings
	Timeline   TimelineSettings
	Animations AnimationSettings
}

// BarSettings controls the ranked bars.
type BarSettings struct {
	MaxCount         int
	Spacing          float64
	UseCustomSpacing bool
	CustomSpacing    []float64
	KeepSpacing      bool
	AreaHeight       float64
	DescendingWidth  bool
	WidthRatio       float64
	DescendingHeight bool
	HeightRatio      float64
}

// ImageSettings controls entity images and their borders.
type ImageSettings struct {
	Size             float64
	DescendingWidth  bool
	WidthRatio       float64
	DescendingHeight bool
	HeightRatio      float64
	Border           BorderSettings
}

// BorderSettings controls the ring drawn around entity images.
type BorderSettings struct {
	Enabled           bool
	Width             float64
	Spacing           float64
	DescendingWidth   bool
	WidthRatio        float64
	DescendingSpacing bool
	SpacingRatio      float64
}

// LabelSettings controls entity name labels.
type LabelSettings struct {
	Size           float64
	DescendingSize bool
	SizeRatio      float64
}

// TimelineSettings controls playback. Durations are in seconds.
type TimelineSettings struct {
	Duration        float64
	Loop            bool
	LoopDelayBefore float64
	LoopDelayAfter  float64
}

// AnimationSettings controls per-entity transitions. Durations are in seconds.
type AnimationSettings struct {
	BarJump        BarJump
	JumpDuration   float64
	EntryDuration  float64
	GrowthDuration float64
	FlipStyle      FlipStyle
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Bars: BarSettings{
			MaxCount:    10,
			Spacing:     8,
			AreaHeight:  536,
			WidthRatio:  0.75,
			HeightRatio: 0.75,
		},
		Images: ImageSettings{
			Size:        32,
			WidthRatio:  0.75,
			HeightRatio: 0.75,
			Border: BorderSettings{
				Width:        2,
				Spacing:      2,
				WidthRatio:   0.75,
				SpacingRatio: 0.75,
			},
		},
		Labels: LabelSettings{
			Size:      14,
			SizeRatio: 0.75,
		},
		Timeline: TimelineSettings{
			Duration:        30,
			LoopDelayBefore: 1,
			LoopDelayAfter:  1,
		},
		Animations: AnimationSettings{
			BarJump:        BarJumpInstant,
			JumpDuration:   0.3,
			EntryDuration:  0.3,
			GrowthDuration: 0.3,
			FlipStyle:      FlipNone,
		},
	}
}
