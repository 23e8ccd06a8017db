package geometry

import (
	"math"

	"github.com/verte-zerg/tuirace/internal/model"
)

// GapSpacing returns the gap below slot index, preferring the per-gap
// override when one is configured for it.
func GapSpacing(index int, spacing float64, overrides []float64) float64 {
	if index >= 0 && index < len(overrides) {
		return overrides[index]
	}
	return spacing
}

// Offset returns the top edge of slot index.
func Offset(index int, barHeight, spacing float64, overrides []float64) float64 {
	if overrides == nil {
		return float64(index) * (barHeight + spacing)
	}
	var top float64
	for i := 0; i < index; i++ {
		top += barHeight + GapSpacing(i, spacing, overrides)
	}
	return top
}

// BarHeight splits the drawing area into slots separated by spacing.
func BarHeight(available, spacing float64, slots int) float64 {
	if slots < 1 {
		return 0
	}
	h := math.Floor((available - math.Max(0, spacing)*float64(slots-1)) / float64(slots))
	return math.Max(0, h)
}

// Profile holds every derived magnitude for one ranked entity.
type Profile struct {
	Rank          int
	BarWidthPct   float64
	BarHeight     float64
	Top           float64
	ImageWidth    float64
	ImageHeight   float64
	FontSize      float64
	BorderWidth   float64
	BorderSpacing float64
}

// Calculator computes profiles from normalized settings.
type Calculator struct {
	bars      model.BarSettings
	images    model.ImageSettings
	labels    model.LabelSettings
	baseBar   float64
	overrides []float64
}

// NewCalculator prepares a calculator; slots is the number of entities in
// the current snapshot, replaced by MaxCount when KeepSpacing is set.
func NewCalculator(s model.Settings, slots int) *Calculator {
	if s.Bars.KeepSpacing {
		slots = s.Bars.MaxCount
	}
	c := &Calculator{
		bars:    s.Bars,
		images:  s.Images,
		labels:  s.Labels,
		baseBar: BarHeight(s.Bars.AreaHeight, s.Bars.Spacing, slots),
	}
	if s.Bars.UseCustomSpacing {
		c.overrides = s.Bars.CustomSpacing
		if c.overrides == nil {
			c.overrides = []float64{}
		}
	}
	return c
}

// BaseBarHeight returns the undecayed slot height.
func (c *Calculator) BaseBarHeight() float64 {
	return c.baseBar
}

// ProfileFor computes the profile of the entity at rank.
func (c *Calculator) ProfileFor(rank int, value, maxValue float64) Profile {
	b := c.bars
	img := c.images
	border := img.Border
	p := Profile{
		Rank:        rank,
		BarWidthPct: BarWidthPercent(value, maxValue, rank, b.DescendingWidth, b.WidthRatio),
		BarHeight:   DecayedMagnitude(c.baseBar, rank, b.DescendingHeight, b.HeightRatio),
		Top:         Offset(rank, c.baseBar, b.Spacing, c.overrides),
		ImageWidth:  DecayedMagnitude(img.Size, rank, img.DescendingWidth, img.WidthRatio),
		ImageHeight: DecayedMagnitude(img.Size, rank, img.DescendingHeight, img.HeightRatio),
		FontSize:    DecayedMagnitude(c.labels.Size, rank, c.labels.DescendingSize, c.labels.SizeRatio),
	}
	if border.Enabled {
		p.BorderWidth = DecayedMagnitudeMin(border.Width, rank, border.DescendingWidth, border.WidthRatio, 1)
		p.BorderSpacing = DecayedMagnitudeMin(border.Spacing, rank, border.DescendingSpacing, border.SpacingRatio, 0)
	}
	return p
}
