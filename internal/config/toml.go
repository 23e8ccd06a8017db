// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuirace/internal/model"
)

// FileConfig represents the TOML configuration file. Every field is optional;
// absent values keep the defaults they are applied onto.
type FileConfig struct {
	Bars       BarsConfig       `toml:"bars"`
	Images     ImagesConfig     `toml:"images"`
	Labels     LabelsConfig     `toml:"labels"`
	Timeline   TimelineConfig   `toml:"timeline"`
	Animations AnimationsConfig `toml:"animations"`
}

// BarsConfig maps bar layout settings.
type BarsConfig struct {
	MaxCount         *int      `toml:"max-count"`
	Spacing          *float64  `toml:"spacing"`
	CustomSpacing    []float64 `toml:"custom-spacing"`
	KeepSpacing      *bool     `toml:"keep-spacing"`
	AreaHeight       *float64  `toml:"area-height"`
	DescendingWidth  *bool     `toml:"descending-width"`
	WidthRatio       *float64  `toml:"width-ratio"`
	DescendingHeight *bool     `toml:"descending-height"`
	HeightRatio      *float64  `toml:"height-ratio"`
}

// ImagesConfig maps entity image settings.
type ImagesConfig struct {
	Size             *float64     `toml:"size"`
	DescendingWidth  *bool        `toml:"descending-width"`
	WidthRatio       *float64     `toml:"width-ratio"`
	DescendingHeight *bool        `toml:"descending-height"`
	HeightRatio      *float64     `toml:"height-ratio"`
	Border           BorderConfig `toml:"border"`
}

// BorderConfig maps image border settings.
type BorderConfig struct {
	Enabled           *bool    `toml:"enabled"`
	Width             *float64 `toml:"width"`
	Spacing           *float64 `toml:"spacing"`
	DescendingWidth   *bool    `toml:"descending-width"`
	WidthRatio        *float64 `toml:"width-ratio"`
	DescendingSpacing *bool    `toml:"descending-spacing"`
	SpacingRatio      *float64 `toml:"spacing-ratio"`
}

// LabelsConfig maps entity label settings.
type LabelsConfig struct {
	Size           *float64 `toml:"size"`
	DescendingSize *bool    `toml:"descending-size"`
	SizeRatio      *float64 `toml:"size-ratio"`
}

// TimelineConfig maps playback settings. Durations are seconds.
type TimelineConfig struct {
	Duration        *float64 `toml:"duration"`
	Loop            *bool    `toml:"loop"`
	LoopDelayBefore *float64 `toml:"loop-delay-before"`
	LoopDelayAfter  *float64 `toml:"loop-delay-after"`
}

// AnimationsConfig maps transition settings. Durations are seconds.
type AnimationsConfig struct {
	BarJump        *string  `toml:"bar-jump"`
	JumpDuration   *float64 `toml:"jump-duration"`
	EntryDuration  *float64 `toml:"entry-duration"`
	GrowthDuration *float64 `toml:"growth-duration"`
	FlipStyle      *string  `toml:"flip-style"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays the values present in the file onto s. The result is not
// normalized.
func (c FileConfig) Apply(s model.Settings) model.Settings {
	b := c.Bars
	setInt(&s.Bars.MaxCount, b.MaxCount)
	setFloat(&s.Bars.Spacing, b.Spacing)
	if b.CustomSpacing != nil {
		s.Bars.UseCustomSpacing = true
		s.Bars.CustomSpacing = append([]float64(nil), b.CustomSpacing...)
	}
	setBool(&s.Bars.KeepSpacing, b.KeepSpacing)
	setFloat(&s.Bars.AreaHeight, b.AreaHeight)
	setBool(&s.Bars.DescendingWidth, b.DescendingWidth)
	setFloat(&s.Bars.WidthRatio, b.WidthRatio)
	setBool(&s.Bars.DescendingHeight, b.DescendingHeight)
	setFloat(&s.Bars.HeightRatio, b.HeightRatio)

	img := c.Images
	setFloat(&s.Images.Size, img.Size)
	setBool(&s.Images.DescendingWidth, img.DescendingWidth)
	setFloat(&s.Images.WidthRatio, img.WidthRatio)
	setBool(&s.Images.DescendingHeight, img.DescendingHeight)
	setFloat(&s.Images.HeightRatio, img.HeightRatio)
	setBool(&s.Images.Border.Enabled, img.Border.Enabled)
	setFloat(&s.Images.Border.Width, img.Border.Width)
	setFloat(&s.Images.Border.Spacing, img.Border.Spacing)
	setBool(&s.Images.Border.DescendingWidth, img.Border.DescendingWidth)
	setFloat(&s.Images.Border.WidthRatio, img.Border.WidthRatio)
	setBool(&s.Images.Border.DescendingSpacing, img.Border.DescendingSpacing)
	setFloat(&s.Images.Border.SpacingRatio, img.Border.SpacingRatio)

	setFloat(&s.Labels.Size, c.Labels.Size)
	setBool(&s.Labels.DescendingSize, c.Labels.DescendingSize)
	setFloat(&s.Labels.SizeRatio, c.Labels.SizeRatio)

	setFloat(&s.Timeline.Duration, c.Timeline.Duration)
	setBool(&s.Timeline.Loop, c.Timeline.Loop)
	setFloat(&s.Timeline.LoopDelayBefore, c.Timeline.LoopDelayBefore)
	setFloat(&s.Timeline.LoopDelayAfter, c.Timeline.LoopDelayAfter)

	a := c.Animations
	if a.BarJump != nil {
		s.Animations.BarJump = model.BarJump(*a.BarJump)
	}
	setFloat(&s.Animations.JumpDuration, a.JumpDuration)
	setFloat(&s.Animations.EntryDuration, a.EntryDuration)
	setFloat(&s.Animations.GrowthDuration, a.GrowthDuration)
	if a.FlipStyle != nil {
		s.Animations.FlipStyle = model.FlipStyle(*a.FlipStyle)
	}
	return s
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}
