// Package geometry derives rank-dependent sizes for bars, images and labels.
//
// Every decaying property follows the same curve: the reduction grows
// linearly from rank 0 to rank 9 and then saturates, so the tenth bar and
// everything below it is scaled by exactly the configured ratio.
package geometry

import (
	"math"

	"github.com/verte-zerg/tuirace/internal/model"
)

// SaturationRank is the rank at which the decay curve stops falling.
const SaturationRank = 9

// Reduction returns the multiplicative factor applied at rank.
func Reduction(rank int, ratio float64) float64 {
	if rank < 0 {
		rank = 0
	}
	position := float64(min(rank, SaturationRank)) / SaturationRank
	return 1 - (1-ClampRatio(ratio))*position
}

// ClampRatio forces ratio into (0, 1].
func ClampRatio(ratio float64) float64 {
	switch {
	case math.IsNaN(ratio) || ratio > 1:
		return 1
	case ratio < model.MinRatio:
		return model.MinRatio
	}
	return ratio
}

// DecayedMagnitude scales base by the rank reduction and floors the result.
// When disabled base is returned unchanged.
func DecayedMagnitude(base float64, rank int, enabled bool, ratio float64) float64 {
	if !enabled {
		return base
	}
	return math.Floor(base * Reduction(rank, ratio))
}

// DecayedMagnitudeMin is DecayedMagnitude with a lower bound, used where a
// zero or negative size would be degenerate (border widths use 1).
func DecayedMagnitudeMin(base float64, rank int, enabled bool, ratio, floor float64) float64 {
	if !enabled {
		return base
	}
	return math.Max(floor, DecayedMagnitude(base, rank, enabled, ratio))
}

// BarWidthPercent is the bar fill as a percentage of the track. The share
// of the snapshot maximum and the rank decay always apply together.
func BarWidthPercent(value, maxValue float64, rank int, enabled bool, ratio float64) float64 {
	if maxValue <= 0 || value <= 0 {
		return 0
	}
	pct := value / maxValue * 100
	if !enabled {
		return pct
	}
	return pct * Reduction(rank, ratio)
}
