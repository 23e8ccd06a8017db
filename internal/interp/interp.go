// Package interp maps a continuous play position onto interpolated entity values.
package interp

import (
	"fmt"
	"math"

	"github.com/verte-zerg/tuirace/internal/dataset"
)

// ErrInvalidPosition reports a position outside [0, L-1].
var ErrInvalidPosition = dataset.ErrInvalidPosition

// Sample is one entity's value at a play position.
type Sample struct {
	Key   string
	Value float64
}

// At interpolates every entity at position. Samples keep dataset order,
// which is the first-seen order ranking uses to break ties.
func At(ds *dataset.Dataset, position float64) ([]Sample, error) {
	last := float64(ds.Len() - 1)
	if math.IsNaN(position) || position < 0 || position > last {
		return nil, fmt.Errorf("%w: %v not in [0, %v]", ErrInvalidPosition, position, last)
	}
	floorIdx := int(math.Floor(position))
	ceilIdx := floorIdx + 1
	if ceilIdx > ds.Len()-1 {
		ceilIdx = ds.Len() - 1
	}
	frac := position - float64(floorIdx)

	out := make([]Sample, ds.EntityCount())
	for i := range out {
		from := ds.Value(i, floorIdx)
		value := from
		if frac != 0 && floorIdx != ceilIdx {
			value = from + (ds.Value(i, ceilIdx)-from)*frac
		}
		out[i] = Sample{Key: ds.KeyAt(i), Value: value}
	}
	return out, nil
}

// Map converts samples into a key to value mapping.
func Map(samples []Sample) map[string]float64 {
	m := make(map[string]float64, len(samples))
	for _, s := range samples {
		m[s.Key] = s.Value
	}
	return m
}

// Clamp returns the nearest valid position for ds. NaN maps to 0.
func Clamp(ds *dataset.Dataset, position float64) float64 {
	if math.IsNaN(position) || position < 0 {
		return 0
	}
	if last := float64(ds.Len() - 1); position > last {
		return last
	}
	return position
}

// LabelAt returns the keyframe label the position currently sits on.
func LabelAt(ds *dataset.Dataset, position float64) string {
	idx := int(math.Floor(Clamp(ds, position)))
	return ds.Label(idx)
}
