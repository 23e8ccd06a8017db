// Package stats contains race statistics and their text rendering.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/interp"
	"github.com/verte-zerg/tuirace/internal/ranking"
)

const sparkChars = " .:-=+*#%@"

// Reign is a run of consecutive keyframes led by one entity.
type Reign struct {
	Key       string
	FromLabel string
	ToLabel   string
	Keyframes int
}

// Peak is an entity's highest sampled value.
type Peak struct {
	Key   string
	Value float64
	Label string
}

// Standings returns the top maxCount keys at every keyframe, ranked the same
// way the player ranks them.
func Standings(ds *dataset.Dataset, maxCount int) [][]string {
	out := make([][]string, ds.Len())
	for i := range out {
		samples, err := interp.At(ds, float64(i))
		if err != nil {
			// Integer positions inside [0, L-1] always interpolate.
			continue
		}
		out[i] = ranking.Rank(samples, maxCount).Keys()
	}
	return out
}

// Leaders returns the leading key at every keyframe.
func Leaders(ds *dataset.Dataset) []string {
	standings := Standings(ds, 1)
	out := make([]string, len(standings))
	for i, keys := range standings {
		if len(keys) > 0 {
			out[i] = keys[0]
		}
	}
	return out
}

// LeadChanges counts keyframes whose leader differs from the previous one.
func LeadChanges(ds *dataset.Dataset) int {
	leaders := Leaders(ds)
	changes := 0
	for i := 1; i < len(leaders); i++ {
		if leaders[i] != leaders[i-1] {
			changes++
		}
	}
	return changes
}

// Reigns groups consecutive keyframes by leader.
func Reigns(ds *dataset.Dataset) []Reign {
	leaders := Leaders(ds)
	var out []Reign
	for i, key := range leaders {
		if key == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Key == key {
			out[n-1].ToLabel = ds.Label(i)
			out[n-1].Keyframes++
			continue
		}
		out = append(out, Reign{Key: key, FromLabel: ds.Label(i), ToLabel: ds.Label(i), Keyframes: 1})
	}
	return out
}

// Peaks returns every entity's peak, highest first. Ties sort by key.
func Peaks(ds *dataset.Dataset) []Peak {
	peaks := make([]Peak, 0, ds.EntityCount())
	for i := 0; i < ds.EntityCount(); i++ {
		best := 0
		for j := 1; j < ds.Len(); j++ {
			if ds.Value(i, j) > ds.Value(i, best) {
				best = j
			}
		}
		peaks = append(peaks, Peak{Key: ds.KeyAt(i), Value: ds.Value(i, best), Label: ds.Label(best)})
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].Value == peaks[j].Value {
			return peaks[i].Key < peaks[j].Key
		}
		return peaks[i].Value > peaks[j].Value
	})
	return peaks
}

// TopKeysByPeak returns the n keys with the highest peak values.
func TopKeysByPeak(ds *dataset.Dataset, n int) []string {
	if n <= 0 {
		return nil
	}
	peaks := Peaks(ds)
	if n > len(peaks) {
		n = len(peaks)
	}
	out := make([]string, 0, n)
	for _, p := range peaks[:n] {
		out = append(out, p.Key)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
