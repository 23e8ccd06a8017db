// Package ranking orders interpolated values into snapshots and classifies
// how each entity moved between two consecutive snapshots.
package ranking

import (
	"sort"

	"github.com/verte-zerg/tuirace/internal/interp"
)

// Entry is one ranked entity.
type Entry struct {
	Key   string
	Value float64
	Rank  int
}

// Snapshot is the ordered top-N at one moment. Entries[i].Rank == i.
type Snapshot struct {
	Entries []Entry
}

// Len returns the number of ranked entities.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// MaxValue returns the leader's value, or 0 for an empty snapshot.
func (s Snapshot) MaxValue() float64 {
	if len(s.Entries) == 0 {
		return 0
	}
	return s.Entries[0].Value
}

// Find returns the entry for key.
func (s Snapshot) Find(key string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the ranked keys in order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Rank sorts values descending and keeps the first maxCount. Equal values
// keep their input order so repeated calls never reorder ties.
func Rank(values []interp.Sample, maxCount int) Snapshot {
	if maxCount < 1 {
		maxCount = 1
	}
	sorted := make([]interp.Sample, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if len(sorted) > maxCount {
		sorted = sorted[:maxCount]
	}
	entries := make([]Entry, len(sorted))
	for i, s := range sorted {
		entries[i] = Entry{Key: s.Key, Value: s.Value, Rank: i}
	}
	return Snapshot{Entries: entries}
}
