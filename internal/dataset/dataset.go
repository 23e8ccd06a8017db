// Package dataset holds the immutable time-series a race is played from.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidDataset reports a dataset that violates its shape invariants.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrInvalidPosition reports a play position outside [0, L-1].
	ErrInvalidPosition = errors.New("invalid position")
)

// Entity is one competitor in the race.
type Entity struct {
	Key    string
	Color  string
	Image  string
	Values []float64
}

// Dataset is an ordered label sequence plus entities with aligned samples.
// It is immutable after New; accessors return copies.
type Dataset struct {
	name     string
	labels   []string
	entities []Entity
	index    map[string]int
}

// New validates and copies the input into a Dataset.
func New(name string, labels []string, entities []Entity) (*Dataset, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: at least one label is required", ErrInvalidDataset)
	}
	seenLabels := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seenLabels[label]; ok {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvalidDataset, label)
		}
		seenLabels[label] = struct{}{}
	}

	ds := &Dataset{
		name:     strings.TrimSpace(name),
		labels:   append([]string(nil), labels...),
		entities: make([]Entity, 0, len(entities)),
		index:    make(map[string]int, len(entities)),
	}
	for _, e := range entities {
		if strings.TrimSpace(e.Key) == "" {
			return nil, fmt.Errorf("%w: entity key must not be empty", ErrInvalidDataset)
		}
		if _, ok := ds.index[e.Key]; ok {
			return nil, fmt.Errorf("%w: duplicate entity key %q", ErrInvalidDataset, e.Key)
		}
		if len(e.Values) != len(labels) {
			return nil, fmt.Errorf("%w: entity %q has %d values, want %d", ErrInvalidDataset, e.Key, len(e.Values), len(labels))
		}
		for i, v := range e.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entity %q has a non-finite value at label %q", ErrInvalidDataset, e.Key, labels[i])
			}
		}
		ds.index[e.Key] = len(ds.entities)
		ds.entities = append(ds.entities, Entity{
			Key:    e.Key,
			Color:  e.Color,
			Image:  e.Image,
			Values: append([]float64(nil), e.Values...),
		})
	}
	return ds, nil
}

// Name returns the dataset display name.
func (d *Dataset) Name() string {
	return d.name
}

// Len returns the timeline length L.
func (d *Dataset) Len() int {
	return len(d.labels)
}

// Labels returns a copy of the label sequence.
func (d *Dataset) Labels() []string {
	return append([]string(nil), d.labels...)
}

// Label returns the label at index i.
func (d *Dataset) Label(i int) string {
	return d.labels[i]
}

// EntityCount returns the number of entities.
func (d *Dataset) EntityCount() int {
	return len(d.entities)
}

// Keys returns entity keys in insertion order.
func (d *Dataset) Keys() []string {
	keys := make([]string, len(d.entities))
	for i, e := range d.entities {
		keys[i] = e.Key
	}
	return keys
}

// Entity returns a copy of the entity with the given key.
func (d *Dataset) Entity(key string) (Entity, bool) {
	idx, ok := d.index[key]
	if !ok {
		return Entity{}, false
	}
	e := d.entities[idx]
	e.Values = append([]float64(nil), e.Values...)
	return e, true
}

// Entities returns copies of all entities in insertion order.
func (d *Dataset) Entities() []Entity {
	out := make([]Entity, len(d.entities))
	for i, e := range d.entities {
		e.Values = append([]float64(nil), e.Values...)
		out[i] = e
	}
	return out
}

// Value returns the raw sample of entity i at label index j without copying.
func (d *Dataset) Value(i, j int) float64 {
	return d.entities[i].Values[j]
}

// KeyAt returns the key of entity i.
func (d *Dataset) KeyAt(i int) string {
	return d.entities[i].Key
}
