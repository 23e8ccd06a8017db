package dataset

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewValidates(t *testing.T) {
	cases := []struct {
		name     string
		labels   []string
		entities []Entity
	}{
		{name: "no labels", labels: nil},
		{name: "duplicate label", labels: []string{"a", "a"}},
		{name: "length mismatch", labels: []string{"a", "b"}, entities: []Entity{{Key: "x", Values: []float64{1}}}},
		{name: "duplicate key", labels: []string{"a"}, entities: []Entity{{Key: "x", Values: []float64{1}}, {Key: "x", Values: []float64{2}}}},
		{name: "empty key", labels: []string{"a"}, entities: []Entity{{Key: " ", Values: []float64{1}}}},
		{name: "nan", labels: []string{"a"}, entities: []Entity{{Key: "x", Values: []float64{math.NaN()}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("", tc.labels, tc.entities)
			if !errors.Is(err, ErrInvalidDataset) {
				t.Fatalf("expected ErrInvalidDataset, got %v", err)
			}
		})
	}
}

func TestDatasetIsImmutable(t *testing.T) {
	values := []float64{1, 2}
	labels := []string{"2020", "2021"}
	ds, err := New("test", labels, []Entity{{Key: "A", Values: values}})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	values[0] = 99
	labels[0] = "x"
	if ds.Value(0, 0) != 1 {
		t.Fatalf("expected copy of values, got %v", ds.Value(0, 0))
	}
	if ds.Label(0) != "2020" {
		t.Fatalf("expected copy of labels, got %q", ds.Label(0))
	}
	e, ok := ds.Entity("A")
	if !ok {
		t.Fatalf("expected entity A")
	}
	e.Values[1] = 42
	if ds.Value(0, 1) != 2 {
		t.Fatalf("expected entity accessor to copy values")
	}
}

func TestDecodeRoundTripsThroughTOML(t *testing.T) {
	src := `
name = "demo"
labels = ["2020", "2021", "2022"]

[[entity]]
key = "A"
color = "#ff0000"
values = [10, 30, 20]

[[entity]]
key = "B"
color = "#00ff00"
image = "b.png"
values = [20, 20, 20]
`
	ds, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ds.Name() != "demo" || ds.Len() != 3 || ds.EntityCount() != 2 {
		t.Fatalf("unexpected dataset shape: %s %d %d", ds.Name(), ds.Len(), ds.EntityCount())
	}
	if keys := ds.Keys(); keys[0] != "A" || keys[1] != "B" {
		t.Fatalf("expected insertion order, got %v", keys)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, ds); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
	b, _ := again.Entity("B")
	if b.Image != "b.png" || b.Values[2] != 20 {
		t.Fatalf("unexpected entity after re-decode: %+v", b)
	}
}
