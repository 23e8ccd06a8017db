package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/tuirace/internal/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", []string{"2020", "2021", "2022"}, []dataset.Entity{
		{Key: "A", Values: []float64{10, 30, 20}},
		{Key: "B", Values: []float64{20, 20, 20}},
		{Key: "C", Values: []float64{0.1, 0.7, 1e9}},
	})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	return ds
}

func TestAtKeyframesAreExact(t *testing.T) {
	ds := testDataset(t)
	for p := 0; p < ds.Len(); p++ {
		samples, err := At(ds, float64(p))
		if err != nil {
			t.Fatalf("at %d: %v", p, err)
		}
		for i, s := range samples {
			if s.Value != ds.Value(i, p) {
				t.Fatalf("expected exact %v for %s at %d, got %v", ds.Value(i, p), s.Key, p, s.Value)
			}
		}
	}
}

func TestAtInterpolatesLinearly(t *testing.T) {
	ds := testDataset(t)
	samples, err := At(ds, 0.25)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	m := Map(samples)
	if m["A"] != 15 {
		t.Fatalf("expected A=15, got %v", m["A"])
	}
	if m["B"] != 20 {
		t.Fatalf("expected B=20, got %v", m["B"])
	}
}

func TestAtMonotonicOnIncreasingSegment(t *testing.T) {
	ds := testDataset(t)
	prev := math.Inf(-1)
	for step := 0; step <= 100; step++ {
		pos := float64(step) / 100
		samples, err := At(ds, pos)
		if err != nil {
			t.Fatalf("at %v: %v", pos, err)
		}
		if samples[0].Value < prev {
			t.Fatalf("expected non-decreasing values, %v < %v at %v", samples[0].Value, prev, pos)
		}
		prev = samples[0].Value
	}
}

func TestAtKeepsDatasetOrder(t *testing.T) {
	ds := testDataset(t)
	samples, err := At(ds, 1.5)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if samples[0].Key != "A" || samples[1].Key != "B" || samples[2].Key != "C" {
		t.Fatalf("unexpected order: %+v", samples)
	}
}

func TestAtRejectsOutOfRange(t *testing.T) {
	ds := testDataset(t)
	for _, pos := range []float64{-0.01, 2.0001, math.NaN()} {
		if _, err := At(ds, pos); !errors.Is(err, ErrInvalidPosition) {
			t.Fatalf("expected ErrInvalidPosition for %v, got %v", pos, err)
		}
	}
}

func TestAtSingleLabel(t *testing.T) {
	ds, err := dataset.New("one", []string{"only"}, []dataset.Entity{{Key: "A", Values: []float64{7}}})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	samples, err := At(ds, 0)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if samples[0].Value != 7 {
		t.Fatalf("expected 7, got %v", samples[0].Value)
	}
}

func TestClampAndLabel(t *testing.T) {
	ds := testDataset(t)
	if got := Clamp(ds, -3); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Clamp(ds, 9); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := LabelAt(ds, 1.9); got != "2021" {
		t.Fatalf("expected 2021, got %q", got)
	}
}
