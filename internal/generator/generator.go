// Package generator builds random demo races.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuirace/internal/dataset"
)

const (
	DefaultEntities  = 12
	DefaultLabels    = 20
	DefaultStartYear = 2000
)

var syllables = []string{"ka", "lo", "mi", "ra", "ven", "tor", "sa", "ul", "dex", "no", "phi", "gar", "ix", "bel", "qua", "zo"}

var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4",
	"#46f0f0", "#f032e6", "#bcf60c", "#fabebe", "#008080", "#e6beff",
	"#9a6324", "#fffac8", "#800000", "#aaffc3", "#808000", "#ffd8b1",
}

// Options shapes a generated race.
type Options struct {
	Entities  int
	Labels    int
	StartYear int
}

// Generator produces randomized races.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is fully determined by seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate builds a dataset of random walks. Each step one entity gets a
// surge, chosen with a bias toward those currently behind so the lead keeps
// changing hands.
func (g *Generator) Generate(opts Options) (*dataset.Dataset, error) {
	if opts.Entities <= 0 {
		opts.Entities = DefaultEntities
	}
	if opts.Labels <= 0 {
		opts.Labels = DefaultLabels
	}
	if opts.StartYear == 0 {
		opts.StartYear = DefaultStartYear
	}

	labels := make([]string, opts.Labels)
	for i := range labels {
		labels[i] = strconv.Itoa(opts.StartYear + i)
	}

	names := g.names(opts.Entities)
	entities := make([]dataset.Entity, opts.Entities)
	current := make([]float64, opts.Entities)
	for i := range entities {
		entities[i] = dataset.Entity{
			Key:    names[i],
			Color:  palette[i%len(palette)],
			Values: make([]float64, opts.Labels),
		}
		current[i] = 10 + g.rnd.Float64()*90
	}

	for step := 0; step < opts.Labels; step++ {
		if step > 0 {
			surge := g.pickTrailing(current)
			for i := range current {
				growth := 1 + g.rnd.NormFloat64()*0.05 + 0.03
				if i == surge {
					growth += 0.25 + g.rnd.Float64()*0.25
				}
				current[i] = math.Max(0, current[i]*growth)
			}
		}
		for i := range entities {
			entities[i].Values[step] = math.Round(current[i]*100) / 100
		}
	}

	return dataset.New(fmt.Sprintf("demo-%d", opts.Entities), labels, entities)
}

// pickTrailing selects an index with weight inversely related to its value.
func (g *Generator) pickTrailing(values []float64) int {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	weights := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		w := 1.0 + (top-v)/math.Max(top, 1)*2
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(values) - 1
}

func (g *Generator) names(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		var b strings.Builder
		parts := 2 + g.rnd.Intn(2)
		for i := 0; i < parts; i++ {
			b.WriteString(syllables[g.rnd.Intn(len(syllables))])
		}
		name := strings.ToUpper(b.String()[:1]) + b.String()[1:]
		if _, ok := seen[name]; ok {
			name = fmt.Sprintf("%s %d", name, len(out)+1)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
