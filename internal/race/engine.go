// Package race composes interpolation, ranking, geometry and animation into
// the per-frame pipeline a presenter consumes.
package race

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuirace/internal/animation"
	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/geometry"
	"github.com/verte-zerg/tuirace/internal/interp"
	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/ranking"
)

// Frame is everything a presenter needs to draw one moment.
type Frame struct {
	Position    float64
	Label       string
	Snapshot    ranking.Snapshot
	Transitions []ranking.Transition
	Profiles    map[string]geometry.Profile
	Directives  map[string]animation.Directive
	MaxValue    float64
}

// Engine computes frames for one dataset. It retains the previous snapshot
// between calls and is not safe for concurrent use.
type Engine struct {
	ds       *dataset.Dataset
	settings model.Settings
	logger   *log.Logger
	tracker  ranking.Tracker

	listeners    []rankListener
	nextListener int
}

type rankListener struct {
	id int
	fn func(Frame)
}

// New creates an engine. settings must already be normalized. A nil logger
// falls back to log.Default().
func New(ds *dataset.Dataset, settings model.Settings, logger *log.Logger) (*Engine, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", dataset.ErrInvalidDataset)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		ds:       ds,
		settings: settings,
		logger:   logger,
	}, nil
}

// Dataset returns the dataset being raced.
func (e *Engine) Dataset() *dataset.Dataset {
	return e.ds
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() model.Settings {
	return e.settings
}

// OnRankChange registers fn to run for every frame whose transitions are
// not all Stable, and returns a function that removes it.
func (e *Engine) OnRankChange(fn func(Frame)) func() {
	id := e.nextListener
	e.nextListener++
	e.listeners = append(e.listeners, rankListener{id: id, fn: fn})
	return func() {
		e.listeners = slices.DeleteFunc(e.listeners, func(l rankListener) bool { return l.id == id })
	}
}

// Reset forgets the previous snapshot so the next frame enters every bar.
func (e *Engine) Reset() {
	e.tracker.Reset()
}

// Frame computes the frame at position. The previous snapshot is replaced
// once the diff against it is taken, so consecutive calls always compare
// adjacent frames.
func (e *Engine) Frame(position float64) (Frame, error) {
	samples, err := interp.At(e.ds, position)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to interpolate: %w", err)
	}
	snap := ranking.Rank(samples, e.settings.Bars.MaxCount)
	previous := e.tracker.Previous()
	transitions := e.tracker.Observe(snap)

	changed := make(map[string]bool, snap.Len())
	for _, entry := range snap.Entries {
		before, ok := previous.Find(entry.Key)
		changed[entry.Key] = !ok || before.Value != entry.Value
	}

	maxValue := snap.MaxValue()
	calc := geometry.NewCalculator(e.settings, snap.Len())
	profiles := make(map[string]geometry.Profile, snap.Len())
	for _, entry := range snap.Entries {
		profiles[entry.Key] = calc.ProfileFor(entry.Rank, entry.Value, maxValue)
	}

	frame := Frame{
		Position:    position,
		Label:       interp.LabelAt(e.ds, position),
		Snapshot:    snap,
		Transitions: transitions,
		Profiles:    profiles,
		Directives:  animation.TranslateAll(transitions, changed, e.settings.Animations),
		MaxValue:    maxValue,
	}

	if ranking.Changed(transitions) {
		e.logger.Debug("rank change", "position", position, "label", frame.Label, "order", snap.Keys())
		for _, l := range slices.Clone(e.listeners) {
			l.fn(frame)
		}
	}
	return frame, nil
}

// Moves returns the non-stable transitions of f.
func (f Frame) Moves() []ranking.Transition {
	var out []ranking.Transition
	for _, t := range f.Transitions {
		if t.Kind != ranking.Stable {
			out = append(out, t)
		}
	}
	return out
}
