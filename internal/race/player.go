package race

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/tuirace/internal/timeline"
)

// DefaultFrameInterval is the headless tick period.
const DefaultFrameInterval = 50 * time.Millisecond

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPause
	cmdSeek
	cmdLoop
)

type command struct {
	kind     commandKind
	position float64
	loop     bool
}

// Player drives a timeline and an engine from one goroutine. Control calls
// are queued and applied between ticks, so a tick never sees a half-applied
// seek.
type Player struct {
	engine   *Engine
	timeline *timeline.Controller
	clock    clockwork.Clock
	logger   *log.Logger
	sink     func(Frame, timeline.State)

	commands chan command
	done     chan struct{}
}

// NewPlayer builds a player for engine using the engine's timeline settings.
// sink receives every computed frame and may be nil.
func NewPlayer(engine *Engine, clock clockwork.Clock, sink func(Frame, timeline.State)) (*Player, error) {
	ctrl, err := timeline.New(clock, engine.Dataset().Len(), engine.Settings().Timeline)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = func(Frame, timeline.State) {}
	}
	return &Player{
		engine:   engine,
		timeline: ctrl,
		clock:    clock,
		logger:   engine.logger,
		sink:     sink,
		commands: make(chan command, 16),
		done:     make(chan struct{}),
	}, nil
}

// Play queues a play command.
func (p *Player) Play() { p.send(command{kind: cmdPlay}) }

// Pause queues a pause command.
func (p *Player) Pause() { p.send(command{kind: cmdPause}) }

// Seek queues a seek to position.
func (p *Player) Seek(position float64) { p.send(command{kind: cmdSeek, position: position}) }

// SetLoop queues a loop toggle.
func (p *Player) SetLoop(loop bool) { p.send(command{kind: cmdLoop, loop: loop}) }

func (p *Player) send(c command) {
	select {
	case p.commands <- c:
	case <-p.done:
	}
}

// Run ticks every interval until ctx is cancelled or a non-looping race
// plays to its end. It blocks.
func (p *Player) Run(ctx context.Context, interval time.Duration) error {
	defer close(p.done)
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	if err := p.emit(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-p.commands:
			p.apply(c)
			if err := p.emit(); err != nil {
				return err
			}
		case <-ticker.Chan():
			wasPlaying := p.timeline.Playing()
			p.timeline.Tick()
			if err := p.emit(); err != nil {
				return err
			}
			if wasPlaying && !p.timeline.Playing() && p.timeline.State().Phase == timeline.Stopped {
				p.logger.Debug("race finished", "label", p.engine.Dataset().Label(p.engine.Dataset().Len()-1))
				return nil
			}
		}
	}
}

func (p *Player) apply(c command) {
	switch c.kind {
	case cmdPlay:
		p.timeline.Play()
	case cmdPause:
		p.timeline.Pause()
	case cmdSeek:
		if err := p.timeline.Seek(c.position); err != nil {
			p.logger.Warn("seek clamped", "err", err)
		}
	case cmdLoop:
		p.timeline.SetLoop(c.loop)
	}
}

func (p *Player) emit() error {
	st := p.timeline.State()
	frame, err := p.engine.Frame(st.Position)
	if err != nil {
		return err
	}
	p.sink(frame, st)
	return nil
}
