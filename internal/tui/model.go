// Package tui provides the Bubble Tea race player.
package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/tuirace/internal/animation"
	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/race"
	"github.com/verte-zerg/tuirace/internal/ranking"
	"github.com/verte-zerg/tuirace/internal/timeline"
)

const (
	// DefaultFrameInterval is the redraw period, about 30 frames per second.
	DefaultFrameInterval = 33 * time.Millisecond

	defaultWidth    = 80
	defaultHeight   = 24
	maxLabelWidth   = 18
	headerHeight    = 2
	footerHeight    = 2
	fallbackColor   = "#7D56F4"
	springFrequency = 8.0
	springDamping   = 0.6
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	dateStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type frameMsg time.Time

// Options tunes the player.
type Options struct {
	FrameInterval time.Duration
	Autoplay      bool
}

// Model implements the Bubble Tea race player.
type Model struct {
	engine   *race.Engine
	timeline *timeline.Controller
	clock    clockwork.Clock
	interval time.Duration
	settings model.Settings
	entities map[string]dataset.Entity

	showImages bool
	labelWidth int

	help     help.Model
	progress progress.Model
	spring   harmonica.Spring

	width  int
	height int

	frame race.Frame
	bars  map[string]*barState
	err   error
}

// NewModel constructs a player for engine. The clock drives both playback
// and the bar animations.
func NewModel(engine *race.Engine, clock clockwork.Clock, opts Options) (*Model, error) {
	ds := engine.Dataset()
	settings := engine.Settings()
	ctrl, err := timeline.New(clock, ds.Len(), settings.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline: %w", err)
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	m := &Model{
		engine:     engine,
		timeline:   ctrl,
		clock:      clock,
		interval:   interval,
		settings:   settings,
		entities:   make(map[string]dataset.Entity, ds.EntityCount()),
		labelWidth: labelColumn(ds.Keys(), maxLabelWidth),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spring:     harmonica.NewSpring(harmonica.FPS(max(1, int(time.Second/interval))), springFrequency, springDamping),
		bars:       map[string]*barState{},
	}
	for _, e := range ds.Entities() {
		m.entities[e.Key] = e
		if e.Image != "" {
			m.showImages = true
		}
	}
	m.showImages = m.showImages || settings.Images.Border.Enabled
	m.resize(defaultWidth, defaultHeight)
	if opts.Autoplay {
		m.timeline.Play()
	}
	m.refresh(clock.Now())
	return m, nil
}

// Timeline exposes the playback controller.
func (m *Model) Timeline() *timeline.Controller {
	return m.timeline
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.relayout()
		return m, nil
	case frameMsg:
		m.timeline.Tick()
		m.refresh(m.clock.Now())
		return m, m.tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Toggle):
		m.timeline.Toggle()
	case key.Matches(msg, keys.Back):
		m.timeline.Step(-1)
	case key.Matches(msg, keys.Forward):
		m.timeline.Step(1)
	case key.Matches(msg, keys.Start):
		_ = m.timeline.Seek(0)
	case key.Matches(msg, keys.End):
		_ = m.timeline.Seek(float64(m.engine.Dataset().Len() - 1))
	case key.Matches(msg, keys.Loop):
		m.timeline.SetLoop(!m.timeline.State().Loop)
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		m.relayout()
		return nil
	default:
		return nil
	}
	m.refresh(m.clock.Now())
	return nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.progress.Width = max(10, width-20)
}

func (m *Model) areaRows() int {
	footer := footerHeight
	if m.help.ShowAll {
		footer += 3
	}
	return max(1, m.height-headerHeight-footer)
}

// targetRow maps a ranked profile onto the terminal rows of the bar area.
func (m *Model) targetRow(top float64) float64 {
	return float64(slotRow(top, m.settings.Bars.AreaHeight, m.areaRows()))
}

// refresh computes the frame at the current position and retargets bars.
func (m *Model) refresh(now time.Time) {
	frame, err := m.engine.Frame(m.timeline.Position())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.frame = frame

	present := make(map[string]struct{}, frame.Snapshot.Len())
	for _, e := range frame.Snapshot.Entries {
		present[e.Key] = struct{}{}
		p := frame.Profiles[e.Key]
		row := m.targetRow(p.Top)
		b, ok := m.bars[e.Key]
		if !ok {
			b = newBarState(row)
			m.bars[e.Key] = b
		}
		b.retarget(now, row, p.BarWidthPct, frame.Directives[e.Key])
	}
	for k := range m.bars {
		if _, ok := present[k]; !ok {
			delete(m.bars, k)
		}
	}
	for _, b := range m.bars {
		b.step(now, m.spring)
	}
}

// relayout snaps every bar to its row for the current size.
func (m *Model) relayout() {
	for _, e := range m.frame.Snapshot.Entries {
		b, ok := m.bars[e.Key]
		if !ok {
			continue
		}
		row := m.targetRow(m.frame.Profiles[e.Key].Top)
		b.row, b.rowFrom, b.rowTarget, b.rowVel, b.moveDur = row, row, row, 0, 0
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	return strings.Join([]string{m.renderHeader(), m.renderBars(), m.renderFooter()}, "\n")
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render(m.engine.Dataset().Name())
	date := dateStyle.Render(m.frame.Label)
	gap := max(1, m.width-lipgloss.Width(title)-lipgloss.Width(date))
	return title + strings.Repeat(" ", gap) + date + "\n"
}

func (m *Model) renderBars() string {
	rows := m.areaRows()
	lines := make([]string, rows)
	now := m.clock.Now()

	// Leaders draw last so they stay visible while bars cross.
	entries := append([]ranking.Entry(nil), m.frame.Snapshot.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rank > entries[j].Rank })

	valueWidth := 0
	for _, e := range entries {
		valueWidth = max(valueWidth, len(formatValue(e.Value)))
	}
	slotWidth := 0
	if m.showImages {
		slotWidth = 4
	}
	barWidth := max(1, m.width-m.labelWidth-slotWidth-valueWidth-2)

	for _, entry := range entries {
		b, ok := m.bars[entry.Key]
		if !ok {
			continue
		}
		p := m.frame.Profiles[entry.Key]
		row := int(math.Round(b.row))
		thickness := max(1, slotRow(p.BarHeight, m.settings.Bars.AreaHeight, rows))

		color := m.entities[entry.Key].Color
		if color == "" {
			color = fallbackColor
		}
		barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		labelStyle := lipgloss.NewStyle()
		if p.FontSize >= m.settings.Labels.Size {
			labelStyle = labelStyle.Bold(true)
		}
		if b.entering(now) {
			barStyle = barStyle.Faint(true)
			labelStyle = labelStyle.Faint(true)
		}

		bar := barStyle.Render(barCells(b.pct, barWidth))
		for i := 0; i < thickness; i++ {
			r := row + i
			if r < 0 || r >= rows {
				continue
			}
			if i == 0 {
				lines[r] = labelStyle.Render(fitLabel(entry.Key, m.labelWidth)) + " " +
					m.renderImageSlot(entry.Key, b, now) + bar + " " + valueStyle.Render(formatValue(entry.Value))
				continue
			}
			lines[r] = strings.Repeat(" ", m.labelWidth+1+slotWidth) + bar
		}
	}
	return strings.Join(lines, "\n")
}

// renderImageSlot draws a one-glyph avatar in place of the entity image.
func (m *Model) renderImageSlot(k string, b *barState, now time.Time) string {
	if !m.showImages {
		return ""
	}
	glyph := "?"
	for _, r := range k {
		glyph = string(unicode.ToUpper(r))
		break
	}
	left, right := " ", " "
	if m.settings.Images.Border.Enabled {
		left, right = "[", "]"
	}
	if b.flipping(now) {
		flip := "↔"
		if b.flipAxis == animation.AxisX {
			flip = "↕"
		}
		if b.flipTarget == animation.TargetBorder {
			left, right = flip, flip
		} else {
			glyph = flip
		}
	}
	return left + glyph + right + " "
}

func (m *Model) renderFooter() string {
	st := m.timeline.State()
	fraction := 1.0
	if st.Length > 1 {
		fraction = st.Position / float64(st.Length-1)
	}
	status := "⏸ paused"
	switch st.Phase {
	case timeline.Playing:
		status = "▶ playing"
	case timeline.Scrubbing:
		status = "⇄ seeking"
	case timeline.LoopDelayBefore, timeline.LoopDelayAfter:
		status = "⟳ looping"
	}
	if st.Loop {
		status += " (loop)"
	}
	return m.progress.ViewAs(fraction) + " " + footerStyle.Render(status) + "\n" + m.help.View(keys)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(math.Round(v*10)/10, 1)
}
