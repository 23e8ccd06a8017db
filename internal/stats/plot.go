package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tuirace/internal/dataset"
)

// Series is a named value series drawn on a history chart.
type Series struct {
	Name   string
	Color  string // "#rrggbb"; empty picks from the fallback palette
	Values []float64
}

type dashPattern struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var dashPatterns = []dashPattern{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var fallbackPalette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m", "\x1b[34m"}

// braille dot bits indexed by [row][column] inside one 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// RenderHistory draws the sampled values of keys on one shared scale.
// totalWidth <= 0 uses the terminal width.
func RenderHistory(w io.Writer, ds *dataset.Dataset, keys []string, totalWidth, height int, useColor bool) error {
	var list []Series
	for _, key := range keys {
		e, ok := ds.Entity(key)
		if !ok {
			continue
		}
		list = append(list, Series{Name: e.Key, Color: e.Color, Values: e.Values})
	}
	if len(list) == 0 {
		return nil
	}
	labels := ds.Labels()
	return PlotSeries(w, "Value History", list, labels[0], labels[len(labels)-1], totalWidth, height, useColor)
}

// PlotSeries renders a braille line chart. All series share the y scale,
// which always includes zero.
func PlotSeries(w io.Writer, title string, list []Series, firstLabel, lastLabel string, totalWidth, height int, useColor bool) error {
	if height <= 0 {
		height = defaultPlotHeight
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}

	lo, hi := 0.0, 0.0
	for _, s := range list {
		sLo, sHi := minMax(s.Values)
		lo, hi = math.Min(lo, sLo), math.Max(hi, sHi)
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	top, bottom := formatValue(hi), formatValue(lo)
	axisWidth := max(runewidth.StringWidth(top), runewidth.StringWidth(bottom))
	width := PlotWidthFor(totalWidth, axisWidth)

	layers := make([][][]uint8, len(list))
	for i, s := range list {
		layers[i] = drawSeries(resampleSeries(s.Values, width), lo, hi, width, height, dashPatterns[i%len(dashPatterns)])
	}
	useColor = shouldUseColor(w, useColor)

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = top
		case height - 1:
			label = bottom
		}
		b.WriteString(runewidth.FillLeft(label, axisWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := composeCell(layers, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				b.WriteString(colorCode(list[owner].Color, owner))
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(" ", axisWidth+runewidth.StringWidth(axisSeparator)))
	b.WriteString(spread(firstLabel, lastLabel, width))
	b.WriteByte('\n')
	b.WriteString(renderLegend(list, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor returns the chart width that fits totalWidth next to an axis
// axisWidth cells wide.
func PlotWidthFor(totalWidth, axisWidth int) int {
	width := totalWidth - axisWidth - runewidth.StringWidth(axisSeparator)
	return max(width, minPlotWidth)
}

func drawSeries(values []float64, lo, hi float64, width, height int, dash dashPattern) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	dots := height * 4
	prevX, prevY := -1, -1
	for x, v := range values {
		px := x * 2
		py := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dots-1)))
		py = max(0, min(py, dots-1))
		plot := func(dx, dy int) {
			if dash.period <= 1 || dx%dash.period < dash.on {
				setDot(cells, dx, dy)
			}
		}
		if prevX < 0 {
			plot(px, py)
		} else {
			drawLine(prevX, prevY, px, py, plot)
		}
		prevX, prevY = px, py
	}
	return cells
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBits[y%4][x%2]
}

// drawLine walks the Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, cells := range layers {
		m := cells[y][x]
		if m == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}

// resampleSeries stretches or averages values into exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(width-1)
		for i := range out {
			pos := float64(i) * step
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

func renderLegend(list []Series, useColor bool) string {
	parts := make([]string, 0, len(list))
	for i, s := range list {
		label := fmt.Sprintf("⠉ %s (%s)", s.Name, dashPatterns[i%len(dashPatterns)].name)
		if useColor {
			label = colorCode(s.Color, i) + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// spread places first at the left edge and last at the right edge of width.
func spread(first, last string, width int) string {
	gap := width - runewidth.StringWidth(first) - runewidth.StringWidth(last)
	if gap < 1 {
		return runewidth.Truncate(first, width, "…")
	}
	return first + strings.Repeat(" ", gap) + last
}

// colorCode returns a truecolor escape for a "#rrggbb" color, falling back
// to the basic palette.
func colorCode(hex string, idx int) string {
	if len(hex) == 7 && hex[0] == '#' {
		if v, err := strconv.ParseUint(hex[1:], 16, 32); err == nil {
			return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", v>>16, (v>>8)&0xff, v&0xff)
		}
	}
	return fallbackPalette[idx%len(fallbackPalette)]
}

func formatValue(v float64) string {
	switch {
	case math.Abs(v) >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 1, 64) + "B"
	case math.Abs(v) >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case math.Abs(v) >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// TerminalWidth reports the stdout width, or a fallback when stdout is not
// a terminal.
func TerminalWidth() int {
	return terminalWidth()
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
