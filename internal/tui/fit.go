package tui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// fitLabel pads or truncates s to exactly width terminal cells.
func fitLabel(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}

// labelColumn returns the widest key in cells, capped at limit.
func labelColumn(keys []string, limit int) int {
	width := 1
	for _, k := range keys {
		width = max(width, runewidth.StringWidth(k))
	}
	return min(width, limit)
}

var partialBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

// barCells renders pct percent of width cells using eighth-block glyphs for
// the fractional tail.
func barCells(pct float64, width int) string {
	if width <= 0 || pct <= 0 {
		return ""
	}
	eighths := int(math.Round(min(pct, 100) / 100 * float64(width*8)))
	full, rest := eighths/8, eighths%8
	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	if rest > 0 {
		b.WriteRune(partialBlocks[rest])
	}
	return b.String()
}

// slotRow maps a pixel offset inside the configured drawing area onto one of
// rows terminal rows.
func slotRow(offset, area float64, rows int) int {
	if area <= 0 || rows <= 0 {
		return 0
	}
	return int(math.Round(offset / area * float64(rows)))
}
