package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuirace/internal/race"
	"github.com/verte-zerg/tuirace/internal/ranking"
	"github.com/verte-zerg/tuirace/internal/store"
)

// RenderSnapshotTable prints the ranking of one frame with each entity's
// change since the previous frame.
func RenderSnapshotTable(w io.Writer, frame race.Frame) error {
	if _, err := fmt.Fprintf(w, "%s (position %.2f)\n", frame.Label, frame.Position); err != nil {
		return err
	}
	if frame.Snapshot.Len() == 0 {
		_, err := fmt.Fprintln(w, "No entities.")
		return err
	}
	kinds := make(map[string]ranking.Transition, len(frame.Transitions))
	for _, t := range frame.Transitions {
		kinds[t.Key] = t
	}
	headers := []string{"#", "Key", "Value", "Width", "Change"}
	rows := make([][]string, 0, frame.Snapshot.Len())
	for _, e := range frame.Snapshot.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank + 1),
			e.Key,
			formatValue(e.Value),
			fmt.Sprintf("%.1f%%", frame.Profiles[e.Key].BarWidthPct),
			describeTransition(kinds[e.Key]),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func describeTransition(t ranking.Transition) string {
	switch t.Kind {
	case ranking.Enter:
		return "new"
	case ranking.Move:
		if t.To < t.From {
			return fmt.Sprintf("up %d", t.From-t.To)
		}
		return fmt.Sprintf("down %d", t.To-t.From)
	default:
		return ""
	}
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

// RenderDatasetList prints stored datasets, newest first as given.
func RenderDatasetList(w io.Writer, infos []store.DatasetInfo) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No stored datasets.")
		return err
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.LabelCount),
			strconv.Itoa(info.EntityCount),
			info.FirstLabel + " .. " + info.LastLabel,
			info.CreatedAt.Local().Format("2006-01-02 15:04"),
			info.ID,
		})
	}
	headers := []string{"Name", "Labels", "Entities", "Range", "Saved", "ID"}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
