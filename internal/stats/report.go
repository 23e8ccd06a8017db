package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/store"
)

const defaultTopKeys = 5

// Report contains precomputed data for race report rendering.
type Report struct {
	Dataset     *dataset.Dataset
	Leaders     []string
	LeadChanges int
	Reigns      []Reign
	Peaks       []Peak
	TopKeys     []string
}

// BuildReport loads a stored dataset by id or name and analyses it.
func BuildReport(ctx context.Context, st *store.Store, ref string, top int) (Report, error) {
	ds, err := st.LoadDataset(ctx, ref)
	if err != nil {
		return Report{}, err
	}
	return Analyze(ds, top), nil
}

// Analyze computes the report for ds. top <= 0 keeps the default number of
// charted keys.
func Analyze(ds *dataset.Dataset, top int) Report {
	if top <= 0 {
		top = defaultTopKeys
	}
	return Report{
		Dataset:     ds,
		Leaders:     Leaders(ds),
		LeadChanges: LeadChanges(ds),
		Reigns:      Reigns(ds),
		Peaks:       Peaks(ds),
		TopKeys:     TopKeysByPeak(ds, top),
	}
}

// RenderReport prints the summary, reign table, peak sparklines and the
// value history chart.
func RenderReport(w io.Writer, r Report, totalWidth int, useColor bool) error {
	ds := r.Dataset
	if _, err := fmt.Fprintf(w, "%s\nLabels: %d (%s .. %s)\nEntities: %d\nLead changes: %d\n\n",
		ds.Name(), ds.Len(), ds.Label(0), ds.Label(ds.Len()-1), ds.EntityCount(), r.LeadChanges); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Leaders"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(r.Reigns))
	for _, reign := range r.Reigns {
		rows = append(rows, []string{reign.Key, reign.FromLabel, reign.ToLabel, strconv.Itoa(reign.Keyframes)})
	}
	if err := writeLines(w, formatTable([]string{"Key", "From", "To", "Keyframes"}, rows, map[int]bool{3: true})); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Peaks"); err != nil {
		return err
	}
	rows = rows[:0]
	for _, p := range r.Peaks {
		e, _ := ds.Entity(p.Key)
		rows = append(rows, []string{p.Key, formatValue(p.Value), p.Label, Sparkline(e.Values)})
	}
	if err := writeLines(w, formatTable([]string{"Key", "Peak", "At", "Trend"}, rows, map[int]bool{1: true})); err != nil {
		return err
	}

	return RenderHistory(w, ds, r.TopKeys, totalWidth, defaultPlotHeight, useColor)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
