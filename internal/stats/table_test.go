package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/race"
	"github.com/verte-zerg/tuirace/internal/store"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Key", "Value", "Width"}
	rows := [][]string{
		{"Alpha", "1.5k", "100.0%"},
		{"B", "20", "7.5%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Key   Value  Width" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Alpha  1.5k 100.0%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "B        20   7.5%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Key", "V"}, [][]string{{"日本", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "日本 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab   2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestRenderSnapshotTable(t *testing.T) {
	ds, err := dataset.New("swap", []string{"2020", "2021", "2022"}, []dataset.Entity{
		{Key: "A", Values: []float64{10, 30, 20}},
		{Key: "B", Values: []float64{20, 20, 20}},
	})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	engine, err := race.New(ds, model.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.Frame(0); err != nil {
		t.Fatalf("frame: %v", err)
	}
	frame, err := engine.Frame(1)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderSnapshotTable(&buf, frame); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "2021 (position 1.00)" {
		t.Fatalf("unexpected heading %q", lines[0])
	}
	if !strings.Contains(lines[2], "A") || !strings.HasSuffix(strings.TrimRight(lines[2], " "), "up 1") {
		t.Fatalf("unexpected leader row %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "down 1") {
		t.Fatalf("unexpected second row %q", lines[3])
	}
}

func TestRenderDatasetList(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDatasetList(&buf, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No stored datasets.") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}

	buf.Reset()
	infos := []store.DatasetInfo{{
		ID:          "0b6f",
		Name:        "gdp",
		CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
		LabelCount:  3,
		EntityCount: 2,
		FirstLabel:  "2020",
		LastLabel:   "2022",
	}}
	if err := RenderDatasetList(&buf, infos); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Name", "gdp", "2020 .. 2022", "2024-03-01 12:00", "0b6f"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
