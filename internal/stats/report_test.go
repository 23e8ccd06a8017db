package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tuirace/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuirace.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	if _, err := st.SaveDataset(ctx, raceDataset(t)); err != nil {
		t.Fatalf("save dataset: %v", err)
	}

	report, err := BuildReport(ctx, st, "demo", 2)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.LeadChanges != 3 {
		t.Fatalf("expected 3 lead changes, got %d", report.LeadChanges)
	}
	if len(report.TopKeys) != 2 || report.TopKeys[0] != "C" {
		t.Fatalf("unexpected top keys %v", report.TopKeys)
	}
	if len(report.Reigns) != 4 {
		t.Fatalf("expected 4 reigns, got %d", len(report.Reigns))
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 60, false); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"demo", "Lead changes: 3", "Leaders", "Peaks", "Value History"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}

	if _, err := BuildReport(ctx, st, "missing", 2); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}
