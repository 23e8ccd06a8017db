package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuirace/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	got := cfg.Apply(model.DefaultSettings())
	if got.Bars.MaxCount != model.DefaultSettings().Bars.MaxCount {
		t.Fatalf("expected defaults, got max %d", got.Bars.MaxCount)
	}
}

func TestLoadConfigOverlaysPresentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[bars]
max-count = 5
custom-spacing = [4, 2]

[images.border]
enabled = true

[timeline]
loop = true
duration = 12.5

[animations]
bar-jump = "smooth"
flip-style = "borderHorizontal"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	s := cfg.Apply(model.DefaultSettings())
	if s.Bars.MaxCount != 5 {
		t.Fatalf("expected max-count 5, got %d", s.Bars.MaxCount)
	}
	if !s.Bars.UseCustomSpacing || len(s.Bars.CustomSpacing) != 2 {
		t.Fatalf("expected custom spacing, got %+v", s.Bars)
	}
	if !s.Images.Border.Enabled {
		t.Fatalf("expected border enabled")
	}
	if !s.Timeline.Loop || s.Timeline.Duration != 12.5 {
		t.Fatalf("unexpected timeline %+v", s.Timeline)
	}
	if s.Animations.BarJump != model.BarJumpSmooth || s.Animations.FlipStyle != model.FlipBorderHorizontal {
		t.Fatalf("unexpected animations %+v", s.Animations)
	}
	if s.Bars.Spacing != model.DefaultSettings().Bars.Spacing {
		t.Fatalf("expected absent spacing to keep default, got %v", s.Bars.Spacing)
	}
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[bars\nmax-count = "), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "tuirace", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "tuirace", "tuirace.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}

func TestPathsFollowXDG(t *testing.T) {
	cfgHome := t.TempDir()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	if got, want := DefaultConfigPath(), filepath.Join(cfgHome, "tuirace", "config.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultDBPath(), filepath.Join(dataHome, "tuirace", "tuirace.db"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DatasetPath("gdp"), filepath.Join(dataHome, "tuirace", "datasets", "gdp.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DatasetPath("../x/gdp.toml"), filepath.Join(dataHome, "tuirace", "datasets", "gdp.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
