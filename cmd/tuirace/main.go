// Package main provides the CLI entrypoint for tuirace.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuirace/internal/config"
	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/generator"
	"github.com/verte-zerg/tuirace/internal/interp"
	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/race"
	"github.com/verte-zerg/tuirace/internal/stats"
	"github.com/verte-zerg/tuirace/internal/statsui"
	"github.com/verte-zerg/tuirace/internal/store"
	"github.com/verte-zerg/tuirace/internal/timeline"
	"github.com/verte-zerg/tuirace/internal/tui"
)

const defaultReportTop = 5

var (
	verbose bool
	logger  = newLogger(os.Stderr, false)

	playMax      int
	playDuration float64
	playLoop     bool
	playBarJump  string
	playFlip     string
	playBorder   bool
	playHeadless bool

	importName string

	rankAt float64

	reportTop         int
	reportInteractive bool

	demoEntities  int
	demoLabels    int
	demoStartYear int
	demoSeed      int64
	demoSave      bool

	exportOut string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuirace [dataset.toml|name]",
		Short:         "Bar chart race player for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger = newLogger(cmd.ErrOrStderr(), verbose)
		},
		RunE: runPlayCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func addPlayFlags(cmd *cobra.Command) {
	defaults := model.DefaultSettings()
	cmd.Flags().IntVar(&playMax, "max", defaults.Bars.MaxCount, "number of ranked bars")
	cmd.Flags().Float64Var(&playDuration, "duration", defaults.Timeline.Duration, "seconds to play the whole race")
	cmd.Flags().BoolVar(&playLoop, "loop", defaults.Timeline.Loop, "restart after the last label")
	cmd.Flags().StringVar(&playBarJump, "bar-jump", string(defaults.Animations.BarJump), "rank change animation (instant|smooth)")
	cmd.Flags().StringVar(&playFlip, "flip", string(defaults.Animations.FlipStyle),
		"swap flip (none|imageVertical|imageHorizontal|borderVertical|borderHorizontal)")
	cmd.Flags().BoolVar(&playBorder, "border", defaults.Images.Border.Enabled, "draw image borders")
	cmd.Flags().BoolVar(&playHeadless, "headless", false, "log rank changes instead of drawing")
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <dataset.toml|name>",
		Short: "Play a race",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
	addPlayFlags(cmd)
	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	var (
		ds  *dataset.Dataset
		err error
	)
	if len(args) == 0 {
		ds, err = generator.New().Generate(generator.Options{})
	} else {
		ds, err = resolveDataset(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}
	return playDataset(cmd, ds)
}

func playDataset(cmd *cobra.Command, ds *dataset.Dataset) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := race.New(ds, settings, logger)
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}
	logger.Debug("race ready", "dataset", ds.Name(), "labels", ds.Len(), "entities", ds.EntityCount())

	if playHeadless {
		return runHeadless(cmd.Context(), engine)
	}

	m, err := tui.NewModel(engine, clockwork.NewRealClock(), tui.Options{Autoplay: true})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, engine *race.Engine) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	engine.OnRankChange(func(f race.Frame) {
		for _, t := range f.Moves() {
			logger.Info("rank change", "label", f.Label, "key", t.Key, "kind", t.Kind, "from", t.From+1, "to", t.To+1)
		}
	})
	lastLabel := ""
	player, err := race.NewPlayer(engine, clockwork.NewRealClock(), func(f race.Frame, st timeline.State) {
		if f.Label == lastLabel {
			return
		}
		lastLabel = f.Label
		if f.Snapshot.Len() > 0 {
			logger.Debug("label", "label", f.Label, "leader", f.Snapshot.Entries[0].Key, "phase", st.Phase)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	player.Play()
	if err := player.Run(ctx, race.DefaultFrameInterval); err != nil {
		return fmt.Errorf("failed to play race: %w", err)
	}
	return nil
}

// resolveSettings layers defaults, the config file and explicit flags, then
// normalizes the result.
func resolveSettings(cmd *cobra.Command) (model.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return buildSettings(cmd, fileCfg), nil
}

func buildSettings(cmd *cobra.Command, fileCfg config.FileConfig) model.Settings {
	applyIntConfig(cmd, "max", &playMax, fileCfg.Bars.MaxCount)
	applyFloatConfig(cmd, "duration", &playDuration, fileCfg.Timeline.Duration)
	applyBoolConfig(cmd, "loop", &playLoop, fileCfg.Timeline.Loop)
	applyStringConfig(cmd, "bar-jump", &playBarJump, fileCfg.Animations.BarJump)
	applyStringConfig(cmd, "flip", &playFlip, fileCfg.Animations.FlipStyle)
	applyBoolConfig(cmd, "border", &playBorder, fileCfg.Images.Border.Enabled)

	s := fileCfg.Apply(model.DefaultSettings())
	s.Bars.MaxCount = playMax
	s.Timeline.Duration = playDuration
	s.Timeline.Loop = playLoop
	s.Animations.BarJump = model.BarJump(playBarJump)
	s.Animations.FlipStyle = model.FlipStyle(playFlip)
	s.Images.Border.Enabled = playBorder

	s, warnings := s.Normalize()
	for _, w := range warnings {
		logger.Warn(w)
	}
	return s
}

// datasetFile reports the file ref names: a path on disk, or a file in the
// dataset directory.
func datasetFile(ref string) (string, bool) {
	for _, path := range []string{ref, config.DatasetPath(ref)} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// resolveDataset loads ref as a dataset file when one exists and as a stored
// dataset id or name otherwise.
func resolveDataset(ctx context.Context, ref string) (*dataset.Dataset, error) {
	if path, ok := datasetFile(ref); ok {
		ds, err := dataset.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		logger.Debug("loaded dataset file", "path", path)
		return ds, nil
	}
	var ds *dataset.Dataset
	err := withStore(func(st *store.Store) error {
		var err error
		ds, err = st.LoadDataset(contextOrBackground(ctx), ref)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no dataset file or stored dataset named %q (see: tuirace datasets)", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return ds, nil
}

func withStore(fn func(*store.Store) error) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()
	return fn(st)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dataset.toml>",
		Short: "Store a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importName, "name", "", "store under this name instead of the file's")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	ds, err := dataset.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if name := strings.TrimSpace(importName); name != "" {
		ds, err = dataset.New(name, ds.Labels(), ds.Entities())
		if err != nil {
			return err
		}
	}
	return withStore(func(st *store.Store) error {
		info, err := st.SaveDataset(contextOrBackground(cmd.Context()), ds)
		if err != nil {
			return fmt.Errorf("failed to save dataset: %w", err)
		}
		logger.Info("saved dataset", "name", info.Name, "id", info.ID, "labels", info.LabelCount, "entities", info.EntityCount)
		return nil
	})
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(st *store.Store) error {
				infos, err := st.ListDatasets(contextOrBackground(cmd.Context()))
				if err != nil {
					return fmt.Errorf("failed to list datasets: %w", err)
				}
				return stats.RenderDatasetList(cmd.OutOrStdout(), infos)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				if err := st.DeleteDataset(contextOrBackground(cmd.Context()), args[0]); err != nil {
					return fmt.Errorf("failed to delete dataset: %w", err)
				}
				logger.Info("deleted dataset", "ref", args[0])
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name|id>",
		Short: "Write a stored dataset as TOML",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	ds, err := resolveDataset(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if exportOut == "" {
		return dataset.Encode(cmd.OutOrStdout(), ds)
	}
	if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	if err := dataset.Encode(f, ds); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportOut, err)
	}
	logger.Info("exported dataset", "name", ds.Name(), "path", exportOut)
	return nil
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <dataset.toml|name>",
		Short: "Print the ranking at a timeline position",
		Args:  cobra.ExactArgs(1),
		RunE:  runRankCmd,
	}
	cmd.Flags().Float64Var(&rankAt, "at", 0, "timeline position (label index, fractional allowed)")
	return cmd
}

func runRankCmd(cmd *cobra.Command, args []string) error {
	ds, err := resolveDataset(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := race.New(ds, settings, logger)
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}
	frame, err := rankFrame(engine, rankAt)
	if err != nil {
		return err
	}
	return stats.RenderSnapshotTable(cmd.OutOrStdout(), frame)
}

// rankFrame computes the frame at position, diffed against the frame one
// label earlier so the change column describes that step. Positions outside
// the timeline are clamped.
func rankFrame(engine *race.Engine, position float64) (race.Frame, error) {
	if clamped := interp.Clamp(engine.Dataset(), position); clamped != position {
		logger.Warn("position out of range, clamped", "at", position, "position", clamped)
		position = clamped
	}
	if position >= 1 {
		if _, err := engine.Frame(position - 1); err != nil {
			return race.Frame{}, err
		}
	}
	frame, err := engine.Frame(position)
	if err != nil {
		return race.Frame{}, fmt.Errorf("failed to rank at %v: %w", position, err)
	}
	return frame, nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <dataset.toml|name>",
		Short: "Summarize leaders, peaks and history",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportTop, "top", defaultReportTop, "entities to chart")
	cmd.Flags().BoolVarP(&reportInteractive, "interactive", "i", false, "browse the report in a TUI")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ctx := contextOrBackground(cmd.Context())
	var report stats.Report
	if path, ok := datasetFile(args[0]); ok {
		ds, err := dataset.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		report = stats.Analyze(ds, reportTop)
	} else {
		err := withStore(func(st *store.Store) error {
			var err error
			report, err = stats.BuildReport(ctx, st, args[0], reportTop)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
	}
	if !reportInteractive {
		return stats.RenderReport(cmd.OutOrStdout(), report, stats.TerminalWidth(), false)
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	program := tea.NewProgram(statsui.NewModel(report, settings.Bars.MaxCount), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Play a generated race",
		Args:  cobra.NoArgs,
		RunE:  runDemoCmd,
	}
	cmd.Flags().IntVar(&demoEntities, "entities", generator.DefaultEntities, "number of entities")
	cmd.Flags().IntVar(&demoLabels, "labels", generator.DefaultLabels, "number of labels")
	cmd.Flags().IntVar(&demoStartYear, "start-year", generator.DefaultStartYear, "first label year")
	cmd.Flags().Int64Var(&demoSeed, "seed", 0, "random seed (0: random)")
	cmd.Flags().BoolVar(&demoSave, "save", false, "store the generated dataset")
	addPlayFlags(cmd)
	return cmd
}

func runDemoCmd(cmd *cobra.Command, _ []string) error {
	if demoEntities <= 0 || demoLabels <= 0 {
		return fmt.Errorf("--entities and --labels must be > 0")
	}
	gen := generator.New()
	if demoSeed != 0 {
		gen = generator.NewSeeded(demoSeed)
	}
	ds, err := gen.Generate(generator.Options{Entities: demoEntities, Labels: demoLabels, StartYear: demoStartYear})
	if err != nil {
		return fmt.Errorf("failed to generate dataset: %w", err)
	}
	if demoSave {
		err := withStore(func(st *store.Store) error {
			info, err := st.SaveDataset(contextOrBackground(cmd.Context()), ds)
			if err != nil {
				return err
			}
			logger.Info("saved dataset", "name", info.Name, "id", info.ID)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to save dataset: %w", err)
		}
	}
	return playDataset(cmd, ds)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	d := model.DefaultSettings()
	return fmt.Sprintf(`# tuirace configuration
# Uncomment a value to enable it. CLI flags override config values.

[bars]
# max-count = %d              # Number of ranked bars
# spacing = %.0f               # Gap between bars
# custom-spacing = [12, 10, 8] # Per-gap override, top gap first
# keep-spacing = false        # Reserve slots for missing bars
# area-height = %.0f          # Drawing area height
# descending-width = false    # Shrink bar width with rank
# width-ratio = %.2f          # Per-rank factor (0-1]
# descending-height = false   # Shrink bar height with rank
# height-ratio = %.2f         # Per-rank factor (0-1]

[images]
# size = %.0f                  # Base image size
# descending-width = false
# width-ratio = %.2f
# descending-height = false
# height-ratio = %.2f

[images.border]
# enabled = false
# width = %.0f
# spacing = %.0f
# descending-width = false
# width-ratio = %.2f
# descending-spacing = false
# spacing-ratio = %.2f

[labels]
# size = %.0f                  # Base label font size
# descending-size = false
# size-ratio = %.2f

[timeline]
# duration = %.0f              # Seconds for the whole race
# loop = false
# loop-delay-before = %.0f      # Seconds held at the first label
# loop-delay-after = %.0f       # Seconds held at the last label

[animations]
# bar-jump = %q         # instant | smooth
# jump-duration = %.1f
# entry-duration = %.1f
# growth-duration = %.1f
# flip-style = %q          # none | imageVertical | imageHorizontal | borderVertical | borderHorizontal
`,
		d.Bars.MaxCount, d.Bars.Spacing, d.Bars.AreaHeight, d.Bars.WidthRatio, d.Bars.HeightRatio,
		d.Images.Size, d.Images.WidthRatio, d.Images.HeightRatio,
		d.Images.Border.Width, d.Images.Border.Spacing, d.Images.Border.WidthRatio, d.Images.Border.SpacingRatio,
		d.Labels.Size, d.Labels.SizeRatio,
		d.Timeline.Duration, d.Timeline.LoopDelayBefore, d.Timeline.LoopDelayAfter,
		d.Animations.BarJump, d.Animations.JumpDuration, d.Animations.EntryDuration, d.Animations.GrowthDuration,
		d.Animations.FlipStyle,
	)
}
