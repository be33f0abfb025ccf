package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/ibsim/internal/config"
	"github.com/san-kum/ibsim/internal/report"
	"github.com/san-kum/ibsim/internal/storage"
	"github.com/san-kum/ibsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logFile    string
	logLevel   string
	theme      string

	model       string
	scheme      string
	threshold   float64
	coupling    float64
	particles   float64
	ex          float64
	ey          float64
	sigs        float64
	steps       int
	dt          float64
	cells       int
	table       string
	diagnostics bool
	progress    int
	csvOut      string
	noSave      bool

	sweepValues []float64
	quantity    string
	logScale    bool
	outFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ibsim",
		Short:         "intra-beam scattering equilibrium simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset as family/name, e.g. toy/electron")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "json log file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate until the beam sizes converge",
		Args:  cobra.NoArgs,
		RunE:  runConverge,
	}
	addRunFlags(runCmd)

	fixedCmd := &cobra.Command{
		Use:   "fixed",
		Short: "integrate a fixed number of steps of fixed size",
		Args:  cobra.NoArgs,
		RunE:  runFixed,
	}
	addRunFlags(fixedCmd)
	fixedCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	fixedCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "step size in seconds")

	compareCmd := &cobra.Command{
		Use:   "compare [model...]",
		Short: "run several growth-rate models on the same seed (all when none given)",
		RunE:  runCompare,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan the particle count and report the equilibria",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", []float64{1e10, 5e10, 1e11}, "particle counts")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "run to convergence with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	addRunFlags(watchCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list growth-rate models and update schemes",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved trajectory in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&quantity, "quantity", "q", "growth", "ex, ey, sigs or growth")
	plotCmd.Flags().BoolVar(&logScale, "log", false, "plot log10 of the values")

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "save trajectory plots as png",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <data>/<run_id>/trajectory.png)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a saved trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [family[/name]]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, fixedCmd, compareCmd, sweepCmd, watchCmd, modelsCmd, listCmd,
		showCmd, plotCmd, pngCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&model, "model", "m", d.Run.Model, "growth-rate model name or id")
	f.StringVarP(&scheme, "scheme", "s", d.Run.Scheme, "update scheme (derivative, relaxation)")
	f.Float64Var(&threshold, "threshold", d.Run.Threshold, "relative convergence threshold")
	f.Float64Var(&coupling, "coupling", d.Run.Coupling, "coupling in percent")
	f.Float64VarP(&particles, "particles", "n", d.Beam.Particles, "particles per bunch")
	f.Float64Var(&ex, "ex", d.Beam.Ex, "seed horizontal emittance (m)")
	f.Float64Var(&ey, "ey", d.Beam.Ey, "seed vertical emittance (m)")
	f.Float64Var(&sigs, "sigs", d.Beam.Sigs, "seed bunch length (m)")
	f.IntVar(&cells, "cells", d.Lattice.Cells, "smooth ring cell count")
	f.StringVar(&table, "table", "", "twiss table file")
	f.BoolVar(&diagnostics, "diagnostics", false, "print seed diagnostics and scheme warnings")
	f.IntVar(&progress, "progress", 0, "print progress every n steps")
	f.StringVar(&csvOut, "csv", "", "also write the trajectory to this csv file")
	f.BoolVar(&noSave, "no-save", false, "do not store the run")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		family, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want family/name", preset)
		}
		cfg = config.GetPreset(family, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(family))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("model", func() { cfg.Run.Model = model })
	set("scheme", func() { cfg.Run.Scheme = scheme })
	set("threshold", func() { cfg.Run.Threshold = threshold })
	set("coupling", func() { cfg.Run.Coupling = coupling })
	set("particles", func() { cfg.Beam.Particles = particles })
	set("ex", func() { cfg.Beam.Ex = ex })
	set("ey", func() { cfg.Beam.Ey = ey })
	set("sigs", func() { cfg.Beam.Sigs = sigs })
	set("cells", func() { cfg.Lattice.Cells = cells })
	set("table", func() { cfg.Lattice.Table = table })
	set("diagnostics", func() { cfg.Run.Diagnostics = diagnostics })
	set("steps", func() { cfg.Run.Steps = steps })
	set("dt", func() { cfg.Run.Dt = dt })
	set("csv", func() { cfg.Output.CSV = csvOut })

	pflags := cmd.Root().PersistentFlags()
	if pflags.Changed("data") {
		cfg.Output.DataDir = dataDir
	}
	if pflags.Changed("theme") {
		cfg.Output.Theme = theme
	}
	if pflags.Changed("log-file") {
		cfg.Output.LogFile = logFile
	}
	if pflags.Changed("log-level") {
		cfg.Output.LogLevel = logLevel
	}

	return cfg, nil
}

// env bundles what every command needs once the configuration is known.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	console *report.Console
	store   *storage.Store
	index   *storage.Index
	closers []func() error
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openEnv(cmd.Context(), cfg)
}

func openEnv(ctx context.Context, cfg *config.Config) (*env, error) {
	logger, closeLog := config.SetupLogger(cfg.Output.LogFile, config.ParseLevel(cfg.Output.LogLevel))

	e := &env{
		cfg:     cfg,
		logger:  logger,
		console: report.NewConsole(os.Stdout, viz.GetTheme(cfg.Output.Theme)),
		store:   storage.New(cfg.Output.DataDir),
		closers: []func() error{closeLog},
	}
	if err := e.store.Init(); err != nil {
		e.close()
		return nil, err
	}

	e.index = storage.NewIndex(filepath.Join(cfg.Output.DataDir, "runs.db"))
	if err := e.index.Init(ctx); err != nil {
		e.close()
		return nil, fmt.Errorf("open run index: %w", err)
	}
	e.closers = append(e.closers, e.index.Close)
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("close failed", "error", err)
		}
	}
}
