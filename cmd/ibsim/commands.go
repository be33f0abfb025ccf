package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ibsim/internal/analysis"
	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/config"
	"github.com/san-kum/ibsim/internal/experiment"
	"github.com/san-kum/ibsim/internal/report"
	"github.com/san-kum/ibsim/internal/sim"
	"github.com/san-kum/ibsim/internal/storage"
	"github.com/san-kum/ibsim/internal/tui"
	"github.com/san-kum/ibsim/internal/viz"
)

func runConverge(cmd *cobra.Command, _ []string) error {
	return runMode(cmd, config.ModeConverge)
}

func runFixed(cmd *cobra.Command, _ []string) error {
	return runMode(cmd, config.ModeFixed)
}

func runMode(cmd *cobra.Command, mode string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	e.cfg.Run.Mode = mode

	exp, err := experiment.New(e.cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	opts := []sim.Option{
		sim.WithLogger(e.logger),
		sim.WithReporter(e.console),
		sim.WithRunID(runID),
	}
	if progress > 0 {
		opts = append(opts, sim.WithObserver(report.NewProgress(e.console, progress)))
	}

	fmt.Printf("running %s (%s, %s)...\n", exp.Model().Name(), e.cfg.Run.Scheme, mode)
	start := time.Now()

	res, err := exp.Run(cmd.Context(), opts...)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	return e.finish(cmd, runID, exp, res)
}

// finish prints the outcome and stores the run.
func (e *env) finish(cmd *cobra.Command, runID string, exp *experiment.Experiment, res *beam.Result) error {
	printResult(e.console, res)

	if lc, ok := analysis.DetectLimitCycle(res.Trajectory, 16); ok && !res.Converged {
		msg := fmt.Sprintf("%s oscillates with relative amplitude %.2e", lc.Quantity, lc.Amplitude)
		if res.Scheme == "derivative" {
			msg += "; try the relaxation scheme"
		}
		e.console.Warn(msg)
	}
	if err := res.Err(); err != nil {
		e.console.Warn(err.Error())
	}

	if e.cfg.Output.CSV != "" {
		if err := writeFile(e.cfg.Output.CSV, func(w io.Writer) error { return report.WriteCSV(w, res.Trajectory) }); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}

	meta, err := e.store.Save(storage.RunMetadata{
		ID:        runID,
		Model:     exp.Model().Name(),
		Mode:      e.cfg.Run.Mode,
		Particles: e.cfg.Beam.Particles,
		Coupling:  e.cfg.Run.Coupling,
		Threshold: e.cfg.Run.Threshold,
		Dt:        e.cfg.Run.Dt,
	}, res)
	if err != nil {
		return err
	}
	if err := e.index.Record(cmd.Context(), meta); err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", meta.ID)
	return nil
}

func printResult(c *report.Console, res *beam.Result) {
	final := res.Final()
	c.Title("result")
	c.Line("steps", float64(res.Steps), fmt.Sprintf("of %d", res.Budget))
	c.Line("time", final.T, "s")
	c.Line("ex", final.Ex, "m")
	c.Line("ey", final.Ey, "m")
	c.Line("sigs", final.Sigs, "m")
	c.Line("sige", final.Sige, "")
	c.Line("ex (radiation only)", res.Constants.ExEq, "m")
	c.Line("ey target", res.Constants.EyTarget, "m")
	c.Line("sigs (radiation only)", res.Constants.SigsEq, "m")
	c.Line("rate S", res.FinalRates.S, "1/s")
	c.Line("rate X", res.FinalRates.X, "1/s")
	c.Line("rate Y", res.FinalRates.Y, "1/s")
	if !res.Converged {
		c.Warn("run stopped without converging")
	}

	if len(res.Metrics) > 0 {
		c.Title("metrics")
		for _, m := range experiment.DefaultMetrics() {
			if v, ok := res.Metrics[m.Name()]; ok {
				c.Line(m.Name(), v, "")
			}
		}
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ids, err := experiment.ParseModels(args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(e.cfg)
	if err != nil {
		return err
	}
	ens, err := exp.Ensemble(ids, e.logger)
	if err != nil {
		return err
	}

	results, err := ens.Run(cmd.Context(), e.cfg.Seed(), e.cfg.ConvergenceParams())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tSTEPS\tCONVERGED\tEX\tEY\tSIGS\tSIGE")
	for i, res := range results {
		f := res.Final()
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%.4e\t%.4e\t%.4e\t%.4e\n",
			ids[i], ids[i], res.Steps, res.Converged, f.Ex, f.Ey, f.Sigs, f.Sige)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	exp, err := experiment.New(e.cfg)
	if err != nil {
		return err
	}

	points, err := exp.Sweep(cmd.Context(), sweepValues, sim.WithLogger(e.logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSTEPS\tCONVERGED\tEX\tEY\tSIGS\tSIGE")
	for _, p := range points {
		fmt.Fprintf(w, "%.3e\t%d\t%t\t%.4e\t%.4e\t%.4e\t%.4e\n",
			p.Particles, p.Steps, p.Converged, p.Final.Ex, p.Final.Ey, p.Final.Sigs, p.Final.Sige)
	}
	return w.Flush()
}

func runWatch(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	e.cfg.Run.Mode = config.ModeConverge

	exp, err := experiment.New(e.cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	run := func(ctx context.Context, obs sim.Observer) (*beam.Result, error) {
		return exp.Run(ctx, sim.WithLogger(e.logger), sim.WithRunID(runID), sim.WithObserver(obs))
	}

	title := fmt.Sprintf("%s / %s", exp.Model().Name(), e.cfg.Run.Scheme)
	res, err := tui.Watch(cmd.Context(), title, sim.MaxSteps, viz.GetTheme(e.cfg.Output.Theme), run)
	if err != nil {
		if res == nil {
			return err
		}
		e.console.Warn(err.Error())
	}
	return e.finish(cmd, runID, exp, res)
}

func listModels(_ *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, m := range experiment.Models() {
		fmt.Fprintf(w, "%d\t%s\n", m.ID, m.Name)
	}
	fmt.Fprintf(w, "\nschemes:\t%s\n", strings.Join(experiment.Schemes(), ", "))
	return w.Flush()
}

func listRuns(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	runs, err := e.index.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tSCHEME\tMODE\tTIME\tN\tSTEPS\tCONVERGED\tEX\tSIGS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2e\t%d\t%t\t%.3e\t%.3e\n",
			run.ID,
			run.Model,
			run.Scheme,
			run.Mode,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Converged,
			run.Final.Ex,
			run.Final.Sigs,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	meta, err := e.store.Load(args[0])
	if err != nil {
		return err
	}

	c := e.console
	c.Title(fmt.Sprintf("%s  %s/%s/%s  %s", meta.ID, meta.Model, meta.Scheme, meta.Mode,
		meta.Timestamp.Local().Format("2006-01-02 15:04:05")))
	c.Line("particles", meta.Particles, "")
	c.Line("coupling", meta.Coupling, "%")
	c.Line("steps", float64(meta.Steps), fmt.Sprintf("of %d", meta.Budget))
	c.Line("ex", meta.Final.Ex, "m")
	c.Line("ey", meta.Final.Ey, "m")
	c.Line("sigs", meta.Final.Sigs, "m")
	c.Line("sige", meta.Final.Sige, "")
	c.Line("tau x", meta.Constants.TauX, "s")
	c.Line("tau y", meta.Constants.TauY, "s")
	c.Line("tau s", meta.Constants.TauS, "s")
	for name, v := range meta.Metrics {
		c.Line(name, v, "")
	}
	if !meta.Converged {
		c.Warn("run did not converge")
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	tr, err := e.store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	opts := viz.PlotOptions{Log: logScale}
	if quantity == "growth" {
		fmt.Println(viz.PlotGrowth(tr, opts))
		return nil
	}
	graph, err := viz.PlotTrajectory(tr, quantity, opts)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func pngRun(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	meta, err := e.store.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := e.store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = filepath.Join(e.store.Dir(), meta.ID, "trajectory.png")
	}
	title := fmt.Sprintf("%s, N=%.2e", meta.Model, meta.Particles)
	if err := viz.SavePNG(path, tr, nil, title); err != nil {
		return err
	}
	fmt.Println("saved", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	tr, err := e.store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return writeFile(outFile, func(w io.Writer) error { return report.WriteCSV(w, tr) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	meta, err := e.store.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := e.store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	return writeFile(outFile, func(w io.Writer) error {
		return report.WriteJSON(w, storage.Export(meta, tr))
	})
}

func listPresets(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, family := range config.Families() {
			fmt.Printf("%s: %s\n", family, strings.Join(config.ListPresets(family), ", "))
		}
		return nil
	}

	family, name, ok := strings.Cut(args[0], "/")
	if !ok {
		names := config.ListPresets(family)
		if names == nil {
			return fmt.Errorf("unknown preset family: %s (available: %v)", family, config.Families())
		}
		fmt.Println(strings.Join(names, "\n"))
		return nil
	}

	cfg := config.GetPreset(family, name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets(family))
	}
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(cfg)
}

// writeFile writes to path, or to stdout when path is empty.
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return err
	}
	return f.Close()
}
