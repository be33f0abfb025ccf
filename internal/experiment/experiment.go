package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ibsim/internal/analysis"
	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/config"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/machine"
	"github.com/san-kum/ibsim/internal/sim"
)

// Experiment is a configuration resolved into a ring, its optics and the
// selected growth-rate model.
type Experiment struct {
	cfg     *config.Config
	machine *machine.Machine
	modelID ibs.ID
	model   ibs.Model
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id, err := ibs.Parse(cfg.Run.Model)
	if err != nil {
		return nil, err
	}

	ring, optics, err := BuildLattice(cfg)
	if err != nil {
		return nil, err
	}

	m, err := machine.New(ring, optics)
	if err != nil {
		return nil, fmt.Errorf("build machine: %w", err)
	}

	model, err := m.Model(id)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, machine: m, modelID: id, model: model}, nil
}

// BuildLattice returns the ring scalars and optics described by cfg. A
// table file supplies optics and overrides ring scalars found in its
// header.
func BuildLattice(cfg *config.Config) (*lattice.Ring, *lattice.Optics, error) {
	params := cfg.Ring.Params()

	if cfg.Lattice.Table != "" {
		tbl, err := lattice.ReadTableFile(cfg.Lattice.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("read lattice table: %w", err)
		}
		for k, v := range tbl.Header {
			params[k] = v
		}
		return lattice.NewRing(params, cfg.Ring.RF), tbl.Optics, nil
	}

	optics, err := lattice.SmoothRing(cfg.Ring.Circumference, cfg.Ring.GammaTr, cfg.Ring.TuneX, params[lattice.KeyTuneY], cfg.Lattice.Cells)
	if err != nil {
		return nil, nil, err
	}
	return lattice.NewRing(params, cfg.Ring.RF), optics, nil
}

func (e *Experiment) Config() *config.Config     { return e.cfg }
func (e *Experiment) Machine() *machine.Machine { return e.machine }
func (e *Experiment) Model() ibs.Model          { return e.model }
func (e *Experiment) ModelID() ibs.ID           { return e.modelID }

// Simulator returns a simulator for the configured model carrying the
// default metrics.
func (e *Experiment) Simulator(opts ...sim.Option) *sim.Simulator {
	opts = append([]sim.Option{sim.WithDiagnostics(e.cfg.Run.Diagnostics)}, opts...)
	s := sim.New(e.machine, e.model, opts...)
	for _, m := range DefaultMetrics() {
		s.AddMetric(m)
	}
	return s
}

// Run executes the configured mode.
func (e *Experiment) Run(ctx context.Context, opts ...sim.Option) (*beam.Result, error) {
	s := e.Simulator(opts...)
	if e.cfg.Run.Mode == config.ModeFixed {
		return s.RunFixedSteps(ctx, e.cfg.Seed(), e.cfg.FixedParams())
	}
	return s.RunUntilConverged(ctx, e.cfg.Seed(), e.cfg.ConvergenceParams())
}

// Ensemble returns an ensemble over ids on this ring; each member carries
// the default metrics.
func (e *Experiment) Ensemble(ids []ibs.ID, logger *slog.Logger) (*sim.Ensemble, error) {
	models := make([]ibs.Model, 0, len(ids))
	for _, id := range ids {
		m, err := e.machine.Model(id)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return sim.NewEnsemble(e.machine, models, logger).WithMetrics(DefaultMetrics), nil
}

// Sweep scans the particle count with the configured model and run
// parameters.
func (e *Experiment) Sweep(ctx context.Context, values []float64, opts ...sim.Option) ([]analysis.SweepPoint, error) {
	build := func(float64) (*sim.Simulator, error) {
		return e.Simulator(opts...), nil
	}
	return analysis.Sweep(ctx, build, e.cfg.Seed(), e.cfg.ConvergenceParams(), values)
}
