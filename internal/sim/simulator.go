package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/integrators"
)

// Simulator integrates the coupled emittance, energy-spread and bunch-length
// equations of one ring under one growth-rate model.
type Simulator struct {
	ring        RingModel
	model       ibs.Model
	logger      *slog.Logger
	reporter    Reporter
	observers   []Observer
	metrics     []Metric
	diagnostics bool
	runID       string
}

func New(ring RingModel, model ibs.Model, opts ...Option) *Simulator {
	s := &Simulator{
		ring:      ring,
		model:     model,
		logger:    discardLogger(),
		reporter:  nopReporter{},
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }

// predicate reports whether the run stops after step.
type predicate func(step int, tr *beam.Trajectory) bool

func convergedPredicate(budget int, threshold float64) predicate {
	return func(step int, tr *beam.Trajectory) bool {
		if step >= budget {
			return true
		}
		rx, ry, rs := tr.LastChanges()
		return rx <= threshold && ry <= threshold && rs <= threshold
	}
}

func stepCountPredicate(n int) predicate {
	return func(step int, _ *beam.Trajectory) bool { return step >= n }
}

// degenerator is implemented by schemes with an undefined update region.
type degenerator interface {
	Degenerate(c beam.Constants, r beam.Rates) bool
}

// plan is the fully resolved description of one run.
type plan struct {
	particles float64
	coupling  float64
	scheme    integrators.Scheme
	// dt is the fixed step size; zero derives it from the rates every step.
	dt     float64
	budget int
	done   predicate
	// converging marks a convergence run; only those report Converged.
	converging bool
	threshold  float64
}

// RunUntilConverged steps until the relative changes of ex, ey and sigs all
// drop to the threshold, or the step budget derived from the seed's time
// scales is spent.
func (s *Simulator) RunUntilConverged(ctx context.Context, seed beam.Seed, p ConvergenceParams) (*beam.Result, error) {
	if err := validateParticles(p.ParticleCount); err != nil {
		return nil, err
	}
	pl := plan{
		particles:  p.ParticleCount,
		coupling:   s.clampCoupling(p.CouplingPercent),
		scheme:     s.resolveScheme(p.Scheme),
		converging: true,
		threshold:  s.clampThreshold(p.RelativeThreshold),
	}

	c, first, rates, err := s.setup(seed, pl)
	if err != nil {
		return nil, err
	}
	pl.budget = stepBudget(c, rates)
	pl.done = convergedPredicate(pl.budget, pl.threshold)
	return s.run(ctx, pl, c, first, rates)
}

// RunFixedSteps takes exactly StepCount steps of StepSize. With the
// relaxation scheme the step size is halved, persistently, on every step at
// which the update is degenerate.
func (s *Simulator) RunFixedSteps(ctx context.Context, seed beam.Seed, p FixedParams) (*beam.Result, error) {
	if p.StepCount <= 0 {
		return nil, fmt.Errorf("%w: step count must be positive, got %d", beam.ErrParameterBounds, p.StepCount)
	}
	if !(p.StepSize > 0) || math.IsInf(p.StepSize, 0) {
		return nil, fmt.Errorf("%w: step size must be positive, got %g", beam.ErrParameterBounds, p.StepSize)
	}
	if err := validateParticles(p.ParticleCount); err != nil {
		return nil, err
	}
	pl := plan{
		particles: p.ParticleCount,
		coupling:  s.clampCoupling(p.CouplingPercent),
		scheme:    s.resolveScheme(p.Scheme),
		dt:        p.StepSize,
		budget:    p.StepCount,
		done:      stepCountPredicate(p.StepCount),
	}

	c, first, rates, err := s.setup(seed, pl)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, pl, c, first, rates)
}

// setup computes the run constants, the seed sample and the seed rates.
func (s *Simulator) setup(seed beam.Seed, pl plan) (beam.Constants, beam.Point, beam.Rates, error) {
	if err := seed.Validate(); err != nil {
		return beam.Constants{}, beam.Point{}, beam.Rates{}, err
	}
	c, err := s.ring.Constants(pl.coupling)
	if err != nil {
		return beam.Constants{}, beam.Point{}, beam.Rates{}, fmt.Errorf("run constants: %w", err)
	}

	first := beam.Point{Ex: seed.Ex, Ey: seed.Ey, Sigs: seed.Sigs, Sige: s.ring.EnergySpread(seed.Sigs)}
	if !first.IsValid() {
		return beam.Constants{}, beam.Point{}, beam.Rates{}, fmt.Errorf("%w: seed energy spread %g", beam.ErrInvalidState, first.Sige)
	}

	adiabatic := s.ring.AdiabaticEnergySpread(seed.Sigs)
	s.logger.Debug("seed energy spread", "bucket", first.Sige, "adiabatic", adiabatic)
	if s.diagnostics {
		s.reporter.Line("seed sige (bucket)", first.Sige, "")
		s.reporter.Line("seed sige (adiabatic)", adiabatic, "")
	}

	rates := s.model.Rates(input(pl.particles, first))
	return c, first, rates, nil
}

// stepBudget returns min(int(10·τmax/Δt0), MaxSteps), at least 1, where
// τmax = min(max(τx, τy, τs, 1/|r|…, 1), 1) and Δt0 = min(τx, τy, τs, 1/|r|…).
// The 1 inside the max pins τmax to one second.
func stepBudget(c beam.Constants, r beam.Rates) int {
	tauMax := math.Min(math.Max(math.Max(c.MaxDampingTime(), r.InverseMax()), 1), 1)
	dt0 := math.Min(c.MinDampingTime(), r.InverseMin())
	f := 10 * tauMax / dt0
	if math.IsNaN(f) || f >= MaxSteps {
		return MaxSteps
	}
	if f < 1 {
		return 1
	}
	return int(f)
}

func (s *Simulator) run(ctx context.Context, pl plan, c beam.Constants, first beam.Point, rates beam.Rates) (*beam.Result, error) {
	capacity := pl.budget + 1
	if capacity > 1024 && pl.converging {
		capacity = 1024
	}
	tr := beam.NewTrajectory(capacity)
	tr.Append(first)

	result := &beam.Result{
		Trajectory: tr,
		FinalRates: rates,
		Constants:  c,
		Scheme:     pl.scheme.Name(),
		Budget:     pl.budget,
		Valid:      true,
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("run started",
		"run_id", s.runID,
		"model", s.model.Name(),
		"scheme", pl.scheme.Name(),
		"budget", pl.budget,
		"coupling", pl.coupling,
	)

	degen, guarded := pl.scheme.(degenerator)
	fixedDt := pl.dt
	prev := rates
	cur := first

	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			s.finish(result, pl)
			return result, ctx.Err()
		default:
		}

		dt := fixedDt
		if dt == 0 {
			dt = math.Min(c.MinDampingTime(), prev.InverseMin()) / 2
		}

		r := s.model.Rates(input(pl.particles, cur))
		if fixedDt > 0 && guarded && degen.Degenerate(c, r) {
			fixedDt /= 2
			dt = fixedDt
			s.logger.Debug("degenerate relaxation step, halving dt", "step", step, "dt", dt)
		}

		next := pl.scheme.Step(c, cur, r, dt)
		next.Sigs = s.ring.BunchLength(next.Sige)
		tr.Append(next)
		result.Steps = step
		result.FinalRates = r

		if v := beam.Check(step, next); len(v) > 0 {
			result.Valid = false
			result.Invalid = append(result.Invalid, v...)
			for _, bad := range v {
				s.logger.Warn("non-physical sample", "step", step, "t", next.T, "quantity", bad.Quantity, "value", bad.Value)
			}
		}

		for _, m := range s.metrics {
			m.Observe(step, next, r, dt)
		}
		for _, obs := range s.observers {
			obs.OnStep(step, next, r, dt)
		}

		prev = r
		cur = next
		if pl.done(step, tr) {
			break
		}
	}

	s.finish(result, pl)
	return result, nil
}

func (s *Simulator) finish(result *beam.Result, pl plan) {
	if pl.converging && result.Steps > 0 {
		rx, ry, rs := result.Trajectory.LastChanges()
		th := pl.threshold
		result.Converged = rx <= th && ry <= th && rs <= th
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Info("run finished",
		"run_id", s.runID,
		"steps", result.Steps,
		"budget", result.Budget,
		"converged", result.Converged,
		"valid", result.Valid,
	)
}

func input(n float64, p beam.Point) beam.Input {
	return beam.Input{N: n, Ex: p.Ex, Ey: p.Ey, Sigs: p.Sigs, Sige: p.Sige}
}

func validateParticles(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return fmt.Errorf("%w: particle count must be finite and non-negative, got %g", beam.ErrParameterBounds, n)
	}
	return nil
}
