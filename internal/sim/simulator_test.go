package sim_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/sim"
)

var _ = Describe("Simulator", func() {
	var (
		ring  *stubRing
		model *constModel
		ctx   context.Context
	)

	BeforeEach(func() {
		ring = newStubRing()
		model = &constModel{name: "zero"}
		ctx = context.Background()
	})

	converge := func(s *sim.Simulator, p sim.ConvergenceParams) *beam.Result {
		res, err := s.RunUntilConverged(ctx, stubSeed, p)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("RunUntilConverged", func() {
		It("converges toward the radiation equilibrium", func() {
			res := converge(sim.New(ring, model), sim.ConvergenceParams{RelativeThreshold: 1e-4, Scheme: "der"})

			Expect(res.Converged).To(BeTrue())
			Expect(res.Valid).To(BeTrue())
			Expect(res.Err()).NotTo(HaveOccurred())
			Expect(res.Scheme).To(Equal("derivative"))
			Expect(res.Budget).To(Equal(sim.MaxSteps))

			final := res.Final()
			Expect(final.Ex).To(BeNumerically("~", 1e-9, 1e-12))
			Expect(final.Sige).To(BeNumerically("~", 1e-3, 1e-5))
			Expect(final.Sigs).To(BeNumerically("~", ring.BunchLength(final.Sige), 1e-15))
		})

		It("keeps the trajectory one longer than the step count and within budget", func() {
			res := converge(sim.New(ring, model), sim.ConvergenceParams{RelativeThreshold: 1e-4})

			tr := res.Trajectory
			Expect(tr.Len()).To(Equal(res.Steps + 1))
			Expect(tr.Len()).To(BeNumerically("<=", res.Budget+1))
			for _, s := range [][]float64{tr.Ex, tr.Ey, tr.Sigs, tr.Sige} {
				Expect(s).To(HaveLen(tr.Len()))
			}
			Expect(tr.T[0]).To(BeZero())
			Expect(tr.Sige[0]).To(Equal(ring.EnergySpread(stubSeed.Sigs)))
		})

		DescribeTable("derives the step budget from the seed time scales",
			func(tau float64, rates beam.Rates, budget int) {
				slow := &stubRing{c: beam.Constants{TauX: tau, TauY: tau, TauS: tau, ExEq: 1e-9, EyEq: 1e-11, Sige2Eq: 1e-6}, k: 10}
				model.rates = rates
				res := converge(sim.New(slow, model), sim.ConvergenceParams{RelativeThreshold: 1e-4})

				Expect(res.Budget).To(Equal(budget))
				Expect(res.Steps).To(BeNumerically("<=", budget))
			},
			Entry("damping only", 1.0/128, beam.Rates{}, 1280),
			Entry("slower damping", 1.0/32, beam.Rates{}, 320),
			Entry("growth faster than damping", 1.0/128, beam.Rates{X: 256}, 2560),
			Entry("fast damping hits the cap", 1.0/8192, beam.Rates{}, sim.MaxSteps),
			Entry("slow seed gives a short budget", 0.5, beam.Rates{S: 4, X: 4, Y: 4}, 40),
		)

		It("stops at the budget without converging when the sizes keep growing", func() {
			slow := &stubRing{c: beam.Constants{TauX: 0.5, TauY: 0.5, TauS: 0.5, ExEq: 1e-9, EyEq: 1e-11, Sige2Eq: 1e-6}, k: 10}
			model.rates = beam.Rates{S: 4, X: 4, Y: 4}
			res := converge(sim.New(slow, model), sim.ConvergenceParams{RelativeThreshold: 1e-4})

			Expect(res.Budget).To(Equal(40))
			Expect(res.Steps).To(Equal(res.Budget))
			Expect(res.Converged).To(BeFalse())
			Expect(res.Trajectory.Len()).To(Equal(41))
			Expect(res.Final().Ex).To(BeNumerically(">", stubSeed.Ex))
		})

		It("is deterministic", func() {
			p := sim.ConvergenceParams{ParticleCount: 1e10, RelativeThreshold: 1e-5}
			model.rates = beam.Rates{S: 10, X: 20, Y: 5}
			a := converge(sim.New(ring, model), p)
			b := converge(sim.New(ring, model), p)
			Expect(a.Trajectory).To(Equal(b.Trajectory))
		})

		DescribeTable("clips out-of-range parameters",
			func(given, equivalent sim.ConvergenceParams) {
				model.rates = beam.Rates{S: 10, X: 20, Y: 30}
				a := converge(sim.New(ring, model), given)
				b := converge(sim.New(ring, model), equivalent)
				Expect(a.Trajectory).To(Equal(b.Trajectory))
				Expect(a.Constants.Coupling).To(Equal(b.Constants.Coupling))
			},
			Entry("negative coupling",
				sim.ConvergenceParams{CouplingPercent: -5, RelativeThreshold: 1e-4},
				sim.ConvergenceParams{CouplingPercent: 0, RelativeThreshold: 1e-4}),
			Entry("coupling above 100",
				sim.ConvergenceParams{CouplingPercent: 150, RelativeThreshold: 1e-4},
				sim.ConvergenceParams{CouplingPercent: 100, RelativeThreshold: 1e-4}),
			Entry("threshold above 1",
				sim.ConvergenceParams{RelativeThreshold: 5},
				sim.ConvergenceParams{RelativeThreshold: sim.DefaultThreshold}),
			Entry("threshold below 1e-6",
				sim.ConvergenceParams{RelativeThreshold: 1e-9},
				sim.ConvergenceParams{RelativeThreshold: sim.DefaultThreshold}),
		)

		It("uses the coupled vertical target", func() {
			res := converge(sim.New(ring, model), sim.ConvergenceParams{CouplingPercent: 50, RelativeThreshold: 1e-4})
			Expect(res.Constants.Coupling).To(Equal(0.5))
			Expect(res.Constants.EyTarget).To(Equal(0.5e-9))
			Expect(res.Final().Ey).To(BeNumerically("~", 0.5e-9, 1e-12))
		})

		It("holds the equilibrium under both schemes when rates vanish", func() {
			c, _ := ring.Constants(0)
			seed := beam.Seed{Ex: c.ExEq, Ey: c.EyTarget, Sigs: ring.BunchLength(math.Sqrt(c.Sige2Eq))}

			var finals []beam.Point
			for _, scheme := range []string{"der", "rlx"} {
				res, err := sim.New(ring, model).RunUntilConverged(ctx, seed, sim.ConvergenceParams{RelativeThreshold: 1e-6, Scheme: scheme})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Converged).To(BeTrue())
				Expect(res.Steps).To(Equal(1))
				finals = append(finals, res.Final())
			}
			Expect(finals[0].Ex).To(BeNumerically("~", finals[1].Ex, 1e-21))
			Expect(finals[0].Ey).To(BeNumerically("~", finals[1].Ey, 1e-23))
			Expect(finals[0].Sigs).To(BeNumerically("~", finals[1].Sigs, 1e-15))
		})

		It("does not guard the relaxation step", func() {
			model.rates = beam.Rates{X: 2000}
			obs := &recordingObserver{}
			res := converge(sim.New(ring, model, sim.WithObserver(obs)), sim.ConvergenceParams{RelativeThreshold: 1, Scheme: "relaxation"})

			Expect(res.Scheme).To(Equal("relaxation"))
			Expect(obs.dts).NotTo(BeEmpty())
			for _, dt := range obs.dts {
				Expect(dt).To(Equal(2.5e-4))
			}
		})

		It("substitutes the derivative scheme for unknown names", func() {
			quiet := &recordingReporter{}
			res := converge(sim.New(ring, model, sim.WithReporter(quiet)), sim.ConvergenceParams{Scheme: "rk4"})

			Expect(res.Scheme).To(Equal("derivative"))
			Expect(quiet.warns).To(BeEmpty())
			Expect(quiet.lines).To(BeEmpty())
		})

		It("warns about an unknown scheme only with diagnostics", func() {
			loud := &recordingReporter{}
			res := converge(sim.New(ring, model, sim.WithReporter(loud), sim.WithDiagnostics(true)), sim.ConvergenceParams{Scheme: "rk4"})

			Expect(res.Scheme).To(Equal("derivative"))
			Expect(loud.warns).To(ConsistOf(ContainSubstring(`"rk4"`)))
		})

		It("reports the adiabatic estimate only with diagnostics", func() {
			quiet := &recordingReporter{}
			converge(sim.New(ring, model, sim.WithReporter(quiet)), sim.ConvergenceParams{})
			Expect(quiet.lines).To(BeEmpty())

			loud := &recordingReporter{}
			converge(sim.New(ring, model, sim.WithReporter(loud), sim.WithDiagnostics(true)), sim.ConvergenceParams{})
			Expect(loud.lines).To(ContainElement("seed sige (adiabatic)"))
		})

		It("notifies observers and collects metrics every step", func() {
			obs := &recordingObserver{}
			metric := &countingMetric{}
			res := converge(sim.New(ring, model, sim.WithObserver(obs), sim.WithMetric(metric)), sim.ConvergenceParams{})

			Expect(obs.steps).To(HaveLen(res.Steps))
			Expect(obs.steps[0]).To(Equal(1))
			Expect(res.Metrics).To(HaveKeyWithValue("count", float64(res.Steps)))
		})

		It("logs start and end of a run", func() {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			converge(sim.New(ring, model, sim.WithLogger(logger), sim.WithRunID("abc")), sim.ConvergenceParams{})

			Expect(buf.String()).To(ContainSubstring(`"msg":"run started"`))
			Expect(buf.String()).To(ContainSubstring(`"msg":"run finished"`))
			Expect(buf.String()).To(ContainSubstring(`"run_id":"abc"`))
		})

		It("rejects invalid seeds", func() {
			for _, seed := range []beam.Seed{{Ex: 0, Ey: 1, Sigs: 1}, {Ex: 1, Ey: -1, Sigs: 1}, {Ex: 1, Ey: 1, Sigs: math.NaN()}} {
				_, err := sim.New(ring, model).RunUntilConverged(ctx, seed, sim.ConvergenceParams{})
				Expect(errors.Is(err, beam.ErrInvalidState)).To(BeTrue(), "seed %+v", seed)
			}
		})

		It("rejects a negative particle count", func() {
			_, err := sim.New(ring, model).RunUntilConverged(ctx, stubSeed, sim.ConvergenceParams{ParticleCount: -1})
			Expect(errors.Is(err, beam.ErrParameterBounds)).To(BeTrue())
		})

		It("returns the partial result on cancellation", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := sim.New(ring, model).RunUntilConverged(cctx, stubSeed, sim.ConvergenceParams{})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res).NotTo(BeNil())
			Expect(res.Trajectory.Len()).To(Equal(1))
			Expect(res.Converged).To(BeFalse())
		})
	})

	Describe("RunFixedSteps", func() {
		It("takes exactly the requested number of steps", func() {
			res, err := sim.New(ring, model).RunFixedSteps(ctx, stubSeed, sim.FixedParams{StepCount: 7, StepSize: 1e-4})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory.Len()).To(Equal(8))
			Expect(res.Steps).To(Equal(7))
			Expect(res.Budget).To(Equal(7))
			Expect(res.Converged).To(BeFalse())
			Expect(res.Final().T).To(BeNumerically("~", 7e-4, 1e-15))
		})

		DescribeTable("rejects invalid step parameters",
			func(p sim.FixedParams) {
				_, err := sim.New(ring, model).RunFixedSteps(ctx, stubSeed, p)
				Expect(errors.Is(err, beam.ErrParameterBounds)).To(BeTrue())
			},
			Entry("zero steps", sim.FixedParams{StepCount: 0, StepSize: 1}),
			Entry("negative steps", sim.FixedParams{StepCount: -3, StepSize: 1}),
			Entry("zero step size", sim.FixedParams{StepCount: 3, StepSize: 0}),
			Entry("negative step size", sim.FixedParams{StepCount: 3, StepSize: -1}),
			Entry("NaN step size", sim.FixedParams{StepCount: 3, StepSize: math.NaN()}),
		)

		It("halves the relaxation step persistently while degenerate", func() {
			model.rates = beam.Rates{X: 2000}
			obs := &recordingObserver{}
			_, err := sim.New(ring, model, sim.WithObserver(obs)).
				RunFixedSteps(ctx, stubSeed, sim.FixedParams{StepCount: 3, StepSize: 1e-4, Scheme: "rlx"})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.dts).To(Equal([]float64{5e-5, 2.5e-5, 1.25e-5}))
		})

		It("keeps the step size when the relaxation update is regular", func() {
			model.rates = beam.Rates{X: 1}
			obs := &recordingObserver{}
			_, err := sim.New(ring, model, sim.WithObserver(obs)).
				RunFixedSteps(ctx, stubSeed, sim.FixedParams{StepCount: 3, StepSize: 1e-4, Scheme: "rlx"})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.dts).To(Equal([]float64{1e-4, 1e-4, 1e-4}))
		})

		It("records non-physical samples without stopping", func() {
			model.rates = beam.Rates{X: -10}
			res, err := sim.New(ring, model).RunFixedSteps(ctx, stubSeed, sim.FixedParams{StepCount: 3, StepSize: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(3))
			Expect(res.Valid).To(BeFalse())
			Expect(res.Invalid).NotTo(BeEmpty())
			Expect(res.Invalid[0].Step).To(Equal(1))
			Expect(res.Invalid[0].Quantity).To(Equal("ex"))

			runErr := res.Err()
			Expect(errors.Is(runErr, beam.ErrNonPhysical)).To(BeTrue())
			var simErr *beam.SimulationError
			Expect(errors.As(runErr, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(1))
		})
	})

	Describe("Ensemble", func() {
		It("returns results in model order", func() {
			models := []ibs.Model{
				&constModel{name: "a", rates: beam.Rates{S: 1, X: 2, Y: 3}},
				&constModel{name: "b", rates: beam.Rates{S: 4, X: 5, Y: 6}},
				&constModel{name: "c"},
			}
			results, err := sim.NewEnsemble(ring, models, nil).Run(ctx, stubSeed, sim.ConvergenceParams{RelativeThreshold: 1e-4})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			for i, m := range models {
				Expect(results[i].FinalRates).To(Equal(m.Rates(beam.Input{})))
			}
		})

		It("gives each member its own metrics", func() {
			models := []ibs.Model{&constModel{name: "a"}, &constModel{name: "b"}}
			factory := func() []sim.Metric { return []sim.Metric{&countingMetric{}} }

			results, err := sim.NewEnsemble(ring, models, nil).WithMetrics(factory).Run(ctx, stubSeed, sim.ConvergenceParams{RelativeThreshold: 1e-4})
			Expect(err).NotTo(HaveOccurred())
			for _, res := range results {
				Expect(res.Metrics).To(HaveKeyWithValue("count", float64(res.Steps)))
			}
		})

		It("fails when any member fails", func() {
			models := []ibs.Model{&constModel{name: "a"}}
			_, err := sim.NewEnsemble(ring, models, nil).Run(ctx, beam.Seed{}, sim.ConvergenceParams{})
			Expect(errors.Is(err, beam.ErrInvalidState)).To(BeTrue())
		})
	})
})
