package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/machine"
	"github.com/san-kum/ibsim/internal/physics"
	"github.com/san-kum/ibsim/internal/sim"
)

var _ = Describe("Toy electron ring", func() {
	var (
		m     *machine.Machine
		model ibs.Model
	)

	BeforeEach(func() {
		ring := lattice.NewRing(map[string]float64{
			lattice.KeyGamma:         100,
			lattice.KeyMomentum:      physics.Momentum(100, physics.ElectronMass),
			lattice.KeyGammaTr:       10,
			lattice.KeyMass:          physics.ElectronMass,
			lattice.KeyCharge:        1,
			lattice.KeyCircumference: 1000,
			lattice.KeyTuneX:         10,
			lattice.KeyTuneY:         10,
		}, []lattice.RFSystem{{Harmonic: 1, Voltage: 1e6}})
		optics, err := lattice.SmoothRing(1000, 10, 10, 10, 64)
		Expect(err).NotTo(HaveOccurred())

		m, err = machine.New(ring, optics)
		Expect(err).NotTo(HaveOccurred())
		model, err = m.Model(ibs.Nagaitsev)
		Expect(err).NotTo(HaveOccurred())
	})

	seed := beam.Seed{Ex: 1e-9, Ey: 1e-11, Sigs: 0.01}
	params := sim.ConvergenceParams{ParticleCount: 1e11, RelativeThreshold: 1e-3, Scheme: "derivative"}

	It("round-trips the RF mapping", func() {
		for _, s := range []float64{1e-3, 0.01, 3} {
			Expect(m.BunchLength(m.EnergySpread(s))).To(BeNumerically("~", s, 1e-12*s))
		}
	})

	It("converges with Nagaitsev rates", func() {
		res, err := sim.New(m, model).RunUntilConverged(context.Background(), seed, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Converged).To(BeTrue())
		Expect(res.Steps).To(BeNumerically("<", sim.MaxSteps))
		Expect(res.Valid).To(BeTrue())

		final := res.Final()
		for _, v := range []float64{final.Ex, final.Ey, final.Sigs, final.Sige} {
			Expect(v).To(BeNumerically(">", 0))
			Expect(math.IsInf(v, 0) || math.IsNaN(v)).To(BeFalse())
		}

		rx, ry, rs := res.Trajectory.LastChanges()
		Expect(rx).To(BeNumerically("<=", 1e-3))
		Expect(ry).To(BeNumerically("<=", 1e-3))
		Expect(rs).To(BeNumerically("<=", 1e-3))

		// IBS blows the bunch up far beyond its radiation equilibrium.
		Expect(final.Ex).To(BeNumerically(">", 100*res.Constants.ExEq))
		Expect(final.Sigs).To(BeNumerically(">", res.Constants.SigsEq))
	})

	It("reproduces the same trajectory on every run", func() {
		a, err := sim.New(m, model).RunUntilConverged(context.Background(), seed, params)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.New(m, model).RunUntilConverged(context.Background(), seed, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Trajectory).To(Equal(b.Trajectory))
	})
})
