package machine

import (
	"fmt"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
	"github.com/san-kum/ibsim/internal/radiation"
	"github.com/san-kum/ibsim/internal/rf"
)

// phaseTolerance bounds the last Newton step of the synchronous phase search.
const phaseTolerance = 1e-12

// Summary collects the derived ring quantities for reporting.
type Summary struct {
	AAtom       float64               `json:"aatom"`
	Beta        float64               `json:"beta"`
	Eta         float64               `json:"eta"`
	Omega0      float64               `json:"omega0"`
	U0          float64               `json:"u0_ev"`
	PhiS        float64               `json:"phi_s"`
	Qs          float64               `json:"qs"`
	OmegaS      float64               `json:"omega_s"`
	Integrals   radiation.Integrals   `json:"integrals"`
	Equilibrium radiation.Equilibrium `json:"equilibrium"`
}

// Machine binds a ring and its optics to the radiation and RF solutions.
// Everything is computed once in New; the methods are read-only.
type Machine struct {
	ring    *lattice.Ring
	optics  *lattice.Optics
	bucket  rf.Bucket
	summary Summary
}

func New(ring *lattice.Ring, optics *lattice.Optics) (*Machine, error) {
	if err := ring.Validate(); err != nil {
		return nil, err
	}
	if err := optics.Validate(); err != nil {
		return nil, err
	}

	s := Summary{
		AAtom: physics.AtomicMassRatio(ring.Mass()),
		Beta:  physics.BetaRel(ring.Gamma()),
		Eta:   physics.SlipFactor(ring.GammaTr(), ring.Gamma()),
	}
	s.Omega0 = physics.AngularRevolutionFrequency(ring.Circumference(), s.Beta)

	in, err := radiation.Compute(optics)
	if err != nil {
		return nil, err
	}
	s.Integrals = in
	s.U0 = radiation.EnergyLoss(ring, in.I2, s.AAtom)

	s.PhiS, err = rf.SynchronousPhase(1, rf.DefaultPhaseGuess, s.U0, ring.Charge(), ring.Harmonics(), ring.Voltages(), phaseTolerance)
	if err != nil {
		return nil, err
	}
	s.Qs = rf.SynchrotronTune(ring.Charge(), ring.Harmonics(), ring.Voltages(), s.PhiS, s.Eta, s.Beta, momentum(ring))
	s.OmegaS = s.Qs * s.Omega0
	if s.OmegaS == 0 {
		return nil, fmt.Errorf("machine: zero synchrotron frequency (eta=%g, phi_s=%g)", s.Eta, s.PhiS)
	}

	s.Equilibrium, err = radiation.Solve(ring, in, s.AAtom, s.OmegaS, s.Eta)
	if err != nil {
		return nil, err
	}

	return &Machine{
		ring:    ring,
		optics:  optics,
		bucket:  rf.NewBucket(s.Eta, s.Beta, s.OmegaS),
		summary: s,
	}, nil
}

// momentum prefers the table value and falls back to βγm.
func momentum(ring *lattice.Ring) float64 {
	if pc := ring.Momentum(); pc > 0 {
		return pc
	}
	return physics.Momentum(ring.Gamma(), ring.Mass())
}

// Constants returns the run constants for a coupling fraction in [0, 1].
func (m *Machine) Constants(coupling float64) (beam.Constants, error) {
	eq := m.summary.Equilibrium
	c := beam.Constants{
		TauX:    eq.TauX,
		TauY:    eq.TauY,
		TauS:    eq.TauS,
		ExEq:    eq.ExEq,
		EyEq:    eq.EyEq,
		Sige2Eq: eq.Sige2Eq,
		SigsEq:  eq.SigsEq,
		OmegaS:  m.summary.OmegaS,
		Eta:     m.summary.Eta,
		Omega0:  m.summary.Omega0,
	}.WithCoupling(coupling)
	if err := c.Validate(); err != nil {
		return beam.Constants{}, err
	}
	return c, nil
}

func (m *Machine) BunchLength(sige float64) float64 { return m.bucket.BunchLength(sige) }

func (m *Machine) EnergySpread(sigs float64) float64 { return m.bucket.EnergySpread(sigs) }

// AdiabaticEnergySpread is the main-harmonic estimate of σE, reported next
// to the bucket-consistent value.
func (m *Machine) AdiabaticEnergySpread(sigs float64) float64 {
	rfs := m.ring.RFSystems()
	return rf.AdiabaticEnergySpread(sigs, m.ring.Charge(), rfs[0].Voltage, rfs[0].Harmonic,
		m.summary.PhiS, m.summary.Eta, m.summary.Beta, momentum(m.ring), m.summary.Omega0)
}

func (m *Machine) Summary() Summary { return m.summary }

func (m *Machine) Ring() *lattice.Ring { return m.ring }

func (m *Machine) Optics() *lattice.Optics { return m.optics }

// IBSRing returns the model inputs for this machine, with the horizontal
// damping time set for the tail-cut models.
func (m *Machine) IBSRing() ibs.Ring {
	return ibs.NewRing(m.ring, m.optics).WithDampingTime(m.summary.Equilibrium.TauX)
}

// Model builds the growth-rate model id for this machine.
func (m *Machine) Model(id ibs.ID) (ibs.Model, error) {
	return ibs.New(id, m.IBSRing())
}
