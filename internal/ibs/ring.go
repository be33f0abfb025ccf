package ibs

import (
	"fmt"

	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
)

// Ring carries the machine quantities every model needs. Build it with
// NewRing so the derived fields are filled in.
type Ring struct {
	Gamma         float64
	Beta          float64
	Charge        float64
	Mass          float64
	AAtom         float64
	R0            float64
	Circumference float64
	// DampingTime is the horizontal radiation damping time in seconds,
	// used by the tail-cut Coulomb log. Zero disables the cut.
	DampingTime float64

	elements []lattice.Element
	weights  []float64
	avg      lattice.Element
}

// NewRing extracts the model inputs from a lattice ring and its optics.
func NewRing(ring *lattice.Ring, optics *lattice.Optics) Ring {
	aatom := physics.AtomicMassRatio(ring.Mass())
	r := Ring{
		Gamma:         ring.Gamma(),
		Beta:          physics.BetaRel(ring.Gamma()),
		Charge:        ring.Charge(),
		Mass:          ring.Mass(),
		AAtom:         aatom,
		R0:            physics.ParticleRadius(ring.Charge(), aatom),
		Circumference: ring.Circumference(),
		elements:      optics.Elements(),
	}

	total := optics.TotalLength()
	r.weights = make([]float64, len(r.elements))
	n := float64(len(r.elements))
	for i, e := range r.elements {
		r.weights[i] = e.L / total
		r.avg.BetX += e.BetX / n
		r.avg.BetY += e.BetY / n
		r.avg.DX += e.DX / n
		r.avg.DY += e.DY / n
	}
	return r
}

func (r Ring) validate() error {
	if len(r.elements) == 0 {
		return fmt.Errorf("ibs: ring has no optics")
	}
	if r.Gamma <= 1 || r.R0 <= 0 {
		return fmt.Errorf("ibs: invalid ring (gamma=%g, r0=%g)", r.Gamma, r.R0)
	}
	return nil
}

// Elements returns the number of lattice elements the models average over.
func (r Ring) Elements() int { return len(r.elements) }

// WithDampingTime returns a copy of r with the tail-cut damping time set.
func (r Ring) WithDampingTime(tau float64) Ring {
	r.DampingTime = tau
	return r
}
