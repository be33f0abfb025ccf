package ibs

import (
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/physics"
)

// nagaitsev evaluates the Bjorken-Mtingwa integrals in closed form through
// Carlson's R_D, neglecting vertical dispersion.
type nagaitsev struct {
	id   ID
	ring Ring
	log  coulombLog
}

func (m *nagaitsev) Name() string { return m.id.String() }

func (m *nagaitsev) Rates(in beam.Input) beam.Rates {
	r := m.ring
	g2 := r.Gamma * r.Gamma
	sp := in.Sige

	scale := in.N * r.R0 * r.R0 * physics.C / (12 * math.Pi * math.Pow(r.Beta, 3) * math.Pow(r.Gamma, 5) * in.Sigs)
	if m.log.uniform() {
		scale *= r.ringLog(m.log, in)
	}

	sum := accumulate(len(r.elements), func(i int) contribution {
		e := r.elements[i]
		bx, by, dx := e.BetX, e.BetY, e.DX
		phix := e.PhiX()
		sigx := math.Sqrt(bx*in.Ex + sq(dx*sp))
		sigy := math.Sqrt(by*in.Ey + sq(e.DY*sp))

		axx := bx / in.Ex
		ayy := by / in.Ey
		as := axx*(dx*dx/(bx*bx)+phix*phix) + 1/(sp*sp)
		a1 := (axx + g2*as) / 2
		a2 := (axx - g2*as) / 2
		root := math.Sqrt(a2*a2 + g2*axx*axx*phix*phix)

		l1, l2, l3 := ayy, a1+root, a1-root
		r1 := mathext.EllipticRD(1/l2, 1/l3, 1/l1) / l1
		r2 := mathext.EllipticRD(1/l3, 1/l1, 1/l2) / l2
		r3 := 3*math.Sqrt(l1*l2/l3) - l1/l3*r1 - l2/l3*r2

		sp2 := (2*r1 - r2*(1-3*a2/root) - r3*(1+3*a2/root)) * 0.5 * g2
		sx := (2*r1 - r2*(1+3*a2/root) - r3*(1-3*a2/root)) * 0.5
		sxp := 3 * g2 * phix * phix * axx * (r3 - r2) / root

		w := r.weights[i] / (sigx * sigy)
		if !m.log.uniform() {
			w *= r.elementLog(m.log, in, e)
		}
		return contribution{
			s: sp2 * w,
			x: bx * w * (sx + sp2*(dx*dx/(bx*bx)+phix*phix) + sxp),
			y: by * w * (r2 + r3 - 2*r1),
		}
	})

	return beam.Rates{
		S: sum.s * scale / (sp * sp) / 2,
		X: sum.x * scale / in.Ex / 2,
		Y: sum.y * scale / in.Ey / 2,
	}
}
