package ibs

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
)

// bjorkenMtingwa integrates the full Bjorken-Mtingwa kernel in the matrix
// form of Kubo, Mtingwa and Wolski. With vertical unset the vertical
// dispersion is dropped, which is the Conte-Martini reduction.
type bjorkenMtingwa struct {
	id       ID
	ring     Ring
	log      coulombLog
	vertical bool
}

func (m *bjorkenMtingwa) Name() string { return m.id.String() }

func (m *bjorkenMtingwa) Rates(in beam.Input) beam.Rates {
	r := m.ring
	a := r.R0 * r.R0 * physics.C * in.N /
		(64 * math.Pi * math.Pi * math.Pow(r.Beta, 3) * math.Pow(r.Gamma, 4) * in.Ex * in.Ey * in.Sigs * in.Sige)
	scale := 4 * math.Pi * a
	if m.log.uniform() {
		scale *= r.ringLog(m.log, in)
	}

	sum := accumulate(len(r.elements), func(i int) contribution {
		e := r.elements[i]
		if !m.vertical {
			e.DY, e.DPY = 0, 0
		}
		c := bmElement(r.Gamma, in, e)
		w := r.weights[i]
		if !m.log.uniform() {
			w *= r.elementLog(m.log, in, e)
		}
		return contribution{s: w * c.s, x: w * c.x, y: w * c.y}
	})

	return beam.Rates{S: scale * sum.s, X: scale * sum.x, Y: scale * sum.y}
}

// bmElement evaluates the three kernel integrals at one element.
func bmElement(gamma float64, in beam.Input, e lattice.Element) contribution {
	g2 := gamma * gamma
	phix, phiy := e.PhiX(), e.PhiY()

	lp := mat.NewSymDense(3, []float64{
		0, 0, 0,
		0, g2 / (in.Sige * in.Sige), 0,
		0, 0, 0,
	})
	lx := mat.NewSymDense(3, []float64{
		e.BetX / in.Ex, -e.BetX * gamma * phix / in.Ex, 0,
		-e.BetX * gamma * phix / in.Ex, g2 * e.HX() / in.Ex, 0,
		0, 0, 0,
	})
	ly := mat.NewSymDense(3, []float64{
		0, 0, 0,
		0, g2 * e.HY() / in.Ey, -e.BetY * gamma * phiy / in.Ey,
		0, -e.BetY * gamma * phiy / in.Ey, e.BetY / in.Ey,
	})

	var l mat.SymDense
	l.AddSym(lp, lx)
	l.AddSym(&l, ly)

	var eig mat.EigenSym
	if !eig.Factorize(&l, true) {
		return contribution{}
	}
	ev := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lo, hi := math.Inf(1), math.Inf(-1)
	for k := range ev {
		ev[k] = math.Max(ev[k], math.SmallestNonzeroFloat64)
		lo = math.Min(lo, ev[k])
		hi = math.Max(hi, ev[k])
	}

	kernel := func(li *mat.SymDense) float64 {
		trace := mat.Trace(li)
		var q [3]float64
		for k := range q {
			v := vecs.ColView(k)
			q[k] = mat.Inner(v, li, v)
		}
		// λ = e^u
		f := func(u float64) float64 {
			lam := math.Exp(u)
			var s1, s2 float64
			det := 1.0
			for k, ek := range ev {
				s1 += 1 / (ek + lam)
				s2 += q[k] / (ek + lam)
				det *= ek + lam
			}
			return math.Pow(lam, 1.5) / math.Sqrt(det) * (trace*s1 - 3*s2)
		}
		return integrateUniform(f, math.Log(lo)-20, math.Log(hi)+20)
	}

	return contribution{s: kernel(lp), x: kernel(lx), y: kernel(ly)}
}
