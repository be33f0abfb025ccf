package ibs

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/physics"
)

// bane is the high-energy approximation of Bjorken-Mtingwa. It is accurate
// when σH/γ·sqrt(β/ε) ≪ 1 in both planes.
type bane struct {
	id   ID
	ring Ring
}

func (m *bane) Name() string { return m.id.String() }

// baneG approximates the auxiliary function g(α) for 0.01 < α < 1.
func baneG(alpha float64) float64 {
	return math.Pow(alpha, 0.021-0.044*math.Log(alpha))
}

func (m *bane) Rates(in beam.Input) beam.Rates {
	r := m.ring
	sp := in.Sige

	sum := accumulate(len(r.elements), func(i int) contribution {
		e := r.elements[i]
		hx, hy := e.HX(), e.HY()
		sigH := 1 / math.Sqrt(1/(sp*sp)+hx/in.Ex+hy/in.Ey)
		a := sigH / r.Gamma * math.Sqrt(e.BetX/in.Ex)
		b := sigH / r.Gamma * math.Sqrt(e.BetY/in.Ey)
		alpha := math.Min(a, b) / math.Max(a, b)

		w := r.weights[i]
		return contribution{
			s: w * sigH * baneG(alpha) * math.Pow(e.BetX*e.BetY, -0.25),
			x: w * hx,
			y: w * hy,
		}
	})

	lg := r.ringLog(averagedLog, in)
	tp := r.R0 * r.R0 * physics.C * in.N * lg /
		(16 * math.Pow(r.Gamma, 3) * math.Pow(in.Ex, 0.75) * math.Pow(in.Ey, 0.75) * in.Sigs * sp * sp * sp) * sum.s

	return beam.Rates{
		S: tp,
		X: sp * sp * sum.x / in.Ex * tp,
		Y: sp * sp * sum.y / in.Ey * tp,
	}
}
