package integrators

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
)

// Relaxation moves each quantity a fraction dt toward its IBS-enhanced
// equilibrium x_eq/(1 − τ·rate). The vertical target mixes the vertical and
// horizontal enhancements by the coupling fraction.
type Relaxation struct{}

func NewRelaxation() *Relaxation {
	return &Relaxation{}
}

func (rl *Relaxation) Name() string { return "relaxation" }

func (rl *Relaxation) Step(c beam.Constants, p beam.Point, r beam.Rates, dt float64) beam.Point {
	fx := 1 / (1 - c.TauX*r.X)
	fy := 1 / (1 - c.TauY*r.Y)
	fs := 1 / (1 - c.TauS*r.S)

	return beam.Point{
		T:    p.T + dt,
		Ex:   p.Ex + dt*(fx*c.ExEq-p.Ex),
		Ey:   p.Ey + dt*(((1-c.Coupling)*fy+c.Coupling*fx)*c.EyTarget-p.Ey),
		Sigs: p.Sigs,
		Sige: p.Sige + dt*(fs*math.Sqrt(c.Sige2Eq)-p.Sige),
	}
}

// Degenerate reports whether any τ·rate reaches 1, where the enhanced
// equilibrium is undefined or negative.
func (rl *Relaxation) Degenerate(c beam.Constants, r beam.Rates) bool {
	return c.TauX*r.X >= 1 || c.TauY*r.Y >= 1 || c.TauS*r.S >= 1
}
