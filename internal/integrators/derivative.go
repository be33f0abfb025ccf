package integrators

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
)

// Derivative is a forward-Euler step of the coupled rate equations
//
//	dεx/dt = −2(εx − εx,eq)/τx + 2·rx·εx
//	dεy/dt = −2(εy − εy,target)/τy + 2·ry·εy
//	dσE/dt = −(σE − σE,eq)/τs + rs·σE
type Derivative struct{}

func NewDerivative() *Derivative {
	return &Derivative{}
}

func (d *Derivative) Name() string { return "derivative" }

func (d *Derivative) Step(c beam.Constants, p beam.Point, r beam.Rates, dt float64) beam.Point {
	dex := -(p.Ex-c.ExEq)*2/c.TauX + p.Ex*2*r.X
	dey := -(p.Ey-c.EyTarget)*2/c.TauY + p.Ey*2*r.Y
	dse := -(p.Sige-math.Sqrt(c.Sige2Eq))/c.TauS + p.Sige*r.S

	return beam.Point{
		T:    p.T + dt,
		Ex:   p.Ex + dt*dex,
		Ey:   p.Ey + dt*dey,
		Sigs: p.Sigs,
		Sige: p.Sige + dt*dse,
	}
}
