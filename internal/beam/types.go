package beam

import (
	"fmt"
	"math"
)

// Point is one sample of the beam state.
type Point struct {
	T    float64
	Ex   float64
	Ey   float64
	Sigs float64
	Sige float64
}

func (p Point) IsValid() bool {
	for _, v := range [...]float64{p.Ex, p.Ey, p.Sigs, p.Sige} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return !math.IsNaN(p.T) && !math.IsInf(p.T, 0)
}

// Seed holds the caller-supplied initial conditions. The energy spread is
// derived from Sigs through the RF bucket.
type Seed struct {
	Ex   float64 `yaml:"ex" json:"ex"`
	Ey   float64 `yaml:"ey" json:"ey"`
	Sigs float64 `yaml:"sigs" json:"sigs"`
}

func (s Seed) Validate() error {
	for _, q := range []struct {
		name string
		v    float64
	}{{"ex", s.Ex}, {"ey", s.Ey}, {"sigs", s.Sigs}} {
		if math.IsNaN(q.v) || math.IsInf(q.v, 0) || q.v <= 0 {
			return fmt.Errorf("%w: seed %s=%g must be positive and finite", ErrInvalidState, q.name, q.v)
		}
	}
	return nil
}

// Input is the beam state handed to a growth-rate model.
type Input struct {
	N    float64
	Ex   float64
	Ey   float64
	Sigs float64
	Sige float64
}

// Rates is one growth-rate sample in 1/s, amplitude convention
// (1/σ dσ/dt). Negative values denote damping.
type Rates struct {
	S float64 `json:"s"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InverseMin returns min(|1/S|, |1/X|, |1/Y|); zero rates count as +Inf.
func (r Rates) InverseMin() float64 {
	m := math.Inf(1)
	for _, v := range [...]float64{r.S, r.X, r.Y} {
		if v == 0 {
			continue
		}
		m = math.Min(m, math.Abs(1/v))
	}
	return m
}

// InverseMax is the counterpart of InverseMin.
func (r Rates) InverseMax() float64 {
	m := math.Inf(-1)
	for _, v := range [...]float64{r.S, r.X, r.Y} {
		if v == 0 {
			return math.Inf(1)
		}
		m = math.Max(m, math.Abs(1/v))
	}
	return m
}

// Constants are the time-invariant quantities of one run.
type Constants struct {
	TauX float64 `json:"tau_x"`
	TauY float64 `json:"tau_y"`
	TauS float64 `json:"tau_s"`

	ExEq    float64 `json:"ex_eq"`
	EyEq    float64 `json:"ey_eq"`
	Sige2Eq float64 `json:"sige2_eq"`
	SigsEq  float64 `json:"sigs_eq"`

	OmegaS float64 `json:"omega_s"`
	Eta    float64 `json:"eta"`
	Omega0 float64 `json:"omega0"`

	// Coupling is the coupling fraction in [0, 1].
	Coupling float64 `json:"coupling"`
	// EyTarget is max(Coupling·ExEq, EyEq).
	EyTarget float64 `json:"ey_target"`
}

// WithCoupling returns a copy with Coupling and EyTarget set.
func (c Constants) WithCoupling(fraction float64) Constants {
	c.Coupling = fraction
	c.EyTarget = math.Max(fraction*c.ExEq, c.EyEq)
	return c
}

func (c Constants) Validate() error {
	for i, v := range [...]float64{c.TauX, c.TauY, c.TauS} {
		if math.IsNaN(v) || v <= 0 {
			return fmt.Errorf("%w: damping time %s=%g must be positive", ErrParameterBounds, [...]string{"tau_x", "tau_y", "tau_s"}[i], v)
		}
	}
	return nil
}

// MinDampingTime returns min(τx, τy, τs).
func (c Constants) MinDampingTime() float64 {
	return math.Min(c.TauX, math.Min(c.TauY, c.TauS))
}

func (c Constants) MaxDampingTime() float64 {
	return math.Max(c.TauX, math.Max(c.TauY, c.TauS))
}
