package radiation

import (
	"errors"
	"math"

	"github.com/san-kum/ibsim/internal/lattice"
)

// ErrNoBending indicates optics without any bending element, for which the
// radiation integrals vanish and no damping exists.
var ErrNoBending = errors.New("radiation: lattice has no bending elements")

// Integrals holds the synchrotron radiation integrals of a lattice.
// I4x includes the quadrupole gradient term; IBetaY is ∮βy/|ρ|³ ds, used
// for the opening-angle contribution to the vertical emittance floor.
type Integrals struct {
	I1     float64
	I2     float64
	I3     float64
	I4x    float64
	I5x    float64
	I5y    float64
	IBetaY float64
}

// Vector returns the first six integrals in order (I1, I2, I3, I4x, I5x, I5y).
func (in Integrals) Vector() [6]float64 {
	return [6]float64{in.I1, in.I2, in.I3, in.I4x, in.I5x, in.I5y}
}

// Compute sums the radiation integrals over every bending element, treating
// each element as a uniform dipole with 1/ρ = ANGLE/L and k = K1L/L.
func Compute(optics *lattice.Optics) (Integrals, error) {
	var in Integrals
	for i := 0; i < optics.Len(); i++ {
		e := optics.Element(i)
		if e.L <= 0 || e.Angle == 0 {
			continue
		}
		rho := e.Angle / e.L
		k := e.K1L / e.L
		rho3 := math.Abs(rho * rho * rho)

		in.I1 += e.DX * rho * e.L
		in.I2 += rho * rho * e.L
		in.I3 += rho3 * e.L
		in.I4x += e.DX * rho * (rho*rho + 2*k) * e.L
		in.I5x += e.HX() * rho3 * e.L
		in.I5y += e.HY() * rho3 * e.L
		in.IBetaY += e.BetY * rho3 * e.L
	}
	if in.I2 == 0 {
		return in, ErrNoBending
	}
	return in, nil
}
