package lattice

import (
	"fmt"
	"math"
)

// SmoothRing builds the optics of an idealised ring made of identical
// bending cells with constant beta functions R/Q and dispersion R/γtr².
func SmoothRing(circumference, gammatr, qx, qy float64, cells int) (*Optics, error) {
	if circumference <= 0 || gammatr <= 0 || qx <= 0 || qy <= 0 || cells <= 0 {
		return nil, fmt.Errorf("%w: smooth ring needs positive circumference, gammatr, tunes and cells", ErrInvalidOptics)
	}

	radius := circumference / (2 * math.Pi)
	l := circumference / float64(cells)
	angle := 2 * math.Pi / float64(cells)

	cols := make(map[string][]float64, len(Columns))
	for _, name := range Columns {
		cols[name] = make([]float64, cells)
	}
	for i := 0; i < cells; i++ {
		cols[ColLength][i] = l
		cols[ColAngle][i] = angle
		cols[ColBetX][i] = radius / qx
		cols[ColBetY][i] = radius / qy
		cols[ColDX][i] = radius / (gammatr * gammatr)
	}
	return NewOptics(cols)
}
