package rf

import (
	"math"

	"github.com/san-kum/ibsim/internal/physics"
)

// Bucket maps between bunch length and relative energy spread for a
// matched bunch in a linearised RF bucket: σs = βc|η|σE/ωs.
type Bucket struct {
	Eta    float64
	Beta   float64
	OmegaS float64
}

func NewBucket(eta, beta, omegaS float64) Bucket {
	return Bucket{Eta: eta, Beta: beta, OmegaS: omegaS}
}

func (b Bucket) BunchLength(sige float64) float64 {
	return b.Beta * physics.C * math.Abs(b.Eta) * sige / b.OmegaS
}

func (b Bucket) EnergySpread(sigs float64) float64 {
	return sigs * b.OmegaS / (b.Beta * physics.C * math.Abs(b.Eta))
}

// AdiabaticEnergySpread estimates σE from a bunch length using only the
// main RF system. It is a cross-check for the full bucket mapping, which
// accounts for every harmonic.
func AdiabaticEnergySpread(sigs, charge, voltage, harmonic, phis, eta, beta, pc, omega0 float64) float64 {
	qs := math.Sqrt(harmonic * math.Abs(eta*charge*voltage*math.Cos(phis)) / (2 * math.Pi * beta * pc * physics.GeV))
	return sigs * qs * omega0 / (beta * physics.C * math.Abs(eta))
}
