package radiation

import (
	"fmt"
	"math"

	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
)

// Equilibrium is the radiation-only steady state of a ring: amplitude damping
// times in seconds, emittances in metres, σE² (relative) and bunch length.
type Equilibrium struct {
	TauX    float64
	TauY    float64
	TauS    float64
	ExEq    float64
	EyEq    float64
	Sige2Eq float64
	SigsEq  float64
}

// EnergyLoss returns the energy radiated per turn in eV.
func EnergyLoss(ring *lattice.Ring, i2, aatom float64) float64 {
	gamma := ring.Gamma()
	beta := physics.BetaRel(gamma)
	r0 := physics.ParticleRadius(ring.Charge(), aatom)
	return 2.0 / 3.0 * r0 * ring.Mass() * physics.GeV * math.Pow(beta, 3) * math.Pow(gamma, 4) * i2
}

// PartitionNumbers returns (Jx, Jy, Js) from the integrals.
func PartitionNumbers(in Integrals) (float64, float64, float64) {
	d := in.I4x / in.I2
	return 1 - d, 1, 2 + d
}

// Solve derives damping times and radiation equilibria. omegaS is the
// synchrotron angular frequency and eta the slip factor, both needed for the
// equilibrium bunch length.
func Solve(ring *lattice.Ring, in Integrals, aatom, omegaS, eta float64) (Equilibrium, error) {
	if in.I2 == 0 {
		return Equilibrium{}, ErrNoBending
	}
	gamma := ring.Gamma()
	beta := physics.BetaRel(gamma)
	energy := gamma * ring.Mass() * physics.GeV
	t0 := physics.RevolutionPeriod(ring.Circumference(), beta)

	u0 := EnergyLoss(ring, in.I2, aatom)
	jx, jy, js := PartitionNumbers(in)
	if jx <= 0 || js <= 0 {
		return Equilibrium{}, fmt.Errorf("radiation: anti-damping lattice (Jx=%.4g, Js=%.4g)", jx, js)
	}

	cq := physics.Cq(ring.Mass())
	eq := Equilibrium{
		TauX:    2 * energy * t0 / (jx * u0),
		TauY:    2 * energy * t0 / (jy * u0),
		TauS:    2 * energy * t0 / (js * u0),
		ExEq:    cq * gamma * gamma * in.I5x / (jx * in.I2),
		EyEq:    cq*gamma*gamma*in.I5y/(jy*in.I2) + 13.0/55.0*cq*in.IBetaY/(jy*in.I2),
		Sige2Eq: cq * gamma * gamma * in.I3 / (js * in.I2),
	}
	eq.SigsEq = beta * physics.C * math.Abs(eta) * math.Sqrt(eq.Sige2Eq) / omegaS
	return eq, nil
}
