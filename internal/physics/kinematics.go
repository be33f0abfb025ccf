package physics

import "math"

func BetaRel(gamma float64) float64 {
	return math.Sqrt(1 - 1/(gamma*gamma))
}

// AtomicMassRatio expresses a rest mass in GeV in units of the proton mass.
func AtomicMassRatio(mass float64) float64 {
	return mass / ProtonMass
}

// ParticleRadius is the classical radius charge²/A·r_p of an ion with the
// given charge number and atomic mass ratio.
func ParticleRadius(charge, aatom float64) float64 {
	return charge * charge / aatom * ProtonRadius
}

// SlipFactor returns η = 1/γtr² − 1/γ².
func SlipFactor(gammatr, gamma float64) float64 {
	return 1/(gammatr*gammatr) - 1/(gamma*gamma)
}

// RevolutionPeriod returns T0 for a ring of the given circumference.
func RevolutionPeriod(circumference, beta float64) float64 {
	return circumference / (beta * C)
}

// AngularRevolutionFrequency returns ω0 = 2π/T0.
func AngularRevolutionFrequency(circumference, beta float64) float64 {
	return 2 * math.Pi / RevolutionPeriod(circumference, beta)
}

// Momentum returns βγmc² in GeV.
func Momentum(gamma, mass float64) float64 {
	return BetaRel(gamma) * gamma * mass
}
