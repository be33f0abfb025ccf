package physics

import "math"

// Physical constants in the units used throughout the module: masses and
// energies in GeV, lengths in metres, times in seconds.
const (
	C = 299792458.0

	ElectronMass = 0.51099895000e-3
	ProtonMass   = 0.93827208816

	ElectronRadius = 2.8179403262e-15
	ProtonRadius   = ElectronRadius * ElectronMass / ProtonMass

	// HbarC is the reduced Planck constant times c, in GeV·m.
	HbarC = 1.973269804e-16

	// GeV converts GeV to eV.
	GeV = 1e9
)

// Cq is the quantum excitation constant 55/(32√3)·ħc/mc² for a particle of
// the given rest mass in GeV.
func Cq(mass float64) float64 {
	return 55.0 / (32.0 * math.Sqrt(3)) * HbarC / mass
}
