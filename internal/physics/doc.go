// Package physics holds the physical constants and the relativistic
// kinematics helpers shared by the ring, radiation and IBS packages.
//
// Units follow accelerator convention rather than strict SI:
//
//   - rest masses and energies in GeV ([ElectronMass], [ProtonMass])
//   - lengths in metres, times in seconds
//   - classical radii in metres ([ElectronRadius], [ParticleRadius])
//
// # Ions
//
// Classical radii for arbitrary ions are derived from the proton radius
// scaled by charge²/A, where A is the mass in proton units:
//
//	aatom := physics.AtomicMassRatio(mass)
//	r0 := physics.ParticleRadius(charge, aatom)
//
// For an electron this reduces to [ElectronRadius].
package physics
