// Package radiation computes synchrotron radiation integrals, the energy
// lost per turn and the radiation-only equilibrium of a ring.
package radiation
