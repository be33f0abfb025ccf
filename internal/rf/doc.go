// Package rf solves the longitudinal RF problem of a ring: synchronous
// phase, synchrotron tune and the mapping between bunch length and energy
// spread of a matched bunch.
package rf
