// Package machine derives the run constants of a storage ring: radiation
// integrals, energy loss, synchronous phase, synchrotron frequency, damping
// times and radiation equilibria. A Machine is the ring model consumed by
// the simulator.
package machine
