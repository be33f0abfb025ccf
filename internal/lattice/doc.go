// Package lattice provides the ring description consumed by the radiation,
// RF and IBS packages.
//
// A [Ring] is a keyed set of scalar parameters named after twiss table
// header keys (GAMMA, PC, GAMMATR, MASS, CHARGE, LENGTH, Q1, Q2) plus the
// RF systems. An [Optics] maps column names (L, BETX, BETY, DX, ...) to one
// value per element.
//
// Optics come either from a TFS-style table ([ReadTable]) or from the
// [SmoothRing] generator, which models a ring of identical bending cells.
package lattice
