// Package ibs implements the intra-beam scattering growth-rate models.
//
// Every model maps the current beam state (particle count, emittances,
// bunch length and energy spread) to three growth rates in 1/s, using the
// amplitude convention 1/σ dσ/dt for the longitudinal plane and
// 1/√ε d√ε/dt for the transverse planes. Models are selected by the ids
// 1 through 13:
//
//	1  piwinski-smooth            Piwinski on lattice-averaged optics
//	2  piwinski-lattice           Piwinski element by element, D²/β
//	3  piwinski-lattice-modified  Piwinski element by element, H
//	4  nagaitsev                  Carlson R_D closed form
//	5  nagaitsev-tailcut          as 4 with a tail-cut Coulomb log
//	6  madx                       Bjorken-Mtingwa, Debye log on averaged optics
//	7  madx-tailcut               as 6 with a tail-cut Coulomb log
//	8  bjorken-mtingwa-2          Bane's high-energy approximation
//	9  bjorken-mtingwa            full Bjorken-Mtingwa
//	10 bjorken-mtingwa-tailcut    as 9 with a tail-cut Coulomb log
//	11 conte-martini              Bjorken-Mtingwa without vertical dispersion
//	12 conte-martini-tailcut      as 11 with a tail-cut Coulomb log
//	13 madx-ibs                   Bjorken-Mtingwa, Debye log per element
//
// Lattice sums are evaluated concurrently over elements and reduced in
// element order, so results are reproducible run to run.
package ibs
