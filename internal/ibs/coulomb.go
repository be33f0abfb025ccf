package ibs

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
)

// coulombLog selects how the Coulomb logarithm is evaluated.
type coulombLog int

const (
	// averagedLog uses lattice-averaged beam sizes, floored at 1.
	averagedLog coulombLog = iota
	// tailCutLog removes collisions rarer than once per damping time,
	// evaluated per element.
	tailCutLog
	// debyeAveragedLog is the Debye-screened log on averaged optics.
	debyeAveragedLog
	// debyeLog is the Debye-screened log per element.
	debyeLog
)

func (k coulombLog) uniform() bool {
	return k == averagedLog || k == debyeAveragedLog
}

// ringLog returns the single log value for the uniform kinds.
func (r Ring) ringLog(k coulombLog, in beam.Input) float64 {
	if k == debyeAveragedLog {
		return r.debye(in, r.avg.BetX, r.avg.BetY, r.avg.DX)
	}
	sy := math.Sqrt(in.Ey * r.avg.BetY)
	return math.Max(math.Log(sy*r.Gamma*r.Gamma*in.Ex/(r.R0*r.avg.BetX)), 1)
}

// elementLog returns the log at element e. Uniform kinds ignore e.
func (r Ring) elementLog(k coulombLog, in beam.Input, e lattice.Element) float64 {
	switch k {
	case tailCutLog:
		return r.tailCut(in, e)
	case debyeLog:
		return r.debye(in, e.BetX, e.BetY, e.DX)
	default:
		return r.ringLog(k, in)
	}
}

// tailCut bounds the impact parameter from below by the larger of the
// classical distance of closest approach and the distance at which a
// particle collides once per horizontal damping time. Without a damping
// time the plain classical bound is used.
func (r Ring) tailCut(in beam.Input, e lattice.Element) float64 {
	sigx := math.Sqrt(e.BetX*in.Ex + sq(e.DX*in.Sige))
	sigy := math.Sqrt(e.BetY*in.Ey + sq(e.DY*in.Sige))
	g2 := r.Gamma * r.Gamma

	bmin := r.R0 * e.BetX / (g2 * in.Ex)
	if r.DampingTime > 0 {
		density := in.N / (8 * math.Pow(math.Pi, 1.5) * sigx * sigy * in.Sigs * r.Gamma)
		velocity := r.Beta * r.Gamma * physics.C * math.Sqrt(in.Ex/e.BetX)
		tau := r.DampingTime / r.Gamma
		bmin = math.Max(bmin, 1/math.Sqrt(math.Pi*density*velocity*tau))
	}
	return math.Max(math.Log(sigy/bmin), 1)
}

// debye is the Debye-screened log in cgs units with the transverse beam
// temperature in eV. Masses are in GeV.
func (r Ring) debye(in beam.Input, betx, bety, dx float64) float64 {
	sxcm := 100 * math.Sqrt(in.Ex*betx+sq(dx*in.Sige))
	sycm := 100 * math.Sqrt(in.Ey*bety)
	stcm := 100 * in.Sigs
	vol := 8 * math.Sqrt(math.Pi*math.Pi*math.Pi) * sxcm * sycm * stcm
	dens := in.N / vol

	etrans := 5e8 * (r.Gamma*r.Gamma*r.Mass - r.Mass) * (in.Ex / betx)
	tempev := 2 * etrans

	debye := 743.4 * math.Sqrt(tempev/dens) / math.Abs(r.Charge)
	rmax := math.Min(sxcm, debye)
	rmincl := 1.44e-7 * r.Charge * r.Charge / tempev
	rminqm := 6.582119569e-25 * physics.C * 1e5 / (2 * math.Sqrt(2e-3*etrans*r.Mass))
	return math.Log(rmax / math.Max(rmincl, rminqm))
}

func sq(x float64) float64 { return x * x }
