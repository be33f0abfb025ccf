// Package sim integrates the equilibrium rate equations of a bunch under
// radiation damping, quantum excitation and intra-beam scattering.
//
// A Simulator binds a RingModel (run constants and the RF mapping) to an
// ibs.Model (growth rates). RunUntilConverged derives its step size from the
// fastest time scale and stops when ex, ey and the bunch length all change
// by less than a relative threshold in one step; RunFixedSteps takes a
// prescribed number of steps of fixed size. Both share one stepping loop
// and differ only in their termination predicate.
//
// Non-physical samples never abort a run. They are recorded in
// beam.Result.Invalid and surface through Result.Err.
package sim
