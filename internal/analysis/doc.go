// Package analysis post-processes equilibrium runs.
//
//   - [RelativeChanges]: per-step relative changes of ex, ey and sigs
//   - [DetectLimitCycle]: flags a sustained period-2 oscillation at the tail
//     of a run, the usual failure mode of too-large steps
//   - [Sweep]: intensity scan returning the final state per particle count
//
// A converged run has a tail of monotone, shrinking changes:
//
//	ch := analysis.RelativeChanges(res.Trajectory)
//	if lc, ok := analysis.DetectLimitCycle(res.Trajectory, 16); ok {
//	    // the run oscillates with amplitude lc.Amplitude
//	}
package analysis
