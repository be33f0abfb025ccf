// Package beam provides the value types shared by the equilibrium
// integrator and its collaborators.
//
//   - [Point] and [Trajectory]: beam sizes over time (ex, ey, σs, σE)
//   - [Seed]: caller-supplied initial conditions
//   - [Rates]: one IBS growth-rate sample (longitudinal, horizontal, vertical)
//   - [Constants]: damping times and equilibria, fixed for a run
//   - [Result]: trajectory plus termination and validity flags
//
// # Validity
//
// A run never aborts on a non-physical sample. Instead every appended
// sample is checked and violations are collected:
//
//	res, _ := s.RunUntilConverged(ctx, seed, params)
//	if err := res.Err(); err != nil {
//	    // errors.Is(err, beam.ErrNonPhysical)
//	}
//
// # Ownership
//
// A Trajectory is owned by the integrator while a run is in progress and
// handed to the caller in the Result afterwards. Types here are not safe for
// concurrent mutation.
package beam
