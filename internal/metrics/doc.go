// Package metrics provides per-step observers that condense a run into
// scalar diagnostics. Each satisfies sim.Metric; values land in
// beam.Result.Metrics under their Name.
package metrics
