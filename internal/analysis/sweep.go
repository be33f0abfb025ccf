package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/sim"
)

// SweepPoint is the outcome of one particle count.
type SweepPoint struct {
	Particles float64        `json:"particles"`
	Final     beam.Point     `json:"final"`
	Rates     beam.Rates     `json:"rates"`
	Steps     int            `json:"steps"`
	Converged bool           `json:"converged"`
	Constants beam.Constants `json:"constants"`
}

// Builder returns a fresh simulator for a particle count.
type Builder func(particles float64) (*sim.Simulator, error)

// Sweep runs one convergence run per entry of values, in order. p.ParticleCount
// is overwritten for each run. Cancellation stops the scan and returns the
// points finished so far.
func Sweep(ctx context.Context, build Builder, seed beam.Seed, p sim.ConvergenceParams, values []float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(values))

	for _, n := range values {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		s, err := build(n)
		if err != nil {
			return points, fmt.Errorf("build simulator for N=%g: %w", n, err)
		}

		p.ParticleCount = n
		res, err := s.RunUntilConverged(ctx, seed, p)
		if err != nil {
			return points, fmt.Errorf("sweep N=%g: %w", n, err)
		}

		points = append(points, SweepPoint{
			Particles: n,
			Final:     res.Final(),
			Rates:     res.FinalRates,
			Steps:     res.Steps,
			Converged: res.Converged,
			Constants: res.Constants,
		})
	}

	return points, nil
}
