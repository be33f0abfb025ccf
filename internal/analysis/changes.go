package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ibsim/internal/beam"
)

// Changes holds |x[i+1]−x[i]|/|x[i]| per quantity; each slice has one entry
// fewer than the trajectory.
type Changes struct {
	Ex   []float64
	Ey   []float64
	Sigs []float64
}

func RelativeChanges(tr *beam.Trajectory) Changes {
	n := tr.MinLen()
	if n < 2 {
		return Changes{}
	}
	return Changes{
		Ex:   relative(tr.Ex[:n]),
		Ey:   relative(tr.Ey[:n]),
		Sigs: relative(tr.Sigs[:n]),
	}
}

func relative(xs []float64) []float64 {
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = beam.RelativeChange(xs[i], xs[i-1])
	}
	return out
}

// Max returns the largest change over the three quantities at each step.
func (c Changes) Max() []float64 {
	out := make([]float64, len(c.Ex))
	for i := range out {
		out[i] = floats.Max([]float64{c.Ex[i], c.Ey[i], c.Sigs[i]})
	}
	return out
}

// Len is the number of steps covered.
func (c Changes) Len() int { return len(c.Ex) }
