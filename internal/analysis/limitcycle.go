package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ibsim/internal/beam"
)

// LimitCycle describes an oscillation found at the tail of a trajectory.
type LimitCycle struct {
	// Quantity is "ex", "ey" or "sigs".
	Quantity string
	// Amplitude is (max−min)/mean over the window.
	Amplitude float64
	Window    int
}

const minWindow = 4

// DetectLimitCycle reports a period-2 oscillation over the last window
// samples: every successive difference flips sign and the swing in the
// second half of the window is at least half that of the first half.
func DetectLimitCycle(tr *beam.Trajectory, window int) (LimitCycle, bool) {
	n := tr.MinLen()
	if window < minWindow || n < window {
		return LimitCycle{}, false
	}

	for _, q := range []struct {
		name string
		xs   []float64
	}{{"ex", tr.Ex}, {"ey", tr.Ey}, {"sigs", tr.Sigs}} {
		tail := q.xs[n-window : n]
		if !alternates(tail) {
			continue
		}
		half := window / 2
		first, second := swing(tail[:half]), swing(tail[half:])
		if first == 0 || second < 0.5*first {
			continue
		}
		return LimitCycle{
			Quantity:  q.name,
			Amplitude: swing(tail) / math.Abs(floats.Sum(tail)/float64(len(tail))),
			Window:    window,
		}, true
	}
	return LimitCycle{}, false
}

func alternates(xs []float64) bool {
	prev := 0.0
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if d == 0 || (prev != 0 && math.Signbit(d) == math.Signbit(prev)) {
			return false
		}
		prev = d
	}
	return true
}

func swing(xs []float64) float64 {
	return floats.Max(xs) - floats.Min(xs)
}
