package beam

import "math"

// Violation records a non-physical quantity produced at a step.
type Violation struct {
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
}

// Check returns the violations found in p.
func Check(step int, p Point) []Violation {
	var out []Violation
	for _, q := range []struct {
		name string
		v    float64
	}{{"ex", p.Ex}, {"ey", p.Ey}, {"sigs", p.Sigs}, {"sige", p.Sige}} {
		if math.IsNaN(q.v) || math.IsInf(q.v, 0) || q.v <= 0 {
			out = append(out, Violation{Step: step, Time: p.T, Quantity: q.name, Value: q.v})
		}
	}
	return out
}

type Result struct {
	Trajectory *Trajectory
	FinalRates Rates
	Constants  Constants
	Scheme     string
	Steps      int
	Budget     int
	Converged  bool
	Valid      bool
	Invalid    []Violation
	Metrics    map[string]float64
}

// Final returns the last sample of the trajectory.
func (r *Result) Final() Point {
	return r.Trajectory.Last()
}

// Err reports the first non-physical sample, or nil for a valid run.
func (r *Result) Err() error {
	if r.Valid || len(r.Invalid) == 0 {
		return nil
	}
	v := r.Invalid[0]
	return &SimulationError{
		Step:    v.Step,
		Time:    v.Time,
		Point:   r.Trajectory.At(v.Step),
		Wrapped: ErrNonPhysical,
	}
}

// RelativeChange returns |a−b|/|b|.
func RelativeChange(a, b float64) float64 {
	return math.Abs((a - b) / b)
}

// LastChanges returns the relative changes of ex, ey and sigs between the
// last two samples. It returns +Inf for a single-sample trajectory.
func (tr *Trajectory) LastChanges() (float64, float64, float64) {
	n := tr.Len()
	if n < 2 {
		inf := math.Inf(1)
		return inf, inf, inf
	}
	return RelativeChange(tr.Ex[n-1], tr.Ex[n-2]),
		RelativeChange(tr.Ey[n-1], tr.Ey[n-2]),
		RelativeChange(tr.Sigs[n-1], tr.Sigs[n-2])
}
