package beam

// Trajectory holds the time series of a run. All slices always share the
// same length; index 0 is the seed.
type Trajectory struct {
	T    []float64 `json:"t"`
	Ex   []float64 `json:"ex"`
	Ey   []float64 `json:"ey"`
	Sigs []float64 `json:"sigs"`
	Sige []float64 `json:"sige"`
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		T:    make([]float64, 0, capacity),
		Ex:   make([]float64, 0, capacity),
		Ey:   make([]float64, 0, capacity),
		Sigs: make([]float64, 0, capacity),
		Sige: make([]float64, 0, capacity),
	}
}

func (tr *Trajectory) Append(p Point) {
	tr.T = append(tr.T, p.T)
	tr.Ex = append(tr.Ex, p.Ex)
	tr.Ey = append(tr.Ey, p.Ey)
	tr.Sigs = append(tr.Sigs, p.Sigs)
	tr.Sige = append(tr.Sige, p.Sige)
}

func (tr *Trajectory) Len() int { return len(tr.T) }

func (tr *Trajectory) At(i int) Point {
	return Point{T: tr.T[i], Ex: tr.Ex[i], Ey: tr.Ey[i], Sigs: tr.Sigs[i], Sige: tr.Sige[i]}
}

// Last returns the most recent sample. The trajectory must not be empty.
func (tr *Trajectory) Last() Point {
	return tr.At(tr.Len() - 1)
}

// MinLen returns the length of the shortest series, which differs from Len
// only for trajectories assembled by hand, e.g. when read back from disk.
func (tr *Trajectory) MinLen() int {
	n := len(tr.T)
	for _, s := range [][]float64{tr.Ex, tr.Ey, tr.Sigs} {
		if len(s) < n {
			n = len(s)
		}
	}
	return n
}

// Sige2 returns σE² per sample.
func (tr *Trajectory) Sige2() []float64 {
	out := make([]float64, len(tr.Sige))
	for i, s := range tr.Sige {
		out[i] = s * s
	}
	return out
}
