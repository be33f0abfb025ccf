package metrics

import "github.com/san-kum/ibsim/internal/beam"

// Oscillation counts sign changes between successive horizontal emittance
// steps. A count close to the number of steps indicates a period-2 limit
// cycle rather than monotone convergence.
type Oscillation struct {
	name    string
	prevEx  float64
	prevDir int
	flips   int
	samples int
}

func NewOscillation() *Oscillation {
	return &Oscillation{name: "oscillation"}
}

func (o *Oscillation) Name() string {
	return o.name
}

func (o *Oscillation) Observe(_ int, p beam.Point, _ beam.Rates, _ float64) {
	if o.samples > 0 {
		dir := 0
		switch {
		case p.Ex > o.prevEx:
			dir = 1
		case p.Ex < o.prevEx:
			dir = -1
		}
		if dir != 0 && o.prevDir != 0 && dir != o.prevDir {
			o.flips++
		}
		if dir != 0 {
			o.prevDir = dir
		}
	}
	o.prevEx = p.Ex
	o.samples++
}

func (o *Oscillation) Value() float64 {
	return float64(o.flips)
}

func (o *Oscillation) Reset() {
	o.prevEx = 0
	o.prevDir = 0
	o.flips = 0
	o.samples = 0
}
