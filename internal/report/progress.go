package report

import (
	"fmt"

	"github.com/san-kum/ibsim/internal/beam"
)

// Progress is an observer that reports the step count and the relative
// changes of ex, ey and sigs every Every steps.
type Progress struct {
	out   *Console
	every int
	prev  beam.Point
	seen  bool
}

func NewProgress(out *Console, every int) *Progress {
	if every < 1 {
		every = 1
	}
	return &Progress{out: out, every: every}
}

func (p *Progress) OnStep(step int, pt beam.Point, _ beam.Rates, dt float64) {
	prev := p.prev
	p.prev = pt
	if !p.seen {
		p.seen = true
		return
	}
	if step%p.every != 0 {
		return
	}

	p.out.Text(fmt.Sprintf("step %6d  t=%.4e s  dt=%.3e s  dex=%.2e  dey=%.2e  dsigs=%.2e",
		step, pt.T, dt,
		beam.RelativeChange(pt.Ex, prev.Ex),
		beam.RelativeChange(pt.Ey, prev.Ey),
		beam.RelativeChange(pt.Sigs, prev.Sigs)))
}
