package metrics

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
)

// StepSize records the smallest or largest step size of a run in seconds.
type StepSize struct {
	name    string
	largest bool
	value   float64
	samples int
}

func NewMinStepSize() *StepSize {
	return &StepSize{name: "min_dt"}
}

func NewMaxStepSize() *StepSize {
	return &StepSize{name: "max_dt", largest: true}
}

func (s *StepSize) Name() string { return s.name }

func (s *StepSize) Observe(_ int, _ beam.Point, _ beam.Rates, dt float64) {
	switch {
	case s.samples == 0:
		s.value = dt
	case s.largest:
		s.value = math.Max(s.value, dt)
	default:
		s.value = math.Min(s.value, dt)
	}
	s.samples++
}

func (s *StepSize) Value() float64 {
	return s.value
}

func (s *StepSize) Reset() {
	s.value = 0
	s.samples = 0
}
