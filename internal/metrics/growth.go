package metrics

import (
	"math"

	"github.com/san-kum/ibsim/internal/beam"
)

// MaxGrowth tracks the largest growth rate seen in any plane, in 1/s.
type MaxGrowth struct {
	name    string
	max     float64
	samples int
}

func NewMaxGrowth() *MaxGrowth {
	return &MaxGrowth{name: "max_growth_rate"}
}

func (m *MaxGrowth) Name() string {
	return m.name
}

func (m *MaxGrowth) Observe(_ int, _ beam.Point, r beam.Rates, _ float64) {
	v := math.Max(r.S, math.Max(r.X, r.Y))
	if m.samples == 0 || v > m.max {
		m.max = v
	}
	m.samples++
}

func (m *MaxGrowth) Value() float64 {
	return m.max
}

func (m *MaxGrowth) Reset() {
	m.max = 0
	m.samples = 0
}

// EmittanceGrowth is the largest ratio of the horizontal emittance to the
// first observed value.
type EmittanceGrowth struct {
	name    string
	initial float64
	max     float64
	samples int
}

func NewEmittanceGrowth() *EmittanceGrowth {
	return &EmittanceGrowth{name: "emittance_growth"}
}

func (e *EmittanceGrowth) Name() string { return e.name }

func (e *EmittanceGrowth) Observe(_ int, p beam.Point, _ beam.Rates, _ float64) {
	if e.samples == 0 {
		e.initial = p.Ex
	}
	e.samples++

	if e.initial != 0 {
		e.max = math.Max(e.max, p.Ex/e.initial)
	}
}

func (e *EmittanceGrowth) Value() float64 {
	return e.max
}

func (e *EmittanceGrowth) Reset() {
	e.initial = 0
	e.max = 0
	e.samples = 0
}
