package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/sim"
)

var (
	_ sim.Metric = (*MaxGrowth)(nil)
	_ sim.Metric = (*EmittanceGrowth)(nil)
	_ sim.Metric = (*Oscillation)(nil)
	_ sim.Metric = (*StepSize)(nil)
)

func TestMaxGrowth(t *testing.T) {
	m := NewMaxGrowth()
	m.Observe(1, beam.Point{}, beam.Rates{S: -5, X: -3, Y: -4}, 1)
	assert.Equal(t, -3.0, m.Value())

	m.Observe(2, beam.Point{}, beam.Rates{S: 2, X: 7, Y: 1}, 1)
	m.Observe(3, beam.Point{}, beam.Rates{S: 1, X: 1, Y: 1}, 1)
	assert.Equal(t, 7.0, m.Value())

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestEmittanceGrowth(t *testing.T) {
	e := NewEmittanceGrowth()
	for _, ex := range []float64{1, 3, 2} {
		e.Observe(0, beam.Point{Ex: ex}, beam.Rates{}, 1)
	}
	assert.Equal(t, 3.0, e.Value())

	e.Reset()
	assert.Zero(t, e.Value())
}

func TestOscillation(t *testing.T) {
	tests := []struct {
		name string
		ex   []float64
		want float64
	}{
		{"monotone", []float64{1, 2, 3, 4}, 0},
		{"period two", []float64{1, 2, 1, 2, 1}, 3},
		{"flat steps ignored", []float64{1, 2, 2, 1}, 1},
		{"single sample", []float64{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOscillation()
			for i, ex := range tt.ex {
				o.Observe(i, beam.Point{Ex: ex}, beam.Rates{}, 1)
			}
			assert.Equal(t, tt.want, o.Value())
		})
	}
}

func TestStepSize(t *testing.T) {
	lo, hi := NewMinStepSize(), NewMaxStepSize()
	for _, dt := range []float64{0.5, 0.25, 2} {
		lo.Observe(0, beam.Point{}, beam.Rates{}, dt)
		hi.Observe(0, beam.Point{}, beam.Rates{}, dt)
	}
	assert.Equal(t, 0.25, lo.Value())
	assert.Equal(t, 2.0, hi.Value())
	assert.Equal(t, "min_dt", lo.Name())
	assert.Equal(t, "max_dt", hi.Name())

	lo.Reset()
	assert.Zero(t, lo.Value())
}
