package sim_test

import (
	"sync"

	"github.com/san-kum/ibsim/internal/beam"
)

// stubRing is a ring with millisecond damping times and a linear RF
// mapping sigs = k·sige.
type stubRing struct {
	c beam.Constants
	k float64
}

func newStubRing() *stubRing {
	return &stubRing{
		c: beam.Constants{
			TauX: 1e-3, TauY: 1.5e-3, TauS: 2e-3,
			ExEq: 1e-9, EyEq: 1e-11, Sige2Eq: 1e-6,
		},
		k: 10,
	}
}

func (r *stubRing) Constants(coupling float64) (beam.Constants, error) {
	return r.c.WithCoupling(coupling), nil
}

func (r *stubRing) BunchLength(sige float64) float64           { return r.k * sige }
func (r *stubRing) EnergySpread(sigs float64) float64          { return sigs / r.k }
func (r *stubRing) AdiabaticEnergySpread(sigs float64) float64 { return 1.01 * sigs / r.k }

// constModel returns the same rates for every input.
type constModel struct {
	name  string
	rates beam.Rates
}

func (m *constModel) Name() string                { return m.name }
func (m *constModel) Rates(beam.Input) beam.Rates { return m.rates }

type recordingObserver struct {
	mu    sync.Mutex
	steps []int
	dts   []float64
}

func (o *recordingObserver) OnStep(step int, _ beam.Point, _ beam.Rates, dt float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, step)
	o.dts = append(o.dts, dt)
}

type countingMetric struct{ n int }

func (m *countingMetric) Name() string                                 { return "count" }
func (m *countingMetric) Observe(int, beam.Point, beam.Rates, float64) { m.n++ }
func (m *countingMetric) Value() float64                               { return float64(m.n) }
func (m *countingMetric) Reset()                                       { m.n = 0 }

type recordingReporter struct {
	lines []string
	warns []string
}

func (r *recordingReporter) Line(label string, _ float64, _ string) { r.lines = append(r.lines, label) }
func (r *recordingReporter) Warn(msg string)                        { r.warns = append(r.warns, msg) }

var stubSeed = beam.Seed{Ex: 2e-9, Ey: 1e-10, Sigs: 0.05}
