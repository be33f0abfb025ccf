package sim

import (
	"github.com/san-kum/ibsim/internal/beam"
)

// RingModel supplies the per-run constants and the RF mapping between
// energy spread and bunch length.
type RingModel interface {
	Constants(coupling float64) (beam.Constants, error)
	BunchLength(sige float64) float64
	EnergySpread(sigs float64) float64
	AdiabaticEnergySpread(sigs float64) float64
}

// Observer is notified after every appended step.
type Observer interface {
	OnStep(step int, p beam.Point, r beam.Rates, dt float64)
}

// Metric is an Observer that condenses a run into one number.
type Metric interface {
	Name() string
	Observe(step int, p beam.Point, r beam.Rates, dt float64)
	Value() float64
	Reset()
}

// Reporter receives human-readable diagnostics.
type Reporter interface {
	Line(label string, value float64, unit string)
	Warn(msg string)
}

// ConvergenceParams configures RunUntilConverged.
type ConvergenceParams struct {
	ParticleCount float64
	// CouplingPercent is clipped into [0, 100].
	CouplingPercent float64
	// RelativeThreshold outside [1e-6, 1] is replaced by DefaultThreshold.
	RelativeThreshold float64
	Scheme            string
}

// FixedParams configures RunFixedSteps.
type FixedParams struct {
	ParticleCount   float64
	StepCount       int
	StepSize        float64
	CouplingPercent float64
	Scheme          string
}

const (
	DefaultThreshold = 1e-4
	MinThreshold     = 1e-6
	MaxThreshold     = 1.0

	// MaxSteps caps the step budget of a convergence run.
	MaxSteps = 10000
)
