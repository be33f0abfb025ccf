package machine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
	"github.com/san-kum/ibsim/internal/radiation"
	"github.com/san-kum/ibsim/internal/rf"
)

func toy(voltage float64) *lattice.Ring {
	return lattice.NewRing(map[string]float64{
		lattice.KeyGamma:         100,
		lattice.KeyMomentum:      physics.Momentum(100, physics.ElectronMass),
		lattice.KeyGammaTr:       10,
		lattice.KeyMass:          physics.ElectronMass,
		lattice.KeyCharge:        1,
		lattice.KeyCircumference: 1000,
		lattice.KeyTuneX:         10,
	}, []lattice.RFSystem{{Harmonic: 1, Voltage: voltage}})
}

func smooth(t *testing.T) *lattice.Optics {
	t.Helper()
	o, err := lattice.SmoothRing(1000, 10, 10, 10, 64)
	require.NoError(t, err)
	return o
}

func TestToyMachine(t *testing.T) {
	m, err := New(toy(1e6), smooth(t))
	require.NoError(t, err)

	s := m.Summary()
	assert.InEpsilon(t, 3.789266322696284e-3, s.U0, 1e-9)
	assert.InDelta(t, 3.141592649800527, s.PhiS, 1e-12)
	assert.InEpsilon(t, 5.553149621441577e-3, s.Qs, 1e-9)
	assert.InEpsilon(t, 10459.675964903694, s.OmegaS, 1e-9)

	c, err := m.Constants(0)
	require.NoError(t, err)
	assert.InEpsilon(t, 90878.404, c.TauX, 1e-6)
	assert.InEpsilon(t, 89969.620, c.TauY, 1e-6)
	assert.InEpsilon(t, 44761.005, c.TauS, 1e-6)
	assert.InEpsilon(t, 1.19785e-11, c.Sige2Eq, 1e-4)
	assert.InEpsilon(t, 9.82013e-4, c.SigsEq, 1e-4)
	assert.Equal(t, c.EyEq, c.EyTarget)
}

func TestCouplingTarget(t *testing.T) {
	m, err := New(toy(1e6), smooth(t))
	require.NoError(t, err)

	c, err := m.Constants(0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.Coupling)
	assert.Equal(t, math.Max(0.5*c.ExEq, c.EyEq), c.EyTarget)
}

func TestBucketRoundTrip(t *testing.T) {
	m, err := New(toy(1e6), smooth(t))
	require.NoError(t, err)
	for _, s := range []float64{1e-4, 0.01, 2.5} {
		assert.InEpsilon(t, s, m.BunchLength(m.EnergySpread(s)), 1e-12)
	}
	// single harmonic: the adiabatic estimate agrees with the bucket
	assert.InEpsilon(t, m.EnergySpread(0.01), m.AdiabaticEnergySpread(0.01), 1e-9)
}

func TestVoltageTooLow(t *testing.T) {
	_, err := New(toy(1e-3), smooth(t))
	assert.True(t, errors.Is(err, rf.ErrNoSynchronousPhase), "got %v", err)
}

func TestNoBending(t *testing.T) {
	cols := map[string][]float64{}
	for _, c := range lattice.Columns {
		cols[c] = []float64{1}
	}
	cols[lattice.ColAngle] = []float64{0}
	optics, err := lattice.NewOptics(cols)
	require.NoError(t, err)

	_, err = New(toy(1e6), optics)
	assert.True(t, errors.Is(err, radiation.ErrNoBending), "got %v", err)
}

func TestInvalidRing(t *testing.T) {
	ring := lattice.NewRing(map[string]float64{lattice.KeyGamma: 100}, nil)
	_, err := New(ring, smooth(t))
	assert.Error(t, err)
}

func TestModel(t *testing.T) {
	m, err := New(toy(1e6), smooth(t))
	require.NoError(t, err)

	model, err := m.Model(ibs.Nagaitsev)
	require.NoError(t, err)
	assert.Equal(t, "nagaitsev", model.Name())
	assert.Equal(t, 64, m.IBSRing().Elements())
	assert.InEpsilon(t, m.Summary().Equilibrium.TauX, m.IBSRing().DampingTime, 1e-15)

	_, err = m.Model(ibs.ID(42))
	assert.True(t, errors.Is(err, ibs.ErrUnknownModel))
}
