package beam

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesInverse(t *testing.T) {
	r := Rates{S: 2, X: -4, Y: 0}
	assert.Equal(t, 0.25, r.InverseMin())
	assert.True(t, math.IsInf(r.InverseMax(), 1))

	r = Rates{S: 2, X: -4, Y: 1}
	assert.Equal(t, 1.0, r.InverseMax())

	assert.True(t, math.IsInf(Rates{}.InverseMin(), 1))
}

func TestConstantsCoupling(t *testing.T) {
	c := Constants{ExEq: 1e-9, EyEq: 1e-12}
	assert.Equal(t, 1e-12, c.WithCoupling(0).EyTarget)
	assert.InDelta(t, 1e-10, c.WithCoupling(0.1).EyTarget, 1e-25)
	assert.Equal(t, 0.0, c.Coupling, "WithCoupling must not mutate the receiver")
}

func TestConstantsValidate(t *testing.T) {
	assert.NoError(t, Constants{TauX: 1, TauY: 1, TauS: 1}.Validate())
	err := Constants{TauX: 1, TauY: 0, TauS: 1}.Validate()
	assert.ErrorIs(t, err, ErrParameterBounds)
}

func TestSeedValidate(t *testing.T) {
	assert.NoError(t, Seed{Ex: 1, Ey: 1, Sigs: 1}.Validate())
	for _, s := range []Seed{{0, 1, 1}, {1, -1, 1}, {1, 1, math.NaN()}} {
		assert.ErrorIs(t, s.Validate(), ErrInvalidState)
	}
}

func TestTrajectoryAppend(t *testing.T) {
	tr := NewTrajectory(4)
	for i := 0; i < 3; i++ {
		tr.Append(Point{T: float64(i), Ex: 1, Ey: 2, Sigs: 3, Sige: 4})
	}
	require.Equal(t, 3, tr.Len())
	assert.Equal(t, 3, tr.MinLen())
	assert.Equal(t, 2.0, tr.Last().T)
	assert.Equal(t, []float64{16, 16, 16}, tr.Sige2())
}

func TestLastChanges(t *testing.T) {
	tr := NewTrajectory(2)
	tr.Append(Point{Ex: 1, Ey: 2, Sigs: 4, Sige: 1})
	rx, _, _ := tr.LastChanges()
	assert.True(t, math.IsInf(rx, 1))

	tr.Append(Point{Ex: 1.1, Ey: 2, Sigs: 3, Sige: 1})
	rx, ry, rs := tr.LastChanges()
	assert.InDelta(t, 0.1, rx, 1e-12)
	assert.Zero(t, ry)
	assert.InDelta(t, 0.25, rs, 1e-12)
}

func TestCheckAndErr(t *testing.T) {
	p := Point{T: 1, Ex: -1, Ey: math.NaN(), Sigs: 1, Sige: 1}
	v := Check(3, p)
	require.Len(t, v, 2)
	assert.Equal(t, "ex", v[0].Quantity)
	assert.Equal(t, "ey", v[1].Quantity)
	assert.False(t, p.IsValid())

	tr := NewTrajectory(1)
	tr.Append(p)
	res := &Result{Trajectory: tr, Invalid: []Violation{{Step: 0, Quantity: "ex", Value: -1}}}
	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonPhysical))

	var se *SimulationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Step)

	res.Valid = true
	assert.NoError(t, res.Err())
}
