package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ibsim/internal/analysis"
	"github.com/san-kum/ibsim/internal/config"
	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/lattice"
)

func TestModels(t *testing.T) {
	ms := Models()
	require.Len(t, ms, 13)
	assert.Equal(t, ibs.PiwinskiSmooth, ms[0].ID)
	assert.Equal(t, "nagaitsev", ms[3].Name)
	assert.Contains(t, Schemes(), "relaxation")
}

func TestParseModels(t *testing.T) {
	ids, err := ParseModels(nil)
	require.NoError(t, err)
	assert.Len(t, ids, 13)

	ids, err = ParseModels([]string{"4", "madx"})
	require.NoError(t, err)
	assert.Equal(t, []ibs.ID{ibs.Nagaitsev, ibs.MadX}, ids)

	_, err = ParseModels([]string{"nope"})
	assert.ErrorIs(t, err, ibs.ErrUnknownModel)
}

func TestDefaultMetricsAreFresh(t *testing.T) {
	a, b := DefaultMetrics(), DefaultMetrics()
	require.Len(t, a, len(b))
	for i := range a {
		assert.NotSame(t, a[i], b[i])
	}
}

func TestNew(t *testing.T) {
	e, err := New(config.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ibs.Nagaitsev, e.ModelID())
	assert.Equal(t, "nagaitsev", e.Model().Name())
	assert.Equal(t, 64, e.Machine().Optics().Len())
}

func TestNewErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Model = "bogus"
	_, err := New(cfg)
	assert.ErrorIs(t, err, ibs.ErrUnknownModel)

	cfg = config.DefaultConfig()
	cfg.Ring.RF = nil
	_, err = New(cfg)
	assert.ErrorIs(t, err, lattice.ErrInvalidRing)
}

func TestBuildLatticeFromTable(t *testing.T) {
	table := `@ GAMMA %le 120
@ NAME %s "toy"
* NAME L BETX BETY DX ANGLE
$ %s %le %le %le %le %le
"B1" 15.625 15.9 15.9 1.59 0.09817477
"B2" 15.625 15.9 15.9 1.59 0.09817477
`
	path := filepath.Join(t.TempDir(), "ring.tfs")
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))

	cfg := config.DefaultConfig()
	cfg.Lattice = config.LatticeConfig{Table: path}

	ring, optics, err := BuildLattice(cfg)
	require.NoError(t, err)
	assert.Equal(t, 120.0, ring.Gamma())
	assert.Equal(t, 10.0, ring.GammaTr(), "missing header keys come from the config")
	assert.Equal(t, 2, optics.Len())
}

func TestRunModes(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	e, err := New(cfg)
	require.NoError(t, err)
	res, err := e.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Contains(t, res.Metrics, "max_growth_rate")
	assert.Contains(t, res.Metrics, "oscillation")

	cfg = config.DefaultConfig()
	cfg.Run.Mode = config.ModeFixed
	cfg.Run.Steps = 5
	cfg.Run.Dt = 1e-4
	e, err = New(cfg)
	require.NoError(t, err)
	res, err = e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Steps)
	assert.Equal(t, 6, res.Trajectory.Len())
}

func TestEnsemble(t *testing.T) {
	e, err := New(config.DefaultConfig())
	require.NoError(t, err)

	ens, err := e.Ensemble([]ibs.ID{ibs.Nagaitsev, ibs.BjorkenMtingwa}, nil)
	require.NoError(t, err)

	results, err := ens.Run(context.Background(), e.Config().Seed(), e.Config().ConvergenceParams())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InEpsilon(t, results[0].Final().Ex, results[1].Final().Ex, 1e-4)
	assert.Contains(t, results[1].Metrics, "max_dt")
}

func TestSweep(t *testing.T) {
	e, err := New(config.DefaultConfig())
	require.NoError(t, err)

	points, err := e.Sweep(context.Background(), []float64{1e11, 2e11})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Converged)
	assert.False(t, points[1].Converged)
	assert.Less(t, points[0].Final.Ex, points[1].Final.Ex, "more particles, more growth")
}

// At twice the toy intensity the derivative update with dt = tau/2 settles
// into a period-2 oscillation instead of converging.
func TestLimitCycle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Beam.Particles = 2e11
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, res.Budget, res.Steps)
	assert.Greater(t, res.Metrics["oscillation"], 100.0)

	lc, ok := analysis.DetectLimitCycle(res.Trajectory, 16)
	require.True(t, ok)
	assert.Equal(t, "ex", lc.Quantity)
	assert.InDelta(t, 0.056, lc.Amplitude, 0.01)
}
