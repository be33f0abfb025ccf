package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/sim"
	"github.com/san-kum/ibsim/internal/viz"
)

var _ sim.Observer = (*Observer)(nil)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelSteps(t *testing.T) {
	m := NewModel("nagaitsev", 10, viz.ThemeMinimal, nil)

	m, _ = update(t, m, StepMsg{Step: 1, Point: beam.Point{T: 1, Ex: 1e-9, Ey: 1e-11, Sigs: 0.01}, Dt: 0.5})
	m, _ = update(t, m, StepMsg{Step: 2, Point: beam.Point{T: 2, Ex: 2e-9, Ey: 1e-11, Sigs: 0.01}, Dt: 0.5})

	assert.Equal(t, 2, m.step)
	assert.Len(t, m.history[0], 2)

	view := m.View()
	assert.Contains(t, view, "nagaitsev")
	assert.Contains(t, view, "2/10")
	assert.Contains(t, view, "Δ 1.00e+00")
}

func TestModelHistoryBounded(t *testing.T) {
	m := NewModel("x", 0, viz.ThemeMinimal, nil)
	for i := 1; i <= historyLen+10; i++ {
		m, _ = update(t, m, StepMsg{Step: i, Point: beam.Point{Ex: float64(i), Ey: 1, Sigs: 1}})
	}
	assert.Len(t, m.history[0], historyLen)
	assert.Equal(t, float64(historyLen+10), m.history[0][historyLen-1])
}

func TestModelDone(t *testing.T) {
	m := NewModel("x", 5, viz.ThemeMinimal, nil)
	res := &beam.Result{Converged: true}

	m, cmd := update(t, m, DoneMsg{Result: res})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	got, err := m.Result()
	assert.NoError(t, err)
	assert.Same(t, res, got)
	assert.Contains(t, m.View(), "done")

	m, _ = update(t, NewModel("x", 5, viz.ThemeMinimal, nil), DoneMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "failed: boom")
}

func TestModelQuitCancels(t *testing.T) {
	cancelled := false
	m := NewModel("x", 5, viz.ThemeMinimal, func() { cancelled = true })

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, cancelled)
}

func TestObserverThrottles(t *testing.T) {
	var sent []tea.Msg
	o := NewObserver(func(msg tea.Msg) { sent = append(sent, msg) }, time.Hour)

	for i := 1; i <= 5; i++ {
		o.OnStep(i, beam.Point{}, beam.Rates{}, 1)
	}
	require.Len(t, sent, 1)
	assert.Equal(t, 1, sent[0].(StepMsg).Step)
}

func TestWatch(t *testing.T) {
	want := &beam.Result{Steps: 3}
	run := func(ctx context.Context, obs sim.Observer) (*beam.Result, error) {
		for i := 1; i <= 3; i++ {
			obs.OnStep(i, beam.Point{Ex: 1, Ey: 1, Sigs: 1}, beam.Rates{}, 1)
		}
		return want, nil
	}

	var out bytes.Buffer
	got, err := Watch(context.Background(), "toy", 3, viz.ThemeMinimal, run,
		tea.WithInput(strings.NewReader("")), tea.WithOutput(&out), tea.WithoutRenderer())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
