package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/sim"
	"github.com/san-kum/ibsim/internal/viz"
)

const historyLen = 60

// StepMsg carries one observed step into the program.
type StepMsg struct {
	Step  int
	Point beam.Point
	Rates beam.Rates
	Dt    float64
}

// DoneMsg ends the watch with the run outcome.
type DoneMsg struct {
	Result *beam.Result
	Err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of the watch view.
type Model struct {
	title  string
	budget int
	styles viz.Styles
	cancel context.CancelFunc

	step    int
	last    beam.Point
	prev    beam.Point
	rates   beam.Rates
	dt      float64
	history [3][]float64
	frame   int

	result *beam.Result
	err    error
	done   bool
	width  int
}

func NewModel(title string, budget int, theme viz.Theme, cancel context.CancelFunc) Model {
	return Model{
		title:  title,
		budget: budget,
		styles: viz.NewStyles(theme),
		cancel: cancel,
		width:  80,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, tick()
	case StepMsg:
		if m.step > 0 {
			m.prev = m.last
		}
		m.step = msg.Step
		m.last = msg.Point
		m.rates = msg.Rates
		m.dt = msg.Dt
		for i, v := range [...]float64{msg.Point.Ex, msg.Point.Ey, msg.Point.Sigs} {
			m.history[i] = appendBounded(m.history[i], v)
		}
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func appendBounded(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyLen {
		xs = xs[len(xs)-historyLen:]
	}
	return xs
}

// Result returns the outcome once the run finished.
func (m Model) Result() (*beam.Result, error) { return m.result, m.err }

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	status := viz.AnimatedSpinner(m.frame) + " running"
	if m.done {
		status = s.Good.Render("done")
		if m.err != nil {
			status = s.Bad.Render("failed: " + m.err.Error())
		} else if m.result != nil && !m.result.Converged {
			status = s.Warn.Render("stopped without convergence")
		}
	}
	b.WriteString(s.Header.Render(m.title) + "  " + status + "\n\n")

	fraction := 0.0
	if m.budget > 0 {
		fraction = float64(m.step) / float64(m.budget)
	}
	fmt.Fprintf(&b, "%s %s %d/%d\n\n", s.Label.Render("step"), s.ProgressBar(fraction, 30), m.step, m.budget)

	names := [...]string{"ex", "ey", "sigs"}
	values := [...]float64{m.last.Ex, m.last.Ey, m.last.Sigs}
	prevs := [...]float64{m.prev.Ex, m.prev.Ey, m.prev.Sigs}
	for i, name := range names {
		change := "      -"
		if prevs[i] != 0 {
			change = fmt.Sprintf("%.2e", beam.RelativeChange(values[i], prevs[i]))
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			s.Label.Render(fmt.Sprintf("%-5s", name)),
			s.Value.Render(fmt.Sprintf("%12.5e", values[i])),
			s.Muted.Render("Δ "+change),
			s.Sparkline(m.history[i], 30))
	}

	fmt.Fprintf(&b, "\n%s t=%.4e s  dt=%.3e s\n", s.Label.Render("time"), m.last.T, m.dt)
	fmt.Fprintf(&b, "%s S=%.3e X=%.3e Y=%.3e 1/s\n", s.Label.Render("rates"), m.rates.S, m.rates.X, m.rates.Y)
	b.WriteString("\n" + s.Muted.Render("q: stop") + "\n")
	return b.String()
}

// Observer forwards steps to a running program, at most one per interval.
type Observer struct {
	send     func(tea.Msg)
	interval time.Duration
	last     time.Time
}

func NewObserver(send func(tea.Msg), interval time.Duration) *Observer {
	return &Observer{send: send, interval: interval}
}

func (o *Observer) OnStep(step int, p beam.Point, r beam.Rates, dt float64) {
	now := time.Now()
	if now.Sub(o.last) < o.interval {
		return
	}
	o.last = now
	o.send(StepMsg{Step: step, Point: p, Rates: r, Dt: dt})
}

// RunFunc performs a run reporting every step to obs.
type RunFunc func(ctx context.Context, obs sim.Observer) (*beam.Result, error)

// Watch runs fn while showing its progress. Quitting the program cancels
// the run; the partial result is returned with the context error.
func Watch(ctx context.Context, title string, budget int, theme viz.Theme, fn RunFunc, opts ...tea.ProgramOption) (*beam.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, budget, theme, cancel), opts...)

	outcome := make(chan DoneMsg, 1)
	go func() {
		res, err := fn(ctx, NewObserver(p.Send, 50*time.Millisecond))
		outcome <- DoneMsg{Result: res, Err: err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	_, err := p.Run()
	cancel()
	done := <-outcome
	if err != nil {
		return done.Result, err
	}
	return done.Result, done.Err
}
