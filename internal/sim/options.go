package sim

import (
	"io"
	"log/slog"
)

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithReporter(r Reporter) Option {
	return func(s *Simulator) {
		if r != nil {
			s.reporter = r
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

// WithDiagnostics enables diagnostic output: the adiabatic energy spread
// line and warnings about substituted parameters.
func WithDiagnostics(on bool) Option {
	return func(s *Simulator) { s.diagnostics = on }
}

// WithRunID tags log records of this simulator.
func WithRunID(id string) Option {
	return func(s *Simulator) { s.runID = id }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopReporter struct{}

func (nopReporter) Line(string, float64, string) {}
func (nopReporter) Warn(string)                  {}
