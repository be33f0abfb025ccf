package sim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/ibs"
)

// Ensemble runs several growth-rate models on the same ring and seed
// concurrently. Each member gets its own Simulator; only the logger is
// shared.
type Ensemble struct {
	ring    RingModel
	models  []ibs.Model
	logger  *slog.Logger
	metrics func() []Metric
}

func NewEnsemble(ring RingModel, models []ibs.Model, logger *slog.Logger) *Ensemble {
	if logger == nil {
		logger = discardLogger()
	}
	return &Ensemble{ring: ring, models: models, logger: logger}
}

// WithMetrics gives every member a fresh set of metrics from factory.
func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.metrics = factory
	return e
}

// Run returns one result per model, in the order the models were given.
func (e *Ensemble) Run(ctx context.Context, seed beam.Seed, p ConvergenceParams) ([]*beam.Result, error) {
	results := make([]*beam.Result, len(e.models))
	errs := make([]error, len(e.models))

	var wg sync.WaitGroup
	for i, m := range e.models {
		wg.Add(1)
		go func(idx int, model ibs.Model) {
			defer wg.Done()

			s := New(e.ring, model, WithLogger(e.logger.With("model", model.Name())))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			results[idx], errs[idx] = s.RunUntilConverged(ctx, seed, p)
		}(i, m)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
