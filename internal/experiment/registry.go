package experiment

import (
	"fmt"

	"github.com/san-kum/ibsim/internal/ibs"
	"github.com/san-kum/ibsim/internal/integrators"
	"github.com/san-kum/ibsim/internal/metrics"
	"github.com/san-kum/ibsim/internal/sim"
)

// ModelInfo describes one growth-rate model for listings.
type ModelInfo struct {
	ID   ibs.ID
	Name string
}

// Models lists every growth-rate model in id order.
func Models() []ModelInfo {
	ids := ibs.IDs()
	out := make([]ModelInfo, len(ids))
	for i, id := range ids {
		out[i] = ModelInfo{ID: id, Name: id.String()}
	}
	return out
}

func Schemes() []string {
	return integrators.SchemeNames()
}

// ParseModels resolves names or numeric ids; an empty list selects every
// model.
func ParseModels(names []string) ([]ibs.ID, error) {
	if len(names) == 0 {
		return ibs.IDs(), nil
	}
	ids := make([]ibs.ID, 0, len(names))
	for _, n := range names {
		id, err := ibs.Parse(n)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DefaultMetrics returns fresh metric instances for one simulator.
func DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewMaxGrowth(),
		metrics.NewEmittanceGrowth(),
		metrics.NewOscillation(),
		metrics.NewMinStepSize(),
		metrics.NewMaxStepSize(),
	}
}
