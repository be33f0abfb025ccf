package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/ibsim/internal/integrators"
)

// clampCoupling clips a coupling percentage into [0, 100] and returns it as
// a fraction.
func (s *Simulator) clampCoupling(percent float64) float64 {
	clipped := percent
	switch {
	case math.IsNaN(percent) || percent < 0:
		clipped = 0
	case percent > 100:
		clipped = 100
	}
	if clipped != percent {
		s.logger.Debug("coupling clipped", "requested", percent, "used", clipped)
	}
	return clipped / 100
}

func (s *Simulator) clampThreshold(th float64) float64 {
	if math.IsNaN(th) || th < MinThreshold || th > MaxThreshold {
		s.logger.Debug("threshold out of range, using default", "requested", th, "used", DefaultThreshold)
		return DefaultThreshold
	}
	return th
}

func (s *Simulator) resolveScheme(name string) integrators.Scheme {
	scheme, ok := integrators.ParseScheme(name)
	if !ok && s.diagnostics {
		s.reporter.Warn(fmt.Sprintf("unknown scheme %q, using %s", name, scheme.Name()))
		s.logger.Warn("unknown scheme", "requested", name, "used", scheme.Name())
	}
	return scheme
}
