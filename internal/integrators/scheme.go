package integrators

import (
	"strings"

	"github.com/san-kum/ibsim/internal/beam"
)

// Scheme advances the beam by one step of size dt using the growth rates
// sampled at p. The returned point carries T+dt and updated Ex, Ey and Sige;
// Sigs is left for the caller to derive through the RF mapping.
type Scheme interface {
	Name() string
	Step(c beam.Constants, p beam.Point, r beam.Rates, dt float64) beam.Point
}

// ParseScheme maps a scheme name to its implementation. Unknown names fall
// back to the derivative scheme with ok set to false.
func ParseScheme(name string) (s Scheme, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "der", "derivative":
		return NewDerivative(), true
	case "rlx", "relaxation":
		return NewRelaxation(), true
	default:
		return NewDerivative(), false
	}
}

// SchemeNames lists the canonical scheme names.
func SchemeNames() []string {
	return []string{"derivative", "relaxation"}
}
