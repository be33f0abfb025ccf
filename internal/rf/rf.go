package rf

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ibsim/internal/physics"
)

// ErrNoSynchronousPhase indicates the Newton search for the synchronous
// phase did not converge, typically because the RF voltage cannot
// compensate the energy loss.
var ErrNoSynchronousPhase = errors.New("rf: synchronous phase not found")

// DefaultPhaseGuess is the Newton starting point, 173 degrees, just below
// π as appropriate above transition.
const DefaultPhaseGuess = 173.0 / 180.0 * math.Pi

const maxNewtonIterations = 100

// voltage returns Σ q·Vk·sin(hk/h0·φ), the energy gain per turn in eV.
func voltage(phi, charge float64, harmonics, voltages []float64) float64 {
	h0 := harmonics[0]
	sum := 0.0
	for i, h := range harmonics {
		sum += charge * voltages[i] * math.Sin(h/h0*phi)
	}
	return sum
}

// slope returns dV/dφ.
func slope(phi, charge float64, harmonics, voltages []float64) float64 {
	h0 := harmonics[0]
	sum := 0.0
	for i, h := range harmonics {
		sum += charge * voltages[i] * h / h0 * math.Cos(h/h0*phi)
	}
	return sum
}

// SynchronousPhase solves V(φ) = target·U0 by Newton iteration from guess.
// target scales the loss and is 1 for a ring without extra losses.
func SynchronousPhase(target, guess, u0, charge float64, harmonics, voltages []float64, tol float64) (float64, error) {
	if len(harmonics) == 0 || len(harmonics) != len(voltages) {
		return 0, fmt.Errorf("rf: %d harmonics for %d voltages", len(harmonics), len(voltages))
	}
	phi := guess
	for i := 0; i < maxNewtonIterations; i++ {
		d := slope(phi, charge, harmonics, voltages)
		if d == 0 {
			break
		}
		step := (voltage(phi, charge, harmonics, voltages) - target*u0) / d
		phi -= step
		if math.Abs(step) < tol {
			return phi, nil
		}
	}
	return 0, fmt.Errorf("%w: no convergence from %.4f rad (U0=%g eV)", ErrNoSynchronousPhase, guess, u0)
}

// SynchrotronTune returns the small-amplitude synchrotron tune Qs for the
// synchronous phase phis. pc is the momentum in GeV.
func SynchrotronTune(charge float64, harmonics, voltages []float64, phis, eta, beta, pc float64) float64 {
	h0 := harmonics[0]
	s := slope(phis, charge, harmonics, voltages)
	return math.Sqrt(h0 * math.Abs(eta*s) / (2 * math.Pi * beta * pc * physics.GeV))
}
