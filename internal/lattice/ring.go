package lattice

import (
	"fmt"
	"sort"
)

// Ring parameter keys as they appear in a twiss table header.
const (
	KeyGamma         = "GAMMA"
	KeyMomentum      = "PC"
	KeyGammaTr       = "GAMMATR"
	KeyMass          = "MASS"
	KeyCharge        = "CHARGE"
	KeyCircumference = "LENGTH"
	KeyTuneX         = "Q1"
	KeyTuneY         = "Q2"
)

var requiredKeys = []string{
	KeyGamma, KeyMomentum, KeyGammaTr, KeyMass, KeyCharge, KeyCircumference, KeyTuneX,
}

// RFSystem is one RF cavity system: harmonic number and peak voltage in volts.
type RFSystem struct {
	Harmonic float64 `yaml:"harmonic" json:"harmonic"`
	Voltage  float64 `yaml:"voltage" json:"voltage"`
}

// Ring is the keyed set of scalar ring parameters plus the RF systems.
// It is read-only once built.
type Ring struct {
	params map[string]float64
	rf     []RFSystem
}

func NewRing(params map[string]float64, rf []RFSystem) *Ring {
	p := make(map[string]float64, len(params))
	for k, v := range params {
		p[k] = v
	}
	systems := make([]RFSystem, len(rf))
	copy(systems, rf)
	return &Ring{params: p, rf: systems}
}

// Get returns a named scalar; every key is expected to be present.
func (r *Ring) Get(name string) (float64, error) {
	v, ok := r.params[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, name)
	}
	return v, nil
}

func (r *Ring) Has(name string) bool {
	_, ok := r.params[name]
	return ok
}

func (r *Ring) Gamma() float64         { return r.params[KeyGamma] }
func (r *Ring) Momentum() float64      { return r.params[KeyMomentum] }
func (r *Ring) GammaTr() float64       { return r.params[KeyGammaTr] }
func (r *Ring) Mass() float64          { return r.params[KeyMass] }
func (r *Ring) Charge() float64        { return r.params[KeyCharge] }
func (r *Ring) Circumference() float64 { return r.params[KeyCircumference] }
func (r *Ring) Tune() float64          { return r.params[KeyTuneX] }

// VerticalTune falls back to the horizontal tune when Q2 is absent.
func (r *Ring) VerticalTune() float64 {
	if q, ok := r.params[KeyTuneY]; ok {
		return q
	}
	return r.Tune()
}

// Harmonics returns the per-system harmonic numbers, parallel to Voltages.
func (r *Ring) Harmonics() []float64 {
	out := make([]float64, len(r.rf))
	for i, s := range r.rf {
		out[i] = s.Harmonic
	}
	return out
}

func (r *Ring) Voltages() []float64 {
	out := make([]float64, len(r.rf))
	for i, s := range r.rf {
		out[i] = s.Voltage
	}
	return out
}

func (r *Ring) RFSystems() []RFSystem {
	out := make([]RFSystem, len(r.rf))
	copy(out, r.rf)
	return out
}

// Keys lists the header keys in sorted order.
func (r *Ring) Keys() []string {
	keys := make([]string, 0, len(r.params))
	for k := range r.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Ring) Validate() error {
	for _, k := range requiredKeys {
		if _, err := r.Get(k); err != nil {
			return err
		}
	}
	if r.Circumference() <= 0 {
		return fmt.Errorf("%w: circumference must be positive, got %g", ErrInvalidRing, r.Circumference())
	}
	if r.Gamma() <= 1 {
		return fmt.Errorf("%w: gamma must exceed 1, got %g", ErrInvalidRing, r.Gamma())
	}
	if r.Mass() <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidRing, r.Mass())
	}
	if len(r.rf) == 0 {
		return fmt.Errorf("%w: at least one rf system is required", ErrInvalidRing)
	}
	if r.rf[0].Harmonic == 0 {
		return fmt.Errorf("%w: main rf harmonic must be non-zero", ErrInvalidRing)
	}
	return nil
}
