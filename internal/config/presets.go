package config

import (
	"sort"

	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
)

// Presets maps a ring family to named configurations.
var Presets = map[string]map[string]*Config{
	"toy": {
		"electron":   toyElectron(),
		"proton":     toyProton(),
		"strong-ibs": toyStrongIBS(),
	},
	"relaxation": {
		"electron": withScheme(toyElectron(), "relaxation"),
	},
}

func toyElectron() *Config {
	return DefaultConfig()
}

// toyProton has radiation damping times far beyond the IBS times; the run
// is IBS dominated and stops on its step budget.
func toyProton() *Config {
	cfg := DefaultConfig()
	cfg.Ring = RingConfig{
		Gamma: 10, GammaTr: 5, Mass: physics.ProtonMass, Charge: 1,
		Circumference: 1000, TuneX: 10, TuneY: 10,
		RF: []lattice.RFSystem{{Harmonic: 1, Voltage: 1e6}},
	}
	cfg.Beam = BeamConfig{Ex: 1e-8, Ey: 1e-8, Sigs: 0.5, Particles: 1e11}
	cfg.Run.Model = "bjorken-mtingwa"
	return cfg
}

func toyStrongIBS() *Config {
	cfg := DefaultConfig()
	cfg.Ring.Gamma = 50
	cfg.Beam.Particles = 1e12
	return cfg
}

func withScheme(cfg *Config, scheme string) *Config {
	cfg.Run.Scheme = scheme
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(family, preset string) *Config {
	presets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := presets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(family string) []string {
	presets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Families() []string {
	out := make([]string, 0, len(Presets))
	for f := range Presets {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
