package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/lattice"
	"github.com/san-kum/ibsim/internal/physics"
	"github.com/san-kum/ibsim/internal/sim"
)

const (
	ModeConverge = "converge"
	ModeFixed    = "fixed"

	DefaultCells     = 64
	DefaultThreshold = 1e-3
	DefaultSteps     = 1000
	DefaultDt        = 1e-3
	DefaultDataDir   = ".ibsim"
	DefaultTheme     = "default"
	DefaultLogLevel  = "info"
)

type Config struct {
	Ring    RingConfig    `yaml:"ring"`
	Lattice LatticeConfig `yaml:"lattice"`
	Beam    BeamConfig    `yaml:"beam"`
	Run     RunConfig     `yaml:"run"`
	Output  OutputConfig  `yaml:"output"`
}

// RingConfig holds the ring scalars. Values read from a lattice table
// header take precedence.
type RingConfig struct {
	Gamma         float64            `yaml:"gamma"`
	GammaTr       float64            `yaml:"gammatr"`
	Mass          float64            `yaml:"mass"` // GeV
	Charge        float64            `yaml:"charge"`
	Circumference float64            `yaml:"circumference"`
	TuneX         float64            `yaml:"qx"`
	TuneY         float64            `yaml:"qy"`
	RF            []lattice.RFSystem `yaml:"rf"`
}

// LatticeConfig selects the optics: a table file when Table is set,
// otherwise a smooth ring of Cells identical cells.
type LatticeConfig struct {
	Cells int    `yaml:"cells"`
	Table string `yaml:"table,omitempty"`
}

type BeamConfig struct {
	Ex        float64 `yaml:"ex"`
	Ey        float64 `yaml:"ey"`
	Sigs      float64 `yaml:"sigs"`
	Particles float64 `yaml:"particles"`
}

type RunConfig struct {
	Model       string  `yaml:"model"`
	Scheme      string  `yaml:"scheme"`
	Threshold   float64 `yaml:"threshold"`
	Coupling    float64 `yaml:"coupling"` // percent
	Mode        string  `yaml:"mode"`
	Steps       int     `yaml:"steps"`
	Dt          float64 `yaml:"dt"`
	Diagnostics bool    `yaml:"diagnostics"`
}

type OutputConfig struct {
	DataDir  string `yaml:"data_dir"`
	CSV      string `yaml:"csv,omitempty"`
	Theme    string `yaml:"theme"`
	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Ring: RingConfig{
			Gamma:         100,
			GammaTr:       10,
			Mass:          physics.ElectronMass,
			Charge:        1,
			Circumference: 1000,
			TuneX:         10,
			TuneY:         10,
			RF:            []lattice.RFSystem{{Harmonic: 1, Voltage: 1e6}},
		},
		Lattice: LatticeConfig{Cells: DefaultCells},
		Beam: BeamConfig{
			Ex:        1e-9,
			Ey:        1e-11,
			Sigs:      0.01,
			Particles: 1e11,
		},
		Run: RunConfig{
			Model:     "nagaitsev",
			Scheme:    "derivative",
			Threshold: DefaultThreshold,
			Mode:      ModeConverge,
			Steps:     DefaultSteps,
			Dt:        DefaultDt,
		},
		Output: OutputConfig{
			DataDir:  DefaultDataDir,
			Theme:    DefaultTheme,
			LogLevel: DefaultLogLevel,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Ring.RF = append([]lattice.RFSystem(nil), c.Ring.RF...)
	return &out
}

func (c *Config) Validate() error {
	switch c.Run.Mode {
	case ModeConverge, ModeFixed:
	default:
		return fmt.Errorf("%w: run mode %q, want %s or %s", beam.ErrParameterBounds, c.Run.Mode, ModeConverge, ModeFixed)
	}
	if c.Lattice.Table == "" && c.Lattice.Cells <= 0 {
		return fmt.Errorf("%w: smooth ring needs a positive cell count", lattice.ErrInvalidOptics)
	}
	return c.Seed().Validate()
}

// Params returns the ring scalars keyed as in a twiss table header.
func (r RingConfig) Params() map[string]float64 {
	qy := r.TuneY
	if qy == 0 {
		qy = r.TuneX
	}
	return map[string]float64{
		lattice.KeyGamma:         r.Gamma,
		lattice.KeyMomentum:      physics.Momentum(r.Gamma, r.Mass),
		lattice.KeyGammaTr:       r.GammaTr,
		lattice.KeyMass:          r.Mass,
		lattice.KeyCharge:        r.Charge,
		lattice.KeyCircumference: r.Circumference,
		lattice.KeyTuneX:         r.TuneX,
		lattice.KeyTuneY:         qy,
	}
}

func (c *Config) Seed() beam.Seed {
	return beam.Seed{Ex: c.Beam.Ex, Ey: c.Beam.Ey, Sigs: c.Beam.Sigs}
}

func (c *Config) ConvergenceParams() sim.ConvergenceParams {
	return sim.ConvergenceParams{
		ParticleCount:     c.Beam.Particles,
		CouplingPercent:   c.Run.Coupling,
		RelativeThreshold: c.Run.Threshold,
		Scheme:            c.Run.Scheme,
	}
}

func (c *Config) FixedParams() sim.FixedParams {
	return sim.FixedParams{
		ParticleCount:   c.Beam.Particles,
		StepCount:       c.Run.Steps,
		StepSize:        c.Run.Dt,
		CouplingPercent: c.Run.Coupling,
		Scheme:          c.Run.Scheme,
	}
}
