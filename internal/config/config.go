package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ventsim/internal/drive"
	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/physics"
)

type Config struct {
	Time    TimeConfig   `yaml:"time" json:"time"`
	Drive   DriveConfig  `yaml:"drive" json:"drive"`
	Single  SingleConfig `yaml:"single" json:"single"`
	Mode    string       `yaml:"mode" json:"mode"`
	Initial string       `yaml:"initial" json:"initial"`
	Right   LungConfig   `yaml:"right" json:"right"`
	Left    LungConfig   `yaml:"left" json:"left"`
}

type TimeConfig struct {
	Dt       float64 `yaml:"dt" json:"dt"`
	Duration float64 `yaml:"duration" json:"duration"`
}

type DriveConfig struct {
	Amplitude  float64 `yaml:"amplitude" json:"amplitude"`
	Frequency  float64 `yaml:"frequency" json:"frequency"`
	PEEP       float64 `yaml:"peep" json:"peep"`
	Derivative string  `yaml:"derivative" json:"derivative"`
}

type SingleConfig struct {
	E float64 `yaml:"e" json:"e"`
	R float64 `yaml:"r" json:"r"`
}

type LungConfig struct {
	E       float64       `yaml:"e" json:"e"`
	R       float64       `yaml:"r" json:"r"`
	FRC     float64       `yaml:"frc" json:"frc"`
	Fistula FistulaConfig `yaml:"fistula" json:"fistula"`
}

type FistulaConfig struct {
	Kind     string  `yaml:"kind" json:"kind"`
	Rf       float64 `yaml:"rf,omitempty" json:"rf,omitempty"`
	Active   bool    `yaml:"active,omitempty" json:"active,omitempty"`
	Fraction float64 `yaml:"fraction,omitempty" json:"fraction,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Time: TimeConfig{Dt: dynamo.DefaultDt, Duration: dynamo.DefaultDuration},
		Drive: DriveConfig{
			Amplitude:  drive.DefaultAmplitude,
			Frequency:  drive.DefaultFrequency,
			PEEP:       drive.DefaultPEEP,
			Derivative: drive.Numerical.String(),
		},
		Single:  SingleConfig{E: physics.DefaultElastance, R: physics.DefaultResistance},
		Mode:    experiment.Coupled.String(),
		Initial: physics.InitFRC.String(),
		Right:   LungConfig{E: 25, R: 6, Fistula: FistulaConfig{Kind: physics.KindNone}},
		Left:    LungConfig{E: 15, R: 4, Fistula: FistulaConfig{Kind: physics.KindNone}},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads a YAML file over cfg. Keys absent from the file leave the
// corresponding fields of cfg untouched.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Params resolves the names in c and builds the run parameters. The result
// is validated by experiment.Simulate, not here.
func (c *Config) Params() (experiment.Params, error) {
	mode, err := experiment.ParseMode(c.Mode)
	if err != nil {
		return experiment.Params{}, err
	}
	ic, err := physics.ParseInitialCondition(c.Initial)
	if err != nil {
		return experiment.Params{}, err
	}
	scheme, err := drive.ParseScheme(c.Drive.Derivative)
	if err != nil {
		return experiment.Params{}, err
	}

	reg := experiment.NewRegistry()
	right, err := c.Right.compartment(reg, physics.RightLung)
	if err != nil {
		return experiment.Params{}, err
	}
	left, err := c.Left.compartment(reg, physics.LeftLung)
	if err != nil {
		return experiment.Params{}, err
	}

	return experiment.Params{
		Dt:       c.Time.Dt,
		Duration: c.Time.Duration,
		Drive: drive.Params{
			Amplitude:  c.Drive.Amplitude,
			Frequency:  c.Drive.Frequency,
			PEEP:       c.Drive.PEEP,
			Derivative: scheme,
		},
		Single:  physics.SingleCompartment{E: c.Single.E, R: c.Single.R},
		Right:   right,
		Left:    left,
		Mode:    mode,
		Initial: ic,
	}, nil
}

func (l LungConfig) compartment(reg *experiment.Registry, name string) (physics.Compartment, error) {
	leak, err := reg.GetFistula(l.Fistula.Kind, experiment.LeakSpec{
		Rf:       l.Fistula.Rf,
		Active:   l.Fistula.Active,
		Fraction: l.Fistula.Fraction,
	})
	if err != nil {
		return physics.Compartment{}, fmt.Errorf("%s fistula: %w", name, err)
	}
	return physics.NewCompartment(name, l.E, l.R, l.FRC).WithLeak(leak), nil
}

// FromParams is the inverse of Params: it describes p by name so that it
// can be saved and rebuilt.
func FromParams(p experiment.Params) *Config {
	return &Config{
		Time: TimeConfig{Dt: p.Dt, Duration: p.Duration},
		Drive: DriveConfig{
			Amplitude:  p.Drive.Amplitude,
			Frequency:  p.Drive.Frequency,
			PEEP:       p.Drive.PEEP,
			Derivative: p.Drive.Derivative.String(),
		},
		Single:  SingleConfig{E: p.Single.E, R: p.Single.R},
		Mode:    p.Mode.String(),
		Initial: p.Initial.String(),
		Right:   lungConfig(p.Right),
		Left:    lungConfig(p.Left),
	}
}

func lungConfig(c physics.Compartment) LungConfig {
	l := LungConfig{E: c.E, R: c.R, FRC: c.FRC, Fistula: FistulaConfig{Kind: physics.KindNone}}
	switch f := c.Leak.(type) {
	case physics.ConductanceLeak:
		l.Fistula = FistulaConfig{Kind: f.Kind(), Rf: f.Rf, Active: f.Active}
	case physics.FlowFractionLeak:
		l.Fistula = FistulaConfig{Kind: f.Kind(), Fraction: f.Fraction}
	case physics.VolumeFractionLeak:
		l.Fistula = FistulaConfig{Kind: f.Kind(), Fraction: f.Fraction}
	}
	return l
}

// GetParams exposes the tunable scalars of c under stable keys.
func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"amplitude":      c.Drive.Amplitude,
		"frequency":      c.Drive.Frequency,
		"peep":           c.Drive.PEEP,
		"e":              c.Single.E,
		"r":              c.Single.R,
		"right.e":        c.Right.E,
		"right.r":        c.Right.R,
		"right.frc":      c.Right.FRC,
		"right.rf":       c.Right.Fistula.Rf,
		"right.fraction": c.Right.Fistula.Fraction,
		"left.e":         c.Left.E,
		"left.r":         c.Left.R,
		"left.frc":       c.Left.FRC,
		"left.rf":        c.Left.Fistula.Rf,
		"left.fraction":  c.Left.Fistula.Fraction,
	}
}

func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "amplitude":
		c.Drive.Amplitude = value
	case "frequency":
		c.Drive.Frequency = value
	case "peep":
		c.Drive.PEEP = value
	case "e":
		c.Single.E = value
	case "r":
		c.Single.R = value
	case "right.e":
		c.Right.E = value
	case "right.r":
		c.Right.R = value
	case "right.frc":
		c.Right.FRC = value
	case "right.rf":
		c.Right.Fistula.Rf = value
	case "right.fraction":
		c.Right.Fistula.Fraction = value
	case "left.e":
		c.Left.E = value
	case "left.r":
		c.Left.R = value
	case "left.frc":
		c.Left.FRC = value
	case "left.rf":
		c.Left.Fistula.Rf = value
	case "left.fraction":
		c.Left.Fistula.Fraction = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
