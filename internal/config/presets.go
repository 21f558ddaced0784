package config

import (
	"sort"

	"github.com/san-kum/ventsim/internal/physics"
)

// Presets are named complete configurations.
var Presets = map[string]*Config{
	// the classroom script: lungs start empty, optional leak on the right
	"classroom": {
		Time:    TimeConfig{Dt: 0.01, Duration: 20},
		Drive:   DriveConfig{Amplitude: 0.5, Frequency: 0.25, PEEP: 5, Derivative: "numerical"},
		Single:  SingleConfig{E: 20, R: 5},
		Mode:    "coupled",
		Initial: "zero",
		Right:   LungConfig{E: 25, R: 6, Fistula: FistulaConfig{Kind: physics.KindConductance, Rf: 50, Active: true}},
		Left:    LungConfig{E: 15, R: 4, Fistula: FistulaConfig{Kind: physics.KindNone}},
	},
	"healthy": {
		Time:    TimeConfig{Dt: 0.01, Duration: 20},
		Drive:   DriveConfig{Amplitude: 0.5, Frequency: 0.25, PEEP: 5, Derivative: "numerical"},
		Single:  SingleConfig{E: 20, R: 5},
		Mode:    "coupled",
		Initial: "frc",
		Right:   LungConfig{E: 40, R: 10, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindNone}},
		Left:    LungConfig{E: 40, R: 10, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindNone}},
	},
	"heterogeneous": {
		Time:    TimeConfig{Dt: 0.01, Duration: 20},
		Drive:   DriveConfig{Amplitude: 0.5, Frequency: 0.25, PEEP: 5, Derivative: "numerical"},
		Single:  SingleConfig{E: 20, R: 5},
		Mode:    "coupled",
		Initial: "frc",
		Right:   LungConfig{E: 50, R: 20, FRC: 1.0, Fistula: FistulaConfig{Kind: physics.KindNone}},
		Left:    LungConfig{E: 10, R: 2, FRC: 1.4, Fistula: FistulaConfig{Kind: physics.KindNone}},
	},
	"flow-leak": {
		Time:    TimeConfig{Dt: 0.01, Duration: 20},
		Drive:   DriveConfig{Amplitude: 0.5, Frequency: 0.25, PEEP: 5, Derivative: "numerical"},
		Single:  SingleConfig{E: 20, R: 5},
		Mode:    "coupled",
		Initial: "frc",
		Right:   LungConfig{E: 25, R: 6, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindFlowFraction, Fraction: 0.3}},
		Left:    LungConfig{E: 15, R: 4, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindNone}},
	},
	"algebraic": {
		Time:    TimeConfig{Dt: 0.01, Duration: 20},
		Drive:   DriveConfig{Amplitude: 0.5, Frequency: 0.25, PEEP: 5, Derivative: "numerical"},
		Single:  SingleConfig{E: 20, R: 5},
		Mode:    "algebraic",
		Initial: "frc",
		Right:   LungConfig{E: 25, R: 6, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindVolumeFraction, Fraction: 0.3}},
		Left:    LungConfig{E: 15, R: 4, FRC: 1.2, Fistula: FistulaConfig{Kind: physics.KindNone}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
