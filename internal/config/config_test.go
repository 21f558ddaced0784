package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Time.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Time.Duration <= 0 {
		t.Error("duration should be positive")
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("default config should resolve: %v", err)
	}
	if p.Mode != experiment.Coupled || p.Initial != physics.InitFRC {
		t.Errorf("unexpected mode/initial: %v/%v", p.Mode, p.Initial)
	}
	if _, err := experiment.Simulate(p); err != nil {
		t.Errorf("default config should simulate: %v", err)
	}
}

func TestPresetsSimulate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			p, err := GetPreset(name).Params()
			if err != nil {
				t.Fatalf("params: %v", err)
			}
			if _, err := experiment.Simulate(p); err != nil {
				t.Errorf("simulate: %v", err)
			}
		})
	}
}

func TestGetPreset_Original(t *testing.T) {
	cfg := GetPreset("classroom")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Initial != physics.InitZero {
		t.Errorf("classroom starts empty, got %v", p.Initial)
	}
	leak, ok := p.Right.Leak.(physics.ConductanceLeak)
	if !ok || leak.Rf != 50 || !leak.Active {
		t.Errorf("expected active conductance leak Rf=50, got %#v", p.Right.Leak)
	}
	if p.Left.Leak.Kind() != physics.KindNone {
		t.Errorf("left lung should be intact, got %s", p.Left.Leak.Kind())
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("healthy")
	cfg.Drive.PEEP = 99

	if GetPreset("healthy").Drive.PEEP == 99 {
		t.Error("preset mutated through returned config")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestParams_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "implicit" }},
		{"initial", func(c *Config) { c.Initial = "half" }},
		{"derivative", func(c *Config) { c.Drive.Derivative = "spline" }},
		{"fistula kind", func(c *Config) { c.Right.Fistula.Kind = "tube" }},
		{"fistula fraction", func(c *Config) {
			c.Left.Fistula = FistulaConfig{Kind: physics.KindFlowFraction, Fraction: 2}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if _, err := cfg.Params(); !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("algebraic")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("mode: algebraic\nright:\n  e: 30\n  r: 6\n  fistula:\n    kind: volume-fraction\n    fraction: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.Dt != dynamo.DefaultDt || cfg.Drive.PEEP != 5 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Right.E != 30 || cfg.Right.Fistula.Fraction != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg.Right)
	}
	if cfg.Left.E != 15 {
		t.Errorf("left lung should keep default elastance, got %f", cfg.Left.E)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for name := range cfg.GetParams() {
		if err := cfg.SetParam(name, 7); err != nil {
			t.Errorf("SetParam(%q): %v", name, err)
		}
	}
	for name, v := range cfg.GetParams() {
		if v != 7 {
			t.Errorf("%s = %f after set, want 7", name, v)
		}
	}

	if err := cfg.SetParam("gravity", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestFromParams_RoundTrip(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		p, err := cfg.Params()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := FromParams(p); *got != *cfg {
			t.Errorf("%s: round trip mismatch:\n got %+v\nwant %+v", name, got, cfg)
		}
	}
}

func TestLoadInto_KeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peep.yaml")
	if err := os.WriteFile(path, []byte("drive:\n  peep: 8\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetPreset("classroom")
	if err := LoadInto(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Drive.PEEP != 8 {
		t.Errorf("expected peep 8, got %f", cfg.Drive.PEEP)
	}
	if cfg.Initial != "zero" {
		t.Errorf("preset initial condition lost: %q", cfg.Initial)
	}
	if cfg.Right.Fistula.Kind != physics.KindConductance || cfg.Right.Fistula.Rf != 50 {
		t.Errorf("preset fistula lost: %+v", cfg.Right.Fistula)
	}
	if cfg.Right.E != 25 || cfg.Left.E != 15 {
		t.Errorf("preset lungs lost: right %+v left %+v", cfg.Right, cfg.Left)
	}
}

func TestLoadInto_MissingFile(t *testing.T) {
	cfg := GetPreset("classroom")
	if err := LoadInto(filepath.Join(t.TempDir(), "absent.yaml"), cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if cfg.Initial != "zero" {
		t.Error("config modified on failed load")
	}
}
