package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Agents.Count != 700 {
		t.Errorf("agents.count = %d, want 700", cfg.Agents.Count)
	}
	if cfg.Trail.Kernel != Kernel8 {
		t.Errorf("trail.kernel = %d, want 8", cfg.Trail.Kernel)
	}
	if cfg.Grid.Width <= 0 || cfg.Grid.Height <= 0 {
		t.Errorf("grid dims = %dx%d, want positive", cfg.Grid.Width, cfg.Grid.Height)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero grid width", func(c *Config) { c.Grid.Width = 0 }},
		{"negative grid height", func(c *Config) { c.Grid.Height = -5 }},
		{"zero max intensity", func(c *Config) { c.Grid.MaxIntensity = 0 }},
		{"zero agent count", func(c *Config) { c.Agents.Count = 0 }},
		{"negative speed", func(c *Config) { c.Agents.Speed = -1 }},
		{"negative deposit", func(c *Config) { c.Agents.DepositAmount = -0.1 }},
		{"zero dt", func(c *Config) { c.Physics.DT = 0 }},
		{"diffusion above one", func(c *Config) { c.Trail.DiffusionRate = 1.5 }},
		{"negative diffusion", func(c *Config) { c.Trail.DiffusionRate = -0.1 }},
		{"evaporation above one", func(c *Config) { c.Trail.EvaporationRate = 2 }},
		{"bad kernel", func(c *Config) { c.Trail.Kernel = 5 }},
		{"negative sensor distance", func(c *Config) { c.Sensors.Distance = -1 }},
		{"negative sensor radius", func(c *Config) { c.Sensors.Radius = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load defaults: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestComputeDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	cfg.Agents.TurnSpeed = 2.5
	cfg.Agents.Speed = 10
	cfg.Physics.DT = 0.1
	cfg.ComputeDerived()

	if math.Abs(float64(cfg.Derived.MaxTurnPerTick)-0.25) > 1e-6 {
		t.Errorf("MaxTurnPerTick = %v, want 0.25", cfg.Derived.MaxTurnPerTick)
	}
	if math.Abs(float64(cfg.Derived.StepLength)-1.0) > 1e-6 {
		t.Errorf("StepLength = %v, want 1.0", cfg.Derived.StepLength)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	cp := cfg.Clone()
	cp.Trail.DiffusionRate = 0.999
	cp.Agents.Count = 1

	if cfg.Trail.DiffusionRate == 0.999 {
		t.Error("mutating clone changed original diffusion rate")
	}
	if cfg.Agents.Count == 1 {
		t.Error("mutating clone changed original agent count")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Trail.DiffusionRate = 0.123
	cfg.Agents.Count = 55

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if loaded.Trail.DiffusionRate != 0.123 {
		t.Errorf("diffusion rate = %v, want 0.123", loaded.Trail.DiffusionRate)
	}
	if loaded.Agents.Count != 55 {
		t.Errorf("agent count = %d, want 55", loaded.Agents.Count)
	}
}
