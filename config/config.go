// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Diffusion kernel shapes.
const (
	Kernel4 = 4 // von Neumann neighborhood
	Kernel8 = 8 // Moore neighborhood
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Agents    AgentsConfig    `yaml:"agents"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Trail     TrailConfig     `yaml:"trail"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds trail grid dimensions and saturation.
// The grid doubles as the continuous agent domain: positions live in
// [0, width) x [0, height) and map to cells by truncation.
type GridConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	MaxIntensity float64 `yaml:"max_intensity"` // deposit saturation cap
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// AgentsConfig holds agent population and movement parameters.
type AgentsConfig struct {
	Count         int     `yaml:"count"`
	Speed         float64 `yaml:"speed"`          // cells per second
	SpeedJitter   float64 `yaml:"speed_jitter"`   // per-agent speed spread, fraction of speed
	TurnSpeed     float64 `yaml:"turn_speed"`     // max radians per second
	DepositAmount float64 `yaml:"deposit_amount"` // intensity added per agent per tick
}

// SensorsConfig holds trail sensing parameters.
type SensorsConfig struct {
	Angle     float64 `yaml:"angle"`      // radians between center and side probes
	Distance  float64 `yaml:"distance"`   // cells from agent to probe center
	Radius    int     `yaml:"radius"`     // probe kernel radius in cells (0 = single cell)
	TieJitter float64 `yaml:"tie_jitter"` // turn fraction applied when all probes are equal
}

// TrailConfig holds diffusion and evaporation parameters.
// Both rates are per-tick quantities.
type TrailConfig struct {
	DiffusionRate   float64 `yaml:"diffusion_rate"`   // fraction of a cell spread to neighbors per tick
	EvaporationRate float64 `yaml:"evaporation_rate"` // fraction of a cell lost per tick
	Kernel          int     `yaml:"kernel"`           // 4 or 8 neighbors
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // ticks in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	GridW32        float32 // Grid.Width as float32
	GridH32        float32 // Grid.Height as float32
	MaxIntensity32 float32 // Grid.MaxIntensity as float32
	MaxTurnPerTick float32 // Agents.TurnSpeed * DT
	StepLength     float32 // Agents.Speed * DT, cells per tick
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks that the configuration can drive a simulation.
// All failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d",
			ErrInvalidConfig, c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.MaxIntensity <= 0 {
		return fmt.Errorf("%w: grid.max_intensity must be positive, got %g",
			ErrInvalidConfig, c.Grid.MaxIntensity)
	}
	if c.Agents.Count <= 0 {
		return fmt.Errorf("%w: agents.count must be positive, got %d",
			ErrInvalidConfig, c.Agents.Count)
	}
	if c.Agents.Speed < 0 {
		return fmt.Errorf("%w: agents.speed must be non-negative, got %g",
			ErrInvalidConfig, c.Agents.Speed)
	}
	if c.Agents.DepositAmount < 0 {
		return fmt.Errorf("%w: agents.deposit_amount must be non-negative, got %g",
			ErrInvalidConfig, c.Agents.DepositAmount)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("%w: physics.dt must be positive, got %g",
			ErrInvalidConfig, c.Physics.DT)
	}
	if c.Trail.DiffusionRate < 0 || c.Trail.DiffusionRate > 1 {
		return fmt.Errorf("%w: trail.diffusion_rate must be in [0,1], got %g",
			ErrInvalidConfig, c.Trail.DiffusionRate)
	}
	if c.Trail.EvaporationRate < 0 || c.Trail.EvaporationRate > 1 {
		return fmt.Errorf("%w: trail.evaporation_rate must be in [0,1], got %g",
			ErrInvalidConfig, c.Trail.EvaporationRate)
	}
	if c.Trail.Kernel != Kernel4 && c.Trail.Kernel != Kernel8 {
		return fmt.Errorf("%w: trail.kernel must be 4 or 8, got %d",
			ErrInvalidConfig, c.Trail.Kernel)
	}
	if c.Sensors.Distance < 0 {
		return fmt.Errorf("%w: sensors.distance must be non-negative, got %g",
			ErrInvalidConfig, c.Sensors.Distance)
	}
	if c.Sensors.Radius < 0 {
		return fmt.Errorf("%w: sensors.radius must be non-negative, got %d",
			ErrInvalidConfig, c.Sensors.Radius)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call after mutating parameters programmatically (Load does it for you).
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.GridW32 = float32(c.Grid.Width)
	c.Derived.GridH32 = float32(c.Grid.Height)
	c.Derived.MaxIntensity32 = float32(c.Grid.MaxIntensity)
	c.Derived.MaxTurnPerTick = float32(c.Agents.TurnSpeed * c.Physics.DT)
	c.Derived.StepLength = float32(c.Agents.Speed * c.Physics.DT)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
