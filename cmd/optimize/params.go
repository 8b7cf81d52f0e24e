// Package main provides CMA-ES optimization for slime simulation parameters.
package main

import (
	"github.com/Mads-NL/SlimeSimulation/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Trail dynamics
			{Name: "diffusion_rate", Path: "trail.diffusion_rate", Min: 0.0, Max: 1.0, Default: 0.4},
			{Name: "evaporation_rate", Path: "trail.evaporation_rate", Min: 0.001, Max: 0.2, Default: 0.01},
			// Sensing
			{Name: "sensor_angle", Path: "sensors.angle", Min: 0.1, Max: 1.5, Default: 0.78},
			{Name: "sensor_distance", Path: "sensors.distance", Min: 1.0, Max: 30.0, Default: 5.0},
			// Steering and marking
			{Name: "turn_speed", Path: "agents.turn_speed", Min: 0.2, Max: 10.0, Default: 2.5},
			{Name: "deposit_amount", Path: "agents.deposit_amount", Min: 0.1, Max: 5.0, Default: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Trail.DiffusionRate = clamped[0]
	cfg.Trail.EvaporationRate = clamped[1]
	cfg.Sensors.Angle = clamped[2]
	cfg.Sensors.Distance = clamped[3]
	cfg.Agents.TurnSpeed = clamped[4]
	cfg.Agents.DepositAmount = clamped[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Trail.DiffusionRate,
		cfg.Trail.EvaporationRate,
		cfg.Sensors.Angle,
		cfg.Sensors.Distance,
		cfg.Agents.TurnSpeed,
		cfg.Agents.DepositAmount,
	}
}
