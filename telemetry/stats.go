// Package telemetry collects windowed trail and performance statistics
// from the simulation and writes them to structured logs and CSV files.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated trail statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	AgentCount int `csv:"agents"`

	// Trail grid state at window end
	TotalMass         float64 `csv:"total_mass"`
	IntensityMean     float64 `csv:"intensity_mean"`
	IntensityStd      float64 `csv:"intensity_std"`
	IntensityMax      float64 `csv:"intensity_max"`
	IntensityP50      float64 `csv:"intensity_p50"`
	IntensityP90      float64 `csv:"intensity_p90"`
	OccupiedFraction  float64 `csv:"occupied_fraction"`
	SaturatedFraction float64 `csv:"saturated_fraction"`

	// Deposit activity during the window
	Deposited      float64 `csv:"deposited"`
	DepositClipped float64 `csv:"deposit_clipped"`

	// Population heading spread: 0 = all agents aligned, 1 = fully spread
	HeadingDispersion float64 `csv:"heading_dispersion"`
}

// Cell occupancy thresholds, as fractions of the saturation cap.
const (
	occupiedThreshold  = 0.01
	saturatedThreshold = 0.99
)

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// FieldStats summarizes the intensity distribution of a trail grid.
type FieldStats struct {
	TotalMass float64
	Mean      float64
	Std       float64
	Max       float64
	P50       float64
	P90       float64
	Occupied  float64 // fraction of cells above occupiedThreshold*cap
	Saturated float64 // fraction of cells above saturatedThreshold*cap
}

// ComputeFieldStats calculates distribution statistics for a grid.
// ceiling is the saturation cap used for occupancy fractions.
func ComputeFieldStats(grid []float32, ceiling float64) FieldStats {
	n := len(grid)
	if n == 0 {
		return FieldStats{}
	}

	values := make([]float64, n)
	var occupied, saturated int
	var max float64
	for i, v := range grid {
		f := float64(v)
		values[i] = f
		if f > max {
			max = f
		}
		if f >= ceiling*occupiedThreshold {
			occupied++
		}
		if f >= ceiling*saturatedThreshold {
			saturated++
		}
	}

	mean := stat.Mean(values, nil)
	std := 0.0
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sort.Float64s(values)

	return FieldStats{
		TotalMass: mean * float64(n),
		Mean:      mean,
		Std:       std,
		Max:       max,
		P50:       Percentile(values, 0.50),
		P90:       Percentile(values, 0.90),
		Occupied:  float64(occupied) / float64(n),
		Saturated: float64(saturated) / float64(n),
	}
}

// HeadingDispersion returns the circular spread of agent headings:
// one minus the mean resultant vector length, in [0, 1].
func HeadingDispersion(headings []float32) float64 {
	n := len(headings)
	if n == 0 {
		return 0
	}

	var sumCos, sumSin float64
	for _, h := range headings {
		sumCos += math.Cos(float64(h))
		sumSin += math.Sin(float64(h))
	}
	r := math.Hypot(sumCos, sumSin) / float64(n)
	return 1 - r
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.AgentCount),
		slog.Float64("total_mass", s.TotalMass),
		slog.Float64("intensity_mean", s.IntensityMean),
		slog.Float64("intensity_std", s.IntensityStd),
		slog.Float64("intensity_max", s.IntensityMax),
		slog.Float64("intensity_p50", s.IntensityP50),
		slog.Float64("intensity_p90", s.IntensityP90),
		slog.Float64("occupied_fraction", s.OccupiedFraction),
		slog.Float64("saturated_fraction", s.SaturatedFraction),
		slog.Float64("deposited", s.Deposited),
		slog.Float64("deposit_clipped", s.DepositClipped),
		slog.Float64("heading_dispersion", s.HeadingDispersion),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.AgentCount,
		"total_mass", s.TotalMass,
		"intensity_mean", s.IntensityMean,
		"intensity_max", s.IntensityMax,
		"occupied_fraction", s.OccupiedFraction,
		"saturated_fraction", s.SaturatedFraction,
		"deposited", s.Deposited,
		"heading_dispersion", s.HeadingDispersion,
	)
}
