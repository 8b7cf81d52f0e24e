package main

import (
	"math"
	"sync"

	"github.com/Mads-NL/SlimeSimulation/config"
	"github.com/Mads-NL/SlimeSimulation/sim"
	"github.com/Mads-NL/SlimeSimulation/telemetry"
)

// FitnessEvaluator runs headless simulations and scores the trail patterns
// they settle into.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Target occupancy for a well-formed trail network: a fraction of the grid
// carries trail, the rest stays dark. Fully covered and fully empty fields
// both score poorly.
const targetOccupancy = 0.35

// Evaluate computes fitness for a parameter vector (lower = better).
// Quality rewards high contrast (std/mean) at moderate occupancy with
// little saturation; fitness is its negation averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			qualities[idx] = fe.runSeed(x, s)
		}(i, seed)
	}
	wg.Wait()

	sum := 0.0
	for _, q := range qualities {
		sum += q
	}
	quality := sum / float64(len(qualities))

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSeed runs one headless simulation and returns the quality of the last
// telemetry window.
func (fe *FitnessEvaluator) runSeed(x []float64, seed int64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var last telemetry.WindowStats
	haveStats := false

	s, err := sim.New(cfg, sim.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			last = stats
			haveStats = true
		},
	})
	if err != nil {
		return 0
	}
	defer s.Stop()

	for s.Tick() < fe.maxTicks {
		if err := s.Step(); err != nil {
			return 0
		}
	}

	if !haveStats {
		return 0
	}
	return windowQuality(last)
}

// windowQuality scores one telemetry window. Contrast drives the score;
// occupancy off-target and saturation pull it down.
func windowQuality(w telemetry.WindowStats) float64 {
	if w.IntensityMean <= 0 {
		return 0
	}

	contrast := w.IntensityStd / w.IntensityMean

	occDist := math.Abs(w.OccupiedFraction-targetOccupancy) / targetOccupancy
	occScore := math.Max(0, 1-occDist)

	satPenalty := 1 - math.Min(1, w.SaturatedFraction*4)

	return contrast * occScore * satPenalty
}
