package telemetry

import "github.com/Mads-NL/SlimeSimulation/systems"

// Collector accumulates deposit activity within tick windows and
// produces WindowStats.
type Collector struct {
	windowTicks int32
	dt          float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	deposited      float64
	depositClipped float64
}

// NewCollector creates a new stats collector.
// windowTicks: ticks per stats window
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int32(windowTicks),
		dt:          dt,
	}
}

// RecordDeposit records one agent deposit. requested is the configured
// deposit amount; absorbed is what the cell actually took before
// hitting the saturation cap.
func (c *Collector) RecordDeposit(requested, absorbed float32) {
	c.deposited += float64(absorbed)
	c.depositClipped += float64(requested - absorbed)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats from the current window's counters plus
// the live field and agent headings, then resets for the next window.
func (c *Collector) Flush(currentTick int32, field *systems.TrailField, headings []float32) WindowStats {
	fs := ComputeFieldStats(field.Snapshot(), float64(field.MaxIntensity))

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		AgentCount: len(headings),

		TotalMass:         fs.TotalMass,
		IntensityMean:     fs.Mean,
		IntensityStd:      fs.Std,
		IntensityMax:      fs.Max,
		IntensityP50:      fs.P50,
		IntensityP90:      fs.P90,
		OccupiedFraction:  fs.Occupied,
		SaturatedFraction: fs.Saturated,

		Deposited:      c.deposited,
		DepositClipped: c.depositClipped,

		HeadingDispersion: HeadingDispersion(headings),
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.deposited = 0
	c.depositClipped = 0

	return stats
}
