package telemetry

import (
	"math"
	"testing"

	"github.com/Mads-NL/SlimeSimulation/systems"
)

func TestCollectorFlushBoundaries(t *testing.T) {
	c := NewCollector(10, 0.1)

	if c.ShouldFlush(5) {
		t.Error("should not flush mid-window")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at window boundary")
	}
	if !c.ShouldFlush(15) {
		t.Error("should flush past window boundary")
	}
}

func TestCollectorFlushResetsWindow(t *testing.T) {
	c := NewCollector(10, 0.1)
	f := systems.NewTrailField(4, 4, 1.0)

	c.RecordDeposit(1.0, 0.8)
	c.RecordDeposit(1.0, 1.0)

	stats := c.Flush(10, f, []float32{0, 0})

	// Amounts accumulate from float32 inputs, so allow float32 precision
	if math.Abs(stats.Deposited-1.8) > 1e-6 {
		t.Errorf("deposited = %v, want 1.8", stats.Deposited)
	}
	if math.Abs(stats.DepositClipped-0.2) > 1e-6 {
		t.Errorf("clipped = %v, want 0.2", stats.DepositClipped)
	}
	if stats.AgentCount != 2 {
		t.Errorf("agent count = %d, want 2", stats.AgentCount)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window [%d, %d], want [0, 10]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}

	// Counters reset; the next window starts where this one ended
	if c.ShouldFlush(15) {
		t.Error("should not flush 5 ticks into the next window")
	}
	next := c.Flush(20, f, nil)
	if next.Deposited != 0 {
		t.Errorf("deposited after reset = %v, want 0", next.Deposited)
	}
	if next.WindowStartTick != 10 {
		t.Errorf("next window start = %d, want 10", next.WindowStartTick)
	}
}

func TestCollectorFieldStatsComeFromField(t *testing.T) {
	c := NewCollector(10, 0.1)
	f := systems.NewTrailField(2, 2, 1.0)
	f.Deposit(0, 0, 1.0)

	stats := c.Flush(10, f, nil)
	if math.Abs(stats.TotalMass-1.0) > 1e-6 {
		t.Errorf("total mass = %v, want 1.0", stats.TotalMass)
	}
	if math.Abs(stats.OccupiedFraction-0.25) > 1e-6 {
		t.Errorf("occupied = %v, want 0.25", stats.OccupiedFraction)
	}
	if stats.IntensityMax != 1.0 {
		t.Errorf("max = %v, want 1.0", stats.IntensityMax)
	}
}
