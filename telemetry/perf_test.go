package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorEmpty(t *testing.T) {
	p := NewPerfCollector(10)
	stats := p.Compute()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector stats not zero: %+v", stats)
	}
}

func TestPerfCollectorRecordsPhases(t *testing.T) {
	p := NewPerfCollector(10)

	for i := 0; i < 3; i++ {
		p.StartTick()
		p.StartPhase(PhaseAgents)
		time.Sleep(2 * time.Millisecond)
		p.StartPhase(PhaseDiffuse)
		time.Sleep(1 * time.Millisecond)
		p.EndTick()
	}

	stats := p.Compute()

	if stats.AvgTickDuration < 2*time.Millisecond {
		t.Errorf("avg tick %v, want >= 2ms", stats.AvgTickDuration)
	}
	if stats.PhaseAvg[PhaseAgents] < time.Millisecond {
		t.Errorf("agents phase avg %v, want >= 1ms", stats.PhaseAvg[PhaseAgents])
	}
	if stats.PhaseAvg[PhaseDiffuse] <= 0 {
		t.Errorf("diffuse phase avg %v, want > 0", stats.PhaseAvg[PhaseDiffuse])
	}
	if stats.TicksPerSecond <= 0 {
		t.Errorf("ticks/sec = %v, want positive", stats.TicksPerSecond)
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollectorWindowWraps(t *testing.T) {
	p := NewPerfCollector(4)

	for i := 0; i < 10; i++ {
		p.StartTick()
		p.StartPhase(PhaseAgents)
		p.EndTick()
	}

	// Only the window's worth of samples counts
	if p.sampleCount != 4 {
		t.Errorf("sample count = %d, want 4", p.sampleCount)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	p := NewPerfCollector(4)
	p.StartTick()
	p.StartPhase(PhaseAgents)
	time.Sleep(time.Millisecond)
	p.EndTick()

	row := p.Compute().ToCSV(500)
	if row.WindowEnd != 500 {
		t.Errorf("window end = %d, want 500", row.WindowEnd)
	}
	if row.AvgTickUS <= 0 {
		t.Errorf("avg tick us = %d, want positive", row.AvgTickUS)
	}
	if row.AgentsPct <= 0 {
		t.Errorf("agents pct = %v, want positive", row.AgentsPct)
	}
}
