package sim

import (
	"fmt"

	"github.com/Mads-NL/SlimeSimulation/telemetry"
)

// Step advances the simulation by one tick. The phases always run in the
// same order: agents sense and decide against the field as it stood at the
// start of the tick, then move and deposit, then the field diffuses and
// evaporates. Sensing never observes a deposit made in the same tick.
func (s *Simulation) Step() error {
	if s.state != StateReady && s.state != StateRunning {
		return fmt.Errorf("%w: cannot step while %s", ErrInvalidState, s.state)
	}

	s.perf.StartTick()

	// Phase 1: sense + decide. Parallel over agents; reads the field,
	// writes only per-agent intents.
	s.perf.StartPhase(telemetry.PhaseAgents)
	s.computeIntents()

	// Phase 2: move + deposit. Sequential, in stable agent order, so
	// saturating deposits accumulate identically on every run.
	s.perf.StartPhase(telemetry.PhaseDeposit)
	s.applyIntents()

	// Phase 3: diffuse.
	s.perf.StartPhase(telemetry.PhaseDiffuse)
	s.trail.Diffuse()

	// Phase 4: evaporate.
	s.perf.StartPhase(telemetry.PhaseEvaporate)
	s.trail.Evaporate()

	// Phase 5: telemetry.
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.tick++
	s.flushTelemetry()

	s.perf.EndTick()
	s.state = StateRunning
	return nil
}

// Run steps the simulation n times, stopping at the first error.
func (s *Simulation) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.trail, s.gatherHeadings())
	if s.opts.LogStats {
		stats.LogStats()
	}
	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	perfStats := s.perf.Compute()
	if s.opts.LogStats {
		perfStats.LogStats()
	}
	if s.opts.PerfCallback != nil {
		s.opts.PerfCallback(perfStats, s.tick)
	}
}

// gatherHeadings collects current agent headings into a reused buffer.
func (s *Simulation) gatherHeadings() []float32 {
	s.headingBuf = s.headingBuf[:0]
	query := s.agentFilter.Query()
	for query.Next() {
		_, rot, _ := query.Get()
		s.headingBuf = append(s.headingBuf, rot.Heading)
	}
	return s.headingBuf
}
