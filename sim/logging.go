package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/Mads-NL/SlimeSimulation/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogPerfStats logs the per-phase performance breakdown.
func (s *Simulation) LogPerfStats() {
	stats := s.perf.Compute()

	Logf("=== Perf @ Tick %d ===", s.tick)
	Logf("Avg step time: %s (%.0f ticks/sec)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond)

	for _, phase := range telemetry.PhaseOrder() {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]
		Logf("  %-10s %10s  %5.1f%%", phase, avg.Round(time.Microsecond), pct)
	}
}

// LogTrailState logs a one-line summary of the trail field.
func (s *Simulation) LogTrailState() {
	grid := s.trail.Snapshot()
	fs := telemetry.ComputeFieldStats(grid, float64(s.cfg.Derived.MaxIntensity32))
	Logf("Trail @ Tick %d: mass=%.2f mean=%.4f max=%.4f occupied=%.1f%% saturated=%.1f%%",
		s.tick, s.trail.TotalMass(), fs.Mean, fs.Max,
		fs.Occupied*100, fs.Saturated*100)
}
