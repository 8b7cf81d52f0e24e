package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/Mads-NL/SlimeSimulation/config"
	"github.com/Mads-NL/SlimeSimulation/systems"
)

// testConfig returns a small deterministic configuration: no diffusion, no
// evaporation, no steering, unit speed on a unit timestep.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	cfg.Grid.Width = 10
	cfg.Grid.Height = 10
	cfg.Grid.MaxIntensity = 1.0
	cfg.Physics.DT = 1.0
	cfg.Agents.Count = 1
	cfg.Agents.Speed = 1.0
	cfg.Agents.SpeedJitter = 0
	cfg.Agents.TurnSpeed = 0
	cfg.Agents.DepositAmount = 1.0
	cfg.Sensors.Distance = 0
	cfg.Sensors.Radius = 0
	cfg.Sensors.TieJitter = 0
	cfg.Trail.DiffusionRate = 0
	cfg.Trail.EvaporationRate = 0
	cfg.ComputeDerived()
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Grid.Width = 0

	_, err := New(cfg, Options{Seed: 1})
	if err == nil {
		t.Fatal("expected error for zero-width grid")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error %v does not wrap ErrInvalidConfig", err)
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, Options{})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error %v does not wrap ErrInvalidConfig", err)
	}
}

func TestLifecycle(t *testing.T) {
	s, err := New(testConfig(t), Options{Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.State() != StateReady {
		t.Errorf("state after New = %v, want ready", s.State())
	}
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.State() != StateRunning {
		t.Errorf("state after Step = %v, want running", s.State())
	}

	s.Stop()
	if s.State() != StateStopped {
		t.Errorf("state after Stop = %v, want stopped", s.State())
	}

	err = s.Step()
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Step after Stop = %v, want ErrInvalidState", err)
	}

	// Stop is idempotent
	s.Stop()
	if s.State() != StateStopped {
		t.Errorf("state after second Stop = %v, want stopped", s.State())
	}
}

func TestSingleAgentMovesAndDeposits(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{
		Seed:       1,
		SpawnPoses: []AgentPose{{X: 5, Y: 5, Heading: 0}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	poses := s.AgentPositions()
	if len(poses) != 1 {
		t.Fatalf("agent count = %d, want 1", len(poses))
	}
	if math.Abs(float64(poses[0].X-6)) > 1e-4 || math.Abs(float64(poses[0].Y-5)) > 1e-4 {
		t.Errorf("pose = (%v, %v), want (6, 5)", poses[0].X, poses[0].Y)
	}

	// The trail lands in the cell the agent moved into, at full strength
	grid := s.Snapshot()
	w, _ := s.Dims()
	if got := grid[5*w+6]; got != 1.0 {
		t.Errorf("trail at destination cell = %v, want 1.0", got)
	}
	for i, v := range grid {
		if i != 5*w+6 && v != 0 {
			t.Errorf("unexpected trail at cell %d: %v", i, v)
		}
	}
}

func TestToroidalWrap(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{
		Seed:       1,
		SpawnPoses: []AgentPose{{X: 9.5, Y: 5, Heading: 0}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	poses := s.AgentPositions()
	if math.Abs(float64(poses[0].X-0.5)) > 1e-4 {
		t.Errorf("wrapped X = %v, want 0.5", poses[0].X)
	}
	if math.Abs(float64(poses[0].Y-5)) > 1e-4 {
		t.Errorf("Y = %v, want 5", poses[0].Y)
	}
}

func TestStationaryAgentSaturatesCell(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agents.Speed = 0
	cfg.Agents.DepositAmount = 0.6

	s, err := New(cfg, Options{
		Seed:       1,
		SpawnPoses: []AgentPose{{X: 3.5, Y: 3.5, Heading: 0}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if err := s.Run(3); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 0.6 + 0.6 clips to the 1.0 cap; the third deposit absorbs nothing
	if got := s.Trail().Sample(3.5, 3.5); got != 1.0 {
		t.Errorf("saturated cell = %v, want 1.0", got)
	}
}

func TestSteeringMatchesSensorPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Grid.Width = 20
	cfg.Grid.Height = 20
	cfg.Agents.TurnSpeed = 1.0
	cfg.Sensors.Distance = 3
	cfg.Sensors.Angle = 0.78
	cfg.ComputeDerived()

	s, err := New(cfg, Options{
		Seed:       99,
		SpawnPoses: []AgentPose{{X: 10, Y: 10, Heading: 0}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	// Bait the left probe before stepping
	lx, ly := systems.ProbePoint(10, 10, 0, s.sensor.Angle, s.sensor.Distance)
	s.trail.Deposit(lx, ly, 1.0)

	front := systems.SenseProbe(s.trail, 10, 10, 0, 0, s.sensor)
	left := systems.SenseProbe(s.trail, 10, 10, 0, s.sensor.Angle, s.sensor)
	right := systems.SenseProbe(s.trail, 10, 10, 0, -s.sensor.Angle, s.sensor)
	r := systems.SteerRand(s.jitterSeed, 0, 0)
	want := wrapHeading(systems.Steer(front, left, right, r, s.sensor))

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	got := s.AgentPositions()[0].Heading
	if math.Abs(float64(got-want)) > 1e-4 {
		t.Errorf("heading after step = %v, want %v", got, want)
	}
	// The baited left probe dominates, so the turn is r*MaxTurn leftward
	if r > 0 && (want <= 0 || want > s.sensor.MaxTurn+1e-6) {
		t.Errorf("expected left turn within max turn, got delta %v (r=%v)", want, r)
	}
}

func TestDeterminismAcrossRuns(t *testing.T) {
	run := func() ([]float32, []AgentPose) {
		cfg, err := config.Load("")
		if err != nil {
			t.Fatalf("loading defaults: %v", err)
		}
		cfg.Grid.Width = 64
		cfg.Grid.Height = 48
		cfg.Agents.Count = 200 // well past the parallel threshold
		cfg.ComputeDerived()

		s, err := New(cfg, Options{Seed: 42})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer s.Stop()

		if err := s.Run(25); err != nil {
			t.Fatalf("Run: %v", err)
		}

		grid := make([]float32, len(s.Snapshot()))
		copy(grid, s.Snapshot())
		return grid, s.AgentPositions()
	}

	gridA, posesA := run()
	gridB, posesB := run()

	for i := range gridA {
		if gridA[i] != gridB[i] {
			t.Fatalf("grids diverge at cell %d: %v vs %v", i, gridA[i], gridB[i])
		}
	}
	if len(posesA) != len(posesB) {
		t.Fatalf("pose counts diverge: %d vs %d", len(posesA), len(posesB))
	}
	for i := range posesA {
		if posesA[i] != posesB[i] {
			t.Fatalf("poses diverge at agent %d: %+v vs %+v", i, posesA[i], posesB[i])
		}
	}
}

func TestTickCounter(t *testing.T) {
	s, err := New(testConfig(t), Options{Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if s.Tick() != 0 {
		t.Errorf("initial tick = %d, want 0", s.Tick())
	}
	if err := s.Run(5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Tick() != 5 {
		t.Errorf("tick after 5 steps = %d, want 5", s.Tick())
	}
}

func TestSetTrailParamsClamps(t *testing.T) {
	s, err := New(testConfig(t), Options{Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	s.SetTrailParams(1.5, -0.2)
	if s.Trail().DiffusionRate != 1.0 {
		t.Errorf("diffusion = %v, want clamped to 1.0", s.Trail().DiffusionRate)
	}
	if s.Trail().EvaporationRate != 0 {
		t.Errorf("evaporation = %v, want clamped to 0", s.Trail().EvaporationRate)
	}
}

func TestAgentPositionsInDomain(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agents.Count = 50
	cfg.Agents.TurnSpeed = 2.5
	cfg.Sensors.TieJitter = 0.1
	cfg.ComputeDerived()

	s, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if err := s.Run(50); err != nil {
		t.Fatalf("Run: %v", err)
	}

	w, h := s.Dims()
	for i, p := range s.AgentPositions() {
		if p.X < 0 || p.X >= float32(w) || p.Y < 0 || p.Y >= float32(h) {
			t.Errorf("agent %d outside domain: (%v, %v)", i, p.X, p.Y)
		}
	}
}
