package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/Mads-NL/SlimeSimulation/components"
	"github.com/Mads-NL/SlimeSimulation/config"
	"github.com/Mads-NL/SlimeSimulation/systems"
	"github.com/Mads-NL/SlimeSimulation/telemetry"
)

// ErrInvalidState is returned when an operation is attempted in a lifecycle
// state that does not allow it.
var ErrInvalidState = errors.New("invalid simulation state")

// State is the simulation lifecycle state.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// AgentPose is one agent's position and heading, for overlays and inspection.
type AgentPose struct {
	X, Y    float32
	Heading float32
}

// Options configures a Simulation beyond what the config file provides.
type Options struct {
	// Seed fixes the RNG used for spawning and steering jitter. The same
	// seed and config always produce the same trajectory, regardless of
	// the number of workers.
	Seed int64

	// LogStats enables periodic slog output of window and perf stats.
	LogStats bool

	// StatsCallback, if set, receives each completed telemetry window.
	StatsCallback func(telemetry.WindowStats)

	// PerfCallback, if set, receives perf stats at each window boundary.
	PerfCallback func(telemetry.PerfStats, int32)

	// SpawnPoses, if non-empty, replaces random spawning with exactly
	// these poses at the configured base speed. Overrides Agents.Count.
	SpawnPoses []AgentPose
}

// Simulation holds the complete simulation state: the agent population in
// the ECS world and the shared trail field they communicate through.
type Simulation struct {
	world *ecs.World
	rng   *rand.Rand

	agentMapper *ecs.Map3[
		components.Position,
		components.Rotation,
		components.Motion,
	]
	agentFilter *ecs.Filter3[
		components.Position,
		components.Rotation,
		components.Motion,
	]

	// Individual component mappers for lookups during intent application.
	posMap *ecs.Map1[components.Position]
	rotMap *ecs.Map1[components.Rotation]

	trail  *systems.TrailField
	sensor systems.SensorSettings

	parallel *parallelState

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	cfg  *config.Config
	opts Options

	agentCount    int
	depositAmount float32
	dt            float32
	worldW        float32
	worldH        float32
	jitterSeed    uint32

	headingBuf []float32

	tick  int32
	state State
}

// New builds a Simulation from a validated config. The returned simulation
// is in StateReady; call Step to advance it.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	world := ecs.NewWorld()

	s := &Simulation{
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),

		agentMapper: ecs.NewMap3[
			components.Position,
			components.Rotation,
			components.Motion,
		](world),
		agentFilter: ecs.NewFilter3[
			components.Position,
			components.Rotation,
			components.Motion,
		](world),
		posMap: ecs.NewMap1[components.Position](world),
		rotMap: ecs.NewMap1[components.Rotation](world),

		cfg:  cfg,
		opts: opts,

		agentCount:    cfg.Agents.Count,
		depositAmount: float32(cfg.Agents.DepositAmount),
		dt:            cfg.Derived.DT32,
		worldW:        cfg.Derived.GridW32,
		worldH:        cfg.Derived.GridH32,
		jitterSeed:    uint32(opts.Seed) ^ uint32(uint64(opts.Seed)>>32),

		state: StateUninitialized,
	}

	s.trail = systems.NewTrailField(cfg.Grid.Width, cfg.Grid.Height, cfg.Derived.MaxIntensity32)
	s.trail.SetParams(
		float32(cfg.Trail.DiffusionRate),
		float32(cfg.Trail.EvaporationRate),
		cfg.Trail.Kernel,
	)

	s.sensor = systems.SensorSettings{
		Angle:     float32(cfg.Sensors.Angle),
		Distance:  float32(cfg.Sensors.Distance),
		Radius:    cfg.Sensors.Radius,
		MaxTurn:   cfg.Derived.MaxTurnPerTick,
		TieJitter: float32(cfg.Sensors.TieJitter),
	}

	s.parallel = newParallelState()
	s.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, s.dt)
	s.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	s.spawnAgents()
	s.state = StateReady
	return s, nil
}

// spawnAgents seeds the initial population with random poses. Speed jitter
// spreads per-agent speed around the configured base so a dense blob does
// not march in lockstep.
func (s *Simulation) spawnAgents() {
	base := float32(s.cfg.Agents.Speed)
	jitter := float32(s.cfg.Agents.SpeedJitter)

	if len(s.opts.SpawnPoses) > 0 {
		s.agentCount = len(s.opts.SpawnPoses)
		for _, p := range s.opts.SpawnPoses {
			pos := components.Position{X: mod(p.X, s.worldW), Y: mod(p.Y, s.worldH)}
			rot := components.Rotation{Heading: wrapHeading(p.Heading)}
			mot := components.Motion{Speed: base}
			s.agentMapper.NewEntity(&pos, &rot, &mot)
		}
		return
	}

	for i := 0; i < s.agentCount; i++ {
		speed := base
		if jitter > 0 {
			speed *= 1 + (s.rng.Float32()*2-1)*jitter
			if speed < 0 {
				speed = 0
			}
		}
		pos := components.Position{
			X: s.rng.Float32() * s.worldW,
			Y: s.rng.Float32() * s.worldH,
		}
		rot := components.Rotation{Heading: s.rng.Float32() * 2 * math.Pi}
		mot := components.Motion{Speed: speed}
		s.agentMapper.NewEntity(&pos, &rot, &mot)
	}
}

// SpawnAt adds a single agent with an explicit pose. Intended for tests
// and interactive seeding; counts toward AgentCount.
func (s *Simulation) SpawnAt(x, y, heading, speed float32) {
	pos := components.Position{X: mod(x, s.worldW), Y: mod(y, s.worldH)}
	rot := components.Rotation{Heading: wrapHeading(heading)}
	mot := components.Motion{Speed: speed}
	s.agentMapper.NewEntity(&pos, &rot, &mot)
	s.agentCount++
}

// Stop shuts the worker pool down and moves the simulation to StateStopped.
// A stopped simulation rejects further Step calls but its accessors keep
// working, so the final field and poses remain inspectable.
func (s *Simulation) Stop() {
	if s.state == StateStopped {
		return
	}
	s.parallel.stopWorkers()
	s.state = StateStopped
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// State returns the current lifecycle state.
func (s *Simulation) State() State {
	return s.state
}

// Dims returns the trail grid dimensions in cells.
func (s *Simulation) Dims() (w, h int) {
	return s.trail.GridSize()
}

// Snapshot returns the current trail grid, row-major, indexed [y*W + x].
// The slice aliases live simulation state; callers must not mutate it and
// must copy it if they keep it across a Step.
func (s *Simulation) Snapshot() []float32 {
	return s.trail.Snapshot()
}

// Trail exposes the underlying field for rendering and telemetry.
func (s *Simulation) Trail() *systems.TrailField {
	return s.trail
}

// AgentPositions returns every agent's pose. The slice is rebuilt on each
// call and is safe to retain. The order is the ECS iteration order, which
// is stable between calls as long as no agents are added.
func (s *Simulation) AgentPositions() []AgentPose {
	poses := make([]AgentPose, 0, s.agentCount)
	query := s.agentFilter.Query()
	for query.Next() {
		pos, rot, _ := query.Get()
		poses = append(poses, AgentPose{X: pos.X, Y: pos.Y, Heading: rot.Heading})
	}
	return poses
}

// AgentCount returns the number of live agents.
func (s *Simulation) AgentCount() int {
	return s.agentCount
}

// Perf exposes the perf collector for external sampling (e.g. frame rate
// recording by a viewer loop).
func (s *Simulation) Perf() *telemetry.PerfCollector {
	return s.perf
}

// Config returns the active configuration. Callers must treat it as
// read-only; use SetTrailParams and SetSensorParams for live tuning.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// SetTrailParams retunes diffusion and evaporation at runtime. Values are
// clamped to [0, 1]; the kernel is unchanged.
func (s *Simulation) SetTrailParams(diffusionRate, evaporationRate float64) {
	d := clamp01(float32(diffusionRate))
	e := clamp01(float32(evaporationRate))
	s.cfg.Trail.DiffusionRate = float64(d)
	s.cfg.Trail.EvaporationRate = float64(e)
	s.trail.SetParams(d, e, s.cfg.Trail.Kernel)
}

// SetSensorParams retunes the steering sensors at runtime.
func (s *Simulation) SetSensorParams(angle, distance, turnSpeed float64) {
	if angle < 0 {
		angle = 0
	}
	if distance < 0 {
		distance = 0
	}
	if turnSpeed < 0 {
		turnSpeed = 0
	}
	s.cfg.Sensors.Angle = angle
	s.cfg.Sensors.Distance = distance
	s.cfg.Agents.TurnSpeed = turnSpeed
	s.cfg.ComputeDerived()
	s.sensor.Angle = float32(angle)
	s.sensor.Distance = float32(distance)
	s.sensor.MaxTurn = s.cfg.Derived.MaxTurnPerTick
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
