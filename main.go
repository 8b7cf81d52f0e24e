package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Mads-NL/SlimeSimulation/config"
	"github.com/Mads-NL/SlimeSimulation/renderer"
	"github.com/Mads-NL/SlimeSimulation/sim"
	"github.com/Mads-NL/SlimeSimulation/telemetry"
	"github.com/Mads-NL/SlimeSimulation/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per frame (higher = faster runs)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// CSV output, if requested
	var output *telemetry.OutputManager
	if *outputDir != "" {
		var err error
		output, err = telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
			os.Exit(1)
		}
		defer output.Close()
	}

	opts := sim.Options{
		Seed:     rngSeed,
		LogStats: *logStats,
	}
	if output != nil {
		opts.StatsCallback = func(stats telemetry.WindowStats) {
			if err := output.WriteTelemetry(stats); err != nil {
				slog.Error("failed to write telemetry row", "error", err)
			}
		}
		opts.PerfCallback = func(stats telemetry.PerfStats, windowEnd int32) {
			if err := output.WritePerf(stats, windowEnd); err != nil {
				slog.Error("failed to write perf row", "error", err)
			}
		}
	}

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Stop()

	if *headless {
		runHeadless(s, *maxTicks, *stepsPerUpdate, rngSeed)
		return
	}
	runViewer(s, cfg, *maxTicks, *stepsPerUpdate)
}

// runHeadless drives the simulation as fast as the CPU allows.
func runHeadless(s *sim.Simulation, maxTicks, stepsPerUpdate int, rngSeed int64) {
	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"agents", s.AgentCount(),
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	for {
		if err := s.Run(stepsPerUpdate); err != nil {
			slog.Error("simulation step failed", "error", err)
			return
		}
		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			return
		}
	}
}

// runViewer opens a raylib window with the trail view, HUD, and controls.
//
// Keys: SPACE pause, TAB controls panel, A agent overlay, P perf log,
// UP/DOWN sim speed.
func runViewer(s *sim.Simulation, cfg *config.Config, maxTicks, stepsPerUpdate int) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Slime Mold")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	gridW, gridH := s.Dims()

	trailView := renderer.NewTrailRenderer(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	trailView.Init(gridW, gridH, float32(cfg.Grid.MaxIntensity))
	defer trailView.Unload()

	hud := ui.NewHUD(10, 10)
	panel := ui.NewControlsPanel(int32(cfg.Screen.Width)-270, 10, 260)
	params := ui.Params{
		DiffusionRate:   float32(cfg.Trail.DiffusionRate),
		EvaporationRate: float32(cfg.Trail.EvaporationRate),
		SensorAngle:     float32(cfg.Sensors.Angle),
		SensorDistance:  float32(cfg.Sensors.Distance),
		TurnSpeed:       float32(cfg.Agents.TurnSpeed),
	}

	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	paused := false
	showAgents := false

	var agentXs, agentYs []float32

	for !rl.WindowShouldClose() {
		// Input
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsKeyPressed(rl.KeyTab) {
			panel.Toggle()
		}
		if rl.IsKeyPressed(rl.KeyA) {
			showAgents = !showAgents
		}
		if rl.IsKeyPressed(rl.KeyP) {
			s.LogPerfStats()
		}
		if rl.IsKeyPressed(rl.KeyUp) {
			stepsPerUpdate++
		}
		if rl.IsKeyPressed(rl.KeyDown) && stepsPerUpdate > 1 {
			stepsPerUpdate--
		}

		// Simulate
		if !paused {
			if err := s.Run(stepsPerUpdate); err != nil {
				slog.Error("simulation step failed", "error", err)
				break
			}
		}
		s.Perf().RecordFrame()

		// Draw
		trailView.Update(s.Snapshot())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		trailView.Draw()

		if showAgents {
			poses := s.AgentPositions()
			agentXs = agentXs[:0]
			agentYs = agentYs[:0]
			for _, p := range poses {
				agentXs = append(agentXs, p.X)
				agentYs = append(agentYs, p.Y)
			}
			trailView.DrawAgents(agentXs, agentYs, rl.Color{R: 255, G: 240, B: 200, A: 180})
		}

		hud.Draw(ui.HUDState{
			Tick:          s.Tick(),
			Agents:        s.AgentCount(),
			TotalMass:     s.Trail().TotalMass(),
			StepsPerFrame: stepsPerUpdate,
			Paused:        paused,
		})

		if panel.Draw(&params) {
			s.SetTrailParams(float64(params.DiffusionRate), float64(params.EvaporationRate))
			s.SetSensorParams(float64(params.SensorAngle), float64(params.SensorDistance), float64(params.TurnSpeed))
		}

		rl.EndDrawing()

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			break
		}
	}
}
