package sim

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/Mads-NL/SlimeSimulation/components"
	"github.com/Mads-NL/SlimeSimulation/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// agentSnapshot captures read-only state for parallel processing.
type agentSnapshot struct {
	Entity ecs.Entity
	Pos    components.Position
	Rot    components.Rotation
	Mot    components.Motion
}

// intent captures computed outputs to apply after the parallel phase.
type intent struct {
	NewHeading float32
	NewX       float32
	NewY       float32
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	tick       int32
}

// parallelState holds resources for parallel behavior computation.
type parallelState struct {
	snapshots  []agentSnapshot
	intents    []intent
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]agentSnapshot, 0, 512),
		intents:    make([]intent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, chunk.tick)
			p.doneChan <- struct{}{}
		}
	}
}

// computeIntents runs the sense-and-decide phase, parallel when the
// population is large enough. Snapshots are taken single-threaded so every
// agent sees the world as it stood at the start of the tick.
func (s *Simulation) computeIntents() {
	p := s.parallel

	// Phase A: build snapshots (single-threaded).
	p.snapshots = p.snapshots[:0]
	query := s.agentFilter.Query()
	for query.Next() {
		pos, rot, mot := query.Get()
		p.snapshots = append(p.snapshots, agentSnapshot{
			Entity: query.Entity(),
			Pos:    *pos,
			Rot:    *rot,
			Mot:    *mot,
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}

	if cap(p.intents) < n {
		p.intents = make([]intent, n)
	}
	p.intents = p.intents[:n]

	// Phase B: compute, single or parallel based on agent count. The
	// result depends only on (seed, tick, agent index), never on which
	// worker ran which chunk.
	if n < parallelThreshold {
		s.computeChunk(0, n, s.tick)
	} else {
		s.computeParallel(n)
	}
}

// computeParallel dispatches work to the worker pool.
func (s *Simulation) computeParallel(n int) {
	p := s.parallel
	if !p.running {
		p.startWorkers(s)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, tick: s.tick}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk senses and steers agents [i0, i1). Reads snapshots and the
// trail field, writes intents. Safe to run concurrently with other chunks.
func (s *Simulation) computeChunk(i0, i1 int, tick int32) {
	st := s.sensor
	dt := s.dt

	for i := i0; i < i1; i++ {
		snap := &s.parallel.snapshots[i]
		it := &s.parallel.intents[i]

		front := systems.SenseProbe(s.trail, snap.Pos.X, snap.Pos.Y, snap.Rot.Heading, 0, st)
		left := systems.SenseProbe(s.trail, snap.Pos.X, snap.Pos.Y, snap.Rot.Heading, st.Angle, st)
		right := systems.SenseProbe(s.trail, snap.Pos.X, snap.Pos.Y, snap.Rot.Heading, -st.Angle, st)

		r := systems.SteerRand(s.jitterSeed, tick, i)
		heading := wrapHeading(snap.Rot.Heading + systems.Steer(front, left, right, r, st))

		dist := snap.Mot.Speed * dt
		it.NewHeading = heading
		it.NewX = mod(snap.Pos.X+fastCos(heading)*dist, s.worldW)
		it.NewY = mod(snap.Pos.Y+fastSin(heading)*dist, s.worldH)
	}
}

// applyIntents writes computed results back to ECS components and deposits
// trail at each agent's new cell. Single-threaded in stable agent order,
// which keeps saturating deposits deterministic.
func (s *Simulation) applyIntents() {
	amount := s.depositAmount

	for i := range s.parallel.snapshots {
		snap := &s.parallel.snapshots[i]
		it := &s.parallel.intents[i]

		pos := s.posMap.Get(snap.Entity)
		rot := s.rotMap.Get(snap.Entity)
		if pos == nil || rot == nil {
			continue
		}

		rot.Heading = it.NewHeading
		pos.X = it.NewX
		pos.Y = it.NewY

		absorbed := s.trail.Deposit(it.NewX, it.NewY, amount)
		s.collector.RecordDeposit(amount, absorbed)
	}
}
