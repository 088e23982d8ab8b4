// Package game owns one play session: the world state, the systems that
// advance it and the tick that drives them.
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/mapgen"
	"github.com/neonronin/survivor/internal/scripting"
	"github.com/neonronin/survivor/internal/system"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

// frameMs is the reference frame length per-frame quantities are tuned for.
const frameMs = 1000.0 / 60

// tickBudget is the wall time one tick may take before it is logged.
const tickBudget = time.Second / 60

// Options select the run a session plays.
type Options struct {
	Class        string
	StartMap     string
	Weather      string
	Seed         int64
	MaxTimeScale float64
	Sink         system.RunSink // optional
	RNG          world.RNG      // optional; seeded from Seed when nil
}

// Session is safe for concurrent use: one goroutine ticks while others send
// input and read snapshots.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	deps     *system.Deps
	runner   *coresys.Runner
	prog     *system.ProgressionSystem
	snap     *system.SnapshotSystem
	paused   bool
	ended    bool
	maxScale float64
	seed     int64
	mapSeq   int64

	published atomic.Pointer[system.Snapshot]
}

// NewSession builds the world for opts and registers every system in tick
// order.
func NewSession(t *Tables, formulas scripting.Formulas, opts Options, log *zap.Logger) (*Session, error) {
	entry := t.Classes.Get(opts.Class)
	if entry == nil {
		return nil, fmt.Errorf("new session: unknown class %q", opts.Class)
	}
	stats, err := classStats(entry)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	startMap, ok := world.ParseMapKind(opts.StartMap)
	if !ok {
		return nil, fmt.Errorf("new session: unknown map %q", opts.StartMap)
	}
	weather, ok := world.ParseWeather(opts.Weather)
	if !ok {
		return nil, fmt.Errorf("new session: unknown weather %q", opts.Weather)
	}
	if formulas == nil {
		formulas = scripting.Defaults{}
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	s := &Session{
		ID:       uuid.New(),
		maxScale: opts.MaxTimeScale,
		seed:     opts.Seed,
	}
	if s.maxScale < 1 {
		s.maxScale = 4
	}

	ws := world.NewState(rng)
	layout := mapgen.Generate(startMap, opts.Seed)
	layout.Apply(ws)
	ws.Weather = weather
	ws.Player = world.NewPlayer(stats, layout.Center())

	s.deps = &system.Deps{
		World:    ws,
		Bus:      event.NewBus(),
		FX:       fx.NewQueue(),
		Log:      log.With(zap.String("session", s.ID.String())),
		Formulas: formulas,
		Controls: &system.Controls{},
		Classes:  t.Classes,
		Upgrades: t.Upgrades,
		Enemies:  t.Enemies,
		Bosses:   t.Bosses,
		LoadMap:  s.loadMap,
	}
	s.register(opts.Sink)

	snap := s.snap.Build()
	s.published.Store(&snap)
	s.deps.Log.Info("session started",
		zap.String("class", opts.Class),
		zap.String("map", startMap.String()),
		zap.String("weather", weather.String()),
		zap.Int64("seed", opts.Seed),
	)
	return s, nil
}

func (s *Session) register(sink system.RunSink) {
	d := s.deps
	r := coresys.NewRunner()

	movement := system.NewMovementSystem(d)
	combat := system.NewCombatSystem(d)
	boss := system.NewBossSystem(d)
	spawner := system.NewSpawnSystem(d)
	loot := system.NewLootSystem(d)
	s.prog = system.NewProgressionSystem(d)
	s.snap = system.NewSnapshotSystem(d, s.prog)

	r.Register(system.NewInputSystem(d.Controls))
	r.Register(system.NewScheduleSystem(d))

	r.Register(movement)
	r.Register(system.NewInteractSystem(d, boss, loot, spawner))
	r.Register(combat)
	r.Register(system.NewSkillSystem(d))
	r.Register(system.NewDroneSystem(d))
	r.Register(system.NewOrbiterSystem(d))
	r.Register(system.NewProjectileSystem(d))
	r.Register(system.NewEnemySystem(d))
	r.Register(spawner)
	r.Register(boss)
	r.Register(system.NewEventDirector(d))

	r.Register(loot)
	r.Register(s.prog)

	r.Register(s.snap)
	r.Register(system.NewLedgerSystem(d, s.ID, sink))
	r.Register(system.NewParticleSystem(d))
	s.runner = r
}

func (s *Session) loadMap(st *world.State, kind world.MapKind) {
	s.mapSeq++
	mapgen.Generate(kind, s.seed+s.mapSeq).Apply(st)
}

// Tick advances the session by one frame of rawDelta real time. A paused,
// finished or upgrade-choosing session does not move.
func (s *Session) Tick(rawDelta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.deps.World
	if s.paused || s.prog.Pending() || ws.Stats.GameOver {
		return
	}
	rawDelta = max(0, rawDelta)
	ms := float64(rawDelta) / float64(time.Millisecond)
	ws.Scale = min(ms/frameMs, s.maxScale)
	ws.Now += ms
	ws.Frame++
	ws.Stats.Elapsed += ms

	ws.Spatial.Rebuild(ws.Enemies)
	s.deps.Bus.SwapBuffers()
	s.deps.Bus.DispatchAll()
	s.runner.Tick(rawDelta)
	if times := s.runner.LastTick(); times.Total() > tickBudget {
		phase, took := times.Slowest()
		s.deps.Log.Debug("slow tick",
			zap.Duration("total", times.Total()),
			zap.Stringer("phase", phase),
			zap.Duration("phase_took", took),
		)
	}

	if ws.Stats.GameOver && !s.ended {
		s.ended = true
		s.deps.Bus.SwapBuffers()
		s.deps.Bus.DispatchAll()
		s.runner.TickPhase(coresys.PhasePersist, rawDelta)
		s.deps.Log.Info("session over",
			zap.Int("score", ws.Stats.Score),
			zap.Int("kills", ws.Stats.Kills),
			zap.Float64("elapsed_ms", ws.Stats.Elapsed),
		)
	}
	s.publish(s.snap.Latest())
}

func (s *Session) publish(snap system.Snapshot) {
	snap.Paused = snap.Paused || s.paused
	s.published.Store(&snap)
}

// Snapshot returns the view published by the last tick or control call.
func (s *Session) Snapshot() system.Snapshot {
	return *s.published.Load()
}

// Drain returns and clears the queued presentation commands.
func (s *Session) Drain() []fx.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.FX.Drain()
}

// SetInput latches the latest input frame for the next tick.
func (s *Session) SetInput(f system.InputFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Controls.Set(f)
}

// SteerWith computes the next input frame from the live state under the
// session lock and latches it.
func (s *Session) SteerWith(pilot func(ws *world.State) system.InputFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Controls.Set(pilot(s.deps.World))
}

func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused == paused {
		return
	}
	s.paused = paused
	s.publish(s.snap.Build())
	s.deps.Log.Debug("pause toggled", zap.Bool("paused", paused))
}

// ChooseUpgrade applies a pending offer. The session resumes once no offer
// is left.
func (s *Session) ChooseUpgrade(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prog.Choose(id); err != nil {
		return err
	}
	s.publish(s.snap.Build())
	return nil
}

// Over reports whether the run has ended.
func (s *Session) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.World.Stats.GameOver
}

// World returns the live state. Only safe on the goroutine that ticks.
func (s *Session) World() *world.State { return s.deps.World }
