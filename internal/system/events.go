package system

import (
	"math"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

const (
	eventCheckFrames = 300
	eventChance      = 0.05
	eventMinLevel    = 3
	eventMsPerFrame  = 16.6

	ambushRadius   = 300
	ambushMs       = 5000
	bloodMoonMs    = 20000
	goldenRainMs   = 5000
	goldenRainXP   = 5
	ambushEliteMin = 0.8
)

// EventDirector starts and ends random world events. At most one event
// runs at a time; all director state is per session. Phase 2 (Update).
type EventDirector struct {
	deps     *Deps
	timer    float64
	previous world.Weather
}

func NewEventDirector(deps *Deps) *EventDirector {
	return &EventDirector{deps: deps}
}

func (s *EventDirector) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EventDirector) Update(_ time.Duration) {
	ws := s.deps.World
	if ev := ws.Event; ev != nil {
		ev.TimeLeft -= eventMsPerFrame * ws.Scale
		if ev.Kind == world.EventBloodMoon && ws.Chance(0.02) {
			s.deps.FX.Shake(2, 2)
		}
		if ev.TimeLeft <= 0 {
			s.end()
		}
		return
	}

	s.timer += ws.Scale
	if s.timer <= eventCheckFrames {
		return
	}
	s.timer = 0
	if ws.Stats.Level >= eventMinLevel && ws.Chance(eventChance) {
		s.Start(ws.Rand.Float64())
	}
}

// Start begins the event selected by roll: ambush below 0.4, blood moon
// below 0.7, golden rain otherwise. A blood moon during a blood moon
// weather does nothing.
func (s *EventDirector) Start(roll float64) {
	ws := s.deps.World
	if ws.Event != nil {
		return
	}
	switch {
	case roll < 0.4:
		s.ambush()
	case roll < 0.7:
		if ws.Weather == world.WeatherBloodMoon {
			return
		}
		s.bloodMoon()
	default:
		s.goldenRain()
	}
	if ws.Event == nil {
		return
	}
	event.Emit(s.deps.Bus, event.WorldEventStarted{Kind: ws.Event.Kind.String()})
	s.deps.Log.Info("world event started",
		zap.String("event", ws.Event.Kind.String()),
		zap.Int("level", ws.Stats.Level),
	)
}

func (s *EventDirector) begin(kind world.EventKind, name string, ms float64) {
	s.deps.World.Event = &world.ActiveEvent{Kind: kind, Name: name, TimeLeft: ms, Total: ms}
}

func (s *EventDirector) ambush() {
	d := s.deps
	ws := d.World
	pl := ws.Player
	s.begin(world.EventAmbush, "Ambush", ambushMs)
	d.FX.Sound(fx.SoundExplosion)
	d.FX.Shake(20, 20)
	d.FX.Text(pl.Pos.X, pl.Pos.Y-120, "#ef4444", 3, "AMBUSH!")

	n := 8 + ws.Rand.Intn(4)
	hp := d.Formulas.AmbushHP(ws.Stats.Level)
	for i := 0; i < n; i++ {
		a := float64(i) / float64(n) * 2 * math.Pi
		e := &world.Enemy{
			Body: world.Body{Pos: pl.Pos.Add(world.Polar(a, ambushRadius)), Radius: 20, Visual: "#7f1d1d"},
			Kind: world.EnemyChaser,
			HP:   hp, MaxHP: hp,
		}
		if ws.Rand.Float64() > ambushEliteMin {
			e.Elite = true
			e.Affix = world.AffixSpeed
		}
		ws.AddEnemy(e)
	}
}

func (s *EventDirector) bloodMoon() {
	d := s.deps
	ws := d.World
	s.previous = ws.Weather
	ws.Weather = world.WeatherBloodMoon
	s.begin(world.EventBloodMoon, "Blood Moon Rising", bloodMoonMs)
	d.FX.Sound(fx.SoundChargeReady)
	d.FX.Text(ws.Player.Pos.X, ws.Player.Pos.Y-120, "#ef4444", 2, "BLOOD MOON RISES")
}

func (s *EventDirector) goldenRain() {
	d := s.deps
	ws := d.World
	pl := ws.Player
	s.begin(world.EventGoldenRain, "Golden Rain", goldenRainMs)
	d.FX.Sound(fx.SoundUpgrade)
	d.FX.Text(pl.Pos.X, pl.Pos.Y-120, "#facc15", 2.5, "TREASURE NEARBY!")

	a := ws.Rand.Float64() * 2 * math.Pi
	ws.Props = append(ws.Props, &world.Prop{
		Body:   world.Body{Pos: pl.Pos.Add(world.Polar(a, ws.Roll(100, 200))), Radius: 25, Visual: "#facc15"},
		Kind:   world.PropChest,
		Active: true,
	})
	for i := 0; i < goldenRainXP; i++ {
		a := ws.Rand.Float64() * 2 * math.Pi
		ws.AddItem(&world.Item{
			Body: world.Body{Pos: pl.Pos.Add(world.Polar(a, ws.Roll(50, 100))), Radius: 8, Visual: "#facc15"},
			Kind: world.ItemXP,
		})
	}
}

// end reverses the running event once and clears it.
func (s *EventDirector) end() {
	d := s.deps
	ws := d.World
	ev := ws.Event
	if ev.Kind == world.EventBloodMoon {
		ws.Weather = s.previous
		d.FX.Text(ws.Player.Pos.X, ws.Player.Pos.Y-120, "#ffffff", 1, "THE BLOOD MOON FADES")
	}
	ws.Event = nil
	event.Emit(d.Bus, event.WorldEventEnded{Kind: ev.Kind.String()})
	d.Log.Debug("world event ended", zap.String("event", ev.Kind.String()))
}
