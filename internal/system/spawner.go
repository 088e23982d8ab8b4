package system

import (
	"math"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

// SpawnSystem adds ambient enemies on a ring around the player at an
// interval that shrinks with the wave. Phase 2 (Update).
type SpawnSystem struct {
	deps      *Deps
	lastSpawn float64
}

func NewSpawnSystem(deps *Deps) *SpawnSystem {
	return &SpawnSystem{deps: deps}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	d := s.deps
	ws := d.World
	if ws.Now-s.lastSpawn < d.Formulas.SpawnInterval(ws.Stats.Wave) {
		return
	}
	if len(ws.Enemies) >= d.Enemies.Spawn.Cap {
		return
	}
	if s.Spawn() != nil {
		s.lastSpawn = ws.Now
	}
}

// Spawn places one enemy from the current map's roster on the spawn ring,
// clamped inside the map.
func (s *SpawnSystem) Spawn() *world.Enemy {
	d := s.deps
	ws := d.World
	sp := d.Enemies.Spawn

	size := ws.Map.Size()
	angle := ws.Rand.Float64() * 2 * math.Pi
	pos := ws.Player.Pos.Add(world.Polar(angle, sp.RingRadius))
	pos.X = clamp(pos.X, sp.EdgeMargin, size.X-sp.EdgeMargin)
	pos.Y = clamp(pos.Y, sp.EdgeMargin, size.Y-sp.EdgeMargin)

	entry, ok := d.Enemies.Pick(ws.MapKind.String(), ws.Rand.Float64())
	if !ok {
		return nil
	}
	kind, ok := world.ParseEnemyKind(entry.Kind)
	if !ok {
		d.Log.Warn("unknown enemy kind in roster", zap.String("kind", entry.Kind))
		return nil
	}

	hp := entry.HP * d.Formulas.EnemyHPScale(ws.Stats.Level)
	e := &world.Enemy{
		Body: world.Body{Pos: pos, Radius: entry.Radius, Visual: entry.Visual},
		Kind: kind,
	}
	if kind == world.EnemyShooter {
		e.AttackTimer = ws.Rand.Float64() * 100
	}

	if ws.Stats.Level >= sp.EliteMinLevel && ws.Chance(sp.EliteChance) {
		e.Elite = true
		hp *= sp.EliteHPMult
		switch roll := ws.Rand.Float64(); {
		case roll < 0.33:
			e.Affix = world.AffixSpeed
			e.Visual = "#3b82f6"
		case roll < 0.66:
			e.Affix = world.AffixTank
			e.Visual = "#facc15"
			hp *= sp.TankAffixHPMult
			e.Radius *= sp.TankAffixRadiusMult
		default:
			e.Affix = world.AffixExplosive
			e.Visual = "#ef4444"
		}
	}
	e.HP, e.MaxHP = hp, hp
	return ws.AddEnemy(e)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
