package system

import (
	"math"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

const (
	bossIntroRate     = 0.02
	bossFirstAttackMs = 2000
	bossHazardFrames  = 240
	bossPhaseKnock    = 30
)

// BossSystem drives the living boss through its intro and phases and fires
// its attack patterns and hazards. Phase 2 (Update).
type BossSystem struct {
	deps *Deps
}

func NewBossSystem(deps *Deps) *BossSystem {
	return &BossSystem{deps: deps}
}

func (s *BossSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Summon spawns the boss of the current map at pos. It returns nil when a
// boss is already present or the map has none.
func (s *BossSystem) Summon(pos world.Vec2) *world.Enemy {
	d := s.deps
	ws := d.World
	if ws.Boss() != nil {
		return nil
	}
	entry := d.Bosses.ForMap(ws.MapKind.String())
	if entry == nil {
		return nil
	}
	kind, ok := world.ParseBossKind(entry.Kind)
	if !ok {
		d.Log.Warn("unknown boss kind", zap.String("kind", entry.Kind))
		return nil
	}

	hp := d.Formulas.BossMaxHP(entry.HPMultiplier, ws.Stats.Level)
	boss := ws.AddEnemy(&world.Enemy{
		Body: world.Body{Pos: pos, Radius: entry.Radius, Visual: entry.Visual},
		Kind: world.EnemyBoss,
		HP:   hp, MaxHP: hp,
		Boss: &world.BossState{
			Kind:          kind,
			Name:          entry.Name,
			Title:         entry.Title,
			Phase:         world.BossIntro,
			Thresholds:    entry.Phases,
			BaseDamage:    entry.BaseDamage,
			AttackReadyAt: ws.Now + bossFirstAttackMs,
			HazardTimer:   bossHazardFrames,
		},
	})

	d.FX.Text(pos.X, pos.Y-120, entry.Visual, 3, entry.Title)
	d.FX.Shake(60, 60)
	d.FX.Sound(fx.SoundExplosion)
	event.Emit(d.Bus, event.BossSpawned{Name: entry.Name, MaxHP: hp})
	d.Log.Info("boss spawned",
		zap.String("boss", entry.Name),
		zap.Float64("max_hp", hp),
		zap.Int("level", ws.Stats.Level),
	)
	return boss
}

func (s *BossSystem) Update(_ time.Duration) {
	d := s.deps
	ws := d.World
	boss := ws.Boss()
	if boss == nil || boss.Dying() {
		return
	}
	st := boss.Boss

	if st.Phase == world.BossIntro {
		st.Alpha += bossIntroRate * ws.Scale
		if st.Alpha >= 1 {
			st.Alpha = 1
			st.Phase = world.BossPhase1
			d.FX.Text(boss.Pos.X, boss.Pos.Y-100, "#ffffff", 2, "FIGHT!")
		}
		return
	}

	if st.Phase == world.BossPhase1 && len(st.Thresholds) > 0 && boss.HP/boss.MaxHP < st.Thresholds[0] {
		s.enterPhase2(boss)
	}

	entry := d.Bosses.Get(st.Kind.String())
	if entry == nil {
		return
	}
	if ws.Now >= st.AttackReadyAt {
		cooldown := 2500.0
		if st.Phase == world.BossPhase2 {
			cooldown = 1500
		}
		st.AttackReadyAt = ws.Now + cooldown + ws.Rand.Float64()*1000
		if pattern, ok := entry.PickAttack(ws.Rand.Float64(), st.Phase == world.BossPhase2); ok {
			s.attack(boss, pattern)
		}
	}

	st.HazardTimer -= ws.Scale
	if st.HazardTimer <= 0 {
		st.HazardTimer = bossHazardFrames
		s.hazard(boss, entry)
	}
}

func (s *BossSystem) enterPhase2(boss *world.Enemy) {
	d := s.deps
	pl := d.World.Player
	st := boss.Boss
	st.Phase = world.BossPhase2
	d.FX.Text(boss.Pos.X, boss.Pos.Y-100, "#facc15", 2.5, "PHASE TWO!")
	d.FX.Shake(30, 30)
	d.FX.Sound(fx.SoundLevelUp)
	pl.Knockback = pl.Knockback.Add(world.Polar(boss.Pos.AngleTo(pl.Pos), bossPhaseKnock))
	event.Emit(d.Bus, event.BossPhaseChanged{Name: st.Name, Phase: 2})
	d.Log.Debug("boss phase", zap.String("boss", st.Name), zap.Float64("hp", boss.HP))
}

func (s *BossSystem) enemyShot(kind world.ProjectileKind, from world.Vec2, vel world.Vec2, radius, dmg, life float64, visual string) *world.Projectile {
	return s.deps.World.AddProjectile(&world.Projectile{
		Body:   world.Body{Pos: from, Vel: vel, Radius: radius, Visual: visual},
		Kind:   kind,
		Owner:  world.OwnerEnemy,
		Damage: dmg,
		Life:   life,
	})
}

func (s *BossSystem) attack(boss *world.Enemy, pattern string) {
	d := s.deps
	ws := d.World
	pl := ws.Player
	phase2 := boss.Boss.Phase == world.BossPhase2
	at := boss.Pos

	switch pattern {
	case "VOID_SLASH":
		d.FX.Text(at.X, at.Y-80, "#ef4444", 2, "SEVER!")
		d.FX.Sound(fx.SoundIaido)
		d.FX.Shake(10, 10)
		angle := at.AngleTo(pl.Pos)
		pr := s.enemyShot(world.ProjVoidSlash, at, world.Polar(angle, 12), 80, 40, 60, "#7f1d1d")
		pr.Rotation = angle
	case "SPIRIT_RING":
		d.FX.Text(at.X, at.Y-80, "#581c87", 2, "RISE!")
		n := 6
		if phase2 {
			n = 12
		}
		for i := 0; i < n; i++ {
			a := float64(i) / float64(n) * 2 * math.Pi
			s.enemyShot(world.ProjBullet, at, world.Polar(a, 5), 8, 15, 120, "#581c87")
		}
	case "SHADOW_STEP":
		d.FX.Text(at.X, at.Y-80, "#000000", 2, "SHADOW STEP!")
		d.FX.Burst(at.X, at.Y, "#000000", 10, 5)
		boss.Pos = pl.Pos.Add(world.Polar(ws.Rand.Float64()*2*math.Pi, 150))
		d.FX.Sound(fx.SoundDash)
	case "BEAM_SWEEP":
		d.FX.Text(at.X, at.Y-80, "#38bdf8", 1.5, "ANNIHILATION MODE")
		d.FX.Sound(fx.SoundChargeReady)
		n := 2
		if phase2 {
			n = 4
		}
		offset := ws.Rand.Float64() * math.Pi
		for i := 0; i < n; i++ {
			a := offset + float64(i)/float64(n)*2*math.Pi
			s.enemyShot(world.ProjBeam, at, world.Polar(a, 2), 10, 1, 60, "#38bdf8")
			for k := 0; k < 5; k++ {
				s.enemyShot(world.ProjBullet, at, world.Polar(a, 5+float64(k)*2), 6, 20, 60, "#bae6fd")
			}
		}
	case "ICE_BARRAGE":
		d.FX.Text(at.X, at.Y-80, "#ffffff", 1.5, "CORE OVERLOAD")
		const n = 16
		for i := 0; i < n; i++ {
			a := float64(i)/n*2*math.Pi + ws.Rand.Float64()*0.2
			speed := 4 + ws.Rand.Float64()*4
			s.enemyShot(world.ProjBlizzard, at, world.Polar(a, speed), 15, 15, 100, "#e0f2fe")
		}
	default:
		d.Log.Warn("unknown boss attack", zap.String("pattern", pattern))
	}
}

// hazard drops the boss's secondary hazard around the player.
func (s *BossSystem) hazard(boss *world.Enemy, entry *data.BossEntry) {
	d := s.deps
	ws := d.World
	pl := ws.Player
	switch entry.Hazard {
	case "VINES":
		d.FX.Text(boss.Pos.X, boss.Pos.Y-80, "#22c55e", 2, "THORNS!")
		for k := 0; k < 5; k++ {
			a := float64(k) / 5 * 2 * math.Pi
			dist := 60 + ws.Rand.Float64()*40
			ws.AddProjectile(&world.Projectile{
				Body:  world.Body{Pos: pl.Pos.Add(world.Polar(a, dist)), Radius: 25, Visual: "#15803d"},
				Kind:  world.ProjVine,
				Owner: world.OwnerWorld,
				Life:  300,
			})
		}
	case "BLIZZARD":
		d.FX.Text(boss.Pos.X, boss.Pos.Y-80, "#bae6fd", 2, "BLIZZARD!")
		ws.AddProjectile(&world.Projectile{
			Body:  world.Body{Pos: pl.Pos, Radius: 180, Visual: "#bae6fd"},
			Kind:  world.ProjBlizzard,
			Owner: world.OwnerWorld,
			Life:  300,
		})
	}
}
