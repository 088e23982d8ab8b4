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
	burnTickFrames  = 30
	shooterStandoff = 250
	shooterBand     = 50
	shooterRange    = 400
	shooterCooldown = 180 // frames
	tankGoal        = 0.4
	steerGain       = 0.15
	separationGain  = 1.5
	contactDrain    = 0.5 // hp per frame
	blockDamage     = 20

	killScore     = 10
	killXP        = 10
	bossScore     = 1000
	bossXP        = 500
	eliteKillMult = 5
)

// EnemySystem runs status effects, death, steering and player contact for
// every enemy, boss included. Phase 2 (Update).
type EnemySystem struct {
	deps *Deps
}

func NewEnemySystem(deps *Deps) *EnemySystem {
	return &EnemySystem{deps: deps}
}

func (s *EnemySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EnemySystem) Update(_ time.Duration) {
	ws := s.deps.World
	ts := ws.Scale
	for i := len(ws.Enemies) - 1; i >= 0; i-- {
		e := ws.Enemies[i]

		if e.BurnTimer > 0 {
			e.BurnTimer -= ts
			e.BurnTick += ts
			if e.BurnTick >= burnTickFrames {
				e.BurnTick = 0
				s.deps.hit(e, s.deps.CurrentDamage()*0.1, 0, "#f97316")
			}
		}

		if e.StunTimer > 0 {
			e.StunTimer -= ts
			s.deathStep(i, e)
			continue
		}

		if e.Elite && e.Affix == world.AffixSpeed {
			e.Vel = e.Vel.Scale(1.1)
		}
		if s.deathStep(i, e) {
			continue
		}

		dist := e.Pos.Dist(ws.Player.Pos)
		s.steer(e, dist)
		e.Pos = e.Pos.Add(e.Vel.Scale(ts))
		if dist < ws.Player.Radius+e.Radius {
			s.contact(e)
		}
	}
}

// deathStep starts the death sequence of a freshly killed enemy or runs the
// decay of a dying one. It reports whether e must skip the rest of its turn.
func (s *EnemySystem) deathStep(i int, e *world.Enemy) bool {
	ws := s.deps.World
	if e.HP <= 0 && e.Alive() {
		s.kill(e)
		return true
	}
	if e.Dying() {
		e.DeathTimer -= ws.Scale
		if e.DeathTimer <= 0 {
			ws.RemoveEnemy(i)
		}
		return true
	}
	return false
}

// kill enters the death sequence exactly once.
func (s *EnemySystem) kill(e *world.Enemy) {
	d := s.deps
	ws := d.World
	e.DeathTimer = world.DeathDecayFrames
	e.Vel = world.Vec2{}

	score, xp := killScore, killXP
	if e.IsBoss() {
		score, xp = bossScore, bossXP
	}
	if e.Elite {
		score *= eliteKillMult
		xp *= eliteKillMult
	}
	ws.Stats.Score += score
	ws.Stats.Kills++
	ws.Stats.XP += xp

	d.FX.Sound(fx.SoundExplosion)
	d.FX.Burst(e.Pos.X, e.Pos.Y, e.Visual, int(e.Radius/2), 6)
	event.Emit(d.Bus, event.EnemyKilled{
		ID:    e.ID,
		Kind:  e.Kind.String(),
		X:     e.Pos.X,
		Y:     e.Pos.Y,
		Elite: e.Elite,
		Boss:  e.IsBoss(),
		Score: score,
		XP:    xp,
	})

	if e.Elite && e.Affix == world.AffixExplosive {
		d.spawnExplosive(e.Pos, 60, 30, 30, "#ef4444")
	}
	if e.IsBoss() {
		s.bossDefeated(e)
	}
}

func (s *EnemySystem) bossDefeated(e *world.Enemy) {
	d := s.deps
	ws := d.World
	ws.Shrines = append(ws.Shrines, &world.Shrine{
		Body: world.Body{Pos: e.Pos, Radius: 30, Visual: "#facc15"},
		Kind: world.ShrineLegendary,
	})
	ws.Weather = world.WeatherSunny
	d.FX.Text(e.Pos.X, e.Pos.Y-120, "#facc15", 3, "VICTORY!")
	d.FX.Shake(40, 40)
	event.Emit(d.Bus, event.BossDefeated{Name: e.Boss.Name, X: e.Pos.X, Y: e.Pos.Y})
	d.Log.Info("boss defeated",
		zap.String("boss", e.Boss.Name),
		zap.Float64("elapsed_ms", ws.Stats.Elapsed),
	)
}

// steer accelerates e toward its goal for its kind and caps its speed.
func (s *EnemySystem) steer(e *world.Enemy, dist float64) {
	ws := s.deps.World
	ts := ws.Scale
	pl := ws.Player

	if e.HitFlash > 0 {
		e.HitFlash -= ts
	}
	toPlayer := pl.Pos.Sub(e.Pos)
	if toPlayer.X > 0 {
		e.Facing = 1
	} else {
		e.Facing = -1
	}
	if e.HitFlash > 0 {
		e.Vel = e.Vel.Scale(math.Pow(0.85, ts))
		return
	}

	dir := toPlayer.Normalize()
	var goal world.Vec2
	limit := 0.8 + float64(ws.Stats.Level)*0.05
	switch e.Kind {
	case world.EnemyShooter:
		limit *= 0.8
		switch {
		case dist < shooterStandoff:
			goal = dir.Scale(-1)
		case dist > shooterStandoff+shooterBand:
			goal = dir
		}
		if dist < shooterRange {
			e.AttackTimer -= ts
			if e.AttackTimer <= 0 {
				e.AttackTimer = shooterCooldown
				s.shoot(e, dir)
			}
		}
	case world.EnemyTank:
		limit *= 0.5
		goal = dir.Scale(tankGoal)
	default:
		goal = dir.Add(s.separation(e).Scale(separationGain))
	}
	if e.Elite && e.Affix == world.AffixSpeed {
		limit *= 1.3
	}

	e.Vel = e.Vel.Add(goal.Scale(steerGain * ts))
	if sp := e.Vel.Len(); sp > limit {
		e.Vel = e.Vel.Scale(limit / sp)
	} else {
		e.Vel = e.Vel.Scale(math.Pow(0.95, ts))
	}
}

// separation pushes e away from every enemy it overlaps. The roster is
// capped, so a full scan is fine.
func (s *EnemySystem) separation(e *world.Enemy) world.Vec2 {
	var push world.Vec2
	for _, o := range s.deps.World.Enemies {
		if o == e {
			continue
		}
		away := e.Pos.Sub(o.Pos)
		space := e.Radius + o.Radius
		d := away.Len()
		if d >= space || d == 0 {
			continue
		}
		push = push.Add(away.Scale((space - d) / space * 2 / d))
	}
	return push
}

func (s *EnemySystem) shoot(e *world.Enemy, dir world.Vec2) {
	d := s.deps
	d.World.AddProjectile(&world.Projectile{
		Body:   world.Body{Pos: e.Pos, Vel: dir.Scale(8), Radius: 8, Visual: "#ef4444"},
		Kind:   world.ProjBullet,
		Owner:  world.OwnerEnemy,
		Damage: 15,
		Life:   80,
	})
	d.FX.Sound(fx.SoundShoot)
}

// contact drains the player unless invulnerable; a successful block hurts
// the enemy instead.
func (s *EnemySystem) contact(e *world.Enemy) {
	d := s.deps
	ws := d.World
	pl := ws.Player
	if pl.Invulnerable(ws.Now) {
		return
	}
	if pl.Mods.BlockChance > 0 && ws.Chance(pl.Mods.BlockChance) {
		e.TakeDamage(blockDamage)
		d.FX.Text(pl.Pos.X, pl.Pos.Y-40, "#bae6fd", 1, "BLOCK!")
		d.FX.Sound(fx.SoundParry)
		d.FX.Shake(5, 5)
		return
	}
	d.hurtPlayer(contactDrain * ws.Scale)
}
