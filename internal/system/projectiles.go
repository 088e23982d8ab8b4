package system

import (
	"math"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
)

const (
	blastRadius      = 120
	explosiveArmed   = 20 // frames of life left once an explosive can detonate
	ricochetRange    = 400
	ricochetSpeed    = 15
	enemyShotDefault = 10
)

// ProjectileSystem advances every projectile and resolves what it hits.
// Each kind is handled in one switch. Phase 2 (Update).
type ProjectileSystem struct {
	deps *Deps
}

func NewProjectileSystem(deps *Deps) *ProjectileSystem {
	return &ProjectileSystem{deps: deps}
}

func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ProjectileSystem) Update(_ time.Duration) {
	ws := s.deps.World
	ts := ws.Scale
	for i := len(ws.Projectiles) - 1; i >= 0; i-- {
		p := ws.Projectiles[i]
		if p.Cyclone {
			p.Pos = ws.Player.Pos
		} else {
			p.Pos = p.Pos.Add(p.Vel.Scale(ts))
		}

		if p.Damaging() && s.barrelHit(p) {
			ws.RemoveProjectile(i)
			continue
		}
		if s.step(p) {
			ws.RemoveProjectile(i)
		}
	}
}

// barrelHit detonates the first active barrel p touches and reports
// whether p is spent by it.
func (s *ProjectileSystem) barrelHit(p *world.Projectile) bool {
	d := s.deps
	ws := d.World
	for k := len(ws.Props) - 1; k >= 0; k-- {
		b := ws.Props[k]
		if b.Kind != world.PropBarrel || !b.Active || p.Pos.Dist(b.Pos) >= b.Radius+p.Radius {
			continue
		}
		b.Active = false
		d.spawnExplosive(b.Pos, 100, d.CurrentDamage()*5, 40, "#f97316")
		d.FX.Text(b.Pos.X, b.Pos.Y-60, "#f97316", 2.5, "BOOM!")
		d.FX.Burst(b.Pos.X, b.Pos.Y, "#f97316", 30, 8)
		d.FX.Sound(fx.SoundExplosion)
		d.FX.Shake(30, 20)
		ws.RemoveProp(k)
		return !p.Piercing && p.Kind != world.ProjVoidSlash && p.Kind != world.ProjSlashWave
	}
	return false
}

// tick counts p's life down and reports expiry.
func tick(p *world.Projectile, ts float64) bool {
	p.Life -= ts
	return p.Life <= 0
}

// step runs the per-kind behavior and reports whether p is finished.
func (s *ProjectileSystem) step(p *world.Projectile) bool {
	ws := s.deps.World
	ts := ws.Scale
	if p.Owner == world.OwnerEnemy {
		return s.enemyShot(p)
	}

	switch p.Kind {
	case world.ProjSpiritSword:
		return s.sword(p)
	case world.ProjElementalStab:
		return s.elementalStab(p)
	case world.ProjSlashWave, world.ProjVoidSlash:
		return s.wave(p)
	case world.ProjLassoThrow:
		return s.lasso(p)
	case world.ProjMagneticField:
		return s.magneticField(p)
	case world.ProjBeam, world.ProjHighNoonImpact, world.ProjElectroBlast:
		return tick(p, ts)
	case world.ProjInkPuddle:
		return s.inkPuddle(p)
	case world.ProjVine:
		if tick(p, ts) {
			return true
		}
		if p.Overlaps(ws.Player) {
			s.deps.hurtPlayer(0.5 * ts)
		}
		return false
	case world.ProjBlizzard:
		return tick(p, ts)
	case world.ProjExplosive:
		return s.explosive(p)
	case world.ProjTNT:
		return s.tnt(p)
	case world.ProjBullet, world.ProjFunnelShot, world.ProjMageBolt, world.ProjWindDragon:
		return s.generic(p)
	}
	return true
}

func (s *ProjectileSystem) enemyShot(p *world.Projectile) bool {
	d := s.deps
	pl := d.World.Player
	if tick(p, d.World.Scale) {
		return true
	}
	if p.Pos.Dist(pl.Pos) >= p.Radius+pl.Radius {
		return false
	}
	dmg := p.Damage
	if dmg == 0 {
		dmg = enemyShotDefault
	}
	d.hurtPlayer(dmg)
	d.FX.Shake(5, 5)
	d.FX.Burst(pl.Pos.X, pl.Pos.Y, "#ef4444", 5, 5)
	return true
}

// enemiesTouching returns non-dying enemies whose circles overlap p.
func (s *ProjectileSystem) enemiesTouching(p *world.Projectile) []*world.Enemy {
	var out []*world.Enemy
	for _, e := range s.deps.World.Spatial.Query(p.Pos, p.Radius+30) {
		if !e.Dying() && p.Pos.Dist(e.Pos) < p.Radius+e.Radius {
			out = append(out, e)
		}
	}
	return out
}

func (s *ProjectileSystem) sword(p *world.Projectile) bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	iaido := pl.Stats.Class == world.ClassSamurai && pl.IaidoCharged
	if !iaido && tick(p, ws.Scale) {
		return true
	}
	for _, e := range s.enemiesTouching(p) {
		if e.HitFlash > 0 {
			continue
		}
		d.hit(e, p.Damage*0.5, 12, p.Visual)
		e.Vel = e.Vel.Add(world.Polar(pl.Pos.AngleTo(e.Pos), 5))
		d.windEndures(e)
	}
	return false
}

func (s *ProjectileSystem) elementalStab(p *world.Projectile) bool {
	d := s.deps
	pl := d.World.Player
	if tick(p, d.World.Scale) {
		return true
	}
	for _, e := range s.enemiesTouching(p) {
		if e.HitFlash > 0 {
			continue
		}
		dmg := p.Damage
		switch p.Element {
		case world.ElementMetal:
			dmg *= 1.5
			d.FX.Text(e.Pos.X, e.Pos.Y-40, "#facc15", 1.5, "CRIT!")
		case world.ElementWood:
			pl.Heal(2)
			d.FX.Text(pl.Pos.X, pl.Pos.Y-40, "#4ade80", 1, "+2")
		case world.ElementWater:
			e.Vel = e.Vel.Scale(0.2)
			d.FX.Text(e.Pos.X, e.Pos.Y-40, "#38bdf8", 1, "Slow")
		case world.ElementFire:
			e.BurnTimer = 180
			d.FX.Text(e.Pos.X, e.Pos.Y-40, "#ef4444", 1, "Burn")
		case world.ElementEarth:
			e.StunTimer = 40
			e.Stun = world.StunImpact
			e.Vel = e.Vel.Add(world.Polar(p.Pos.AngleTo(e.Pos), 20))
			d.FX.Text(e.Pos.X, e.Pos.Y-40, "#d97706", 1, "Stun")
		}
		d.strike(e, dmg, 10, p.Visual)
		return true
	}
	return false
}

// wave handles slash waves and void slashes. Both grow as they travel and
// damage everything they overlap; a void slash hits each enemy once.
func (s *ProjectileSystem) wave(p *world.Projectile) bool {
	d := s.deps
	ts := d.World.Scale
	p.Life -= ts
	if p.Kind == world.ProjVoidSlash {
		p.Radius *= 1.02
	} else {
		p.Radius *= math.Pow(1.02, ts)
		p.Vel = p.Vel.Scale(math.Pow(0.95, ts))
	}
	for _, e := range d.World.Spatial.Query(p.Pos, p.Radius) {
		if e.Dying() || p.Pos.Dist(e.Pos) >= p.Radius+e.Radius {
			continue
		}
		if p.Kind == world.ProjVoidSlash && !p.MarkHit(e.ID) {
			continue
		}
		d.strike(e, p.Damage, 5, "#aaaaaa")
		e.Vel = e.Vel.Add(p.Vel.Scale(0.5))
	}
	return p.Life <= 0
}

func (s *ProjectileSystem) lasso(p *world.Projectile) bool {
	d := s.deps
	if tick(p, d.World.Scale) {
		return true
	}
	hits := s.enemiesTouching(p)
	if len(hits) == 0 {
		return false
	}
	e := hits[0]
	d.FX.Shake(20, 20)
	d.FX.Sound(fx.SoundLasso)
	d.FX.Text(e.Pos.X, e.Pos.Y-40, "#06b6d4", 2, "MAGNETIC FIELD!")
	d.hit(e, p.Damage, 15, "#38bdf8")
	e.StunTimer = 120
	e.Stun = world.StunElectric
	d.World.AddProjectile(&world.Projectile{
		Body:   world.Body{Pos: e.Pos, Radius: 200, Visual: "#06b6d4"},
		Kind:   world.ProjMagneticField,
		Owner:  world.OwnerPlayer,
		Damage: 0.5,
		Life:   120,
		Tesla:  p.Tesla,
	})
	return true
}

func (s *ProjectileSystem) magneticField(p *world.Projectile) bool {
	d := s.deps
	ws := d.World
	ts := ws.Scale
	if tick(p, ts) {
		if p.Tesla {
			s.teslaDetonate(p)
		}
		return true
	}
	shock := ws.Player.Mods.LassoShock
	for _, e := range ws.Spatial.Query(p.Pos, p.Radius) {
		if e.Dying() {
			continue
		}
		dist := p.Pos.Dist(e.Pos)
		if dist >= p.Radius || dist <= 15 {
			continue
		}
		e.Vel = e.Vel.Add(world.Polar(e.Pos.AngleTo(p.Pos), 1.2*ts))
		if ws.Chance(0.05) {
			d.hit(e, 2, 0, "#bae6fd")
		}
		if shock && ws.Chance(0.1) {
			d.hit(e, d.CurrentDamage()*0.2, 0, "#a855f7")
		}
	}
	return false
}

func (s *ProjectileSystem) teslaDetonate(p *world.Projectile) {
	d := s.deps
	ws := d.World
	ws.AddProjectile(&world.Projectile{
		Body:  world.Body{Pos: p.Pos, Radius: p.Radius, Visual: "#a855f7"},
		Kind:  world.ProjElectroBlast,
		Owner: world.OwnerPlayer,
		Life:  30,
	})
	dmg := d.CurrentDamage() * 1.8
	for _, e := range ws.Spatial.Query(p.Pos, p.Radius) {
		if e.Dying() || e.Pos.Dist(p.Pos) >= p.Radius {
			continue
		}
		d.hit(e, dmg, 0, "#a855f7")
		e.StunTimer = 60
		e.Stun = world.StunElectric
	}
	d.FX.Shake(20, 10)
	d.FX.Sound(fx.SoundElectric)
}

func (s *ProjectileSystem) inkPuddle(p *world.Projectile) bool {
	d := s.deps
	ws := d.World
	if tick(p, ws.Scale) {
		return true
	}
	for _, e := range ws.Spatial.Query(p.Pos, p.Radius) {
		if e.Dying() || e.Pos.Dist(p.Pos) >= p.Radius {
			continue
		}
		e.Vel = e.Vel.Scale(0.5)
		if ws.Chance(0.1) {
			d.hit(e, 5, 0, "#94a3b8")
		}
	}
	return false
}

// explosive arms once its life drops to explosiveArmed, then detonates on
// contact or when it runs out.
func (s *ProjectileSystem) explosive(p *world.Projectile) bool {
	ts := s.deps.World.Scale
	p.Life -= ts
	p.Vel = p.Vel.Scale(math.Pow(0.9, ts))
	if p.Life > explosiveArmed {
		return false
	}
	if p.Life > 0 && len(s.enemiesTouching(p)) == 0 {
		return false
	}
	s.detonate(p.Pos, p.Damage)
	return true
}

func (s *ProjectileSystem) detonate(at world.Vec2, dmg float64) {
	d := s.deps
	d.FX.Burst(at.X, at.Y, "#f97316", 30, 10)
	d.FX.Burst(at.X, at.Y, "#ffffff", 15, 5)
	d.FX.Shake(15, 10)
	d.FX.Sound(fx.SoundExplosion)
	for _, e := range d.World.Spatial.Query(at, blastRadius) {
		if e.Dying() || e.Pos.Dist(at) >= blastRadius {
			continue
		}
		d.hit(e, dmg, 10, "#f97316")
	}
}

// tnt detonates on the first enemy it reaches or when its fuse ends.
func (s *ProjectileSystem) tnt(p *world.Projectile) bool {
	if !tick(p, s.deps.World.Scale) && len(s.enemiesTouching(p)) == 0 {
		return false
	}
	s.detonate(p.Pos, p.Damage)
	return true
}

// generic resolves bullets, funnel shots, mage bolts and the wind dragon.
func (s *ProjectileSystem) generic(p *world.Projectile) bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	if tick(p, ws.Scale) {
		return true
	}
	if p.Damage <= 0 {
		return false
	}
	for _, e := range ws.Spatial.Query(p.Pos, p.Radius+40) {
		if e.Dying() || (p.Piercing && e.HitFlash > 0) {
			continue
		}
		reach := e.Radius + p.Radius
		if math.Abs(p.Pos.X-e.Pos.X) >= reach || math.Abs(p.Pos.Y-e.Pos.Y) >= reach {
			continue
		}

		if pl.Mods.ExplosiveShots && ws.Chance(0.2) {
			d.spawnExplosive(e.Pos, 80, p.Damage*1.5, 10, "#ef4444")
			d.FX.Text(e.Pos.X, e.Pos.Y-60, "#ef4444", 2, "BOOM!")
			if !p.Piercing {
				return true
			}
			continue
		}

		d.hit(e, p.Damage, 8, "#ffffff")
		if sp := p.Vel.Len(); sp > 0 {
			kb := 8 * pl.Mods.KnockbackMult
			if e.Heavy() {
				kb *= 0.2
			}
			if e.Elite {
				kb *= 0.5
			}
			e.Vel = p.Vel.Scale(kb / sp)
		}
		if p.Kind == world.ProjFunnelShot {
			if ws.Chance(pl.Mods.FunnelElectricChance) {
				e.StunTimer = 60
				e.Stun = world.StunElectric
			}
			if ws.Chance(pl.Mods.FunnelBurnChance) {
				e.BurnTimer = 180
			}
			d.FX.Sound(fx.SoundElectric)
		} else {
			d.FX.Sound(fx.SoundImpact)
		}
		if p.Inferno {
			e.BurnTimer = 120
		}
		d.windEndures(e)

		spent := true
		if p.Ricochets > 0 {
			p.Ricochets--
			if next := ws.NearestEnemy(e.Pos, ricochetRange, e); next != nil {
				p.Vel = world.Polar(e.Pos.AngleTo(next.Pos), ricochetSpeed)
				p.Pos = e.Pos
				p.Life = 40
				spent = false
			}
		}
		if p.Piercing {
			spent = false
		}
		if spent && p.Kind != world.ProjWindDragon {
			return true
		}
	}
	return false
}
