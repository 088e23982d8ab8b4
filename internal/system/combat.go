package system

import (
	"math"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
)

const (
	comboResetMs   = 1200
	slashReach     = 120
	slashCone      = math.Pi / 3
	gunnerInterval = 660
	quickDrawRate  = 200
	reloadMs       = 2000
	quickReloadMs  = 1000
	rapidFireDiv   = 2.5
)

// slashStage is the per-combo-stage modifier of the samurai basic attack.
type slashStage struct {
	damage, reach float64
	slashes       int
}

var slashStages = [3]slashStage{
	{damage: 1, reach: 1, slashes: 1},
	{damage: 1.2, reach: 1.25, slashes: 1},
	{damage: 1.5, reach: 1.1, slashes: 2},
}

// CombatSystem handles the held basic attack, gunner ammo and reloading.
// Phase 2 (Update).
type CombatSystem struct {
	deps *Deps
}

func NewCombatSystem(deps *Deps) *CombatSystem {
	return &CombatSystem{deps: deps}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	d := s.deps
	p := d.World.Player
	raw := float64(dt) / float64(time.Millisecond)

	if p.QuickReloadTimer > 0 {
		p.QuickReloadTimer -= raw
	}
	if p.Reloading {
		p.ReloadTimer -= raw
		if p.ReloadTimer <= 0 {
			p.Reloading = false
			p.Ammo = world.MaxAmmo
			d.FX.Sound(fx.SoundReloadFinish)
		}
	}

	in := d.Controls.Current
	if in.Reload {
		s.StartReload()
	}
	if in.Attack {
		s.Fire()
	}
}

// StartReload begins a manual reload when the gunner is missing rounds.
func (s *CombatSystem) StartReload() {
	p := s.deps.World.Player
	if p.Stats.Class != world.ClassGunner || p.Reloading || p.Ammo >= world.MaxAmmo {
		return
	}
	s.beginReload()
}

func (s *CombatSystem) beginReload() {
	d := s.deps
	p := d.World.Player
	p.Reloading = true
	p.ReloadTimer = reloadMs
	if p.QuickReloadTimer > 0 {
		p.ReloadTimer = quickReloadMs
	}
	d.FX.Text(p.Pos.X, p.Pos.Y-50, "#ffffff", 1, "RELOADING")
}

// interval is the minimum time between basic attacks in ms.
func (s *CombatSystem) interval() float64 {
	ws := s.deps.World
	p := ws.Player
	var rate float64
	switch p.Stats.Class {
	case world.ClassGunner:
		rate = gunnerInterval / p.Mods.FireRateMult
		if p.QuickDrawStacks > 0 {
			rate = quickDrawRate
		}
	case world.ClassSamurai:
		stage := 0.8
		if p.ComboStage == 2 {
			stage = 1.5
		}
		rate = p.Stats.FireRate * p.Mods.FireRateMult * stage
		if p.BuffActive(world.BuffAttackSpeed, ws.Now) {
			rate *= 0.7
		}
	default:
		rate = p.Stats.FireRate * p.Mods.FireRateMult
	}
	if p.BuffActive(world.BuffRapidFire, ws.Now) {
		rate /= rapidFireDiv
	}
	return rate
}

// Fire performs one basic attack if the interval allows it. Gated attacks
// are silent no-ops.
func (s *CombatSystem) Fire() {
	ws := s.deps.World
	p := ws.Player
	if p.Dashing() || p.Reloading {
		return
	}
	if ws.Now-p.LastAttackAt < s.interval() {
		return
	}
	if p.Stats.Class == world.ClassSamurai && ws.Now-p.LastAttackAt > comboResetMs {
		p.ComboStage = 0
	}
	p.LastAttackAt = ws.Now

	switch p.Stats.Class {
	case world.ClassGunner:
		s.fireGun()
	case world.ClassSamurai:
		s.slash()
	case world.ClassMage:
		s.castBolts()
	}
}

func (s *CombatSystem) fireGun() {
	d := s.deps
	p := d.World.Player
	shots := min(p.Ammo, 1+p.Mods.ExtraProjectiles)
	if shots <= 0 {
		s.beginReload()
		return
	}
	p.Ammo -= shots
	if p.QuickDrawStacks > 0 {
		p.QuickDrawStacks--
	}

	lowAmmo, radius := 1.0, 7.0
	switch {
	case p.Ammo <= 3:
		lowAmmo, radius = 2, 10
	case p.Ammo <= 8:
		lowAmmo, radius = 1.5, 8
	}

	muzzle := p.Pos.Add(world.Vec2{X: 35 * float64(p.Facing), Y: -34})
	base := muzzle.AngleTo(d.Controls.Current.Aim)
	spread := 0.1 + float64(shots)*0.05
	dmg := d.CurrentDamage() * lowAmmo
	for i := 0; i < shots; i++ {
		angle := base
		if shots > 1 {
			angle += (float64(i)/float64(shots-1) - 0.5) * spread
		}
		d.World.AddProjectile(&world.Projectile{
			Body:      world.Body{Pos: muzzle, Vel: world.Polar(angle, 20), Radius: radius, Visual: "#facc15"},
			Kind:      world.ProjBullet,
			Owner:     world.OwnerPlayer,
			Damage:    dmg,
			Life:      50 * p.Mods.RangeMult,
			Ricochets: p.Mods.Ricochet,
		})
	}
	d.FX.Sound(fx.SoundShoot)
	d.FX.Burst(muzzle.X, muzzle.Y, "#fde047", 3, 3)
}

func (s *CombatSystem) castBolts() {
	d := s.deps
	p := d.World.Player
	base := d.aimAngle()
	muzzle := p.Pos.Add(world.Polar(base, 30))
	n := 1 + p.Mods.ExtraProjectiles
	const spread = 0.3
	for i := 0; i < n; i++ {
		angle := base
		if n > 1 {
			angle += (float64(i)/float64(n-1) - 0.5) * spread
		}
		d.World.AddProjectile(&world.Projectile{
			Body:   world.Body{Pos: muzzle, Vel: world.Polar(angle, 16), Radius: 12, Visual: "#a855f7"},
			Kind:   world.ProjMageBolt,
			Owner:  world.OwnerPlayer,
			Damage: d.CurrentDamage(),
			Life:   60 * p.Mods.RangeMult,
		})
	}
	d.FX.Sound(fx.SoundMagic)
}

func (s *CombatSystem) slash() {
	d := s.deps
	ws := d.World
	p := ws.Player
	dmg := d.CurrentDamage()
	iaido := p.Mods.IaidoMultiplier > 0 && p.IaidoCharged
	if iaido {
		dmg *= p.Mods.IaidoMultiplier
		p.ComboStage = 2
		d.FX.Shake(20, 10)
		d.FX.Text(p.Pos.X, p.Pos.Y-80, "#bae6fd", 2, "IAIDO!")
		d.FX.Sound(fx.SoundIaido)
	} else {
		d.FX.Sound(fx.SoundSlash)
	}

	p.ComboHits++
	if p.ComboHits >= 4 {
		p.ComboHits = 0
		p.Buffs[world.BuffAttackSpeed] = ws.Now + 3000
		d.FX.Text(p.Pos.X, p.Pos.Y-60, "#fbbf24", 1.2, "FLOW!")
	}
	p.StationaryTimer = 0
	p.IaidoCharged = false

	stage := slashStages[p.ComboStage]
	dmg *= stage.damage
	reach := slashReach * p.Mods.RangeMult * stage.reach
	if iaido {
		reach *= 2
	}

	aim := d.aimAngle()
	angles := []float64{aim}
	if stage.slashes == 2 {
		angles = []float64{aim - math.Pi/4, aim + math.Pi/4}
	}
	for _, a := range angles {
		ws.AddParticle(&world.Particle{
			Body: world.Body{Pos: p.Pos.Add(world.Polar(a, reach/2)), Vel: world.Polar(a, 2), Radius: reach, Visual: "#ffffff"},
			Kind: world.ParticleSlash,
			Life: 10,
		})
	}

	if p.Mods.BladeWave || p.Mods.ExtraProjectiles > 0 {
		n := 1 + p.Mods.ExtraProjectiles
		for i := 0; i < n; i++ {
			a := aim
			if n > 1 {
				a += (float64(i)/float64(n-1) - 0.5) * (math.Pi / 4)
			}
			ws.AddProjectile(&world.Projectile{
				Body:     world.Body{Pos: p.Pos, Vel: world.Polar(a, 18), Radius: 60, Visual: "#e0f2fe"},
				Kind:     world.ProjSlashWave,
				Owner:    world.OwnerPlayer,
				Damage:   dmg * 0.5,
				Life:     50,
				Rotation: a,
			})
		}
	}

	for _, e := range ws.Spatial.Query(p.Pos, reach+100) {
		if e.Dying() {
			continue
		}
		dist := p.Pos.Dist(e.Pos)
		if dist >= reach+e.Radius {
			continue
		}
		if math.Abs(world.ShortestAngle(aim, p.Pos.AngleTo(e.Pos))) >= slashCone {
			continue
		}
		s.slashHit(e, dmg, dist, reach, stage.slashes)
	}
	p.ComboStage = (p.ComboStage + 1) % 3
}

func (s *CombatSystem) slashHit(e *world.Enemy, dmg, dist, reach float64, hits int) {
	d := s.deps
	p := d.World.Player
	for h := 0; h < hits; h++ {
		if th := p.Mods.ExecutionThreshold; th > 0 && !e.IsBoss() && e.HP/e.MaxHP <= th {
			e.HP = 0
			d.FX.Text(e.Pos.X, e.Pos.Y-40, "#dc2626", 1.5, "EXECUTE")
			return
		}
		hitDmg := dmg
		if p.Mods.SweetSpot && dist > reach*0.8 {
			hitDmg *= 2
			d.FX.Text(e.Pos.X, e.Pos.Y-60, "#fbbf24", 1.2, "SWEET SPOT")
		}
		d.hit(e, hitDmg, 8, "#ffffff")
		push := p.Pos.AngleTo(e.Pos)
		e.Vel = e.Vel.Add(world.Polar(push, 15/float64(hits)))
		d.windEndures(e)
	}
}
