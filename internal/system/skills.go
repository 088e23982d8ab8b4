package system

import (
	"math"
	"slices"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

const (
	swordChargeMs   = 3000
	swordOrbitSpeed = 0.08
	highNoonDelayMs = 1000
	highNoonMargin  = 100
)

var elementVisuals = map[world.Element]string{
	world.ElementMetal: "#f8fafc",
	world.ElementWood:  "#4ade80",
	world.ElementWater: "#38bdf8",
	world.ElementFire:  "#ef4444",
	world.ElementEarth: "#d97706",
}

// SkillSystem triggers the four class skills and runs the samurai's
// sword-charge hold. Phase 2 (Update).
type SkillSystem struct {
	deps *Deps
}

func NewSkillSystem(deps *Deps) *SkillSystem {
	return &SkillSystem{deps: deps}
}

func (s *SkillSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SkillSystem) Update(dt time.Duration) {
	d := s.deps
	p := d.World.Player
	in := d.Controls.Current

	for slot, pressed := range in.Skills {
		if pressed {
			s.Trigger(slot)
		}
	}
	if p.Stats.Class == world.ClassSamurai {
		s.holdSwords(in.Skill2Held, float64(dt)/float64(time.Millisecond))
		if p.IaidoCharged && d.World.CountSwords() > 0 {
			p.SkillReadyAt[1] = d.World.Now + p.Stats.Skills[1].Cooldown
		}
	}
}

// Trigger fires the skill in slot if it is unlocked and ready. Locked
// skills only produce feedback text; skills on cooldown do nothing.
func (s *SkillSystem) Trigger(slot int) {
	d := s.deps
	ws := d.World
	p := ws.Player
	if slot < 0 || slot >= len(p.Stats.Skills) {
		return
	}
	spec := p.Stats.Skills[slot]
	if ws.Stats.Level < spec.Unlock {
		d.FX.Text(p.Pos.X, p.Pos.Y-40, "#9ca3af", 1, "LOCKED")
		return
	}
	if ws.Now < p.SkillReadyAt[slot] {
		return
	}
	if p.Stats.Class == world.ClassSamurai && slot == 1 && ws.CountSwords() > 0 {
		return
	}
	p.SkillReadyAt[slot] = ws.Now + spec.Cooldown
	d.FX.Sound(fx.SoundSkill)
	d.Log.Debug("skill", zap.String("id", spec.ID), zap.Int("level", ws.Stats.Level))

	switch p.Stats.Class {
	case world.ClassGunner:
		s.gunnerSkill(slot)
	case world.ClassSamurai:
		s.samuraiSkill(slot)
	case world.ClassMage:
		s.mageSkill(slot)
	}
}

func (s *SkillSystem) gunnerSkill(slot int) {
	d := s.deps
	ws := d.World
	p := ws.Player
	sd := d.SkillDamage()
	angle := d.aimAngle()

	switch slot {
	case 0:
		d.FX.Text(p.Pos.X, p.Pos.Y-30, "#38bdf8", 1.5, "ELECTRO LASSO!")
		ws.AddProjectile(&world.Projectile{
			Body:   world.Body{Pos: p.Pos, Vel: world.Polar(angle, 15), Radius: 12, Visual: "#38bdf8"},
			Kind:   world.ProjLassoThrow,
			Owner:  world.OwnerPlayer,
			Damage: sd * 2.4,
			Life:   100,
			Tesla:  p.Mods.LassoShock,
		})
	case 1:
		if p.Mods.FanFire {
			s.infernoFan(sd)
		} else {
			s.fanTheHammer(sd)
		}
	case 2:
		d.FX.Text(p.Pos.X, p.Pos.Y-50, "#ef4444", 1.5, "TNT EXPRESS!")
		ws.AddProjectile(&world.Projectile{
			Body:   world.Body{Pos: p.Pos, Vel: world.Polar(angle, 8), Radius: 20, Visual: "#78350f"},
			Kind:   world.ProjTNT,
			Owner:  world.OwnerPlayer,
			Damage: sd * 8,
			Life:   120,
		})
	case 3:
		s.highNoon(sd)
	}
}

func (s *SkillSystem) fanTheHammer(sd float64) {
	d := s.deps
	ws := d.World
	p := ws.Player
	const n, spread = 12, math.Pi / 3
	d.FX.Text(p.Pos.X, p.Pos.Y-50, "#facc15", 2, "FAN THE HAMMER!")
	d.FX.Shake(20, 20)
	muzzle := p.Pos.Add(world.Vec2{X: 35 * float64(p.Facing), Y: -34})
	d.FX.Burst(muzzle.X, muzzle.Y, "#facc15", 20, 10)
	base := d.aimAngle()
	for i := 0; i < n; i++ {
		ws.After(float64(i)*30, func() {
			a := base - spread/2 + ws.Rand.Float64()*spread
			ws.AddProjectile(&world.Projectile{
				Body:      world.Body{Pos: ws.Player.Pos, Vel: world.Polar(a, 25), Radius: 5, Visual: "#facc15"},
				Kind:      world.ProjBullet,
				Owner:     world.OwnerPlayer,
				Damage:    sd * 0.8,
				Life:      40,
				Ricochets: 1,
			})
		})
	}
}

// infernoFan streams 200 burning piercing shots, two every 40ms. Each
// volley re-reads the aim; damage climbs over a 14-shot cycle.
func (s *SkillSystem) infernoFan(sd float64) {
	d := s.deps
	ws := d.World
	p := ws.Player
	const total, perVolley, gapMs, spread = 200, 2, 40, math.Pi / 2
	d.FX.Text(p.Pos.X, p.Pos.Y-70, "#f97316", 2.5, "INFERNO BARREL!")
	d.FX.Shake(40, 120)
	for v := 0; v < total/perVolley; v++ {
		first := v * perVolley
		ws.After(float64(v*gapMs), func() {
			pl := ws.Player
			aim := pl.Pos.AngleTo(d.Controls.Current.Aim)
			d.FX.Sound(fx.SoundGatling)
			for k := 0; k < perVolley; k++ {
				mult, radius, visual := 0.4, 6.0, "#f97316"
				switch pos := (first + k) % 14; {
				case pos >= 11:
					mult, radius, visual = 1.0, 9, "#b91c1c"
				case pos >= 7:
					mult, radius, visual = 0.8, 7, "#ef4444"
				}
				a := aim - spread/2 + ws.Rand.Float64()*spread
				ws.AddProjectile(&world.Projectile{
					Body:     world.Body{Pos: pl.Pos, Vel: world.Polar(a, 22), Radius: radius, Visual: visual},
					Kind:     world.ProjBullet,
					Owner:    world.OwnerPlayer,
					Damage:   sd * mult,
					Life:     50,
					Piercing: true,
					Inferno:  true,
				})
			}
		})
	}
}

// highNoon marks every enemy on screen and shoots the survivors a second later.
func (s *SkillSystem) highNoon(sd float64) {
	d := s.deps
	ws := d.World
	p := ws.Player
	d.FX.Text(p.Pos.X, p.Pos.Y-80, "#ef4444", 3, "IT'S HIGH NOON...")
	d.FX.Shake(5, 60)

	var marked []*world.Enemy
	for _, e := range ws.Enemies {
		if !ws.InView(e.Pos, highNoonMargin) {
			continue
		}
		marked = append(marked, e)
		ws.AddParticle(&world.Particle{
			Body: world.Body{Pos: e.Pos, Radius: 20, Visual: "#ef4444"},
			Kind: world.ParticleTargetMark,
			Life: 60,
		})
	}
	ws.After(highNoonDelayMs, func() {
		d.FX.Shake(50, 30)
		d.FX.Sound(fx.SoundHighNoon)
		for _, e := range marked {
			if e.HP <= 0 || !slices.Contains(ws.Enemies, e) {
				continue
			}
			ws.AddProjectile(&world.Projectile{
				Body: world.Body{Pos: ws.Player.Pos, Radius: 2, Visual: "#ef4444"},
				Kind: world.ProjHighNoonImpact,
				Life: 8,
			})
			d.hit(e, sd*3.2, 20, "#ef4444")
			d.FX.Burst(e.Pos.X, e.Pos.Y, "#ef4444", 20, 10)
		}
	})
}

func (s *SkillSystem) samuraiSkill(slot int) {
	switch slot {
	case 0:
		s.voidSlash()
	case 1:
		s.summonSwords()
	case 2:
		s.windKick()
	case 3:
		s.windDragon()
	}
}

func (s *SkillSystem) voidSlash() {
	d := s.deps
	ws := d.World
	p := ws.Player
	sd := d.SkillDamage()
	angle := d.aimAngle()
	rng := p.Mods.RangeMult
	d.FX.Shake(15, 10)

	slash := &world.Projectile{
		Body:     world.Body{Pos: p.Pos, Vel: world.Polar(angle, 16), Radius: 60 * rng, Visual: "#ffffff"},
		Kind:     world.ProjVoidSlash,
		Owner:    world.OwnerPlayer,
		Damage:   sd * 3.5,
		Life:     45,
		Rotation: angle,
		Piercing: true,
	}
	if p.Mods.IaidoCyclone && p.IaidoCharged {
		slash.Cyclone = true
		slash.Vel = world.Vec2{}
		slash.Radius = 150 * rng
		slash.Life = 60
		slash.Damage *= max(1, p.Mods.IaidoMultiplier)
		p.IaidoCharged = false
		p.StationaryTimer = 0
		d.FX.Text(p.Pos.X, p.Pos.Y-80, "#bae6fd", 2, "IAIDO CYCLONE!")
	} else {
		d.FX.Text(p.Pos.X, p.Pos.Y-50, "#bae6fd", 2, "VOID SLASH!")
	}
	ws.AddProjectile(slash)

	if p.Mods.InkTrail {
		ws.AddProjectile(&world.Projectile{
			Body:   world.Body{Pos: p.Pos, Radius: 100 * rng, Visual: "#000000"},
			Kind:   world.ProjInkPuddle,
			Owner:  world.OwnerPlayer,
			Damage: sd * 0.5,
			Life:   300,
		})
	}

	for _, pr := range ws.Projectiles {
		if pr.Owner != world.OwnerEnemy || pr.Pos.Dist(p.Pos) >= 200 {
			continue
		}
		if math.Abs(world.ShortestAngle(angle, heading(pr))) < 1 {
			pr.Life = 0
		}
	}
}

// heading is the direction a projectile points: its velocity, or its
// rotation when stationary.
func heading(pr *world.Projectile) float64 {
	if pr.Vel.IsZero() {
		return pr.Rotation
	}
	return pr.Vel.Angle()
}

func (s *SkillSystem) summonSwords() {
	d := s.deps
	ws := d.World
	p := ws.Player
	sd := d.SkillDamage()
	n := 5
	if p.Mods.BladeDance {
		n = 10
		d.FX.Text(p.Pos.X, p.Pos.Y-80, "#facc15", 2.5, "BLADE DANCE!")
	}
	d.FX.Text(p.Pos.X, p.Pos.Y-60, "#bae6fd", 2, "SPIRIT SWORDS!")
	d.FX.Shake(5, 5)
	radius := 100 * p.Mods.RangeMult
	for i := 0; i < n; i++ {
		offset := float64(i) / float64(n) * 2 * math.Pi
		el := world.Elements[i%len(world.Elements)]
		ws.AddProjectile(&world.Projectile{
			Body:     world.Body{Pos: p.Pos.Add(world.Polar(offset, radius)), Radius: 15, Visual: elementVisuals[el]},
			Kind:     world.ProjSpiritSword,
			Owner:    world.OwnerPlayer,
			Damage:   sd * 1.5,
			Life:     600,
			Piercing: true,
			Element:  el,
			Orbit: &world.Orbit{
				Angle:           offset,
				TargetAngle:     offset,
				Radius:          radius,
				Speed:           swordOrbitSpeed,
				AttackReadyAt:   ws.Now + ws.Rand.Float64()*500,
				AttackSpeedMult: 1,
			},
		})
	}
}

// holdSwords runs the skill-2 hold: with no swords out the press casts
// them; with swords out holding charges them and release commits the
// cooldown.
func (s *SkillSystem) holdSwords(held bool, rawMs float64) {
	d := s.deps
	ws := d.World
	p := ws.Player
	if held {
		if ws.CountSwords() == 0 {
			s.Trigger(1)
			return
		}
		p.Skill2Hold += rawMs
		p.Skill2Charging = true
		prog := min(1, p.Skill2Hold/swordChargeMs)
		for _, pr := range ws.Projectiles {
			if pr.Orbit == nil {
				continue
			}
			pr.Orbit.Charging = true
			pr.Orbit.Speed = swordOrbitSpeed * (0.6 + prog)
			pr.Orbit.AttackSpeedMult = 1 + 2*prog
		}
		return
	}
	if !p.Skill2Charging {
		return
	}
	p.SkillReadyAt[1] = ws.Now + p.Stats.Skills[1].Cooldown
	p.Skill2Charging = false
	p.Skill2Hold = 0
	for _, pr := range ws.Projectiles {
		if pr.Orbit != nil {
			pr.Orbit.Charging = false
		}
	}
}

func (s *SkillSystem) windKick() {
	d := s.deps
	p := d.World.Player
	d.FX.Text(p.Pos.X, p.Pos.Y-50, "#22c55e", 1.5, "WIND KICK!")
	p.DashTimer = 20
	p.DashCooldown = 60
	vx := p.Vel.X
	if vx == 0 && p.Vel.Y == 0 {
		vx = float64(p.Facing)
	}
	angle := math.Atan2(p.Vel.Y, vx)
	p.DashDir = world.Polar(angle, 25)
	d.World.AddProjectile(&world.Projectile{
		Body:     world.Body{Pos: p.Pos, Vel: world.Polar(angle, 10), Radius: 60, Visual: "#4ade80"},
		Kind:     world.ProjSlashWave,
		Owner:    world.OwnerPlayer,
		Damage:   d.SkillDamage() * 1.5,
		Life:     40,
		Rotation: angle,
	})
	if p.Mods.ThunderDash {
		d.thunderAfterimage()
	}
}

func (s *SkillSystem) windDragon() {
	d := s.deps
	ws := d.World
	p := ws.Player
	d.FX.Text(p.Pos.X, p.Pos.Y-80, "#22c55e", 3, "AZURE DRAGON!")
	d.FX.Shake(60, 100)
	d.FX.Sound(fx.SoundDragonRoar)

	life, dmg := 200.0, d.SkillDamage()*5
	if p.Mods.DragonFury {
		life, dmg = 300, dmg*1.3
		d.FX.Text(p.Pos.X, p.Pos.Y-110, "#facc15", 3.5, "DRAGON FURY!")
		for k := 0; k < 5; k++ {
			ws.After(float64(k)*200, func() {
				c := ws.Player.Pos
				ws.AddProjectile(&world.Projectile{
					Body: world.Body{
						Pos:    c.Add(world.Vec2{X: ws.Roll(-150, 150), Y: ws.Roll(-150, 150)}),
						Radius: 60, Visual: "#facc15",
					},
					Kind:   world.ProjElectroBlast,
					Owner:  world.OwnerPlayer,
					Damage: dmg * 0.5,
					Life:   20,
				})
			})
		}
	}
	ws.AddProjectile(&world.Projectile{
		Body:     world.Body{Pos: p.Pos, Vel: world.Polar(d.aimAngle(), 12), Radius: 80, Visual: "#4ade80"},
		Kind:     world.ProjWindDragon,
		Owner:    world.OwnerPlayer,
		Damage:   dmg,
		Life:     life,
		Piercing: true,
	})
}

func (s *SkillSystem) mageSkill(slot int) {
	d := s.deps
	ws := d.World
	p := ws.Player
	sd := d.SkillDamage()
	aim := d.Controls.Current.Aim

	switch slot {
	case 0:
		d.FX.Text(p.Pos.X, p.Pos.Y-50, "#7dd3fc", 1.5, "FROST SIGIL!")
		d.FX.Burst(p.Pos.X, p.Pos.Y, "#7dd3fc", 30, 8)
		for _, e := range ws.Spatial.Query(p.Pos, 250) {
			if e.Dying() || e.Pos.Dist(p.Pos) >= 250 {
				continue
			}
			e.StunTimer = 90
			e.Stun = world.StunFrost
		}
	case 1:
		p.Buffs[world.BuffInvuln] = ws.Now + 3000
		d.FX.Text(p.Pos.X, p.Pos.Y-50, "#facc15", 1.5, "GOLDEN BELL!")
	case 2:
		d.FX.Text(p.Pos.X, p.Pos.Y-50, "#a855f7", 1.5, "BAGUA BURST!")
		d.spawnExplosive(aim, 120, sd*3, 20, "#a855f7")
	case 3:
		d.FX.Text(p.Pos.X, p.Pos.Y-60, "#e9d5ff", 2, "STARFALL!")
		for k := 0; k < 5; k++ {
			target := aim.Add(world.Vec2{X: ws.Roll(-120, 120), Y: ws.Roll(-120, 120)})
			ws.After(float64(k)*150, func() {
				d.spawnExplosive(target, 90, sd*2.5, 20, "#e9d5ff")
			})
		}
	}
}
