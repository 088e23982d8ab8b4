package system

import (
	"math"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
)

const (
	swordHomeRange   = 500
	swordHomeSpeed   = 12
	swordInertia     = 0.92
	swordStabRange   = 350
	swordStabCooldMs = 1500
)

// OrbiterSystem steers the spirit swords around the player, homes them on
// nearby enemies and fires their elemental stabs. Phase 2 (Update).
type OrbiterSystem struct {
	deps     *Deps
	progress float64
}

func NewOrbiterSystem(deps *Deps) *OrbiterSystem {
	return &OrbiterSystem{deps: deps}
}

func (s *OrbiterSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *OrbiterSystem) Update(_ time.Duration) {
	ws := s.deps.World
	var swords []*world.Projectile
	for _, pr := range ws.Projectiles {
		if pr.Kind == world.ProjSpiritSword && pr.Orbit != nil {
			swords = append(swords, pr)
		}
	}
	if len(swords) == 0 {
		return
	}

	step := 2 * math.Pi / float64(len(swords))
	s.progress += swords[0].Orbit.Speed * ws.Scale
	for i, sw := range swords {
		sw.Orbit.TargetAngle = s.progress + float64(i)*step
		s.steer(sw)
	}
	if !ws.Player.Skill2Charging {
		for _, sw := range swords {
			s.stab(sw)
		}
	}
}

// steer homes on the nearest visible enemy unless charging, otherwise
// springs back to the sword's slot on the orbit.
func (s *OrbiterSystem) steer(sw *world.Projectile) {
	ws := s.deps.World
	ts := ws.Scale
	o := sw.Orbit

	var target *world.Enemy
	if !o.Charging {
		best := float64(swordHomeRange)
		for _, e := range ws.Spatial.Query(sw.Pos, swordHomeRange) {
			if e.Dying() || !ws.InView(e.Pos, 0) {
				continue
			}
			if d := e.Pos.Dist(sw.Pos); d < best {
				best, target = d, e
			}
		}
	}

	if target != nil {
		dir := world.Polar(sw.Pos.AngleTo(target.Pos), swordHomeSpeed*(1-swordInertia))
		sw.Vel = sw.Vel.Scale(swordInertia).Add(dir)
	} else {
		o.Angle += world.ShortestAngle(o.Angle, o.TargetAngle) * 0.2 * ts
		dest := ws.Player.Pos.Add(world.Polar(o.Angle, o.Radius))
		sw.Vel = sw.Vel.Add(dest.Sub(sw.Pos).Scale(0.1 * ts)).Scale(0.8)
	}
	sw.Rotation = sw.Vel.Angle() + math.Pi/2
}

// stab launches an elemental copy of the sword at the nearest enemy.
func (s *OrbiterSystem) stab(sw *world.Projectile) {
	d := s.deps
	ws := d.World
	o := sw.Orbit
	if o.Charging || ws.Now <= o.AttackReadyAt {
		return
	}
	target := ws.NearestEnemy(sw.Pos, swordStabRange, nil)
	if target == nil {
		return
	}
	o.AttackReadyAt = ws.Now + swordStabCooldMs/o.AttackSpeedMult
	angle := sw.Pos.AngleTo(target.Pos)
	ws.AddProjectile(&world.Projectile{
		Body:     world.Body{Pos: sw.Pos, Vel: world.Polar(angle, 15), Radius: 15, Visual: sw.Visual},
		Kind:     world.ProjElementalStab,
		Owner:    world.OwnerPlayer,
		Damage:   sw.Damage,
		Life:     40,
		Rotation: angle,
		Piercing: true,
		Element:  sw.Element,
	})
	d.FX.Burst(sw.Pos.X, sw.Pos.Y, sw.Visual, 5, 2)
	d.FX.Sound(fx.SoundSwordAttack)
}
