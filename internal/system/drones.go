package system

import (
	"math"
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/world"
)

const (
	droneCooldownMs = 800
	droneRange      = 600
	droneOrbit      = 45
)

// DroneSystem fires the gunner's funnel drones. Each drone slot keeps its
// own ready-at. Phase 2 (Update).
type DroneSystem struct {
	deps *Deps
}

func NewDroneSystem(deps *Deps) *DroneSystem {
	return &DroneSystem{deps: deps}
}

func (s *DroneSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DroneSystem) Update(_ time.Duration) {
	d := s.deps
	ws := d.World
	p := ws.Player
	n := p.Mods.FunnelCount
	if n <= 0 {
		return
	}
	for len(p.DroneReadyAt) < n {
		p.DroneReadyAt = append(p.DroneReadyAt, 0)
	}

	visual := "#22d3ee"
	switch {
	case p.Mods.FunnelBurnChance > 0:
		visual = "#f97316"
	case p.Mods.FunnelElectricChance > 0:
		visual = "#a855f7"
	}

	for i := 0; i < n; i++ {
		if ws.Now < p.DroneReadyAt[i] {
			continue
		}
		target := ws.NearestEnemy(p.Pos, droneRange, nil)
		if target == nil {
			return
		}
		slot := DronePosition(p.Pos, ws.Now, i, n)
		ws.AddProjectile(&world.Projectile{
			Body:   world.Body{Pos: slot, Vel: world.Polar(slot.AngleTo(target.Pos), 18), Radius: 5, Visual: visual},
			Kind:   world.ProjFunnelShot,
			Owner:  world.OwnerPlayer,
			Damage: d.CurrentDamage() * 0.4,
			Life:   60,
		})
		ws.AddParticle(&world.Particle{
			Body: world.Body{Pos: slot, Radius: 4, Visual: "#ffffff"},
			Life: 3,
		})
		p.DroneReadyAt[i] = ws.Now + droneCooldownMs/p.Mods.FunnelFireRateMult
	}
}

// DronePosition is where drone i of n hovers around center at time now.
func DronePosition(center world.Vec2, now float64, i, n int) world.Vec2 {
	angle := now*0.002 + float64(i)/float64(n)*2*math.Pi
	return center.Add(world.Polar(angle, droneOrbit))
}
