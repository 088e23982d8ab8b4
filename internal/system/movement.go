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
	dashSpeed       = 15
	dashCooldown    = 45 // frames
	iaidoFrames     = 120
	dashContactDist = 50

	boatSpeedMult = 1.5
	boatAccel     = 0.35
	boatDrift     = 0.96
	boatTurnLerp  = 0.15

	iceWorldSpeedMult = 1.1
	blizzardSlow      = 0.5
	decorationSlack   = 0.8
)

// MovementSystem moves the player: dashes, walking, sailing, collision
// against tiles and decorations, the iaido stance timer and sail-off map
// transitions. Phase 2 (Update).
type MovementSystem struct {
	deps *Deps
}

func NewMovementSystem(deps *Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	ws := s.deps.World
	p := ws.Player
	in := s.deps.Controls.Current
	ts := ws.Scale

	if p.DashCooldown > 0 {
		p.DashCooldown -= ts
	}
	if in.Dash {
		s.startDash(in.Move())
	}

	switch {
	case p.Dashing():
		p.DashTimer -= ts
		p.Vel = p.DashDir
	case p.OnBoat:
		s.steerBoat(in.Move())
	default:
		s.walk(in.Move())
	}

	if !p.Knockback.IsZero() {
		p.Vel = p.Vel.Add(p.Knockback)
		p.Knockback = world.Vec2{}
	}

	if !p.Vel.IsZero() {
		next := p.Pos.Add(p.Vel.Scale(ts))
		if !s.blocked(next) {
			p.Pos = next
			if p.OnBoat && ws.Boat != nil {
				ws.Boat.Pos = next
				ws.Boat.Heading = p.Heading
			}
		}
	}

	if in.Aim.X < p.Pos.X {
		p.Facing = -1
	} else {
		p.Facing = 1
	}

	if p.Dashing() && p.DashContactDue(ts) {
		s.dashContact()
	}
	s.iaidoStance(in.Move())
	s.checkSailOff()
}

// startDash begins a dash along the input direction, or facing when idle.
func (s *MovementSystem) startDash(move world.Vec2) {
	d := s.deps
	p := d.World.Player
	if p.DashCooldown > 0 || p.Dashing() {
		return
	}
	dir := move.Normalize()
	if dir.IsZero() {
		dir = world.Vec2{X: float64(p.Facing)}
	}
	p.DashTimer = world.DashFrames
	p.DashCooldown = dashCooldown
	p.DashDir = dir.Scale(dashSpeed)
	d.FX.Sound(fx.SoundDash)
	d.FX.Burst(p.Pos.X, p.Pos.Y, "#ffffff", 5, 2)

	switch p.Stats.Class {
	case world.ClassSamurai:
		if p.Mods.ThunderDash {
			d.thunderAfterimage()
		}
	case world.ClassGunner:
		if p.Mods.QuickDraw {
			p.QuickDrawStacks = 3
			p.QuickReloadTimer = 3000
			d.FX.Text(p.Pos.X, p.Pos.Y-60, "#facc15", 1.2, "QUICK DRAW!")
		}
	}
}

// thunderAfterimage leaves an exploding afterimage at the player.
func (d *Deps) thunderAfterimage() {
	p := d.World.Player
	d.spawnExplosive(p.Pos, 80, d.CurrentDamage()*3, 40, "#bae6fd")
	d.World.AddParticle(&world.Particle{
		Body: world.Body{Pos: p.Pos, Radius: p.Radius, Visual: "#bae6fd"},
		Kind: world.ParticleAfterimage,
		Life: 30,
	})
	d.FX.Text(p.Pos.X, p.Pos.Y-60, "#bae6fd", 1.5, "RAIKIRI!")
}

func (s *MovementSystem) landSpeed() float64 {
	ws := s.deps.World
	p := ws.Player
	speed := p.Stats.Speed * p.Mods.SpeedMult
	if ws.MapKind == world.MapIceWorld {
		speed *= iceWorldSpeedMult
	}
	if s.inBlizzard() {
		speed *= blizzardSlow
	}
	return speed
}

func (s *MovementSystem) inBlizzard() bool {
	ws := s.deps.World
	for _, pr := range ws.Projectiles {
		if pr.Kind == world.ProjBlizzard && pr.Pos.Dist(ws.Player.Pos) < pr.Radius {
			return true
		}
	}
	return false
}

// walk assigns velocity directly; there is no inertia on foot.
func (s *MovementSystem) walk(move world.Vec2) {
	p := s.deps.World.Player
	dir := move.Normalize()
	if dir.IsZero() {
		p.Vel = world.Vec2{}
		return
	}
	p.Vel = dir.Scale(s.landSpeed())
}

// steerBoat accelerates toward the input and drifts without it.
func (s *MovementSystem) steerBoat(move world.Vec2) {
	ts := s.deps.World.Scale
	p := s.deps.World.Player
	target := p.Stats.Speed * p.Mods.SpeedMult * boatSpeedMult

	dir := move.Normalize()
	if dir.IsZero() {
		p.Vel = p.Vel.Scale(math.Pow(boatDrift, ts))
	} else {
		p.Vel = p.Vel.Add(dir.Scale(boatAccel * ts))
	}
	if sp := p.Vel.Len(); sp > target {
		p.Vel = p.Vel.Scale(target / sp)
	}
	if p.Vel.Len() > 0.05 {
		diff := world.ShortestAngle(p.Heading, p.Vel.Angle())
		p.Heading = world.WrapAngle(p.Heading + diff*boatTurnLerp*ts)
	}
}

// blocked reports whether the whole tentative move must be rejected.
// Boats may leave the map, which is how sail-off happens.
func (s *MovementSystem) blocked(next world.Vec2) bool {
	ws := s.deps.World
	p := ws.Player
	t, ok := ws.Map.TileAt(next)
	if !ok {
		return !p.OnBoat
	}
	if p.OnBoat {
		return world.BlocksBoat(t)
	}
	if world.BlocksFoot(ws.MapKind, t) {
		return true
	}
	r := p.Radius * decorationSlack
	for _, dec := range ws.Decorations {
		if next.Dist(dec.Pos) < r+dec.Radius {
			return true
		}
	}
	return false
}

// dashContact damages enemies brushed while dashing.
func (s *MovementSystem) dashContact() {
	d := s.deps
	ws := d.World
	p := ws.Player
	d.World.AddParticle(&world.Particle{
		Body: world.Body{Pos: p.Pos, Radius: p.Radius, Visual: p.Visual},
		Kind: world.ParticleAfterimage,
		Life: 12,
	})
	for _, e := range ws.Spatial.Query(p.Pos, dashContactDist) {
		if e.Dying() || e.HitFlash > 0 || e.Pos.Dist(p.Pos) >= dashContactDist {
			continue
		}
		d.strike(e, d.CurrentDamage()*0.5, 10, "#ffffff")
		if p.Stats.Class == world.ClassSamurai {
			d.FX.Sound(fx.SoundImpact)
		}
	}
}

// iaidoStance charges the iaido strike while the samurai stands still.
func (s *MovementSystem) iaidoStance(move world.Vec2) {
	d := s.deps
	p := d.World.Player
	if p.Stats.Class != world.ClassSamurai || p.Mods.IaidoMultiplier <= 0 || p.IaidoCharged {
		return
	}
	if !move.IsZero() || p.Dashing() {
		p.StationaryTimer = 0
		return
	}
	p.StationaryTimer += d.World.Scale
	if p.StationaryTimer >= iaidoFrames {
		p.IaidoCharged = true
		d.FX.Shake(10, 5)
		d.FX.Burst(p.Pos.X, p.Pos.Y, "#bae6fd", 30, 8)
		d.FX.Text(p.Pos.X, p.Pos.Y-70, "#bae6fd", 1.5, "IAIDO READY")
		d.FX.Sound(fx.SoundChargeReady)
	}
}

// checkSailOff switches maps once the boat is a full tile past an edge.
func (s *MovementSystem) checkSailOff() {
	d := s.deps
	ws := d.World
	p := ws.Player
	if !p.OnBoat || d.LoadMap == nil {
		return
	}
	size := ws.Map.Size()
	const margin = world.TileSize
	pos := p.Pos
	if pos.X >= -margin && pos.X <= size.X+margin && pos.Y >= -margin && pos.Y <= size.Y+margin {
		return
	}

	dest := ws.MapKind.Other()
	ws.ClearTransient()
	ws.MapKind = dest
	d.LoadMap(ws, dest)

	size = ws.Map.Size()
	switch {
	case pos.X < 0:
		p.Pos.X = size.X - world.TileSize*2
	case pos.X > size.X:
		p.Pos.X = world.TileSize * 2
	}
	switch {
	case pos.Y < 0:
		p.Pos.Y = size.Y - world.TileSize*2
	case pos.Y > size.Y:
		p.Pos.Y = world.TileSize * 2
	}
	ws.Boat = &world.Boat{
		Body:    world.Body{Pos: p.Pos, Radius: 30, Visual: "#8b4513"},
		Heading: p.Heading,
	}
	d.FX.Sound(fx.SoundChargeReady)
	d.FX.Text(p.Pos.X, p.Pos.Y-50, "#bae6fd", 2, "SAILING TO "+dest.String())
	event.Emit(d.Bus, event.MapChanged{Map: dest.String()})
	d.Log.Info("map transition", zap.String("to", dest.String()), zap.String("via", "sea"))
}
