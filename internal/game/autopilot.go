package game

import (
	"github.com/neonronin/survivor/internal/system"
	"github.com/neonronin/survivor/internal/world"
)

const (
	pilotFleeRange = 160
	pilotDashRange = 60
	pilotAimRange  = 700
)

// Autopilot is a simple driver used when no client is attached: it kites the
// nearest enemy, fires at it and uses every skill that is ready.
func Autopilot(ws *world.State) system.InputFrame {
	p := ws.Player
	f := system.InputFrame{Aim: p.Pos.Add(world.Vec2{X: float64(p.Facing) * 100})}

	target := ws.NearestEnemy(p.Pos, pilotAimRange, nil)
	if target == nil {
		return f
	}
	f.Aim = target.Pos
	f.Attack = true

	dist := p.Pos.Dist(target.Pos)
	if dist < pilotFleeRange {
		away := p.Pos.Sub(target.Pos).Normalize()
		f.MoveX, f.MoveY = away.X, away.Y
	}
	f.Dash = dist < pilotDashRange+target.Radius

	for i, at := range p.SkillReadyAt {
		if at <= ws.Now && ws.Stats.Level >= p.Stats.Skills[i].Unlock {
			f.Skills[i] = true
		}
	}
	if p.Ammo == 0 && !p.Reloading {
		f.Reload = true
	}
	return f
}
