package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
)

func addSword(ws *world.State, attackSpeed float64) *world.Projectile {
	return ws.AddProjectile(&world.Projectile{
		Body:    world.Body{Pos: ws.Player.Pos.Add(world.Vec2{X: 100}), Radius: 20, Visual: "#ef4444"},
		Kind:    world.ProjSpiritSword,
		Owner:   world.OwnerPlayer,
		Damage:  30,
		Life:    600,
		Element: world.ElementFire,
		Orbit:   &world.Orbit{Radius: 100, Speed: 0.08, AttackSpeedMult: attackSpeed},
	})
}

func countKind(ws *world.State, kind world.ProjectileKind) int {
	n := 0
	for _, p := range ws.Projectiles {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func TestOrbiterStabCooldownScalesWithAttackSpeed(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	sw := addSword(ws, 2)
	ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: sw.Pos.Add(world.Vec2{X: 200}), Radius: 24}, HP: 100, MaxHP: 100})
	ws.Spatial.Rebuild(ws.Enemies)
	s := NewOrbiterSystem(d)
	ws.Now = 1000

	s.Update(16 * time.Millisecond)
	assert.Equal(t, 1, countKind(ws, world.ProjElementalStab))
	assert.InDelta(t, 1000+swordStabCooldMs/2.0, sw.Orbit.AttackReadyAt, 1e-9)

	ws.Now = sw.Orbit.AttackReadyAt
	s.Update(16 * time.Millisecond)
	assert.Equal(t, 1, countKind(ws, world.ProjElementalStab), "still cooling down")

	ws.Now++
	s.Update(16 * time.Millisecond)
	assert.Equal(t, 2, countKind(ws, world.ProjElementalStab))
}

func TestOrbitersHoldFireWhileCharging(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	sw := addSword(ws, 1)
	ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: sw.Pos.Add(world.Vec2{X: 200}), Radius: 24}, HP: 100, MaxHP: 100})
	ws.Spatial.Rebuild(ws.Enemies)
	s := NewOrbiterSystem(d)
	ws.Now = 1000

	ws.Player.Skill2Charging = true
	s.Update(16 * time.Millisecond)
	assert.Zero(t, countKind(ws, world.ProjElementalStab))
	assert.Zero(t, sw.Orbit.AttackReadyAt)

	ws.Player.Skill2Charging = false
	s.Update(16 * time.Millisecond)
	assert.Equal(t, 1, countKind(ws, world.ProjElementalStab))
}
