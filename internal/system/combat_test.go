package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aimAt(d *Deps, pos world.Vec2) {
	d.Controls.Set(InputFrame{Aim: pos})
	d.Controls.consume()
}

func TestGunnerFireRespectsInterval(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	ws := d.World
	s := NewCombatSystem(d)
	aimAt(d, ws.Player.Pos.Add(world.Vec2{X: 300}))

	s.Fire()
	s.Fire()
	require.Len(t, ws.Projectiles, 1)
	assert.Equal(t, world.MaxAmmo-1, ws.Player.Ammo)
	assert.Equal(t, world.OwnerPlayer, ws.Projectiles[0].Owner)

	ws.Now += gunnerInterval
	s.Fire()
	assert.Len(t, ws.Projectiles, 2)
}

func TestGunnerEmptyMagazineReloads(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	p := d.World.Player
	s := NewCombatSystem(d)
	p.Ammo = 0

	s.Fire()
	assert.Empty(t, d.World.Projectiles)
	assert.True(t, p.Reloading)

	d.World.Now += gunnerInterval
	s.Fire()
	assert.Empty(t, d.World.Projectiles, "no shots while reloading")

	s.Update(reloadMs * time.Millisecond)
	assert.False(t, p.Reloading)
	assert.Equal(t, world.MaxAmmo, p.Ammo)
}

func TestManualReload(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	p := d.World.Player
	s := NewCombatSystem(d)

	s.StartReload()
	assert.False(t, p.Reloading, "full magazine")

	p.Ammo = 5
	p.QuickReloadTimer = 500
	s.StartReload()
	assert.True(t, p.Reloading)
	assert.Equal(t, float64(quickReloadMs), p.ReloadTimer)
}

func TestSamuraiSlashHitsInsideCone(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	p := ws.Player
	front := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: 60}), Radius: 24}, HP: 500, MaxHP: 500})
	behind := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: -60}), Radius: 24}, HP: 500, MaxHP: 500})
	ws.Spatial.Rebuild(ws.Enemies)
	aimAt(d, p.Pos.Add(world.Vec2{X: 200}))
	want := d.CurrentDamage()

	NewCombatSystem(d).Fire()
	assert.InDelta(t, 500-want, front.HP, 1e-9)
	assert.Equal(t, 500.0, behind.HP)
	assert.Equal(t, 1, p.ComboStage)
	assert.Greater(t, front.Vel.X, 0.0)
}

func TestSlashExecutesWeakEnemies(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	p := ws.Player
	p.Mods.ExecutionThreshold = 0.3
	e := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: 50}), Radius: 24}, HP: 20, MaxHP: 100})
	ws.Spatial.Rebuild(ws.Enemies)
	aimAt(d, p.Pos.Add(world.Vec2{X: 200}))

	NewCombatSystem(d).Fire()
	assert.Equal(t, 0.0, e.HP)
}

func TestMageCastsOneBoltPerProjectile(t *testing.T) {
	d := newTestDeps(t, "MAGE", rolls(0))
	ws := d.World
	ws.Player.Mods.ExtraProjectiles = 2
	aimAt(d, ws.Player.Pos.Add(world.Vec2{Y: 200}))

	NewCombatSystem(d).Fire()
	require.Len(t, ws.Projectiles, 3)
	for _, pr := range ws.Projectiles {
		assert.Equal(t, world.ProjMageBolt, pr.Kind)
	}
}

func TestNoAttackWhileDashing(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	d.World.Player.DashTimer = 3

	NewCombatSystem(d).Fire()
	assert.Empty(t, d.World.Projectiles)
	assert.Equal(t, world.MaxAmmo, d.World.Player.Ammo)
}

func TestSamuraiComboCycles(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	p := ws.Player
	e := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: 60}), Radius: 24}, HP: 10000, MaxHP: 10000})
	ws.Spatial.Rebuild(ws.Enemies)
	aimAt(d, p.Pos.Add(world.Vec2{X: 200}))
	base := d.CurrentDamage()
	s := NewCombatSystem(d)

	steps := []struct {
		stage int
		dmg   float64
	}{
		{stage: 1, dmg: base},
		{stage: 2, dmg: base * 1.2},
		{stage: 0, dmg: base * 1.5 * 2}, // two slashes
		{stage: 1, dmg: base},
	}
	for i, step := range steps {
		before := e.HP
		s.Fire()
		assert.Equal(t, step.stage, p.ComboStage, "attack %d", i+1)
		assert.InDelta(t, step.dmg, before-e.HP, 1e-9, "attack %d", i+1)
		ws.Now += 700
	}
}

func TestSamuraiComboResetsWhenIdle(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	p := ws.Player
	e := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: 60}), Radius: 24}, HP: 10000, MaxHP: 10000})
	ws.Spatial.Rebuild(ws.Enemies)
	aimAt(d, p.Pos.Add(world.Vec2{X: 200}))
	s := NewCombatSystem(d)

	s.Fire()
	ws.Now += 700
	s.Fire()
	require.Equal(t, 2, p.ComboStage)

	ws.Now += comboResetMs + 1
	before := e.HP
	s.Fire()
	assert.InDelta(t, d.CurrentDamage(), before-e.HP, 1e-9, "a single stage-0 slash")
	assert.Equal(t, 1, p.ComboStage)
}

func TestGunnerDrainsMagazineThenReloads(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	ws := d.World
	p := ws.Player
	s := NewCombatSystem(d)
	aimAt(d, p.Pos.Add(world.Vec2{X: 300}))

	for i := 1; i <= world.MaxAmmo; i++ {
		s.Fire()
		require.Equal(t, world.MaxAmmo-i, p.Ammo)
		require.False(t, p.Reloading)
		ws.Now += gunnerInterval
	}
	require.Len(t, ws.Projectiles, world.MaxAmmo)

	s.Fire()
	assert.Len(t, ws.Projectiles, world.MaxAmmo)
	assert.True(t, p.Reloading)
	assert.Equal(t, float64(reloadMs), p.ReloadTimer)
}

func TestWindEnduresCounterIsShared(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	p := ws.Player
	require.NoError(t, d.applyEffects([]world.Effect{{Stat: "wind_endures", Op: world.OpFlag}}))
	e := ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: p.Pos.Add(world.Vec2{X: 60}), Radius: 24}, HP: 10000, MaxHP: 10000})
	ws.Spatial.Rebuild(ws.Enemies)
	aimAt(d, p.Pos.Add(world.Vec2{X: 200}))
	dmg := d.CurrentDamage()

	for i := 0; i < 3; i++ {
		d.strike(e, 10, 0, "#ffffff")
	}
	assert.Equal(t, 3, p.WindCounter)
	assert.InDelta(t, 10000-30.0, e.HP, 1e-9)

	// the slash is the fourth hit and triggers the bonus
	NewCombatSystem(d).Fire()
	assert.Equal(t, 0, p.WindCounter)
	assert.InDelta(t, 10000-30-dmg-dmg*0.8, e.HP, 1e-9)
}
