package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotBuild(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	ws := d.World
	p := ws.Player
	ws.Now = 1000
	ws.Frame = 42
	ws.Stats.Score = 90
	p.SkillReadyAt[2] = 1500
	p.SkillReadyAt[3] = 200
	p.DashCooldown = dashCooldown * 0.5
	p.Ammo = 3
	ws.AddItem(&world.Item{})

	s := NewSnapshotSystem(d, nil)
	snap := s.Build()

	assert.Equal(t, uint64(42), snap.Frame)
	assert.Equal(t, "GUNNER", snap.Class)
	assert.Equal(t, 90, snap.Score)
	assert.Equal(t, [4]float64{0, 0, 500, 0}, snap.Cooldown)
	assert.InDelta(t, 50, snap.DashPct, 1e-9)
	assert.Equal(t, 3, snap.Ammo)
	assert.Equal(t, world.MaxAmmo, snap.MaxAmmo)
	assert.Equal(t, "SUNNY", snap.Weather)
	assert.Equal(t, "GRASSLAND", snap.Map)
	assert.Nil(t, snap.Boss)
	assert.Nil(t, snap.Event)
	assert.Equal(t, 1, snap.Counts.Items)
	assert.False(t, snap.Paused)
}

func TestSnapshotBossAndEvent(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	boss := NewBossSystem(d).Summon(ws.Player.Pos.Add(world.Vec2{X: 300}))
	require.NotNil(t, boss)
	boss.HP = -5
	ws.Event = &world.ActiveEvent{Kind: world.EventGoldenRain, Name: "Golden Rain", TimeLeft: 100, Total: 5000}

	snap := NewSnapshotSystem(d, nil).Build()
	require.NotNil(t, snap.Boss)
	assert.Equal(t, boss.Boss.Name, snap.Boss.Name)
	assert.Equal(t, 0.0, snap.Boss.HP)
	assert.Equal(t, "INTRO", snap.Boss.State)
	require.NotNil(t, snap.Event)
	assert.Equal(t, "GOLDEN_RAIN", snap.Event.Kind)
}

func TestSnapshotShowsOffers(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	prog := NewProgressionSystem(d)
	prog.offers = []*data.UpgradeEntry{d.Upgrades.Get("dmg_boost")}
	s := NewSnapshotSystem(d, prog)

	s.Update(16 * time.Millisecond)
	snap := s.Latest()
	assert.True(t, snap.Paused)
	require.Len(t, snap.Offers, 1)
	assert.Equal(t, "dmg_boost", snap.Offers[0].ID)
	assert.Equal(t, "Reinforced Alloy", snap.Offers[0].Name)
}
