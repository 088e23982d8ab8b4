package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummonUsesMapBoss(t *testing.T) {
	for _, mk := range []world.MapKind{world.MapGrassland, world.MapIceWorld} {
		t.Run(mk.String(), func(t *testing.T) {
			d := newTestDeps(t, "GUNNER", rolls(0))
			d.World.MapKind = mk
			d.World.Stats.Level = 4
			entry := d.Bosses.ForMap(mk.String())
			require.NotNil(t, entry)

			boss := NewBossSystem(d).Summon(world.Vec2{X: 100, Y: 100})
			require.NotNil(t, boss)
			assert.Equal(t, entry.Name, boss.Boss.Name)
			assert.Equal(t, world.BossIntro, boss.Boss.Phase)
			assert.InDelta(t, d.Formulas.BossMaxHP(entry.HPMultiplier, 4), boss.MaxHP, 1e-9)
			assert.Equal(t, float64(bossFirstAttackMs), boss.Boss.AttackReadyAt)
		})
	}
}

func TestBossIntroFadesIntoPhaseOne(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	s := NewBossSystem(d)
	boss := s.Summon(ws.Player.Pos.Add(world.Vec2{X: 500}))
	require.NotNil(t, boss)

	ws.Scale = 1 / bossIntroRate / 2
	s.Update(16 * time.Millisecond)
	assert.Equal(t, world.BossIntro, boss.Boss.Phase)
	assert.InDelta(t, 0.5, boss.Boss.Alpha, 1e-9)
	assert.Empty(t, ws.Projectiles, "no attacks during the intro")

	s.Update(16 * time.Millisecond)
	assert.Equal(t, world.BossPhase1, boss.Boss.Phase)
	assert.Equal(t, 1.0, boss.Boss.Alpha)
}

func TestBossEntersPhaseTwoBelowThreshold(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	s := NewBossSystem(d)
	boss := s.Summon(ws.Player.Pos.Add(world.Vec2{X: 500}))
	require.NotNil(t, boss)
	require.NotEmpty(t, boss.Boss.Thresholds)
	var phases []int
	event.Subscribe(d.Bus, func(ev event.BossPhaseChanged) { phases = append(phases, ev.Phase) })

	boss.Boss.Phase = world.BossPhase1
	boss.Boss.Alpha = 1
	boss.HP = boss.MaxHP * (boss.Boss.Thresholds[0] - 0.01)
	s.Update(16 * time.Millisecond)

	assert.Equal(t, world.BossPhase2, boss.Boss.Phase)
	assert.False(t, ws.Player.Knockback.IsZero())
	flush(d)
	assert.Equal(t, []int{2}, phases)
}

func TestBossAttackCooldownIsReadyAt(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	ws := d.World
	s := NewBossSystem(d)
	boss := s.Summon(ws.Player.Pos.Add(world.Vec2{X: 500}))
	require.NotNil(t, boss)
	boss.Boss.Phase = world.BossPhase1
	boss.Boss.Alpha = 1

	ws.Now = bossFirstAttackMs
	s.Update(16 * time.Millisecond)
	assert.Equal(t, ws.Now+2500, boss.Boss.AttackReadyAt)
}

func TestSecondSummonRefused(t *testing.T) {
	d := newTestDeps(t, "SAMURAI", rolls(0))
	s := NewBossSystem(d)
	require.NotNil(t, s.Summon(world.Vec2{X: 100, Y: 100}))
	assert.Nil(t, s.Summon(world.Vec2{X: 200, Y: 200}))
	assert.Len(t, d.World.Enemies, 1)
}
