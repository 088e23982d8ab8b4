package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	"github.com/neonronin/survivor/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassiveXPAndWaves(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)
	ws := d.World

	s.Update(999 * time.Millisecond)
	assert.Equal(t, 0, ws.Stats.XP)
	s.Update(time.Millisecond)
	assert.Equal(t, 1, ws.Stats.XP)

	s.Update(60 * time.Second)
	assert.Equal(t, 2, ws.Stats.Wave)
}

func TestLevelUpOffersRegularUpgradesForClass(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)
	d.World.Stats.XP = 100

	s.Update(16 * time.Millisecond)
	require.True(t, s.Pending())
	assert.False(t, s.Evolution())
	require.Len(t, s.Offers(), offerCount)

	seen := map[string]bool{}
	for _, u := range s.Offers() {
		assert.False(t, u.Evolution, u.ID)
		assert.True(t, u.AllowsClass("GUNNER"), u.ID)
		assert.False(t, seen[u.ID], "duplicate offer %s", u.ID)
		seen[u.ID] = true
	}

	// pending offers freeze the timers
	xp := d.World.Stats.XP
	s.Update(5 * time.Second)
	assert.Equal(t, xp, d.World.Stats.XP)
}

func TestRegularPoolSkipsMaxedAndMissingPrerequisites(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)
	p := d.World.Player

	for _, u := range d.Upgrades.All() {
		if u.MaxStacks > 0 {
			p.Upgrades[u.ID] = u.MaxStacks
		}
	}
	for _, u := range s.regularPool() {
		if u.MaxStacks > 0 {
			t.Errorf("maxed upgrade %s still offered", u.ID)
		}
		if u.Prerequisite != "" {
			assert.NotZero(t, p.Upgrades[u.Prerequisite], u.ID)
		}
	}
}

func TestChooseErrors(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)

	assert.ErrorIs(t, s.Choose("dmg_boost"), ErrNoOffer)

	s.offers = []*data.UpgradeEntry{d.Upgrades.Get("dmg_boost")}
	assert.ErrorIs(t, s.Choose("speed_boost"), ErrNotOffered)
	assert.True(t, s.Pending())
}

func TestChooseLevelsUpAndHeals(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)
	ws := d.World
	p := ws.Player

	var levels []int
	event.Subscribe(d.Bus, func(ev event.LevelUp) { levels = append(levels, ev.Level) })

	p.HP = 10
	ws.Stats.XP = 100
	s.offers = []*data.UpgradeEntry{d.Upgrades.Get("dmg_boost")}
	require.NoError(t, s.Choose("dmg_boost"))

	assert.Equal(t, 2, ws.Stats.Level)
	assert.Equal(t, 0, ws.Stats.XP)
	assert.Equal(t, 140, ws.Stats.XPToNext)
	assert.InDelta(t, 1.2, p.Mods.DamageMult, 1e-9)
	assert.Equal(t, 1, p.Upgrades["dmg_boost"])
	assert.InDelta(t, 10+p.MaxHP*levelUpHeal, p.HP, 1e-9)

	flush(d)
	assert.Equal(t, []int{2}, levels)
}

func TestRecomputeMaxHPThenEvolutionOffer(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	s := NewProgressionSystem(d)
	p := d.World.Player
	p.HP = 1

	s.offers = []*data.UpgradeEntry{d.Upgrades.Get("hp_boost")}
	require.NoError(t, s.Choose("hp_boost"))

	want := p.Stats.MaxHP * (1 + levelHPGrowth) * 1.3
	assert.InDelta(t, want, p.MaxHP, 1e-9)
	assert.InDelta(t, p.MaxHP, p.HP, 1e-9)

	// level 2 is even: every unowned gunner evolution is offered
	require.True(t, s.Pending())
	assert.True(t, s.Evolution())
	for _, u := range s.Offers() {
		assert.True(t, u.Evolution)
		assert.Equal(t, "GUNNER", u.Class)
	}

	evo := s.Offers()[0].ID
	require.NoError(t, s.Choose(evo))
	assert.False(t, s.Pending())
	assert.False(t, s.Evolution())
	assert.Equal(t, 2, d.World.Stats.Level)
	assert.Equal(t, 1, p.Upgrades[evo])

	for _, u := range s.evolutionPool() {
		assert.NotEqual(t, evo, u.ID)
	}
}

func TestMageHasNoEvolutionOffer(t *testing.T) {
	d := newTestDeps(t, "MAGE", rolls(0))
	s := NewProgressionSystem(d)

	s.offers = []*data.UpgradeEntry{d.Upgrades.Get("dmg_boost")}
	require.NoError(t, s.Choose("dmg_boost"))
	assert.Equal(t, 2, d.World.Stats.Level)
	assert.False(t, s.Pending())
}
