package system

import (
	"math"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
)

const (
	dropChance     = 0.4 // roll must exceed
	rareDropRoll   = 0.95
	magnetRange    = 150
	itemFriction   = 0.9
	xpCrystalValue = 20
	healthFraction = 0.2
	cooldownCut    = 0.7
)

var itemVisuals = map[world.ItemKind]string{
	world.ItemXP:       "#facc15",
	world.ItemHealth:   "#ef4444",
	world.ItemCooldown: "#38bdf8",
}

// LootSystem drops items for kills, pulls nearby items toward the player
// and applies them on pickup. Phase 3 (PostUpdate).
type LootSystem struct {
	deps *Deps
}

// NewLootSystem subscribes the system to kill events on the bus.
func NewLootSystem(deps *Deps) *LootSystem {
	s := &LootSystem{deps: deps}
	event.Subscribe(deps.Bus, s.onEnemyKilled)
	return s
}

func (s *LootSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LootSystem) onEnemyKilled(ev event.EnemyKilled) {
	at := world.Vec2{X: ev.X, Y: ev.Y}
	s.SpawnDrop(at)
	if ev.Elite {
		s.SpawnDrop(at.Add(world.Vec2{X: 20}))
	}
}

// SpawnDrop rolls one drop at pos. Most rolls above the threshold give XP;
// the rest give a health potion or a cooldown orb.
func (s *LootSystem) SpawnDrop(pos world.Vec2) *world.Item {
	ws := s.deps.World
	if ws.Rand.Float64() <= dropChance {
		return nil
	}
	kind := world.ItemXP
	if ws.Rand.Float64() > rareDropRoll {
		kind = world.ItemHealth
	} else if ws.Rand.Float64() > rareDropRoll {
		kind = world.ItemCooldown
	}
	a := ws.Rand.Float64() * 2 * math.Pi
	it := &world.Item{
		Body: world.Body{Pos: pos, Vel: world.Polar(a, ws.Roll(2, 4)), Radius: 12, Visual: itemVisuals[kind]},
		Kind: kind,
	}
	ws.AddItem(it)
	return it
}

func (s *LootSystem) Update(_ time.Duration) {
	ws := s.deps.World
	ts := ws.Scale
	pl := ws.Player
	for i := len(ws.Items) - 1; i >= 0; i-- {
		it := ws.Items[i]
		toPlayer := pl.Pos.Sub(it.Pos)
		dist := toPlayer.Len()
		if dist < magnetRange && dist > 0 {
			pull := 15*(1-dist/magnetRange) + 2
			it.Vel = it.Vel.Add(toPlayer.Scale(pull * ts * 0.1 / dist))
		}
		it.Pos = it.Pos.Add(it.Vel.Scale(ts))
		it.Vel = it.Vel.Scale(itemFriction)

		if dist < pl.Radius+it.Radius {
			s.pickup(it)
			ws.RemoveItem(i)
		}
	}
}

func (s *LootSystem) pickup(it *world.Item) {
	d := s.deps
	ws := d.World
	pl := ws.Player
	switch it.Kind {
	case world.ItemHealth:
		heal := pl.MaxHP * healthFraction
		pl.Heal(heal)
		d.FX.Textf(pl.Pos.X, pl.Pos.Y-40, "#22c55e", 1, "+%.0f", heal)
	case world.ItemCooldown:
		for i, at := range pl.SkillReadyAt {
			if rem := at - ws.Now; rem > 0 {
				pl.SkillReadyAt[i] = ws.Now + rem*cooldownCut
			}
		}
		d.FX.Text(pl.Pos.X, pl.Pos.Y-40, "#38bdf8", 1.5, "COOLDOWNS REDUCED!")
	default:
		ws.Stats.XP += xpCrystalValue
		d.FX.Textf(pl.Pos.X, pl.Pos.Y-40, "#facc15", 1, "+%d XP", xpCrystalValue)
	}
	d.FX.Sound(fx.SoundPickup)
}
