package system

import (
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

const (
	portalReach = 80
	boatReach   = 60
	chestReach  = 50
	shrineReach = 60
	chestDrops  = 5
)

// InteractSystem resolves the interact key against the nearest target, in
// priority order: portal, boat, chest, boss altar, shrine. Phase 2 (Update).
type InteractSystem struct {
	deps  *Deps
	boss  *BossSystem
	loot  *LootSystem
	spawn *SpawnSystem
}

func NewInteractSystem(deps *Deps, boss *BossSystem, loot *LootSystem, spawn *SpawnSystem) *InteractSystem {
	return &InteractSystem{deps: deps, boss: boss, loot: loot, spawn: spawn}
}

func (s *InteractSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *InteractSystem) Update(_ time.Duration) {
	if s.deps.Controls.Current.Interact {
		s.Interact()
	}
}

// Interact performs at most one interaction and reports which target was
// used, or "" when nothing was in reach.
func (s *InteractSystem) Interact() string {
	switch {
	case s.usePortal():
		return "portal"
	case s.useBoat():
		return "boat"
	case s.openChest():
		return "chest"
	case s.useAltar():
		return "altar"
	case s.useShrine():
		return "shrine"
	}
	return ""
}

func (s *InteractSystem) usePortal() bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	if ws.Portal == nil || pl.Pos.Dist(ws.Portal.Pos) >= portalReach || d.LoadMap == nil {
		return false
	}
	d.FX.Shake(20, 30)
	d.FX.Sound(fx.SoundPortal)
	ws.ClearTransient()
	ws.MapKind = world.MapIceWorld
	d.LoadMap(ws, world.MapIceWorld)
	ws.Portal = nil
	pl.OnBoat = false
	pl.Pos = world.Vec2{X: world.TileSize * 4, Y: world.TileSize * 4}
	d.FX.Text(pl.Pos.X, pl.Pos.Y-50, "#bae6fd", 2, "WELCOME TO THE FROZEN WASTES")
	event.Emit(d.Bus, event.MapChanged{Map: ws.MapKind.String()})
	d.Log.Info("map transition", zap.String("to", ws.MapKind.String()), zap.String("via", "portal"))
	return true
}

func (s *InteractSystem) useBoat() bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	if ws.Boat == nil || pl.Pos.Dist(ws.Boat.Pos) >= boatReach {
		return false
	}
	pl.OnBoat = !pl.OnBoat
	pl.Vel = world.Vec2{}
	if pl.OnBoat {
		pl.Pos = ws.Boat.Pos
		pl.Heading = ws.Boat.Heading
		d.FX.Text(pl.Pos.X, pl.Pos.Y-30, "#ffffff", 1, "ABOARD")
	} else {
		pl.Pos.Y += 40
		d.FX.Text(pl.Pos.X, pl.Pos.Y-30, "#ffffff", 1, "ASHORE")
	}
	return true
}

func (s *InteractSystem) openChest() bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	for i, c := range ws.Props {
		if c.Kind != world.PropChest || !c.Active || pl.Pos.Dist(c.Pos) >= chestReach {
			continue
		}
		c.Active = false
		for k := 0; k < chestDrops; k++ {
			s.loot.SpawnDrop(c.Pos.Add(world.Vec2{X: ws.Roll(-15, 15), Y: ws.Roll(-15, 15)}))
		}
		d.FX.Sound(fx.SoundUpgrade)
		d.FX.Text(c.Pos.X, c.Pos.Y-40, "#facc15", 1.5, "TREASURE!")
		d.FX.Burst(c.Pos.X, c.Pos.Y, "#facc15", 20, 5)
		ws.RemoveProp(i)
		return true
	}
	return false
}

func (s *InteractSystem) useAltar() bool {
	ws := s.deps.World
	a := ws.Altar
	if a == nil || !a.Active {
		return false
	}
	tx, ty := world.TileCoord(ws.Player.Pos)
	if abs(a.TX-tx) > 1 || abs(a.TY-ty) > 1 {
		return false
	}
	if s.boss.Summon(a.Center()) == nil {
		return false
	}
	a.Active = false
	return true
}

func (s *InteractSystem) useShrine() bool {
	d := s.deps
	ws := d.World
	pl := ws.Player
	for _, sh := range ws.Shrines {
		if sh.Used || pl.Pos.Dist(sh.Pos) >= shrineReach {
			continue
		}
		sh.Used = true
		d.FX.Sound(fx.SoundUpgrade)
		d.FX.Shake(10, 10)
		d.FX.Burst(sh.Pos.X, sh.Pos.Y, sh.Visual, 30, 8)
		s.blessing(sh.Kind)
		return true
	}
	return false
}

// Shrine blessings are stat changes like any upgrade.
var (
	bloodPact = []world.Effect{{Stat: "damage_mult", Op: world.OpAdd, Value: 0.15}}
	swiftness = []world.Effect{{Stat: "speed_mult", Op: world.OpAdd, Value: 0.2}}
	legendary = []world.Effect{
		{Stat: "damage_mult", Op: world.OpAdd, Value: 0.3},
		{Stat: "max_hp_mult", Op: world.OpAdd, Value: 0.3},
	}
)

func (s *InteractSystem) blessing(kind world.ShrineKind) {
	d := s.deps
	ws := d.World
	pl := ws.Player
	x, y := pl.Pos.X, pl.Pos.Y-50
	switch kind {
	case world.ShrineHeal:
		pl.HP = pl.MaxHP
		d.FX.Text(x, y, "#22c55e", 2, "FULLY RESTORED!")
	case world.ShrineBlood:
		pl.HP = max(1, pl.HP-pl.MaxHP*0.2)
		s.bless(kind, bloodPact)
		d.FX.Text(x, y, "#ef4444", 2, "BLOOD PACT: DAMAGE +15%")
	case world.ShrineGamble:
		switch r := ws.Rand.Float64(); {
		case r < 0.4:
			ws.Stats.XP += 300
			d.FX.Text(x, y, "#facc15", 2, "WINDFALL! +300 XP")
		case r < 0.7:
			s.spawn.Spawn()
			s.spawn.Spawn()
			d.FX.Text(x, y, "#ef4444", 2, "IT'S A TRAP!")
		default:
			s.bless(kind, swiftness)
			d.FX.Text(x, y, "#bae6fd", 2, "SWIFTNESS!")
		}
	case world.ShrineLegendary:
		s.bless(kind, legendary)
		d.recomputeMaxHP()
		pl.HP = pl.MaxHP
		d.FX.Text(pl.Pos.X, pl.Pos.Y-60, "#facc15", 3, "LEGENDARY POWER!")
	}
}

func (s *InteractSystem) bless(kind world.ShrineKind, effects []world.Effect) {
	if err := s.deps.applyEffects(effects); err != nil {
		s.deps.Log.Error("shrine blessing", zap.Stringer("shrine", kind), zap.Error(err))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
