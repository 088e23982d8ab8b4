package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

const (
	passiveXPMs   = 1000
	waveMs        = 60000
	offerCount    = 3
	levelUpHeal   = 0.2
	levelHPGrowth = 0.1
)

var (
	ErrNoOffer    = errors.New("no upgrade offer pending")
	ErrNotOffered = errors.New("upgrade not among the offers")
)

// ProgressionSystem grants passive xp, advances waves and runs the level-up
// offer cycle. While offers are pending the session stays paused.
// Phase 3 (PostUpdate).
type ProgressionSystem struct {
	deps *Deps

	xpTimer   float64 // ms
	waveTimer float64 // ms

	offers    []*data.UpgradeEntry
	evolution bool
}

func NewProgressionSystem(deps *Deps) *ProgressionSystem {
	return &ProgressionSystem{deps: deps}
}

func (s *ProgressionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Pending reports whether the player has offers to choose from.
func (s *ProgressionSystem) Pending() bool { return len(s.offers) > 0 }

// Evolution reports whether the pending offers are class evolutions.
func (s *ProgressionSystem) Evolution() bool { return s.evolution }

// Offers returns the pending offers. Callers must not modify it.
func (s *ProgressionSystem) Offers() []*data.UpgradeEntry { return s.offers }

func (s *ProgressionSystem) Update(dt time.Duration) {
	ws := s.deps.World
	if s.Pending() || ws.Stats.GameOver {
		return
	}
	rawMs := float64(dt) / float64(time.Millisecond)

	s.xpTimer += rawMs
	if s.xpTimer >= passiveXPMs {
		s.xpTimer = 0
		ws.Stats.XP++
	}

	s.waveTimer += rawMs
	if s.waveTimer >= waveMs {
		s.waveTimer -= waveMs
		ws.Stats.Wave++
		s.deps.Log.Debug("wave advanced", zap.Int("wave", ws.Stats.Wave))
	}

	if ws.Stats.XP >= ws.Stats.XPToNext {
		s.offerLevelUp()
	}
}

// offerLevelUp rolls up to three regular upgrades the player can still take.
// With nothing left to offer the level is granted outright.
func (s *ProgressionSystem) offerLevelUp() {
	d := s.deps
	pool := s.regularPool()
	for i := len(pool) - 1; i > 0; i-- {
		j := d.World.Rand.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if len(pool) > offerCount {
		pool = pool[:offerCount]
	}
	d.FX.Sound(fx.SoundLevelUp)
	if len(pool) == 0 {
		s.advanceLevel(false)
		return
	}
	s.offers = pool
	s.evolution = false
}

func (s *ProgressionSystem) regularPool() []*data.UpgradeEntry {
	p := s.deps.World.Player
	class := p.Stats.Class.String()
	var pool []*data.UpgradeEntry
	for _, u := range s.deps.Upgrades.All() {
		if u.Evolution || !u.AllowsClass(class) {
			continue
		}
		if u.MaxStacks > 0 && p.Upgrades[u.ID] >= u.MaxStacks {
			continue
		}
		if u.Prerequisite != "" && p.Upgrades[u.Prerequisite] == 0 {
			continue
		}
		pool = append(pool, u)
	}
	return pool
}

func (s *ProgressionSystem) evolutionPool() []*data.UpgradeEntry {
	p := s.deps.World.Player
	class := p.Stats.Class.String()
	var pool []*data.UpgradeEntry
	for _, u := range s.deps.Upgrades.All() {
		if u.Evolution && u.Class == class && p.Upgrades[u.ID] == 0 {
			pool = append(pool, u)
		}
	}
	return pool
}

// Choose applies the offered upgrade id. A regular choice levels the player
// up; on even levels it may be followed by an evolution offer.
func (s *ProgressionSystem) Choose(id string) error {
	if !s.Pending() {
		return ErrNoOffer
	}
	var chosen *data.UpgradeEntry
	for _, u := range s.offers {
		if u.ID == id {
			chosen = u
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("choose %s: %w", id, ErrNotOffered)
	}
	if err := s.apply(chosen); err != nil {
		return err
	}
	d := s.deps
	d.FX.Sound(fx.SoundUpgrade)

	if s.evolution {
		pl := d.World.Player
		s.offers, s.evolution = nil, false
		d.FX.Text(pl.Pos.X, pl.Pos.Y-80, "#facc15", 2.5, "EVOLVED!")
		return nil
	}

	s.offers = nil
	s.advanceLevel(chosen.RecomputeMaxHP)
	if d.World.Stats.Level%2 == 0 {
		if evo := s.evolutionPool(); len(evo) > 0 {
			s.offers, s.evolution = evo, true
		}
	}
	return nil
}

func (s *ProgressionSystem) apply(u *data.UpgradeEntry) error {
	d := s.deps
	ws := d.World
	p := ws.Player
	effects := make([]world.Effect, len(u.Effects))
	for i, e := range u.Effects {
		effects[i] = world.Effect{Stat: e.Stat, Op: world.Op(e.Op), Value: e.Value}
	}
	if err := d.applyEffects(effects); err != nil {
		return fmt.Errorf("apply upgrade %s: %w", u.ID, err)
	}
	p.Upgrades[u.ID]++

	if u.RecomputeMaxHP {
		d.recomputeMaxHP()
		p.HP = p.MaxHP
		d.FX.Text(p.Pos.X, p.Pos.Y-60, "#22c55e", 2, "MAX HP UP!")
	}

	event.Emit(d.Bus, event.UpgradeApplied{ID: u.ID, Count: p.Upgrades[u.ID]})
	d.Log.Debug("upgrade applied", zap.String("upgrade", u.ID), zap.Int("count", p.Upgrades[u.ID]))
	return nil
}

func (s *ProgressionSystem) advanceLevel(healed bool) {
	d := s.deps
	ws := d.World
	p := ws.Player
	ws.Stats.Level++
	ws.Stats.XP = 0
	ws.Stats.XPToNext = d.Formulas.NextXP(ws.Stats.XPToNext)
	if !healed {
		p.Heal(p.MaxHP * levelUpHeal)
	}
	event.Emit(d.Bus, event.LevelUp{Level: ws.Stats.Level})
	d.Log.Info("level up",
		zap.Int("level", ws.Stats.Level),
		zap.Int("xp_to_next", ws.Stats.XPToNext),
	)
}
