package system

import (
	"github.com/neonronin/survivor/internal/core/event"
	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/scripting"
	"github.com/neonronin/survivor/internal/world"
	"go.uber.org/zap"
)

// MapLoader fills st with a freshly generated layout of kind.
type MapLoader func(st *world.State, kind world.MapKind)

// Deps bundles everything the systems of one session share.
type Deps struct {
	World    *world.State
	Bus      *event.Bus
	FX       *fx.Queue
	Log      *zap.Logger
	Formulas scripting.Formulas
	Controls *Controls

	Classes  *data.ClassTable
	Upgrades *data.UpgradeTable
	Enemies  *data.EnemyTable
	Bosses   *data.BossTable

	LoadMap MapLoader
}

// CurrentDamage is the player's scaled basic damage.
func (d *Deps) CurrentDamage() float64 {
	p := d.World.Player
	return p.Stats.Damage * d.Formulas.LevelDamageMult(d.World.Stats.Level, p.Mods.DamageMult)
}

// SkillDamage is the player's base damage under the skill scaling.
func (d *Deps) SkillDamage() float64 {
	p := d.World.Player
	return p.Stats.Damage * d.Formulas.SkillDamageMult(d.World.Stats.Level, p.Mods.DamageMult)
}

// applyEffects folds effects into the player's modifiers. The aggregate is
// only ever changed here.
func (d *Deps) applyEffects(effects []world.Effect) error {
	p := d.World.Player
	mods, err := p.Mods.Apply(effects)
	if err != nil {
		return err
	}
	p.Mods = mods
	return nil
}

// recomputeMaxHP derives max HP from the class base, the level and
// MaxHPMult.
func (d *Deps) recomputeMaxHP() {
	p := d.World.Player
	base := p.Stats.MaxHP * (1 + float64(d.World.Stats.Level)*levelHPGrowth)
	p.MaxHP = base * p.Mods.MaxHPMult
}

// hit applies damage and a flash to e and floats the number.
func (d *Deps) hit(e *world.Enemy, dmg, flash float64, color string) {
	e.TakeDamage(dmg)
	if flash > 0 {
		e.HitFlash = flash
	}
	d.FX.Number(e.Pos.X, e.Pos.Y-20, color, 1, dmg)
}

// strike is a hit that also feeds the shared wind counter.
func (d *Deps) strike(e *world.Enemy, dmg, flash float64, color string) {
	d.hit(e, dmg, flash, color)
	d.windEndures(e)
}

// windEndures counts every striking hit; the fourth one adds a bonus strike.
func (d *Deps) windEndures(e *world.Enemy) {
	p := d.World.Player
	if !p.Mods.WindEndures {
		return
	}
	p.WindCounter++
	if p.WindCounter < 4 {
		return
	}
	p.WindCounter = 0
	dmg := d.CurrentDamage() * 0.8
	e.TakeDamage(dmg)
	e.HitFlash = 10
	d.FX.Text(e.Pos.X, e.Pos.Y-70, "#4ade80", 1.5, "TAP!")
	d.FX.Burst(e.Pos.X, e.Pos.Y, "#4ade80", 8, 6)
}

// spawnExplosive drops a blast that detonates on contact once armed.
func (d *Deps) spawnExplosive(pos world.Vec2, radius, dmg, life float64, visual string) *world.Projectile {
	return d.World.AddProjectile(&world.Projectile{
		Body:   world.Body{Pos: pos, Radius: radius, Visual: visual},
		Kind:   world.ProjExplosive,
		Owner:  world.OwnerPlayer,
		Damage: dmg,
		Life:   life,
	})
}

// aimAngle is the angle from the player to the aim point.
func (d *Deps) aimAngle() float64 {
	return d.World.Player.Pos.AngleTo(d.Controls.Current.Aim)
}

// hurtPlayer applies damage to the player and ends the run the first time
// HP reaches zero.
func (d *Deps) hurtPlayer(dmg float64) {
	ws := d.World
	p := ws.Player
	p.TakeDamage(dmg)
	if p.HP > 0 || ws.Stats.GameOver {
		return
	}
	ws.Stats.GameOver = true
	event.Emit(d.Bus, event.PlayerDied{Score: ws.Stats.Score})
	d.Log.Info("player died",
		zap.Int("score", ws.Stats.Score),
		zap.Int("level", ws.Stats.Level),
		zap.Int("kills", ws.Stats.Kills),
	)
}
