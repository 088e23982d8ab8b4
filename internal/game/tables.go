package game

import (
	"fmt"
	"path/filepath"

	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/world"
)

// Tables are the static data every session reads.
type Tables struct {
	Classes  *data.ClassTable
	Upgrades *data.UpgradeTable
	Enemies  *data.EnemyTable
	Bosses   *data.BossTable
}

// LoadTables reads the yaml tables from dir.
func LoadTables(dir string) (*Tables, error) {
	classes, err := data.LoadClassTable(filepath.Join(dir, "classes.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load class table: %w", err)
	}
	upgrades, err := data.LoadUpgradeTable(filepath.Join(dir, "upgrades.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load upgrade table: %w", err)
	}
	enemies, err := data.LoadEnemyTable(filepath.Join(dir, "enemies.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load enemy table: %w", err)
	}
	bosses, err := data.LoadBossTable(filepath.Join(dir, "bosses.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load boss table: %w", err)
	}
	return &Tables{Classes: classes, Upgrades: upgrades, Enemies: enemies, Bosses: bosses}, nil
}

// classStats converts a class entry into the player's base numbers.
func classStats(e *data.ClassEntry) (world.ClassStats, error) {
	class, ok := world.ParseClass(e.Class)
	if !ok {
		return world.ClassStats{}, fmt.Errorf("unknown class %q", e.Class)
	}
	st := world.ClassStats{
		Class:    class,
		MaxHP:    e.MaxHP,
		Speed:    e.Speed,
		Damage:   e.Damage,
		FireRate: e.FireRate,
		Range:    e.Range,
	}
	for i, sk := range e.Skills {
		if i >= len(st.Skills) {
			break
		}
		st.Skills[i] = world.SkillSpec{ID: sk.ID, Name: sk.Name, Cooldown: sk.Cooldown, Unlock: sk.Unlock}
	}
	return st, nil
}
