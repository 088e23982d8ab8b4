package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnParams tune the ambient enemy spawner.
type SpawnParams struct {
	Cap                 int     `yaml:"cap"`
	RingRadius          float64 `yaml:"ring_radius"`
	EdgeMargin          float64 `yaml:"edge_margin"`
	EliteChance         float64 `yaml:"elite_chance"`
	EliteMinLevel       int     `yaml:"elite_min_level"`
	EliteHPMult         float64 `yaml:"elite_hp_mult"`
	TankAffixHPMult     float64 `yaml:"tank_affix_hp_mult"`
	TankAffixRadiusMult float64 `yaml:"tank_affix_radius_mult"`
}

// RosterEntry is one enemy kind a map can spawn.
type RosterEntry struct {
	Kind   string  `yaml:"kind"`
	Min    float64 `yaml:"min"` // roll threshold, checked top to bottom
	HP     float64 `yaml:"hp"`
	Radius float64 `yaml:"radius"`
	Visual string  `yaml:"visual"`
}

type enemyFile struct {
	Spawn SpawnParams              `yaml:"spawn"`
	Maps  map[string][]RosterEntry `yaml:"maps"`
}

// EnemyTable holds spawn tuning and the per-map rosters.
type EnemyTable struct {
	Spawn   SpawnParams
	rosters map[string][]RosterEntry
}

// LoadEnemyTable loads enemies.yaml.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy list: %w", err)
	}
	var f enemyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy list: %w", err)
	}
	if f.Spawn.Cap <= 0 {
		return nil, fmt.Errorf("enemy list: spawn cap must be positive")
	}
	for m, r := range f.Maps {
		if len(r) == 0 {
			return nil, fmt.Errorf("enemy list: map %s has an empty roster", m)
		}
	}
	return &EnemyTable{Spawn: f.Spawn, rosters: f.Maps}, nil
}

// Roster returns the ordered roster of a map, or nil.
func (t *EnemyTable) Roster(mapKind string) []RosterEntry {
	return t.rosters[mapKind]
}

// Pick returns the first roster entry whose threshold roll exceeds, falling
// back to the last one.
func (t *EnemyTable) Pick(mapKind string, roll float64) (RosterEntry, bool) {
	r := t.rosters[mapKind]
	if len(r) == 0 {
		return RosterEntry{}, false
	}
	for _, e := range r {
		if roll > e.Min {
			return e, true
		}
	}
	return r[len(r)-1], true
}

// Count returns the number of maps with a roster.
func (t *EnemyTable) Count() int {
	return len(t.rosters)
}
