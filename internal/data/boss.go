package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BossAttack is one weighted attack pattern.
type BossAttack struct {
	Pattern    string  `yaml:"pattern"`
	Weight     float64 `yaml:"weight"`
	Phase2Only bool    `yaml:"phase2_only"`
}

// BossEntry describes a boss and the map whose altar summons it.
type BossEntry struct {
	Kind         string       `yaml:"kind"`
	Map          string       `yaml:"map"`
	Name         string       `yaml:"name"`
	Title        string       `yaml:"title"`
	HPMultiplier float64      `yaml:"hp_multiplier"`
	BaseDamage   float64      `yaml:"base_damage"`
	Radius       float64      `yaml:"radius"`
	Phases       []float64    `yaml:"phases"`
	Hazard       string       `yaml:"hazard"`
	Visual       string       `yaml:"visual"`
	Attacks      []BossAttack `yaml:"attacks"`
}

// PickAttack walks the attacks with a uniform roll in [0,1). Weights are
// cumulative in file order; when the chosen pattern is phase-2 only and
// phase2 is false, ok is false and the turn is skipped.
func (b *BossEntry) PickAttack(roll float64, phase2 bool) (string, bool) {
	var acc float64
	for _, a := range b.Attacks {
		acc += a.Weight
		if roll < acc {
			if a.Phase2Only && !phase2 {
				return "", false
			}
			return a.Pattern, true
		}
	}
	if len(b.Attacks) == 0 {
		return "", false
	}
	last := b.Attacks[len(b.Attacks)-1]
	if last.Phase2Only && !phase2 {
		return "", false
	}
	return last.Pattern, true
}

// BossTable indexes bosses by kind and by map.
type BossTable struct {
	byKind map[string]*BossEntry
	byMap  map[string]*BossEntry
}

// LoadBossTable loads bosses.yaml.
func LoadBossTable(path string) (*BossTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boss list: %w", err)
	}
	var entries []BossEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse boss list: %w", err)
	}
	t := &BossTable{
		byKind: make(map[string]*BossEntry, len(entries)),
		byMap:  make(map[string]*BossEntry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if len(e.Phases) == 0 {
			return nil, fmt.Errorf("boss %s: no phase thresholds", e.Kind)
		}
		t.byKind[e.Kind] = e
		t.byMap[e.Map] = e
	}
	return t, nil
}

func (t *BossTable) Get(kind string) *BossEntry {
	return t.byKind[kind]
}

// ForMap returns the boss summoned by the altar of mapKind.
func (t *BossTable) ForMap(mapKind string) *BossEntry {
	return t.byMap[mapKind]
}

func (t *BossTable) Count() int {
	return len(t.byKind)
}
