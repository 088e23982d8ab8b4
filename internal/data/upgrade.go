package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EffectEntry is one stat change. Op is add, mul, set or flag.
type EffectEntry struct {
	Stat  string  `yaml:"stat"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

// UpgradeEntry is a level-up offer.
type UpgradeEntry struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description"`
	Rarity         string        `yaml:"rarity"`
	Class          string        `yaml:"class"` // empty = every class
	Prerequisite   string        `yaml:"prerequisite"`
	MaxStacks      int           `yaml:"max_stacks"` // 0 = unlimited
	Evolution      bool          `yaml:"evolution"`
	RecomputeMaxHP bool          `yaml:"recompute_max_hp"`
	Effects        []EffectEntry `yaml:"effects"`
}

// AllowsClass reports whether class may be offered this upgrade.
func (u *UpgradeEntry) AllowsClass(class string) bool {
	return u.Class == "" || u.Class == class
}

// UpgradeTable keeps upgrades in file order; offer rolls depend on it.
type UpgradeTable struct {
	list []*UpgradeEntry
	byID map[string]*UpgradeEntry
}

// LoadUpgradeTable loads upgrades.yaml.
func LoadUpgradeTable(path string) (*UpgradeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upgrade list: %w", err)
	}
	var entries []UpgradeEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse upgrade list: %w", err)
	}
	t := &UpgradeTable{
		list: make([]*UpgradeEntry, 0, len(entries)),
		byID: make(map[string]*UpgradeEntry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			return nil, fmt.Errorf("upgrade #%d: missing id", i)
		}
		if _, dup := t.byID[e.ID]; dup {
			return nil, fmt.Errorf("upgrade %s: duplicate id", e.ID)
		}
		t.list = append(t.list, e)
		t.byID[e.ID] = e
	}
	for _, e := range t.list {
		if e.Prerequisite != "" && t.byID[e.Prerequisite] == nil {
			return nil, fmt.Errorf("upgrade %s: unknown prerequisite %s", e.ID, e.Prerequisite)
		}
	}
	return t, nil
}

func (t *UpgradeTable) Get(id string) *UpgradeEntry {
	return t.byID[id]
}

// All returns every upgrade in file order. Callers must not modify it.
func (t *UpgradeTable) All() []*UpgradeEntry {
	return t.list
}

func (t *UpgradeTable) Count() int {
	return len(t.list)
}
