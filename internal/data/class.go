package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkillEntry is one of a class's four skill slots.
type SkillEntry struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Cooldown float64 `yaml:"cooldown"` // ms
	Unlock   int     `yaml:"unlock"`   // minimum player level
}

// ClassEntry holds the base numbers of a playable class.
type ClassEntry struct {
	Class    string       `yaml:"class"`
	MaxHP    float64      `yaml:"max_hp"`
	Speed    float64      `yaml:"speed"`
	Damage   float64      `yaml:"damage"`
	FireRate float64      `yaml:"fire_rate"`
	Range    float64      `yaml:"range"`
	Visual   string       `yaml:"visual"`
	Skills   []SkillEntry `yaml:"skills"`
}

// ClassTable maps class names to their base stats.
type ClassTable struct {
	classes map[string]*ClassEntry
}

// LoadClassTable loads classes.yaml.
func LoadClassTable(path string) (*ClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class list: %w", err)
	}
	var entries []ClassEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse class list: %w", err)
	}
	t := &ClassTable{classes: make(map[string]*ClassEntry, len(entries))}
	for i := range entries {
		e := &entries[i]
		if len(e.Skills) != 4 {
			return nil, fmt.Errorf("class %s: want 4 skills, got %d", e.Class, len(e.Skills))
		}
		if e.MaxHP <= 0 || e.FireRate <= 0 {
			return nil, fmt.Errorf("class %s: max_hp and fire_rate must be positive", e.Class)
		}
		t.classes[e.Class] = e
	}
	return t, nil
}

// Get returns the class entry, or nil if unknown.
func (t *ClassTable) Get(class string) *ClassEntry {
	return t.classes[class]
}

func (t *ClassTable) Count() int {
	return len(t.classes)
}
