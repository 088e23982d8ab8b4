package event

import "github.com/neonronin/survivor/internal/core/ecs"

// EnemyKilled fires once per enemy, the tick its death sequence starts.
type EnemyKilled struct {
	ID    ecs.EntityID
	Kind  string
	X, Y  float64
	Elite bool
	Boss  bool
	Score int
	XP    int
}

type BossSpawned struct {
	Name  string
	MaxHP float64
}

type BossPhaseChanged struct {
	Name  string
	Phase int
}

type BossDefeated struct {
	Name string
	X, Y float64
}

type WorldEventStarted struct {
	Kind string
}

type WorldEventEnded struct {
	Kind string
}

type LevelUp struct {
	Level int
}

type UpgradeApplied struct {
	ID    string
	Count int
}

type MapChanged struct {
	Map string
}

// PlayerDied ends the session.
type PlayerDied struct {
	Score int
}
