package scripting

import "math"

// Formulas are the balance numbers the simulation asks for. *Engine answers
// from Lua, Defaults from Go.
type Formulas interface {
	// LevelDamageMult scales basic-attack damage: (1 + level*0.1) * damageMult.
	LevelDamageMult(level int, damageMult float64) float64
	// SkillDamageMult is 1 + level*0.1*damageMult. The multiplier sits
	// inside the level term, unlike LevelDamageMult.
	SkillDamageMult(level int, damageMult float64) float64
	EnemyHPScale(level int) float64
	BossMaxHP(multiplier float64, level int) float64
	AmbushHP(level int) float64
	NextXP(current int) int
	// SpawnInterval is the ms between ambient spawns.
	SpawnInterval(wave int) float64
}

// MinSpawnInterval floors SpawnInterval.
const MinSpawnInterval = 250

// Defaults is the Go rendition of the balance formulas, used when no script
// directory is configured and as fallback on Lua errors.
type Defaults struct{}

var _ Formulas = Defaults{}
var _ Formulas = (*Engine)(nil)

func (Defaults) LevelDamageMult(level int, damageMult float64) float64 {
	return (1 + float64(level)*0.1) * damageMult
}

func (Defaults) SkillDamageMult(level int, damageMult float64) float64 {
	return 1 + float64(level)*0.1*damageMult
}

func (Defaults) EnemyHPScale(level int) float64 {
	return 1 + math.Floor(float64(level)/3)*0.4
}

func (Defaults) BossMaxHP(multiplier float64, level int) float64 {
	return multiplier * (1 + float64(level)*0.5)
}

func (Defaults) AmbushHP(level int) float64 {
	return 80 * (1 + float64(level)*0.2)
}

func (Defaults) NextXP(current int) int {
	return int(math.Floor(float64(current) * 1.4))
}

func (Defaults) SpawnInterval(wave int) float64 {
	return max(MinSpawnInterval, 1800-float64(wave)*20)
}
