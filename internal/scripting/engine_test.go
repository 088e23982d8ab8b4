package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngineMatchesDefaults(t *testing.T) {
	e := newEngine(t, "../../scripts")
	d := Defaults{}

	for _, level := range []int{1, 2, 5, 9, 17} {
		assert.InDelta(t, d.LevelDamageMult(level, 1.4), e.LevelDamageMult(level, 1.4), 1e-9)
		assert.InDelta(t, d.SkillDamageMult(level, 1.4), e.SkillDamageMult(level, 1.4), 1e-9)
		assert.InDelta(t, d.EnemyHPScale(level), e.EnemyHPScale(level), 1e-9)
		assert.InDelta(t, d.BossMaxHP(3500, level), e.BossMaxHP(3500, level), 1e-9)
		assert.InDelta(t, d.AmbushHP(level), e.AmbushHP(level), 1e-9)
	}
	for _, xp := range []int{100, 140, 196, 1000} {
		assert.Equal(t, d.NextXP(xp), e.NextXP(xp))
	}
	for _, wave := range []int{1, 10, 100} {
		assert.InDelta(t, d.SpawnInterval(wave), e.SpawnInterval(wave), 1e-9)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults{}
	assert.InDelta(t, 1.2, d.LevelDamageMult(2, 1), 1e-9)
	assert.InDelta(t, 1.4, d.SkillDamageMult(2, 2), 1e-9)
	assert.InDelta(t, 1.0, d.EnemyHPScale(2), 1e-9)
	assert.InDelta(t, 1.4, d.EnemyHPScale(3), 1e-9)
	assert.Equal(t, 140, d.NextXP(100))
	assert.Equal(t, 196, d.NextXP(140))
	assert.InDelta(t, 1780.0, d.SpawnInterval(1), 1e-9)
	assert.InDelta(t, float64(MinSpawnInterval), d.SpawnInterval(500), 1e-9)
}

func TestEngineFallsBackOnMissingFunction(t *testing.T) {
	e := newEngine(t, t.TempDir())
	assert.InDelta(t, Defaults{}.BossMaxHP(4500, 4), e.BossMaxHP(4500, 4), 1e-9)
	assert.Equal(t, 140, e.NextXP(100))
}

func TestEngineFallsBackOnScriptError(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(core, 0o755))
	script := "function ambush_hp(level) error('boom') end\nfunction enemy_hp_scale(level) return 'x' end\n"
	require.NoError(t, os.WriteFile(filepath.Join(core, "bad.lua"), []byte(script), 0o644))

	e := newEngine(t, dir)
	assert.InDelta(t, Defaults{}.AmbushHP(3), e.AmbushHP(3), 1e-9)
	assert.InDelta(t, Defaults{}.EnemyHPScale(6), e.EnemyHPScale(6), 1e-9)
}

func TestEngineScriptOverride(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(core, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(core, "b.lua"), []byte("function spawn_interval(w) return 999 end\n"), 0o644))

	e := newEngine(t, dir)
	assert.InDelta(t, 999.0, e.SpawnInterval(3), 1e-9)
}

func TestNewEngineSyntaxError(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(core, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(core, "x.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.ErrorContains(t, err, "load core scripts")
}

func TestEngineSandboxHasNoOS(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(core, 0o755))
	script := "function next_xp(c) if os == nil then return c + 1 end return c + 2 end\n"
	require.NoError(t, os.WriteFile(filepath.Join(core, "s.lua"), []byte(script), 0o644))

	e := newEngine(t, dir)
	assert.Equal(t, 101, e.NextXP(100))
	assert.Equal(t, []string{filepath.Join(core, "s.lua")}, e.Loaded())
}

func TestBrokenFormulaStaysDisabled(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	require.NoError(t, os.MkdirAll(core, 0o755))
	script := "calls = 0\nfunction ambush_hp(level) calls = calls + 1 error('boom') end\n"
	require.NoError(t, os.WriteFile(filepath.Join(core, "b.lua"), []byte(script), 0o644))

	e := newEngine(t, dir)
	e.AmbushHP(1)
	e.AmbushHP(2)
	assert.Equal(t, lua.LNumber(1), e.vm.GetGlobal("calls"))
	assert.True(t, e.broken["ambush_hp"])
}
