package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// scriptDirs are loaded in order; combat formulas may call core helpers.
var scriptDirs = []string{"core", "combat"}

// Engine evaluates the balance formulas in a sandboxed gopher-lua VM. Any
// formula that is missing or misbehaves falls back to Defaults.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback Defaults
	loaded   []string
	broken   map[string]bool
}

// NewEngine opens a VM with only the base, table, string and math libraries
// and runs every .lua file under scriptsDir/core and scriptsDir/combat.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSandbox(vm); err != nil {
		vm.Close()
		return nil, err
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, broken: make(map[string]bool)}
	for _, sub := range scriptDirs {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	log.Info("formula scripts loaded", zap.Int("files", len(e.loaded)))
	return e, nil
}

func openSandbox(vm *lua.LState) error {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		err := vm.CallByParam(lua.P{Fn: vm.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open lua %s lib: %w", lib.name, err)
		}
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// Loaded lists the script files run at startup, in load order.
func (e *Engine) Loaded() []string { return slices.Clone(e.loaded) }

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.loaded = append(e.loaded, path)
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// number calls the global formula name. ok is false when the formula is
// absent, raises or returns something other than a number. A failing
// formula is reported once and then silently replaced by its fallback.
func (e *Engine) number(name string, args ...lua.LValue) (float64, bool) {
	if e.broken[name] {
		return 0, false
	}
	fn, isFn := e.vm.GetGlobal(name).(*lua.LFunction)
	if !isFn {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		e.disable(name, zap.Error(err))
		return 0, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, isNum := ret.(lua.LNumber)
	if !isNum {
		e.disable(name, zap.String("returned", ret.Type().String()))
		return 0, false
	}
	return float64(n), true
}

func (e *Engine) disable(name string, why zap.Field) {
	e.broken[name] = true
	e.log.Error("lua formula disabled, using default", zap.String("fn", name), why)
}

func (e *Engine) LevelDamageMult(level int, damageMult float64) float64 {
	if v, ok := e.number("level_damage_mult", lua.LNumber(level), lua.LNumber(damageMult)); ok {
		return v
	}
	return e.fallback.LevelDamageMult(level, damageMult)
}

func (e *Engine) SkillDamageMult(level int, damageMult float64) float64 {
	if v, ok := e.number("skill_damage_mult", lua.LNumber(level), lua.LNumber(damageMult)); ok {
		return v
	}
	return e.fallback.SkillDamageMult(level, damageMult)
}

func (e *Engine) EnemyHPScale(level int) float64 {
	if v, ok := e.number("enemy_hp_scale", lua.LNumber(level)); ok {
		return v
	}
	return e.fallback.EnemyHPScale(level)
}

func (e *Engine) BossMaxHP(multiplier float64, level int) float64 {
	if v, ok := e.number("boss_max_hp", lua.LNumber(multiplier), lua.LNumber(level)); ok && v > 0 {
		return v
	}
	return e.fallback.BossMaxHP(multiplier, level)
}

func (e *Engine) AmbushHP(level int) float64 {
	if v, ok := e.number("ambush_hp", lua.LNumber(level)); ok && v > 0 {
		return v
	}
	return e.fallback.AmbushHP(level)
}

// NextXP rejects a threshold that does not grow.
func (e *Engine) NextXP(current int) int {
	if v, ok := e.number("next_xp", lua.LNumber(current)); ok && v > float64(current) {
		return int(v)
	}
	return e.fallback.NextXP(current)
}

func (e *Engine) SpawnInterval(wave int) float64 {
	if v, ok := e.number("spawn_interval", lua.LNumber(wave)); ok && v > 0 {
		return v
	}
	return e.fallback.SpawnInterval(wave)
}
