package system

import (
	"path/filepath"
	"testing"

	"github.com/neonronin/survivor/internal/core/event"
	"github.com/neonronin/survivor/internal/data"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/scripting"
	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const dataDir = "../../data/yaml"

// scriptedRNG returns the queued floats in order, then fallback forever.
// Intn always picks the lowest value.
type scriptedRNG struct {
	floats   []float64
	fallback float64
}

func (r *scriptedRNG) Float64() float64 {
	if len(r.floats) == 0 {
		return r.fallback
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRNG) Intn(int) int { return 0 }

func rolls(fallback float64, floats ...float64) *scriptedRNG {
	return &scriptedRNG{floats: floats, fallback: fallback}
}

func newTestDeps(t *testing.T, class string, rng world.RNG) *Deps {
	t.Helper()
	classes, err := data.LoadClassTable(filepath.Join(dataDir, "classes.yaml"))
	require.NoError(t, err)
	upgrades, err := data.LoadUpgradeTable(filepath.Join(dataDir, "upgrades.yaml"))
	require.NoError(t, err)
	enemies, err := data.LoadEnemyTable(filepath.Join(dataDir, "enemies.yaml"))
	require.NoError(t, err)
	bosses, err := data.LoadBossTable(filepath.Join(dataDir, "bosses.yaml"))
	require.NoError(t, err)

	entry := classes.Get(class)
	require.NotNil(t, entry, class)
	kind, ok := world.ParseClass(class)
	require.True(t, ok)

	stats := world.ClassStats{
		Class:    kind,
		MaxHP:    entry.MaxHP,
		Speed:    entry.Speed,
		Damage:   entry.Damage,
		FireRate: entry.FireRate,
		Range:    entry.Range,
	}
	for i, sk := range entry.Skills {
		stats.Skills[i] = world.SkillSpec{ID: sk.ID, Name: sk.Name, Cooldown: sk.Cooldown, Unlock: sk.Unlock}
	}

	ws := world.NewState(rng)
	ws.Player = world.NewPlayer(stats, ws.Map.Size().Scale(0.5))

	return &Deps{
		World:    ws,
		Bus:      event.NewBus(),
		FX:       fx.NewQueue(),
		Log:      zap.NewNop(),
		Formulas: scripting.Defaults{},
		Controls: &Controls{},
		Classes:  classes,
		Upgrades: upgrades,
		Enemies:  enemies,
		Bosses:   bosses,
	}
}

// flush delivers everything emitted so far to subscribers.
func flush(d *Deps) {
	d.Bus.SwapBuffers()
	d.Bus.DispatchAll()
}
