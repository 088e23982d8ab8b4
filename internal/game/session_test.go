package game

import (
	"sync"
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/persist"
	"github.com/neonronin/survivor/internal/system"
	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const frame = time.Second / 60

type sinkStub struct {
	mu   sync.Mutex
	runs []*persist.RunRecord
}

func (s *sinkStub) Record(rec *persist.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, rec)
}

func loadTables(t *testing.T) *Tables {
	t.Helper()
	tbl, err := LoadTables("../../data/yaml")
	require.NoError(t, err)
	return tbl
}

func newSession(t *testing.T, class string, sink system.RunSink) *Session {
	t.Helper()
	s, err := NewSession(loadTables(t), nil, Options{
		Class:        class,
		StartMap:     "GRASSLAND",
		Weather:      "SUNNY",
		Seed:         1,
		MaxTimeScale: 4,
		Sink:         sink,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsUnknownClass(t *testing.T) {
	_, err := NewSession(loadTables(t), nil, Options{Class: "PALADIN", StartMap: "GRASSLAND", Weather: "SUNNY"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewSession(loadTables(t), nil, Options{Class: "GUNNER", StartMap: "MOON", Weather: "SUNNY"}, zap.NewNop())
	assert.Error(t, err)
}

func TestTickAdvancesClockAndClampsScale(t *testing.T) {
	s := newSession(t, "SAMURAI", nil)
	ws := s.World()

	s.Tick(frame)
	assert.InDelta(t, 1.0, ws.Scale, 0.01)
	assert.InDelta(t, 16.67, ws.Now, 0.01)
	assert.Equal(t, uint64(1), ws.Frame)

	s.Tick(time.Second)
	assert.Equal(t, 4.0, ws.Scale)
	assert.InDelta(t, 1016.67, ws.Now, 0.01)
	assert.InDelta(t, ws.Now, s.Snapshot().Elapsed, 0.001)
}

func TestPausedSessionDoesNotMove(t *testing.T) {
	s := newSession(t, "GUNNER", nil)
	s.SetPaused(true)
	s.Tick(frame)

	assert.Zero(t, s.World().Now)
	assert.True(t, s.Snapshot().Paused)

	s.SetPaused(false)
	s.Tick(frame)
	assert.Positive(t, s.World().Now)
	assert.False(t, s.Snapshot().Paused)
}

func TestInputIsLatchedWhilePaused(t *testing.T) {
	s := newSession(t, "SAMURAI", nil)
	s.SetPaused(true)
	s.SetInput(system.InputFrame{Dash: true, MoveX: 1})
	s.SetInput(system.InputFrame{MoveX: 1})
	s.SetPaused(false)
	s.Tick(frame)

	assert.True(t, s.World().Player.Dashing())
}

func TestLevelUpOfferCycle(t *testing.T) {
	s := newSession(t, "MAGE", nil)
	ws := s.World()
	ws.Stats.XP = ws.Stats.XPToNext

	s.Tick(frame)
	snap := s.Snapshot()
	require.Len(t, snap.Offers, 3)
	assert.True(t, snap.Paused)
	assert.False(t, snap.Evolution)

	now := ws.Now
	s.Tick(frame)
	assert.Equal(t, now, ws.Now, "offers freeze the world")

	assert.Error(t, s.ChooseUpgrade("not_offered"))
	chosen := snap.Offers[0].ID
	require.NoError(t, s.ChooseUpgrade(chosen))

	snap = s.Snapshot()
	assert.Equal(t, 2, snap.Level)
	assert.Zero(t, snap.XP)
	assert.Equal(t, 140, snap.XPToNext)
	assert.Empty(t, snap.Offers, "mages have no evolutions")
	assert.False(t, snap.Paused)
	assert.Equal(t, 1, ws.Player.Upgrades[chosen])

	s.Tick(frame)
	assert.Greater(t, ws.Now, now)
}

func TestEvenLevelOffersEvolutions(t *testing.T) {
	s := newSession(t, "SAMURAI", nil)
	ws := s.World()
	ws.Stats.XP = ws.Stats.XPToNext
	s.Tick(frame)
	require.NoError(t, s.ChooseUpgrade(s.Snapshot().Offers[0].ID))

	snap := s.Snapshot()
	require.True(t, snap.Evolution)
	require.NotEmpty(t, snap.Offers)
	assert.True(t, snap.Paused)

	evo := snap.Offers[0].ID
	require.NoError(t, s.ChooseUpgrade(evo))
	assert.Equal(t, 1, ws.Player.Upgrades[evo])
	assert.Empty(t, s.Snapshot().Offers)
	assert.Equal(t, 2, s.Snapshot().Level)
}

func TestDeathEndsRunAndRecordsIt(t *testing.T) {
	sink := &sinkStub{}
	s := newSession(t, "GUNNER", sink)
	ws := s.World()
	ws.Player.HP = 0.1
	ws.AddEnemy(&world.Enemy{
		Body: world.Body{Pos: ws.Player.Pos, Radius: 20},
		Kind: world.EnemyChaser,
		HP:   10, MaxHP: 10,
	})
	ws.Player.Upgrades["dmg_boost"] = 2

	s.Tick(frame)

	snap := s.Snapshot()
	assert.True(t, snap.GameOver)
	assert.True(t, s.Over())
	require.Len(t, sink.runs, 1)
	rec := sink.runs[0]
	assert.Equal(t, s.ID, rec.SessionID)
	assert.Equal(t, "GUNNER", rec.Class)
	assert.Equal(t, "GRASSLAND", rec.Map)
	assert.Equal(t, map[string]int{"dmg_boost": 2}, rec.Upgrades)

	frameNo := ws.Frame
	s.Tick(frame)
	assert.Equal(t, frameNo, ws.Frame)
	assert.Len(t, sink.runs, 1)
}

func TestDrainEmptiesQueue(t *testing.T) {
	s := newSession(t, "SAMURAI", nil)
	s.SetInput(system.InputFrame{Dash: true, MoveX: 1})
	s.Tick(frame)

	cmds := s.Drain()
	assert.NotEmpty(t, cmds)
	assert.Empty(t, s.Drain())
}

func TestSnapshotCounts(t *testing.T) {
	s := newSession(t, "GUNNER", nil)
	snap := s.Snapshot()
	assert.Equal(t, "GUNNER", snap.Class)
	assert.Equal(t, "GRASSLAND", snap.Map)
	assert.Equal(t, "SUNNY", snap.Weather)
	assert.Equal(t, world.MaxAmmo, snap.Ammo)
	assert.Equal(t, len(s.World().Props), snap.Counts.Props)
	assert.Nil(t, snap.Boss)
}
