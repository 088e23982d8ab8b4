package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitIsDeliveredNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e LevelUp) { got = append(got, e.Level) })

	Emit(b, LevelUp{Level: 2})
	b.DispatchAll()
	assert.Empty(t, got, "back buffer must not be visible before a swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{2}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{2}, got, "events are delivered once")
}

func TestDispatchKeepsTypeOrder(t *testing.T) {
	b := NewBus()
	var seq []string
	Subscribe(b, func(EnemyKilled) { seq = append(seq, "kill") })
	Subscribe(b, func(BossDefeated) { seq = append(seq, "boss") })

	Emit(b, BossDefeated{Name: "shogun"})
	Emit(b, EnemyKilled{Kind: "chaser"})
	assert.Equal(t, 2, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"kill", "boss"}, seq, "types run in the order they were first seen")
}

func TestReset(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(PlayerDied) { calls++ })
	Emit(b, PlayerDied{})
	b.Reset()
	b.SwapBuffers()
	b.DispatchAll()
	assert.Zero(t, calls)
}

func TestHandlerEmitsForNextTick(t *testing.T) {
	b := NewBus()
	var waves []int
	Subscribe(b, func(e LevelUp) { Emit(b, LevelUp{Level: e.Level + 1}) })
	Subscribe(b, func(e LevelUp) { waves = append(waves, e.Level) })

	Emit(b, LevelUp{Level: 1})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1}, waves)
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, waves)
}
