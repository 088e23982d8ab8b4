package game

import (
	"math/rand"
	"testing"

	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
)

func pilotState() *world.State {
	ws := world.NewState(rand.New(rand.NewSource(1)))
	ws.Player = world.NewPlayer(world.ClassStats{Class: world.ClassGunner, MaxHP: 100}, world.Vec2{X: 500, Y: 500})
	for i := range ws.Player.SkillReadyAt {
		ws.Player.SkillReadyAt[i] = 1e9
	}
	return ws
}

func TestAutopilotIdleWithoutEnemies(t *testing.T) {
	ws := pilotState()
	f := Autopilot(ws)
	assert.False(t, f.Attack)
	assert.Zero(t, f.MoveX)
	assert.Zero(t, f.MoveY)
}

func TestAutopilotKitesAndFires(t *testing.T) {
	ws := pilotState()
	ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: world.Vec2{X: 600, Y: 500}, Radius: 20}, HP: 10, MaxHP: 10})

	f := Autopilot(ws)
	assert.True(t, f.Attack)
	assert.Equal(t, world.Vec2{X: 600, Y: 500}, f.Aim)
	assert.Less(t, f.MoveX, 0.0, "moves away from the enemy")
	assert.False(t, f.Dash)
}

func TestAutopilotDashesWhenCornered(t *testing.T) {
	ws := pilotState()
	ws.AddEnemy(&world.Enemy{Body: world.Body{Pos: world.Vec2{X: 520, Y: 500}, Radius: 20}, HP: 10, MaxHP: 10})
	ws.Player.SkillReadyAt[0] = 0

	f := Autopilot(ws)
	assert.True(t, f.Dash)
	assert.True(t, f.Skills[0])
	assert.False(t, f.Skills[1])
}
