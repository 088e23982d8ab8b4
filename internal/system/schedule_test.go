package system

import (
	"testing"
	"time"

	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleRunsDueActions(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	ws := d.World
	s := NewScheduleSystem(d)
	fired := 0
	ws.After(100, func() { fired++ })

	ws.Now = 99
	s.Update(16 * time.Millisecond)
	assert.Equal(t, 0, fired)

	ws.Now = 100
	s.Update(16 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Zero(t, ws.PendingActions())
}

func TestParticlesAgeAndExpire(t *testing.T) {
	d := newTestDeps(t, "GUNNER", rolls(0))
	ws := d.World
	s := NewParticleSystem(d)
	ws.AddParticle(&world.Particle{Body: world.Body{Vel: world.Vec2{X: 2}}, Life: 2})
	ws.AddParticle(&world.Particle{Life: 1})

	s.Update(16 * time.Millisecond)
	require.Len(t, ws.Particles, 1)
	assert.Equal(t, 2.0, ws.Particles[0].Pos.X)

	ws.Scale = 2
	s.Update(16 * time.Millisecond)
	assert.Empty(t, ws.Particles)
}
