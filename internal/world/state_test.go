package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDueOrdersByTime(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	var got []int
	s.After(30, func() { got = append(got, 3) })
	s.After(10, func() { got = append(got, 1) })
	s.After(10, func() { got = append(got, 2) })
	s.After(100, func() { got = append(got, 4) })

	s.Now = 50
	assert.Equal(t, 3, s.RunDue())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, s.PendingActions())

	s.Now = 100
	s.RunDue()
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestRunDueKeepsActionsScheduledWhileRunning(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	runs := 0
	var again func()
	again = func() {
		runs++
		s.After(0, again)
	}
	s.After(0, again)
	s.RunDue()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, s.PendingActions())
}

func TestRemoveEnemyHighToLow(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	for i := 0; i < 5; i++ {
		s.AddEnemy(&Enemy{HP: float64(i)})
	}
	require.Equal(t, 5, s.Entities.Count())

	for i := len(s.Enemies) - 1; i >= 0; i-- {
		if int(s.Enemies[i].HP)%2 == 0 {
			s.RemoveEnemy(i)
		}
	}
	require.Len(t, s.Enemies, 2)
	assert.Equal(t, 1.0, s.Enemies[0].HP)
	assert.Equal(t, 3.0, s.Enemies[1].HP)
	assert.Equal(t, 2, s.Entities.Count())
}

func TestNearestEnemySkipsDying(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	near := s.AddEnemy(&Enemy{Body: Body{Pos: Vec2{10, 0}}, DeathTimer: 5})
	far := s.AddEnemy(&Enemy{Body: Body{Pos: Vec2{50, 0}}})
	_ = near
	assert.Same(t, far, s.NearestEnemy(Vec2{}, 100, nil))
	assert.Nil(t, s.NearestEnemy(Vec2{}, 40, nil))
}

func TestProjectileMarkHit(t *testing.T) {
	p := &Projectile{Kind: ProjVoidSlash}
	assert.True(t, p.MarkHit(7))
	assert.False(t, p.MarkHit(7))
	assert.True(t, p.MarkHit(8))
}
