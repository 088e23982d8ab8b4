package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.False(t, a.IsZero())
	require.True(t, p.Alive(a))

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	assert.Equal(t, 0, p.Count())

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a), "stale id must stay dead")
	assert.True(t, p.Alive(b))
}

func TestPoolDoubleDestroyIsIgnored(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Create()
	p.Destroy(a)
	p.Destroy(a)
	assert.Equal(t, 1, p.Count())
	assert.False(t, p.Alive(0))
}

func TestPoolReset(t *testing.T) {
	p := NewEntityPool()
	ids := []EntityID{p.Create(), p.Create(), p.Create()}
	p.Reset()
	for _, id := range ids {
		assert.False(t, p.Alive(id))
	}
	assert.Equal(t, 0, p.Count())
	n := p.Create()
	assert.True(t, p.Alive(n))
}

func TestZeroIDNeverIssued(t *testing.T) {
	p := NewEntityPool()
	for i := 0; i < 10; i++ {
		assert.NotZero(t, p.Create().Index())
	}
	assert.Equal(t, "3/0", NewEntityID(3, 0).String())
}
