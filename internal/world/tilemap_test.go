package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockingRules(t *testing.T) {
	assert.True(t, BlocksFoot(MapGrassland, TileWater))
	assert.True(t, BlocksFoot(MapGrassland, TileMountain))
	assert.False(t, BlocksFoot(MapGrassland, TileIce))
	assert.True(t, BlocksFoot(MapIceWorld, TileIce))
	assert.False(t, BlocksFoot(MapIceWorld, TileWater))
	assert.False(t, BlocksFoot(MapIceWorld, TileSnow))

	assert.False(t, BlocksBoat(TileWater))
	assert.False(t, BlocksBoat(TileIce))
	assert.True(t, BlocksBoat(TileGrass))
}

func TestTileLookup(t *testing.T) {
	m := NewTileMap(4, 4, TileGrass)
	m.Set(2, 1, TileWater)
	tile, ok := m.TileAt(Vec2{2*TileSize + 1, 1*TileSize + 47})
	assert.True(t, ok)
	assert.Equal(t, TileWater, tile)

	_, ok = m.TileAt(Vec2{-1, 10})
	assert.False(t, ok)
	_, ok = m.At(4, 0)
	assert.False(t, ok)
	assert.Equal(t, Vec2{4 * TileSize, 4 * TileSize}, m.Size())
}

func TestParseNames(t *testing.T) {
	k, ok := ParseMapKind("ICE_WORLD")
	assert.True(t, ok)
	assert.Equal(t, MapIceWorld, k)
	assert.Equal(t, MapGrassland, k.Other())

	w, ok := ParseWeather("BLOOD_MOON")
	assert.True(t, ok)
	assert.Equal(t, "BLOOD_MOON", w.String())
}
