package mapgen

import (
	"math/rand"
	"testing"

	"github.com/neonronin/survivor/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(world.MapGrassland, 7)
	b := Generate(world.MapGrassland, 7)

	for y := 0; y < world.MapHeight; y++ {
		for x := 0; x < world.MapWidth; x++ {
			ta, _ := a.Tiles.At(x, y)
			tb, _ := b.Tiles.At(x, y)
			require.Equal(t, ta, tb, "tile %d,%d", x, y)
		}
	}
	assert.Equal(t, len(a.Decorations), len(b.Decorations))
	assert.Equal(t, len(a.Shrines), len(b.Shrines))
	require.NotNil(t, a.Altar)
	assert.Equal(t, *a.Altar, *b.Altar)
}

func TestSpawnSquareIsClear(t *testing.T) {
	for _, kind := range []world.MapKind{world.MapGrassland, world.MapIceWorld} {
		l := Generate(kind, 3)
		c := l.Center()
		tile, ok := l.Tiles.TileAt(c)
		require.True(t, ok)
		assert.False(t, world.BlocksFoot(kind, tile), kind.String())
		for _, d := range l.Decorations {
			tx, ty := world.TileCoord(d.Pos)
			assert.False(t, inSpawn(tx, ty))
		}
	}
}

func TestRiverCrossesBothMaps(t *testing.T) {
	grass := Generate(world.MapGrassland, 11)
	ice := Generate(world.MapIceWorld, 11)
	for _, x := range []int{0, world.MapWidth / 2, world.MapWidth - 1} {
		g, _ := grass.Tiles.At(x, RiverRow+1)
		i, _ := ice.Tiles.At(x, RiverRow+1)
		assert.False(t, world.BlocksBoat(g))
		assert.False(t, world.BlocksBoat(i))
	}
}

func TestGrasslandHasBoatAndPortal(t *testing.T) {
	l := Generate(world.MapGrassland, 5)
	require.NotNil(t, l.Boat)
	tile, _ := l.Tiles.TileAt(l.Boat.Pos)
	assert.False(t, world.BlocksBoat(tile))
	require.NotNil(t, l.Portal)

	ice := Generate(world.MapIceWorld, 5)
	assert.Nil(t, ice.Boat)
	assert.Nil(t, ice.Portal)
}

func TestAltarFarFromCenter(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		l := Generate(world.MapGrassland, r.Int63())
		if l.Altar == nil {
			continue
		}
		c := world.TileCenter(world.MapWidth/2, world.MapHeight/2)
		assert.Greater(t, l.Altar.Center().Dist(c), float64(altarMinDist*world.TileSize)-1)
	}
}

func TestApplyReplacesStaticContent(t *testing.T) {
	st := world.NewState(rand.New(rand.NewSource(1)))
	st.Props = []*world.Prop{{Kind: world.PropChest, Active: true}}
	l := Generate(world.MapIceWorld, 9)
	l.Apply(st)

	assert.Equal(t, world.MapIceWorld, st.MapKind)
	assert.Same(t, l.Tiles, st.Map)
	assert.Equal(t, l.Props, st.Props)
	assert.Nil(t, st.Boat)
}
