// Package mapgen builds deterministic map layouts from a seed. The same
// (kind, seed) pair always yields the same terrain and placements.
package mapgen

import (
	"math"
	"math/rand"

	"github.com/neonronin/survivor/internal/world"
)

const (
	spawnClear   = 4  // half side of the cleared square at the center, tiles
	altarMinDist = 20 // tiles from the center
	riverWidth   = 3
	barrelCount  = 12
	shrineOdds   = 0.998
)

// RiverRow is the first tile row of the channel both maps share, so a boat
// leaving one map along the river arrives on water in the other.
const RiverRow = world.MapHeight * 3 / 4

// Layout is a generated map, ready to be applied to a session state.
type Layout struct {
	Kind        world.MapKind
	Tiles       *world.TileMap
	Decorations []*world.Decoration
	Shrines     []*world.Shrine
	Props       []*world.Prop
	Boat        *world.Boat
	Portal      *world.Portal
	Altar       *world.Altar
}

// Center is the world position of the cleared spawn square.
func (l *Layout) Center() world.Vec2 {
	return world.TileCenter(l.Tiles.W/2, l.Tiles.H/2)
}

// Apply replaces the static content of st with the layout. Transient
// entities are left alone.
func (l *Layout) Apply(st *world.State) {
	st.Map = l.Tiles
	st.MapKind = l.Kind
	st.Decorations = l.Decorations
	st.Shrines = l.Shrines
	st.Props = l.Props
	st.Boat = l.Boat
	st.Portal = l.Portal
	st.Altar = l.Altar
}

func noise(x, y float64) float64 {
	return math.Sin(x*0.1)*math.Cos(y*0.1) + math.Sin(x*0.3+y*0.2)*0.5
}

func walkable(kind world.MapKind, t world.Tile) bool {
	if kind == world.MapIceWorld {
		return t == world.TileSnow
	}
	return t == world.TileGrass
}

// Generate builds the layout of kind from seed.
func Generate(kind world.MapKind, seed int64) *Layout {
	rng := rand.New(rand.NewSource(seed))
	w, h := world.MapWidth, world.MapHeight
	ice := kind == world.MapIceWorld
	l := &Layout{Kind: kind, Tiles: world.NewTileMap(w, h, world.TileGrass)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := noise(float64(x), float64(y))
			var t world.Tile
			switch {
			case ice && n < -0.5:
				t = world.TileIce
			case ice && n > 0.8:
				t = world.TileMountain
			case ice:
				t = world.TileSnow
			case n < -0.3:
				t = world.TileWater
			case n < -0.15:
				t = world.TileSand
			case n > 0.85:
				t = world.TileMountain
			default:
				t = world.TileGrass
			}
			l.Tiles.Set(x, y, t)
		}
	}

	channel, bank := world.TileWater, world.TileSand
	if ice {
		channel, bank = world.TileIce, world.TileSnow
	}
	for x := 0; x < w; x++ {
		for y := RiverRow; y < RiverRow+riverWidth; y++ {
			l.Tiles.Set(x, y, channel)
		}
		l.Tiles.Set(x, RiverRow+riverWidth, bank)
	}

	cx, cy := w/2, h/2
	for y := cy - spawnClear; y <= cy+spawnClear; y++ {
		for x := cx - spawnClear; x <= cx+spawnClear; x++ {
			if ice {
				l.Tiles.Set(x, y, world.TileSnow)
			} else {
				l.Tiles.Set(x, y, world.TileGrass)
			}
		}
	}

	l.placeAltar(rng)
	l.placeTrees(rng)
	l.placeShrines(rng)
	l.placeBarrels(rng)
	if !ice {
		l.Boat = &world.Boat{
			Body: world.Body{Pos: world.TileCenter(cx, RiverRow+riverWidth-1), Radius: 30, Visual: "#8b4513"},
		}
		l.placePortal(rng)
	}
	return l
}

func inSpawn(tx, ty int) bool {
	cx, cy := world.MapWidth/2, world.MapHeight/2
	return tx >= cx-spawnClear && tx <= cx+spawnClear && ty >= cy-spawnClear && ty <= cy+spawnClear
}

// freeTile picks a random walkable tile that passes ok, or false after a
// bounded number of tries.
func (l *Layout) freeTile(rng *rand.Rand, ok func(tx, ty int) bool) (int, int, bool) {
	for try := 0; try < 2000; try++ {
		tx, ty := rng.Intn(l.Tiles.W), rng.Intn(l.Tiles.H)
		t, _ := l.Tiles.At(tx, ty)
		if walkable(l.Kind, t) && !inSpawn(tx, ty) && ok(tx, ty) {
			return tx, ty, true
		}
	}
	return 0, 0, false
}

func (l *Layout) nearAltar(tx, ty int) bool {
	return l.Altar != nil && abs(l.Altar.TX-tx) <= 1 && abs(l.Altar.TY-ty) <= 1
}

func (l *Layout) placeAltar(rng *rand.Rand) {
	cx, cy := float64(l.Tiles.W/2), float64(l.Tiles.H/2)
	tx, ty, ok := l.freeTile(rng, func(tx, ty int) bool {
		return math.Hypot(float64(tx)-cx, float64(ty)-cy) > altarMinDist
	})
	if ok {
		l.Altar = &world.Altar{TX: tx, TY: ty, Active: true}
	}
}

func (l *Layout) placeTrees(rng *rand.Rand) {
	for y := 0; y < l.Tiles.H; y++ {
		for x := 0; x < l.Tiles.W; x++ {
			t, _ := l.Tiles.At(x, y)
			if !walkable(l.Kind, t) || inSpawn(x, y) || l.nearAltar(x, y) {
				continue
			}
			if math.Sin(float64(x)*0.5)*math.Cos(float64(y)*0.5) > 0.65 && rng.Float64() > 0.4 {
				l.Decorations = append(l.Decorations, &world.Decoration{
					Body: world.Body{Pos: world.TileCenter(x, y), Radius: 20, Visual: "tree"},
				})
			}
		}
	}
}

func (l *Layout) blockedByTree(pos world.Vec2, r float64) bool {
	for _, d := range l.Decorations {
		if d.Pos.Dist(pos) < r {
			return true
		}
	}
	return false
}

func (l *Layout) placeShrines(rng *rand.Rand) {
	for y := 0; y < l.Tiles.H; y++ {
		for x := 0; x < l.Tiles.W; x++ {
			t, _ := l.Tiles.At(x, y)
			if !walkable(l.Kind, t) || inSpawn(x, y) || l.nearAltar(x, y) || rng.Float64() <= shrineOdds {
				continue
			}
			kind, visual := world.ShrineGamble, "#a855f7"
			switch r := rng.Float64(); {
			case r < 0.33:
				kind, visual = world.ShrineBlood, "#ef4444"
			case r < 0.66:
				kind, visual = world.ShrineHeal, "#22c55e"
			}
			pos := world.TileCenter(x, y)
			if l.blockedByTree(pos, 40) {
				continue
			}
			l.Shrines = append(l.Shrines, &world.Shrine{
				Body: world.Body{Pos: pos, Radius: 25, Visual: visual},
				Kind: kind,
			})
		}
	}
}

func (l *Layout) placeBarrels(rng *rand.Rand) {
	for i := 0; i < barrelCount; i++ {
		tx, ty, ok := l.freeTile(rng, func(tx, ty int) bool {
			return !l.nearAltar(tx, ty) && !l.blockedByTree(world.TileCenter(tx, ty), 40)
		})
		if !ok {
			return
		}
		l.Props = append(l.Props, &world.Prop{
			Body:   world.Body{Pos: world.TileCenter(tx, ty), Radius: 20, Visual: "#b45309"},
			Kind:   world.PropBarrel,
			Active: true,
		})
	}
}

func (l *Layout) placePortal(rng *rand.Rand) {
	cx, cy := float64(l.Tiles.W/2), float64(l.Tiles.H/2)
	tx, ty, ok := l.freeTile(rng, func(tx, ty int) bool {
		d := math.Hypot(float64(tx)-cx, float64(ty)-cy)
		return d > 10 && d < 25 && !l.nearAltar(tx, ty) && !l.blockedByTree(world.TileCenter(tx, ty), 60)
	})
	if ok {
		l.Portal = &world.Portal{Body: world.Body{Pos: world.TileCenter(tx, ty), Radius: 40, Visual: "#a855f7"}}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
