package world

const (
	TileSize  = 48
	MapWidth  = 100 // tiles
	MapHeight = 100
)

type Tile uint8

const (
	TileGrass Tile = iota
	TileWater
	TileMountain
	TileSnow
	TileIce
	TileSand
)

var tileNames = [...]string{"GRASS", "WATER", "MOUNTAIN", "SNOW", "ICE", "SAND"}

func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return "UNKNOWN"
}

type MapKind uint8

const (
	MapGrassland MapKind = iota
	MapIceWorld
)

func (k MapKind) String() string {
	if k == MapIceWorld {
		return "ICE_WORLD"
	}
	return "GRASSLAND"
}

// Other is the destination when sailing off the edge.
func (k MapKind) Other() MapKind {
	if k == MapIceWorld {
		return MapGrassland
	}
	return MapIceWorld
}

func ParseMapKind(s string) (MapKind, bool) {
	switch s {
	case "GRASSLAND":
		return MapGrassland, true
	case "ICE_WORLD":
		return MapIceWorld, true
	}
	return 0, false
}

type Weather uint8

const (
	WeatherSunny Weather = iota
	WeatherRain
	WeatherNeonNight
	WeatherBloodMoon
)

var weatherNames = [...]string{"SUNNY", "RAIN", "NEON_NIGHT", "BLOOD_MOON"}

func (w Weather) String() string {
	if int(w) < len(weatherNames) {
		return weatherNames[w]
	}
	return "UNKNOWN"
}

func ParseWeather(s string) (Weather, bool) {
	for i, n := range weatherNames {
		if n == s {
			return Weather(i), true
		}
	}
	return 0, false
}

// TileMap is a row-major grid of tiles.
type TileMap struct {
	W, H  int
	tiles []Tile
}

func NewTileMap(w, h int, fill Tile) *TileMap {
	m := &TileMap{W: w, H: h, tiles: make([]Tile, w*h)}
	for i := range m.tiles {
		m.tiles[i] = fill
	}
	return m
}

func (m *TileMap) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < m.W && ty < m.H
}

// At returns the tile and whether (tx, ty) is on the map.
func (m *TileMap) At(tx, ty int) (Tile, bool) {
	if !m.InBounds(tx, ty) {
		return 0, false
	}
	return m.tiles[ty*m.W+tx], true
}

func (m *TileMap) Set(tx, ty int, t Tile) {
	if m.InBounds(tx, ty) {
		m.tiles[ty*m.W+tx] = t
	}
}

// TileAt looks up the tile under a world position.
func (m *TileMap) TileAt(pos Vec2) (Tile, bool) {
	tx, ty := TileCoord(pos)
	return m.At(tx, ty)
}

// Size is the map extent in world units.
func (m *TileMap) Size() Vec2 {
	return Vec2{float64(m.W * TileSize), float64(m.H * TileSize)}
}

func TileCoord(pos Vec2) (int, int) {
	return floorDiv(pos.X, TileSize), floorDiv(pos.Y, TileSize)
}

func TileCenter(tx, ty int) Vec2 {
	return Vec2{float64(tx*TileSize) + TileSize/2, float64(ty*TileSize) + TileSize/2}
}

func floorDiv(v float64, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// BlocksBoat: a boat only floats on water and ice.
func BlocksBoat(t Tile) bool {
	return t != TileWater && t != TileIce
}

// BlocksFoot depends on the map: ice is a wall on the ice world, water on the grassland.
func BlocksFoot(kind MapKind, t Tile) bool {
	if t == TileMountain {
		return true
	}
	if kind == MapIceWorld {
		return t == TileIce
	}
	return t == TileWater
}
