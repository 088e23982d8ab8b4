package world

import (
	"slices"
	"sort"

	"github.com/neonronin/survivor/internal/core/ecs"
)

// RNG is the randomness source the simulation draws from. *rand.Rand
// satisfies it; tests substitute scripted sequences.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

// RunStats are the session counters surfaced in snapshots.
type RunStats struct {
	Score    int
	Wave     int
	Kills    int
	Level    int
	XP       int
	XPToNext int
	Elapsed  float64 // ms of unpaused play
	GameOver bool
}

type EventKind uint8

const (
	EventAmbush EventKind = iota
	EventBloodMoon
	EventGoldenRain
)

func (k EventKind) String() string {
	switch k {
	case EventBloodMoon:
		return "BLOOD_MOON_RISING"
	case EventGoldenRain:
		return "GOLDEN_RAIN"
	}
	return "MONSTER_AMBUSH"
}

// ActiveEvent is the world event currently running, if any.
type ActiveEvent struct {
	Kind     EventKind
	Name     string
	TimeLeft float64 // ms
	Total    float64
}

// scheduled is a deferred action run once the clock reaches At.
type scheduled struct {
	At  float64
	Seq uint64
	Run func()
}

// State owns every entity collection of one session. It is mutated only by
// the tick goroutine.
//
// Removal contract: a pass that prunes a collection while scanning it must
// walk indices from high to low and remove with the matching RemoveX(i),
// which is a stable remove. Entities appended during the pass land above the
// cursor and are first visited next tick.
type State struct {
	Player      *Player
	Enemies     []*Enemy
	Projectiles []*Projectile
	Particles   []*Particle
	Items       []*Item
	Props       []*Prop
	Shrines     []*Shrine
	Decorations []*Decoration
	Boat        *Boat
	Portal      *Portal
	Altar       *Altar

	Map     *TileMap
	MapKind MapKind
	Weather Weather

	Stats RunStats
	Event *ActiveEvent

	Now   float64 // session clock, ms; advances only while unpaused
	Scale float64 // time scale of the tick in progress
	Frame uint64

	Rand     RNG
	Entities *ecs.EntityPool
	Spatial  *SpatialHash

	pending []scheduled
	seq     uint64
}

func NewState(rng RNG) *State {
	return &State{
		Map:      NewTileMap(MapWidth, MapHeight, TileGrass),
		Stats:    RunStats{Wave: 1, Level: 1, XPToNext: 100},
		Scale:    1,
		Rand:     rng,
		Entities: ecs.NewEntityPool(),
		Spatial:  NewSpatialHash(SpatialCellSize),
	}
}

// After schedules fn to run delay ms from now on the session clock.
func (s *State) After(delay float64, fn func()) {
	s.seq++
	s.pending = append(s.pending, scheduled{At: s.Now + delay, Seq: s.seq, Run: fn})
}

// RunDue executes every scheduled action whose time has come, in time order.
// Actions scheduled while running are kept for a later call.
func (s *State) RunDue() int {
	if len(s.pending) == 0 {
		return 0
	}
	var due, later []scheduled
	for _, a := range s.pending {
		if a.At <= s.Now {
			due = append(due, a)
		} else {
			later = append(later, a)
		}
	}
	s.pending = later
	sort.Slice(due, func(i, j int) bool {
		if due[i].At != due[j].At {
			return due[i].At < due[j].At
		}
		return due[i].Seq < due[j].Seq
	})
	for _, a := range due {
		a.Run()
	}
	return len(due)
}

func (s *State) PendingActions() int { return len(s.pending) }

// ─── Spawning ───────────────────────────────────────────────────────

// AddEnemy assigns e an entity id and appends it.
func (s *State) AddEnemy(e *Enemy) *Enemy {
	e.ID = s.Entities.Create()
	if e.Facing == 0 {
		e.Facing = 1
	}
	s.Enemies = append(s.Enemies, e)
	return e
}

func (s *State) AddProjectile(p *Projectile) *Projectile {
	s.Projectiles = append(s.Projectiles, p)
	return p
}

func (s *State) AddParticle(p *Particle) {
	s.Particles = append(s.Particles, p)
}

func (s *State) AddItem(it *Item) {
	s.Items = append(s.Items, it)
}

// ─── Removal (stable, call from high-to-low scans) ──────────────────

func (s *State) RemoveEnemy(i int) {
	s.Entities.Destroy(s.Enemies[i].ID)
	s.Enemies = slices.Delete(s.Enemies, i, i+1)
}

func (s *State) RemoveProjectile(i int) {
	s.Projectiles = slices.Delete(s.Projectiles, i, i+1)
}

func (s *State) RemoveParticle(i int) {
	s.Particles = slices.Delete(s.Particles, i, i+1)
}

func (s *State) RemoveItem(i int) {
	s.Items = slices.Delete(s.Items, i, i+1)
}

func (s *State) RemoveProp(i int) {
	s.Props = slices.Delete(s.Props, i, i+1)
}

// ClearTransient drops every enemy, projectile, particle, item and prop.
// Used on map transitions.
func (s *State) ClearTransient() {
	s.Enemies = nil
	s.Projectiles = nil
	s.Particles = nil
	s.Items = nil
	s.Props = nil
	s.Entities.Reset()
	s.Spatial.Clear()
}

// ─── Queries ────────────────────────────────────────────────────────

// Boss returns the living boss, or nil.
func (s *State) Boss() *Enemy {
	for _, e := range s.Enemies {
		if e.IsBoss() {
			return e
		}
	}
	return nil
}

// NearestEnemy scans every non-dying enemy and returns the closest one
// strictly within maxDist of from, skipping exclude.
func (s *State) NearestEnemy(from Vec2, maxDist float64, exclude *Enemy) *Enemy {
	var best *Enemy
	bestDist := maxDist
	for _, e := range s.Enemies {
		if e == exclude || e.Dying() {
			continue
		}
		if d := e.Pos.Dist(from); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

// CountSwords counts live spirit swords.
func (s *State) CountSwords() int {
	n := 0
	for _, p := range s.Projectiles {
		if p.Kind == ProjSpiritSword {
			n++
		}
	}
	return n
}

// Roll returns a uniform float in [lo, hi).
func (s *State) Roll(lo, hi float64) float64 {
	return lo + s.Rand.Float64()*(hi-lo)
}

// Chance reports a success with probability p.
func (s *State) Chance(p float64) bool {
	return s.Rand.Float64() < p
}

// InView reports whether pos lies within the player's screen plus margin.
func (s *State) InView(pos Vec2, margin float64) bool {
	c := s.Player.Pos
	return pos.X > c.X-ViewHalfWidth-margin && pos.X < c.X+ViewHalfWidth+margin &&
		pos.Y > c.Y-ViewHalfHeight-margin && pos.Y < c.Y+ViewHalfHeight+margin
}

// Half extents of the reference 1280x720 view, centered on the player.
const (
	ViewHalfWidth  = 640
	ViewHalfHeight = 360
)
