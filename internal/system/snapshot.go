package system

import (
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/world"
)

// Snapshot is the read-only view of a session published after every tick.
type Snapshot struct {
	Frame    uint64  `json:"frame" msgpack:"frame"`
	Class    string  `json:"class" msgpack:"class"`
	Score    int     `json:"score" msgpack:"score"`
	Wave     int     `json:"wave" msgpack:"wave"`
	Kills    int     `json:"kills" msgpack:"kills"`
	Level    int     `json:"level" msgpack:"level"`
	XP       int     `json:"xp" msgpack:"xp"`
	XPToNext int     `json:"xpToNext" msgpack:"xpToNext"`
	Elapsed  float64 `json:"elapsed" msgpack:"elapsed"`

	HP       float64    `json:"hp" msgpack:"hp"`
	MaxHP    float64    `json:"maxHp" msgpack:"maxHp"`
	X        float64    `json:"x" msgpack:"x"`
	Y        float64    `json:"y" msgpack:"y"`
	OnBoat   bool       `json:"onBoat" msgpack:"onBoat"`
	Cooldown [4]float64 `json:"cooldowns" msgpack:"cooldowns"` // remaining ms per skill slot
	DashPct  float64    `json:"dashPct" msgpack:"dashPct"`

	Ammo      int  `json:"ammo" msgpack:"ammo"`
	MaxAmmo   int  `json:"maxAmmo" msgpack:"maxAmmo"`
	Reloading bool `json:"reloading" msgpack:"reloading"`

	Boss  *BossView  `json:"boss,omitempty" msgpack:"boss,omitempty"`
	Event *EventView `json:"event,omitempty" msgpack:"event,omitempty"`

	Weather  string `json:"weather" msgpack:"weather"`
	Map      string `json:"map" msgpack:"map"`
	Paused   bool   `json:"paused" msgpack:"paused"`
	GameOver bool   `json:"gameOver" msgpack:"gameOver"`

	Offers    []OfferView `json:"offers,omitempty" msgpack:"offers,omitempty"`
	Evolution bool        `json:"evolution,omitempty" msgpack:"evolution,omitempty"`

	Counts EntityCounts `json:"counts" msgpack:"counts"`
}

type BossView struct {
	Name  string  `json:"name" msgpack:"name"`
	Title string  `json:"title" msgpack:"title"`
	HP    float64 `json:"hp" msgpack:"hp"`
	MaxHP float64 `json:"maxHp" msgpack:"maxHp"`
	State string  `json:"state" msgpack:"state"`
	Alpha float64 `json:"alpha" msgpack:"alpha"`
}

type EventView struct {
	Kind     string  `json:"kind" msgpack:"kind"`
	Name     string  `json:"name" msgpack:"name"`
	TimeLeft float64 `json:"timeLeft" msgpack:"timeLeft"`
	Total    float64 `json:"total" msgpack:"total"`
}

type OfferView struct {
	ID          string `json:"id" msgpack:"id"`
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
	Rarity      string `json:"rarity" msgpack:"rarity"`
}

type EntityCounts struct {
	Enemies     int `json:"enemies" msgpack:"enemies"`
	Projectiles int `json:"projectiles" msgpack:"projectiles"`
	Particles   int `json:"particles" msgpack:"particles"`
	Items       int `json:"items" msgpack:"items"`
	Props       int `json:"props" msgpack:"props"`
	Pending     int `json:"pending" msgpack:"pending"`
}

// SnapshotSystem captures the session view at the end of every tick.
// Phase 4 (Output).
type SnapshotSystem struct {
	deps   *Deps
	prog   *ProgressionSystem
	latest Snapshot
}

func NewSnapshotSystem(deps *Deps, prog *ProgressionSystem) *SnapshotSystem {
	return &SnapshotSystem{deps: deps, prog: prog}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.latest = s.Build()
}

// Latest returns the view captured by the last tick.
func (s *SnapshotSystem) Latest() Snapshot { return s.latest }

// Build reads the current state into a fresh Snapshot without changing it.
func (s *SnapshotSystem) Build() Snapshot {
	ws := s.deps.World
	p := ws.Player
	st := ws.Stats

	snap := Snapshot{
		Frame:    ws.Frame,
		Class:    p.Stats.Class.String(),
		Score:    st.Score,
		Wave:     st.Wave,
		Kills:    st.Kills,
		Level:    st.Level,
		XP:       st.XP,
		XPToNext: st.XPToNext,
		Elapsed:  st.Elapsed,

		HP:      p.HP,
		MaxHP:   p.MaxHP,
		X:       p.Pos.X,
		Y:       p.Pos.Y,
		OnBoat:  p.OnBoat,
		DashPct: 100,

		Ammo:      p.Ammo,
		MaxAmmo:   world.MaxAmmo,
		Reloading: p.Reloading,

		Weather:  ws.Weather.String(),
		Map:      ws.MapKind.String(),
		GameOver: st.GameOver,

		Counts: EntityCounts{
			Enemies:     len(ws.Enemies),
			Projectiles: len(ws.Projectiles),
			Particles:   len(ws.Particles),
			Items:       len(ws.Items),
			Props:       len(ws.Props),
			Pending:     ws.PendingActions(),
		},
	}
	for i, at := range p.SkillReadyAt {
		snap.Cooldown[i] = max(0, at-ws.Now)
	}
	if p.DashCooldown > 0 {
		snap.DashPct = max(0, 100-p.DashCooldown/dashCooldown*100)
	}

	if b := ws.Boss(); b != nil {
		snap.Boss = &BossView{
			Name:  b.Boss.Name,
			Title: b.Boss.Title,
			HP:    max(0, b.HP),
			MaxHP: b.MaxHP,
			State: b.Boss.Phase.String(),
			Alpha: b.Boss.Alpha,
		}
	}
	if ev := ws.Event; ev != nil {
		snap.Event = &EventView{Kind: ev.Kind.String(), Name: ev.Name, TimeLeft: max(0, ev.TimeLeft), Total: ev.Total}
	}

	if s.prog != nil && s.prog.Pending() {
		snap.Paused = true
		snap.Evolution = s.prog.Evolution()
		for _, u := range s.prog.Offers() {
			snap.Offers = append(snap.Offers, OfferView{ID: u.ID, Name: u.Name, Description: u.Description, Rarity: u.Rarity})
		}
	}
	return snap
}
