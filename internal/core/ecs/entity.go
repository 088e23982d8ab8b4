// Package ecs issues the identifiers every live actor and projectile carries.
package ecs

import "fmt"

// EntityID packs a slot index (low 32 bits) and the slot's generation (high
// 32 bits). Releasing a slot bumps its generation so old ids stop matching;
// a piercing shot's hit set must not recognise a recycled enemy.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d/%d", id.Index(), id.Generation())
}

type slot struct {
	gen  uint32
	live bool
}

// EntityPool recycles slots last-released-first. Slot 0 is never issued, so
// the zero EntityID is always dead.
type EntityPool struct {
	slots []slot
	free  []uint32
	alive int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		slots: make([]slot, 1, 1024),
		free:  make([]uint32, 0, 256),
	}
}

func (p *EntityPool) Create() EntityID {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot{})
	}
	p.slots[idx].live = true
	p.alive++
	return NewEntityID(idx, p.slots[idx].gen)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.slots) {
		return false
	}
	s := p.slots[idx]
	return s.live && s.gen == id.Generation()
}

// Destroy ignores ids that are stale or were never issued.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	s := &p.slots[id.Index()]
	s.live = false
	s.gen++
	p.free = append(p.free, id.Index())
	p.alive--
}

// Count returns the number of live ids.
func (p *EntityPool) Count() int { return p.alive }

// Reset kills every id at once, as on a map transition.
func (p *EntityPool) Reset() {
	p.free = p.free[:0]
	for i := len(p.slots) - 1; i >= 1; i-- {
		s := &p.slots[i]
		if s.live {
			s.live = false
			s.gen++
		}
		p.free = append(p.free, uint32(i))
	}
	p.alive = 0
}
