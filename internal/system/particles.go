package system

import (
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
)

// ParticleSystem ages particles and drops the expired ones. Phase 6 (Cleanup).
type ParticleSystem struct {
	deps *Deps
}

func NewParticleSystem(deps *Deps) *ParticleSystem {
	return &ParticleSystem{deps: deps}
}

func (s *ParticleSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *ParticleSystem) Update(_ time.Duration) {
	ws := s.deps.World
	for i := len(ws.Particles) - 1; i >= 0; i-- {
		p := ws.Particles[i]
		p.Life -= ws.Scale
		p.Pos = p.Pos.Add(p.Vel.Scale(ws.Scale))
		if p.Life <= 0 {
			ws.RemoveParticle(i)
		}
	}
}
