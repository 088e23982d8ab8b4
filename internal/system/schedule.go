package system

import (
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
)

// ScheduleSystem runs deferred actions whose time has come on the session
// clock. Phase 1 (PreUpdate).
type ScheduleSystem struct {
	deps *Deps
}

func NewScheduleSystem(deps *Deps) *ScheduleSystem {
	return &ScheduleSystem{deps: deps}
}

func (s *ScheduleSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ScheduleSystem) Update(_ time.Duration) {
	s.deps.World.RunDue()
}
