package system

import (
	"slices"
	"time"
)

// phaseCount is one past the last phase.
const phaseCount = int(PhaseCleanup) + 1

// TickTimes is the wall time spent in each phase during one tick.
type TickTimes [phaseCount]time.Duration

// Total sums every phase.
func (t TickTimes) Total() time.Duration {
	var sum time.Duration
	for _, d := range t {
		sum += d
	}
	return sum
}

// Slowest returns the phase that took the longest.
func (t TickTimes) Slowest() (Phase, time.Duration) {
	var best Phase
	for i, d := range t {
		if d > t[best] {
			best = Phase(i)
		}
	}
	return best, t[best]
}

// Runner executes systems in phase order. Systems sharing a phase keep their
// registration order; the order is fixed on the first tick after a change.
type Runner struct {
	systems []System
	dirty   bool
	last    TickTimes
	now     func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 20),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.dirty = true
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

// Tick runs every system once and records how long each phase took.
func (r *Runner) Tick(dt time.Duration) {
	r.order()
	r.last = TickTimes{}
	for _, s := range r.systems {
		start := r.now()
		s.Update(dt)
		if p := int(s.Phase()); p >= 0 && p < phaseCount {
			r.last[p] += r.now().Sub(start)
		}
	}
}

// TickPhase runs only the systems of one phase. The session uses it to hand
// the final run to the ledger after the world has stopped.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.order()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// LastTick returns the phase timings of the most recent full tick.
func (r *Runner) LastTick() TickTimes { return r.last }

func (r *Runner) order() {
	if !r.dirty {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(a.Phase()) - int(b.Phase())
	})
	r.dirty = false
}
