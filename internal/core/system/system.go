package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: apply the latest input frame
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: movement, combat, AI, directors
	PhasePostUpdate              // 3: loot, progression, spawning
	PhaseOutput                  // 4: build the snapshot
	PhasePersist                 // 5: hand finished runs to the ledger
	PhaseCleanup                 // 6: expire particles, drop dead weight
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
