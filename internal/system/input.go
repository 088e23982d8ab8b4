package system

import (
	"time"

	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/world"
)

// InputFrame is one sample of the input collaborator. Move axes are in
// [-1, 1]; Aim is a world position.
type InputFrame struct {
	MoveX float64    `msgpack:"mx"`
	MoveY float64    `msgpack:"my"`
	Aim   world.Vec2 `msgpack:"aim"`

	Attack     bool    `msgpack:"attack"` // held
	Skills     [4]bool `msgpack:"skills"` // pressed since the last tick
	Skill2Held bool    `msgpack:"skill2Held"`
	Dash       bool    `msgpack:"dash"`
	Interact   bool    `msgpack:"interact"`
	Reload     bool    `msgpack:"reload"`
}

// Move returns the raw movement axes as a vector.
func (f InputFrame) Move() world.Vec2 {
	return world.Vec2{X: f.MoveX, Y: f.MoveY}
}

// Controls latches input between ticks. Presses arriving while the session
// is paused or between two ticks are kept until a tick consumes them.
type Controls struct {
	pending InputFrame
	Current InputFrame
}

// Set records a new frame. Held state and axes are replaced; presses are
// merged with any not yet consumed.
func (c *Controls) Set(f InputFrame) {
	p := c.pending
	for i := range f.Skills {
		f.Skills[i] = f.Skills[i] || p.Skills[i]
	}
	f.Dash = f.Dash || p.Dash
	f.Interact = f.Interact || p.Interact
	f.Reload = f.Reload || p.Reload
	c.pending = f
}

// consume moves the latched frame into Current and clears the presses.
func (c *Controls) consume() {
	c.Current = c.pending
	c.pending.Skills = [4]bool{}
	c.pending.Dash = false
	c.pending.Interact = false
	c.pending.Reload = false
}

// InputSystem applies the latest latched input frame. Phase 0 (Input).
type InputSystem struct {
	controls *Controls
}

func NewInputSystem(c *Controls) *InputSystem {
	return &InputSystem{controls: c}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.controls.consume()
}
