// Package fx is the side-effect command queue. Systems append commands
// while a tick runs; presentation drains them afterwards. Nothing in the
// simulation renders or plays audio directly.
package fx

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Kind string

const (
	KindSound    Kind = "sound"
	KindText     Kind = "text"
	KindShake    Kind = "shake"
	KindParticle Kind = "particle"
)

// Command is one presentation request. Exactly one payload is set,
// matching Kind.
type Command struct {
	Kind     Kind          `json:"kind" msgpack:"kind"`
	Sound    *PlaySound    `json:"sound,omitempty" msgpack:"sound,omitempty"`
	Text     *FloatingText `json:"text,omitempty" msgpack:"text,omitempty"`
	Shake    *Shake        `json:"shake,omitempty" msgpack:"shake,omitempty"`
	Particle *Particles    `json:"particle,omitempty" msgpack:"particle,omitempty"`
}

type PlaySound struct {
	Key string `json:"key" msgpack:"key"`
}

type FloatingText struct {
	Text  string  `json:"text" msgpack:"text"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Color string  `json:"color" msgpack:"color"`
	Scale float64 `json:"scale" msgpack:"scale"`
}

type Shake struct {
	Intensity float64 `json:"intensity" msgpack:"intensity"`
	Duration  float64 `json:"duration" msgpack:"duration"`
}

type Particles struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Visual string  `json:"visual" msgpack:"visual"`
	Count  int     `json:"count" msgpack:"count"`
	Speed  float64 `json:"speed" msgpack:"speed"`
}

// Queue collects commands for one or more ticks until drained.
type Queue struct {
	cmds    []Command
	printer *message.Printer
}

func NewQueue() *Queue {
	return &Queue{printer: message.NewPrinter(language.English)}
}

func (q *Queue) Push(c Command) { q.cmds = append(q.cmds, c) }

func (q *Queue) Len() int { return len(q.cmds) }

// Drain returns every queued command and empties the queue.
func (q *Queue) Drain() []Command {
	out := q.cmds
	q.cmds = nil
	return out
}

func (q *Queue) Sound(key string) {
	q.Push(Command{Kind: KindSound, Sound: &PlaySound{Key: key}})
}

func (q *Queue) Text(x, y float64, color string, scale float64, text string) {
	if scale == 0 {
		scale = 1
	}
	q.Push(Command{Kind: KindText, Text: &FloatingText{Text: text, X: x, Y: y, Color: color, Scale: scale}})
}

// Number floats an integer amount with thousands separators ("1,250").
func (q *Queue) Number(x, y float64, color string, scale float64, amount float64) {
	q.Text(x, y, color, scale, q.printer.Sprintf("%d", int64(amount)))
}

// Textf formats with the queue's locale printer.
func (q *Queue) Textf(x, y float64, color string, scale float64, format string, args ...any) {
	q.Text(x, y, color, scale, q.printer.Sprintf(format, args...))
}

func (q *Queue) Shake(intensity, duration float64) {
	q.Push(Command{Kind: KindShake, Shake: &Shake{Intensity: intensity, Duration: duration}})
}

func (q *Queue) Burst(x, y float64, visual string, count int, speed float64) {
	q.Push(Command{Kind: KindParticle, Particle: &Particles{X: x, Y: y, Visual: visual, Count: count, Speed: speed}})
}

// Sound keys understood by the audio collaborator.
const (
	SoundShoot        = "shoot"
	SoundSlash        = "slash"
	SoundIaido        = "iaido_slash"
	SoundMagic        = "magic"
	SoundImpact       = "impact"
	SoundElectric     = "electric_impact"
	SoundExplosion    = "explosion"
	SoundDash         = "dash"
	SoundParry        = "parry"
	SoundLevelUp      = "level_up"
	SoundUpgrade      = "upgrade_select"
	SoundChargeReady  = "charge_ready"
	SoundPortal       = "portal"
	SoundLasso        = "lasso_impact"
	SoundHighNoon     = "high_noon"
	SoundGatling      = "gatling"
	SoundSwordAttack  = "flying_sword"
	SoundDragonRoar   = "dragon_roar"
	SoundSkill        = "skill"
	SoundReloadFinish = "reload_done"
	SoundPickup       = "pickup"
)
