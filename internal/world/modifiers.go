package world

import "fmt"

// Modifiers is the player's stat aggregate. Every field has an explicit
// default; upgrades only change it through Apply.
type Modifiers struct {
	DamageMult       float64
	FireRateMult     float64 // multiplies attack interval, lower is faster
	SpeedMult        float64
	RangeMult        float64
	MaxHPMult        float64
	ExtraProjectiles int

	BlockChance        float64
	ExecutionThreshold float64
	KnockbackMult      float64
	Ricochet           int
	IaidoMultiplier    float64

	FunnelCount          int
	FunnelFireRateMult   float64
	FunnelElectricChance float64
	FunnelBurnChance     float64

	ExplosiveShots bool
	FanFire        bool
	LassoShock     bool
	SweetSpot      bool
	BladeWave      bool
	IaidoCyclone   bool
	BladeDance     bool
	ThunderDash    bool
	WindEndures    bool
	InkTrail       bool
	DragonFury     bool
	QuickDraw      bool
}

func DefaultModifiers() Modifiers {
	return Modifiers{
		DamageMult:         1,
		FireRateMult:       1,
		SpeedMult:          1,
		RangeMult:          1,
		MaxHPMult:          1,
		KnockbackMult:      1,
		FunnelFireRateMult: 1,
	}
}

// Op is how an Effect combines with the current stat value.
type Op string

const (
	OpAdd  Op = "add"
	OpMul  Op = "mul"
	OpSet  Op = "set"
	OpFlag Op = "flag"
)

// Effect is one stat change carried by an upgrade.
type Effect struct {
	Stat  string  `yaml:"stat"`
	Op    Op      `yaml:"op"`
	Value float64 `yaml:"value"`
}

var floatStats = map[string]func(*Modifiers) *float64{
	"damage_mult":            func(m *Modifiers) *float64 { return &m.DamageMult },
	"fire_rate_mult":         func(m *Modifiers) *float64 { return &m.FireRateMult },
	"speed_mult":             func(m *Modifiers) *float64 { return &m.SpeedMult },
	"range_mult":             func(m *Modifiers) *float64 { return &m.RangeMult },
	"max_hp_mult":            func(m *Modifiers) *float64 { return &m.MaxHPMult },
	"block_chance":           func(m *Modifiers) *float64 { return &m.BlockChance },
	"execution_threshold":    func(m *Modifiers) *float64 { return &m.ExecutionThreshold },
	"knockback_mult":         func(m *Modifiers) *float64 { return &m.KnockbackMult },
	"iaido_multiplier":       func(m *Modifiers) *float64 { return &m.IaidoMultiplier },
	"funnel_fire_rate_mult":  func(m *Modifiers) *float64 { return &m.FunnelFireRateMult },
	"funnel_electric_chance": func(m *Modifiers) *float64 { return &m.FunnelElectricChance },
	"funnel_burn_chance":     func(m *Modifiers) *float64 { return &m.FunnelBurnChance },
}

var intStats = map[string]func(*Modifiers) *int{
	"extra_projectiles": func(m *Modifiers) *int { return &m.ExtraProjectiles },
	"ricochet":          func(m *Modifiers) *int { return &m.Ricochet },
	"funnel_count":      func(m *Modifiers) *int { return &m.FunnelCount },
}

var flagStats = map[string]func(*Modifiers) *bool{
	"explosive_shots": func(m *Modifiers) *bool { return &m.ExplosiveShots },
	"fan_fire":        func(m *Modifiers) *bool { return &m.FanFire },
	"lasso_shock":     func(m *Modifiers) *bool { return &m.LassoShock },
	"sweet_spot":      func(m *Modifiers) *bool { return &m.SweetSpot },
	"blade_wave":      func(m *Modifiers) *bool { return &m.BladeWave },
	"iaido_cyclone":   func(m *Modifiers) *bool { return &m.IaidoCyclone },
	"blade_dance":     func(m *Modifiers) *bool { return &m.BladeDance },
	"thunder_dash":    func(m *Modifiers) *bool { return &m.ThunderDash },
	"wind_endures":    func(m *Modifiers) *bool { return &m.WindEndures },
	"ink_trail":       func(m *Modifiers) *bool { return &m.InkTrail },
	"dragon_fury":     func(m *Modifiers) *bool { return &m.DragonFury },
	"quick_draw":      func(m *Modifiers) *bool { return &m.QuickDraw },
}

// Apply returns m with effects folded in, left to right. m is not modified.
func (m Modifiers) Apply(effects []Effect) (Modifiers, error) {
	out := m
	for _, e := range effects {
		if err := out.apply(e); err != nil {
			return m, err
		}
	}
	return out, nil
}

func (m *Modifiers) apply(e Effect) error {
	if f, ok := floatStats[e.Stat]; ok {
		p := f(m)
		switch e.Op {
		case OpAdd:
			*p += e.Value
		case OpMul:
			*p *= e.Value
		case OpSet:
			*p = e.Value
		default:
			return fmt.Errorf("stat %s: op %q not valid for numbers", e.Stat, e.Op)
		}
		return nil
	}
	if f, ok := intStats[e.Stat]; ok {
		p := f(m)
		switch e.Op {
		case OpAdd:
			*p += int(e.Value)
		case OpSet:
			*p = int(e.Value)
		default:
			return fmt.Errorf("stat %s: op %q not valid for counts", e.Stat, e.Op)
		}
		return nil
	}
	if f, ok := flagStats[e.Stat]; ok {
		if e.Op != OpFlag && e.Op != OpSet {
			return fmt.Errorf("stat %s: op %q not valid for flags", e.Stat, e.Op)
		}
		*f(m) = e.Op == OpFlag || e.Value != 0
		return nil
	}
	return fmt.Errorf("unknown stat %q", e.Stat)
}
