package world

import "github.com/neonronin/survivor/internal/core/ecs"

// Body is the shape every simulated kind carries. Visual is an opaque tag
// for presentation and is never read by the simulation.
type Body struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Visual string
}

func (b *Body) Position() Vec2            { return b.Pos }
func (b *Body) CollisionRadius() float64  { return b.Radius }
func (b *Body) Overlaps(o Collidable) bool { return b.Pos.Dist(o.Position()) < b.Radius+o.CollisionRadius() }

type Positioned interface {
	Position() Vec2
}

type Collidable interface {
	Positioned
	CollisionRadius() float64
}

type Damageable interface {
	Collidable
	TakeDamage(amount float64)
	Alive() bool
}

// ─── Player ─────────────────────────────────────────────────────────

type Class uint8

const (
	ClassSamurai Class = iota
	ClassGunner
	ClassMage
)

func (c Class) String() string {
	switch c {
	case ClassSamurai:
		return "SAMURAI"
	case ClassGunner:
		return "GUNNER"
	case ClassMage:
		return "MAGE"
	}
	return "UNKNOWN"
}

// ParseClass accepts the upper-case names used in config and data files.
func ParseClass(s string) (Class, bool) {
	switch s {
	case "SAMURAI":
		return ClassSamurai, true
	case "GUNNER":
		return ClassGunner, true
	case "MAGE":
		return ClassMage, true
	}
	return 0, false
}

// SkillSpec is one of the four class skill slots.
type SkillSpec struct {
	ID       string
	Name     string
	Cooldown float64 // ms
	Unlock   int     // minimum level
}

// ClassStats are the immutable per-class base numbers.
type ClassStats struct {
	Class    Class
	MaxHP    float64
	Speed    float64
	Damage   float64
	FireRate float64 // ms between basic attacks
	Range    float64
	Skills   [4]SkillSpec
}

const (
	PlayerRadius = 20
	MaxAmmo      = 14
	DashFrames   = 10
)

// Buff names carried in Player.Buffs.
const (
	BuffAttackSpeed = "attackSpeed"
	BuffRapidFire   = "rapidfire"
	BuffInvuln      = "invuln"
)

type Player struct {
	Body
	Stats ClassStats

	HP, MaxHP float64
	Mods      Modifiers
	Upgrades  map[string]int

	SkillReadyAt [4]float64 // session-clock ms

	ComboStage   int
	LastAttackAt float64
	ComboHits    int

	Ammo        int
	Reloading   bool
	ReloadTimer float64 // ms

	DashTimer    float64 // frames
	DashCooldown float64 // frames
	DashDir      Vec2
	dashTick     float64

	Buffs map[string]float64 // name -> expiry ms

	OnBoat    bool
	Facing    int
	Heading   float64
	Knockback Vec2 // one-tick displacement, consumed by movement

	StationaryTimer float64 // frames
	IaidoCharged    bool

	QuickDrawStacks  int
	QuickReloadTimer float64 // ms

	WindCounter int

	Skill2Charging bool
	Skill2Hold     float64 // ms

	DroneReadyAt []float64
}

// NewPlayer builds a fresh player at pos from class stats.
func NewPlayer(stats ClassStats, pos Vec2) *Player {
	return &Player{
		Body:     Body{Pos: pos, Radius: PlayerRadius, Visual: stats.Class.String()},
		Stats:    stats,
		HP:       stats.MaxHP,
		MaxHP:    stats.MaxHP,
		Mods:     DefaultModifiers(),
		Upgrades: make(map[string]int),
		Ammo:     MaxAmmo,
		Buffs:    make(map[string]float64),
		Facing:   1,

		LastAttackAt: -1e9,
	}
}

func (p *Player) TakeDamage(amount float64) { p.HP -= amount }
func (p *Player) Alive() bool               { return p.HP > 0 }
func (p *Player) Dashing() bool             { return p.DashTimer > 0 }

// BuffActive reports whether the named buff has not yet expired at now.
func (p *Player) BuffActive(name string, now float64) bool {
	return p.Buffs[name] > now
}

// Invulnerable covers both dash frames and the invuln buff.
func (p *Player) Invulnerable(now float64) bool {
	return p.Dashing() || p.BuffActive(BuffInvuln, now)
}

// DashContactDue advances the dash-contact cadence and reports every third frame.
func (p *Player) DashContactDue(scale float64) bool {
	p.dashTick += scale
	if p.dashTick >= 3 {
		p.dashTick = 0
		return true
	}
	return false
}

func (p *Player) Heal(amount float64) {
	p.HP = min(p.MaxHP, p.HP+amount)
}

// ─── Enemy ──────────────────────────────────────────────────────────

type EnemyKind uint8

const (
	EnemyChaser EnemyKind = iota
	EnemyShooter
	EnemyTank
	EnemyIceSlime
	EnemyYeti
	EnemyBoss
)

var enemyKindNames = [...]string{"CHASER", "SHOOTER", "TANK", "ICE_SLIME", "YETI", "BOSS"}

func (k EnemyKind) String() string {
	if int(k) < len(enemyKindNames) {
		return enemyKindNames[k]
	}
	return "UNKNOWN"
}

func ParseEnemyKind(s string) (EnemyKind, bool) {
	for i, n := range enemyKindNames {
		if n == s {
			return EnemyKind(i), true
		}
	}
	return 0, false
}

type Affix uint8

const (
	AffixNone Affix = iota
	AffixSpeed
	AffixTank
	AffixExplosive
)

func (a Affix) String() string {
	switch a {
	case AffixSpeed:
		return "SPEED"
	case AffixTank:
		return "TANK"
	case AffixExplosive:
		return "EXPLOSIVE"
	}
	return ""
}

type StunKind uint8

const (
	StunNone StunKind = iota
	StunElectric
	StunFrost
	StunImpact
)

const DeathDecayFrames = 20

type Enemy struct {
	Body
	ID   ecs.EntityID
	Kind EnemyKind

	HP, MaxHP float64
	Elite     bool
	Affix     Affix

	BurnTimer float64
	BurnTick  float64
	StunTimer float64
	Stun      StunKind
	HitFlash  float64

	AttackTimer float64 // frames, shooters only
	DeathTimer  float64
	Facing      int

	Boss *BossState
}

func (e *Enemy) TakeDamage(amount float64) { e.HP -= amount }

// Alive is false once the death sequence has started.
func (e *Enemy) Alive() bool { return e.DeathTimer == 0 }

// Dying reports the post-death decay window.
func (e *Enemy) Dying() bool { return e.DeathTimer != 0 }

func (e *Enemy) IsBoss() bool { return e.Boss != nil }

// Heavy enemies resist knockback.
func (e *Enemy) Heavy() bool { return e.Kind == EnemyTank || e.IsBoss() }

// ─── Boss ───────────────────────────────────────────────────────────

type BossKind uint8

const (
	BossShogun BossKind = iota
	BossConstruct
)

func (k BossKind) String() string {
	if k == BossConstruct {
		return "CONSTRUCT"
	}
	return "SHOGUN"
}

func ParseBossKind(s string) (BossKind, bool) {
	switch s {
	case "SHOGUN":
		return BossShogun, true
	case "CONSTRUCT":
		return BossConstruct, true
	}
	return 0, false
}

type BossPhase uint8

const (
	BossIntro BossPhase = iota
	BossPhase1
	BossPhase2
)

func (p BossPhase) String() string {
	switch p {
	case BossPhase1:
		return "PHASE_1"
	case BossPhase2:
		return "PHASE_2"
	}
	return "INTRO"
}

type BossState struct {
	Kind       BossKind
	Name       string
	Title      string
	Phase      BossPhase
	Alpha      float64
	Thresholds []float64
	BaseDamage float64

	AttackReadyAt float64 // ms
	HazardTimer   float64 // frames
}

// ─── Projectile ─────────────────────────────────────────────────────

type ProjectileKind uint8

const (
	ProjBullet ProjectileKind = iota
	ProjFunnelShot
	ProjMageBolt
	ProjSlashWave
	ProjVoidSlash
	ProjSpiritSword
	ProjElementalStab
	ProjExplosive
	ProjLassoThrow
	ProjMagneticField
	ProjElectroBlast
	ProjTNT
	ProjWindDragon
	ProjInkPuddle
	ProjBeam
	ProjVine
	ProjBlizzard
	ProjHighNoonImpact
)

var projectileKindNames = [...]string{
	"BULLET", "FUNNEL_SHOT", "MAGE_BOLT", "SLASH_WAVE", "VOID_SLASH", "SPIRIT_SWORD",
	"ELEMENTAL_STAB", "EXPLOSIVE", "LASSO_THROW", "MAGNETIC_FIELD", "ELECTRO_BLAST",
	"TNT", "WIND_DRAGON", "INK_PUDDLE", "BEAM", "VINE", "BLIZZARD", "HIGH_NOON_IMPACT",
}

func (k ProjectileKind) String() string {
	if int(k) < len(projectileKindNames) {
		return projectileKindNames[k]
	}
	return "UNKNOWN"
}

type Owner uint8

const (
	OwnerPlayer Owner = iota
	OwnerEnemy
	OwnerWorld // hazards that belong to neither side
)

type Element uint8

const (
	ElementNone Element = iota
	ElementMetal
	ElementWood
	ElementWater
	ElementFire
	ElementEarth
)

// Elements is the orbiter order.
var Elements = [5]Element{ElementMetal, ElementWood, ElementWater, ElementFire, ElementEarth}

func (e Element) String() string {
	switch e {
	case ElementMetal:
		return "METAL"
	case ElementWood:
		return "WOOD"
	case ElementWater:
		return "WATER"
	case ElementFire:
		return "FIRE"
	case ElementEarth:
		return "EARTH"
	}
	return ""
}

// Orbit is the payload of a spirit sword.
type Orbit struct {
	Angle       float64
	TargetAngle float64
	Radius      float64
	Speed       float64

	AttackReadyAt   float64 // ms
	AttackSpeedMult float64
	Charging        bool
}

type Projectile struct {
	Body
	Kind     ProjectileKind
	Owner    Owner
	Damage   float64
	Life     float64 // frames
	Rotation float64

	Piercing  bool
	Ricochets int
	Element   Element
	Inferno   bool
	Tesla     bool
	Cyclone   bool

	Orbit *Orbit
	hits  map[ecs.EntityID]struct{}

	Consumed bool
}

// MarkHit records e and reports whether it was new.
func (p *Projectile) MarkHit(id ecs.EntityID) bool {
	if p.hits == nil {
		p.hits = make(map[ecs.EntityID]struct{})
	}
	if _, ok := p.hits[id]; ok {
		return false
	}
	p.hits[id] = struct{}{}
	return true
}

// Damaging reports whether a player-owned projectile can hurt things it touches.
func (p *Projectile) Damaging() bool {
	return p.Owner == OwnerPlayer && p.Damage > 0
}

// ─── Static and pickup kinds ────────────────────────────────────────

type ParticleKind uint8

const (
	ParticleSpark ParticleKind = iota
	ParticleTargetMark
	ParticleAfterimage
	ParticleSlash
)

type Particle struct {
	Body
	Kind ParticleKind
	Life float64
}

type ItemKind uint8

const (
	ItemXP ItemKind = iota
	ItemHealth
	ItemCooldown
)

func (k ItemKind) String() string {
	switch k {
	case ItemHealth:
		return "HEALTH_POTION"
	case ItemCooldown:
		return "COOLDOWN_ORB"
	}
	return "XP_CRYSTAL"
}

type Item struct {
	Body
	Kind ItemKind
}

type PropKind uint8

const (
	PropBarrel PropKind = iota
	PropChest
)

type Prop struct {
	Body
	Kind   PropKind
	Active bool
}

type ShrineKind uint8

const (
	ShrineHeal ShrineKind = iota
	ShrineBlood
	ShrineGamble
	ShrineLegendary
)

func (k ShrineKind) String() string {
	switch k {
	case ShrineBlood:
		return "BLOOD"
	case ShrineGamble:
		return "GAMBLE"
	case ShrineLegendary:
		return "LEGENDARY"
	}
	return "HEAL"
}

type Shrine struct {
	Body
	Kind ShrineKind
	Used bool
}

type Boat struct {
	Body
	Heading float64
}

// Decoration is a static circular obstacle (trees, boulders).
type Decoration struct {
	Body
}

// Portal leads from the grassland to the ice world.
type Portal struct {
	Body
}

// Altar is the boss trigger tile.
type Altar struct {
	TX, TY int
	Active bool
}

// Center returns the world position of the altar tile center.
func (a *Altar) Center() Vec2 {
	return TileCenter(a.TX, a.TY)
}
