package weapons

import (
	"fmt"
	"sync"

	"rtscore.dev/internal/sim/world/kernel/model"
)

type ProjectileArgs struct {
	Weapon *WeaponInfo
	// FirepowerModifier is a percentage (100 = unmodified).
	FirepowerModifier int

	Source        model.WPos
	SourceActor   *model.Actor
	PassiveTarget model.WPos
	GuidedTarget  model.Target
}

// ProjectileInfo launches the in-flight part of a shot; the weapon impact
// happens when the projectile arrives.
type ProjectileInfo interface {
	Type() string
	Launch(env Env, args ProjectileArgs)
}

type ProjectileFactory func(d Decoder) (ProjectileInfo, error)

var (
	projectileMu        sync.RWMutex
	projectileFactories = map[string]ProjectileFactory{}
)

func RegisterProjectile(typ string, f ProjectileFactory) {
	projectileMu.Lock()
	defer projectileMu.Unlock()
	if _, dup := projectileFactories[typ]; dup {
		panic("weapons: duplicate projectile type " + typ)
	}
	projectileFactories[typ] = f
}

func NewProjectile(typ string, d Decoder) (ProjectileInfo, error) {
	projectileMu.RLock()
	f, ok := projectileFactories[typ]
	projectileMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown projectile type %q", typ)
	}
	return f(d)
}

func init() {
	RegisterProjectile("Instant", func(d Decoder) (ProjectileInfo, error) {
		return InstantHit{}, nil
	})
	RegisterProjectile("Bullet", func(d Decoder) (ProjectileInfo, error) {
		b := &Bullet{Speed: 256}
		if err := d.Decode(b); err != nil {
			return nil, err
		}
		if b.Speed <= 0 {
			return nil, fmt.Errorf("bullet: speed must be > 0")
		}
		return b, nil
	})
}

// InstantHit impacts in the tick it is fired.
type InstantHit struct{}

func (InstantHit) Type() string { return "Instant" }

func (InstantHit) Launch(env Env, args ProjectileArgs) {
	args.Weapon.Impact(env, args.PassiveTarget, args.SourceActor, args.FirepowerModifier)
}

// Bullet flies in a straight line to the passive target at Speed units per tick.
type Bullet struct {
	Speed int `yaml:"Speed"`
}

func (b *Bullet) Type() string { return "Bullet" }

// FlightTicks is ceil(distance / speed).
func (b *Bullet) FlightTicks(from, to model.WPos) int {
	d := model.Distance(from, to)
	return (d + b.Speed - 1) / b.Speed
}

func (b *Bullet) Launch(env Env, args ProjectileArgs) {
	impact := func() {
		args.Weapon.Impact(env, args.PassiveTarget, args.SourceActor, args.FirepowerModifier)
	}
	if t := b.FlightTicks(args.Source, args.PassiveTarget); t > 0 {
		env.Schedule(t, impact)
		return
	}
	impact()
}
