package weapons

import (
	"fmt"
	"sort"
	"sync"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// Warhead is one independently gated effect of a weapon impact.
type Warhead interface {
	Type() string
	// Delay in ticks between the impact and the effect being applied.
	Delay() int
	IsValidAgainst(victim, firedBy *model.Actor) bool
	IsValidAgainstFrozen(victim *model.FrozenActor, firedBy *model.Actor) bool
	DoImpact(env Env, target model.Target, firedBy *model.Actor, damageModifier int)
}

type WarheadFactory func(d Decoder) (Warhead, error)

var (
	warheadMu        sync.RWMutex
	warheadFactories = map[string]WarheadFactory{}
)

// RegisterWarhead binds a rule type tag to a factory. Registering the same
// tag twice panics.
func RegisterWarhead(typ string, f WarheadFactory) {
	warheadMu.Lock()
	defer warheadMu.Unlock()
	if _, dup := warheadFactories[typ]; dup {
		panic("weapons: duplicate warhead type " + typ)
	}
	warheadFactories[typ] = f
}

func NewWarhead(typ string, d Decoder) (Warhead, error) {
	warheadMu.RLock()
	f, ok := warheadFactories[typ]
	warheadMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown warhead type %q", typ)
	}
	return f(d)
}

func WarheadTypes() []string {
	warheadMu.RLock()
	defer warheadMu.RUnlock()
	out := make([]string, 0, len(warheadFactories))
	for k := range warheadFactories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterWarhead("Damage", func(d Decoder) (Warhead, error) {
		wh := &DamageWarhead{WarheadBase: defaultWarheadBase(), Spread: 43}
		if err := d.Decode(wh); err != nil {
			return nil, err
		}
		if wh.Damage < 0 {
			return nil, fmt.Errorf("damage warhead: negative damage")
		}
		return wh, nil
	})
	RegisterWarhead("CreateEffect", func(d Decoder) (Warhead, error) {
		wh := &CreateEffectWarhead{WarheadBase: defaultWarheadBase()}
		if err := d.Decode(wh); err != nil {
			return nil, err
		}
		return wh, nil
	})
}

// WarheadBase carries the validity rules shared by all warhead types.
type WarheadBase struct {
	ValidTargets   []string `yaml:"ValidTargets"`
	InvalidTargets []string `yaml:"InvalidTargets,omitempty"`
	DelayTicks     int      `yaml:"Delay,omitempty"`
	// Versus maps an armor class to a damage percentage; missing classes take 100.
	Versus map[string]int `yaml:"Versus,omitempty"`
}

func defaultWarheadBase() WarheadBase {
	return WarheadBase{ValidTargets: []string{"Ground", "Water"}}
}

func (b *WarheadBase) Delay() int { return b.DelayTicks }

func (b *WarheadBase) EffectivenessPercent(armor string) int {
	if v, ok := b.Versus[armor]; ok {
		return v
	}
	return 100
}

func (b *WarheadBase) validFor(types []string, info *model.ActorInfo) bool {
	if info != nil && info.Health != nil && b.EffectivenessPercent(info.Health.Armor) <= 0 {
		return false
	}
	return model.ValidTags(types, b.ValidTargets, b.InvalidTargets)
}

func (b *WarheadBase) IsValidAgainst(victim, firedBy *model.Actor) bool {
	t, ok := victim.Targetable()
	if !ok {
		return false
	}
	return b.validFor(t.TargetTypes(), victim.Info)
}

func (b *WarheadBase) IsValidAgainstFrozen(victim *model.FrozenActor, firedBy *model.Actor) bool {
	types, ok := victim.TargetTypes()
	if !ok {
		return false
	}
	return b.validFor(types, victim.Info)
}

// DamageWarhead damages every valid actor within Spread of the impact.
type DamageWarhead struct {
	WarheadBase `yaml:",inline"`

	Damage int          `yaml:"Damage"`
	Spread model.WRange `yaml:"Spread"`
}

func (w *DamageWarhead) Type() string { return "Damage" }

// Amount is the integer damage dealt to armor, scaled by damageModifier percent.
// Both percentages apply before the single truncation.
func (w *DamageWarhead) Amount(armor string, damageModifier int) int {
	return w.Damage * w.EffectivenessPercent(armor) * damageModifier / 10000
}

func (w *DamageWarhead) DoImpact(env Env, target model.Target, firedBy *model.Actor, damageModifier int) {
	pos := target.CenterPosition()
	for _, victim := range env.ActorsInRange(pos, w.Spread) {
		if !w.IsValidAgainst(victim, firedBy) {
			continue
		}
		armor := ""
		if victim.Info.Health != nil {
			armor = victim.Info.Health.Armor
		}
		if amount := w.Amount(armor, damageModifier); amount > 0 {
			env.InflictDamage(victim, firedBy, amount)
		}
	}
}

// CreateEffectWarhead requests a visual effect and a sound cue at the impact.
type CreateEffectWarhead struct {
	WarheadBase `yaml:",inline"`

	Explosion   string `yaml:"Explosion,omitempty"`
	ImpactSound string `yaml:"ImpactSound,omitempty"`
}

func (w *CreateEffectWarhead) Type() string { return "CreateEffect" }

func (w *CreateEffectWarhead) DoImpact(env Env, target model.Target, firedBy *model.Actor, damageModifier int) {
	pos := target.CenterPosition()
	if w.Explosion != "" {
		env.SpawnEffect(w.Explosion, pos)
	}
	if w.ImpactSound != "" {
		env.PlaySound(w.ImpactSound, pos)
	}
}
