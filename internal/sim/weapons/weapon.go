package weapons

import (
	"fmt"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// WeaponInfo is loaded once from the rules and never mutated afterwards.
type WeaponInfo struct {
	Name string `yaml:"-"`

	Range    model.WRange `yaml:"Range"`
	MinRange model.WRange `yaml:"MinRange"`

	// Report holds the sound cues played when the weapon fires.
	Report []string `yaml:"Report,omitempty"`

	// ReloadDelay is the delay in ticks between ammo magazines.
	ReloadDelay int `yaml:"ReloadDelay"`
	// Burst is the number of shots in one magazine.
	Burst int `yaml:"Burst"`
	// BurstDelay is the delay in ticks between shots of the same magazine.
	BurstDelay int `yaml:"BurstDelay"`

	ValidTargets []string `yaml:"ValidTargets"`
	// InvalidTargets overrules ValidTargets.
	InvalidTargets []string `yaml:"InvalidTargets,omitempty"`

	Projectile ProjectileInfo `yaml:"-"`
	Warheads   []Warhead      `yaml:"-"`
}

func DefaultWeaponInfo(name string) WeaponInfo {
	return WeaponInfo{
		Name:         name,
		ReloadDelay:  1,
		Burst:        1,
		BurstDelay:   5,
		ValidTargets: []string{"Ground", "Water"},
	}
}

func (w *WeaponInfo) Validate() error {
	if w.Burst < 1 {
		return fmt.Errorf("weapon %s: burst must be >= 1 (got %d)", w.Name, w.Burst)
	}
	if w.MinRange < 0 || w.Range < 0 {
		return fmt.Errorf("weapon %s: negative range", w.Name)
	}
	if w.MinRange > w.Range {
		return fmt.Errorf("weapon %s: min range %d exceeds range %d", w.Name, w.MinRange, w.Range)
	}
	if w.ReloadDelay < 0 || w.BurstDelay < 0 {
		return fmt.Errorf("weapon %s: negative delay", w.Name)
	}
	return nil
}

// IsValidAgainst reports whether target is a legal target for the weapon.
// It has no side effects.
func (w *WeaponInfo) IsValidAgainst(target model.Target, terrain Terrain, firedBy *model.Actor) bool {
	switch target.Type {
	case model.TargetActor:
		return w.IsValidAgainstActor(target.Actor, firedBy)
	case model.TargetFrozenActor:
		return w.IsValidAgainstFrozen(target.Frozen, firedBy)
	case model.TargetTerrain:
		if terrain == nil {
			return false
		}
		cell := terrain.CellContaining(target.CenterPosition())
		if !terrain.Contains(cell) {
			return false
		}
		return model.ValidTags(terrain.TerrainTargetTypes(cell), w.ValidTargets, w.InvalidTargets)
	}
	return false
}

func (w *WeaponInfo) IsValidAgainstActor(victim, firedBy *model.Actor) bool {
	if victim == nil || !w.anyWarheadAccepts(func(wh Warhead) bool { return wh.IsValidAgainst(victim, firedBy) }) {
		return false
	}
	t, ok := victim.Targetable()
	if !ok {
		return false
	}
	return model.ValidTags(t.TargetTypes(), w.ValidTargets, w.InvalidTargets)
}

// IsValidAgainstFrozen reads target types from the snapshot's declared info
// instead of a live capability.
func (w *WeaponInfo) IsValidAgainstFrozen(victim *model.FrozenActor, firedBy *model.Actor) bool {
	if victim == nil || !w.anyWarheadAccepts(func(wh Warhead) bool { return wh.IsValidAgainstFrozen(victim, firedBy) }) {
		return false
	}
	types, ok := victim.TargetTypes()
	if !ok {
		return false
	}
	return model.ValidTags(types, w.ValidTargets, w.InvalidTargets)
}

func (w *WeaponInfo) anyWarheadAccepts(pred func(Warhead) bool) bool {
	for _, wh := range w.Warheads {
		if pred(wh) {
			return true
		}
	}
	return false
}

// Impact applies every warhead against a point target at pos. Warheads without
// a delay apply synchronously; delayed ones are handed to the scheduler in list
// order. Validity is the caller's responsibility and is not re-checked here.
func (w *WeaponInfo) Impact(env Env, pos model.WPos, firedBy *model.Actor, damageModifier int) {
	target := model.TargetFromPos(pos)
	for _, wh := range w.Warheads {
		apply := func() { wh.DoImpact(env, target, firedBy, damageModifier) }
		if d := wh.Delay(); d > 0 {
			env.Schedule(d, apply)
		} else {
			apply()
		}
	}
}
