package weapons

import "rtscore.dev/internal/sim/world/kernel/model"

// Armament is the per-actor firing state of one weapon.
type Armament struct {
	Weapon           *WeaponInfo
	FirepowerPercent int

	FireDelay int
	Burst     int
}

func NewArmament(w *WeaponInfo, firepowerPercent int) *Armament {
	if firepowerPercent <= 0 {
		firepowerPercent = 100
	}
	return &Armament{Weapon: w, FirepowerPercent: firepowerPercent, Burst: w.Burst}
}

func (a *Armament) IsReloading() bool { return a.FireDelay > 0 }

func (a *Armament) Tick() {
	if a.FireDelay > 0 {
		a.FireDelay--
	}
}

// InRange checks MinRange <= distance <= Range.
func (a *Armament) InRange(from model.WPos, target model.Target) bool {
	d := model.WRange(model.Distance(from, target.CenterPosition()))
	return d >= a.Weapon.MinRange && d <= a.Weapon.Range
}

// CheckFire fires one shot of the current burst at target if the weapon is
// loaded, in range and the target is legal. It reports whether a shot left.
func (a *Armament) CheckFire(env Env, self *model.Actor, target model.Target) bool {
	if a.IsReloading() || !target.IsValid() {
		return false
	}
	if !a.InRange(self.CenterPosition(), target) {
		return false
	}
	if !a.Weapon.IsValidAgainst(target, env.Map(), self) {
		return false
	}

	if len(a.Weapon.Report) > 0 {
		env.PlaySound(a.Weapon.Report[0], self.CenterPosition())
	}

	args := ProjectileArgs{
		Weapon:            a.Weapon,
		FirepowerModifier: a.FirepowerPercent,
		Source:            self.CenterPosition(),
		SourceActor:       self,
		PassiveTarget:     target.CenterPosition(),
		GuidedTarget:      target,
	}
	if a.Weapon.Projectile != nil {
		a.Weapon.Projectile.Launch(env, args)
	} else {
		a.Weapon.Impact(env, args.PassiveTarget, self, args.FirepowerModifier)
	}

	a.Burst--
	if a.Burst > 0 {
		a.FireDelay = a.Weapon.BurstDelay
	} else {
		a.FireDelay = a.Weapon.ReloadDelay
		a.Burst = a.Weapon.Burst
	}
	return true
}
