package crush

import (
	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
)

// Random is the shared deterministic source.
type Random interface {
	Next(n int) int
}

// Env is what crush outcomes act on. Every call is fire-and-forget.
type Env interface {
	weapons.Env

	SharedRandom() Random
	Kill(victim, attacker *model.Actor)
	Destroy(a *model.Actor)
	SpawnCorpse(a *model.Actor, sequence string)
	Nudge(a, nudger *model.Actor)
	SpawnActor(name string, owner *model.Player, cell model.CPos) *model.Actor
}

// Occupant is a stationary actor that can be run over.
type Occupant interface {
	Actor() *model.Actor
	// Bound is an early-out distance checked before the crusher's radius;
	// zero disables it.
	Bound() model.WRange
	CrushableBy(crushClasses []string) bool
	WarnCrush(env Env, crusher *model.Actor)
	OnCrush(env Env, crusher *model.Actor)
}

// Resolver decides which registered occupants are crushed by the actors that
// moved this tick.
type Resolver struct {
	env       Env
	occupants []Occupant
}

func NewResolver(env Env) *Resolver { return &Resolver{env: env} }

// Register appends o; occupants are visited in registration order.
func (r *Resolver) Register(o Occupant) { r.occupants = append(r.occupants, o) }

func (r *Resolver) Unregister(a *model.Actor) {
	for i, o := range r.occupants {
		if o.Actor() == a {
			r.occupants = append(r.occupants[:i:i], r.occupants[i+1:]...)
			return
		}
	}
}

// PositionMovementAnnouncement resolves crushes for moved, which must be in a
// deterministic order (the world passes actor id order).
func (r *Resolver) PositionMovementAnnouncement(moved []*model.Actor) {
	if len(moved) == 0 || len(r.occupants) == 0 {
		return
	}
	// Outcomes may unregister or spawn occupants; iterate over a copy.
	occupants := append([]Occupant(nil), r.occupants...)
	for _, occ := range occupants {
		self := occ.Actor()
		for _, m := range moved {
			if self.IsDead() || !self.IsInWorld() {
				break
			}
			if !Crushes(occ, m) {
				continue
			}
			occ.WarnCrush(r.env, m)
			occ.OnCrush(r.env, m)
		}
	}
}

// Crushes applies every skip rule and reports whether crusher would run over occ.
func Crushes(occ Occupant, crusher *model.Actor) bool {
	self := occ.Actor()
	if crusher == self || crusher.IsDead() {
		return false
	}
	mob, ok := crusher.Mobile()
	if !ok || !mob.Info.CanCrush() {
		return false
	}
	d := model.WRange(model.Distance(crusher.CenterPosition(), self.CenterPosition()))
	if b := occ.Bound(); b > 0 && d > b {
		return false
	}
	if d > mob.Info.CrushRadius {
		return false
	}
	if crusher.Owner().IsAlliedWith(self.Owner()) {
		return false
	}
	return occ.CrushableBy(mob.Info.Crushes)
}
