package crush

import (
	"fmt"

	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
)

// TicksPerSecond converts crate lifetimes.
const TicksPerSecond = 25

// CrateAction is one competing reward of a crate.
type CrateAction interface {
	Type() string
	// SelectionShares is the weight of this action for collector; zero removes
	// it from the draw.
	SelectionShares(env Env, collector *model.Actor) int
	Activate(env Env, crate, collector *model.Actor)
}

type Crate struct {
	self    *model.Actor
	info    *model.CrateInfo
	actions []CrateAction

	ticks     int
	collected bool
}

func NewCrate(self *model.Actor, info *model.CrateInfo, actions []CrateAction) *Crate {
	return &Crate{self: self, info: info, actions: actions}
}

func (c *Crate) Actor() *model.Actor { return c.self }
func (c *Crate) Bound() model.WRange { return 0 }
func (c *Crate) Collected() bool     { return c.collected }
func (c *Crate) Ticks() int          { return c.ticks }

func (c *Crate) CrushableBy(crushClasses []string) bool {
	return model.Contains(crushClasses, c.info.CrushClass)
}

func (c *Crate) WarnCrush(env Env, crusher *model.Actor) {}

// OnCrush collects the crate once: it is destroyed and one action is chosen by
// a weighted draw from the shared random source.
func (c *Crate) OnCrush(env Env, crusher *model.Actor) {
	if c.collected {
		return
	}
	shares := make([]int, len(c.actions))
	total := 0
	for i, a := range c.actions {
		if s := a.SelectionShares(env, crusher); s > 0 {
			shares[i] = s
			total += s
		}
	}
	n := env.SharedRandom().Next(total)

	env.Destroy(c.self)
	c.collected = true

	if chosen := Select(shares, n); chosen >= 0 {
		c.actions[chosen].Activate(env, c.self, crusher)
	}
}

// Select returns the index of the first entry whose cumulative share exceeds
// n, or -1 if none does.
func Select(shares []int, n int) int {
	for i, s := range shares {
		if n < s {
			return i
		}
		n -= s
	}
	return -1
}

// Tick expires the crate after its lifetime.
func (c *Crate) Tick(env Env) {
	if c.collected {
		return
	}
	c.ticks++
	if c.ticks >= c.info.Lifetime*TicksPerSecond {
		env.Destroy(c.self)
	}
}

// WeaponLookup resolves weapon names for explosive crates.
type WeaponLookup func(name string) (*weapons.WeaponInfo, bool)

func NewCrateActions(infos []model.CrateActionInfo, lookup WeaponLookup) ([]CrateAction, error) {
	out := make([]CrateAction, 0, len(infos))
	for _, ai := range infos {
		if ai.SelectionShares < 0 {
			return nil, fmt.Errorf("crate action %s: negative shares", ai.Type)
		}
		switch ai.Type {
		case "GiveCash":
			out = append(out, &GiveCashAction{Shares: ai.SelectionShares, Amount: ai.Amount})
		case "Explode":
			w, ok := lookup(ai.Weapon)
			if !ok {
				return nil, fmt.Errorf("crate action Explode: unknown weapon %q", ai.Weapon)
			}
			out = append(out, &ExplodeAction{Shares: ai.SelectionShares, Weapon: w})
		case "GiveUnit":
			if ai.Unit == "" {
				return nil, fmt.Errorf("crate action GiveUnit: missing unit")
			}
			out = append(out, &GiveUnitAction{Shares: ai.SelectionShares, Unit: ai.Unit})
		default:
			return nil, fmt.Errorf("unknown crate action %q", ai.Type)
		}
	}
	return out, nil
}

type GiveCashAction struct {
	Shares int
	Amount int
}

func (a *GiveCashAction) Type() string { return "GiveCash" }

func (a *GiveCashAction) SelectionShares(env Env, collector *model.Actor) int { return a.Shares }

func (a *GiveCashAction) Activate(env Env, crate, collector *model.Actor) {
	collector.Owner().Resources.GiveCash(a.Amount)
}

type ExplodeAction struct {
	Shares int
	Weapon *weapons.WeaponInfo
}

func (a *ExplodeAction) Type() string { return "Explode" }

func (a *ExplodeAction) SelectionShares(env Env, collector *model.Actor) int { return a.Shares }

func (a *ExplodeAction) Activate(env Env, crate, collector *model.Actor) {
	a.Weapon.Impact(env, crate.CenterPosition(), collector, 100)
}

type GiveUnitAction struct {
	Shares int
	Unit   string
}

func (a *GiveUnitAction) Type() string { return "GiveUnit" }

// SelectionShares drops to zero for owners that cannot field units.
func (a *GiveUnitAction) SelectionShares(env Env, collector *model.Actor) int {
	if collector.Owner() == nil || collector.Owner().NonCombatant {
		return 0
	}
	return a.Shares
}

func (a *GiveUnitAction) Activate(env Env, crate, collector *model.Actor) {
	env.SpawnActor(a.Unit, collector.Owner(), crate.Location())
}
