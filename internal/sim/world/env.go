package world

import (
	"rtscore.dev/internal/sim/crush"
	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
	"rtscore.dev/internal/sim/world/logic/movement"
)

var _ crush.Env = (*World)(nil)

func (w *World) Map() weapons.Terrain { return w.m }

func (w *World) SharedRandom() crush.Random { return w.rng }

// ActorsInRange returns live in-world actors within r of pos, in id order.
func (w *World) ActorsInRange(pos model.WPos, r model.WRange) []*model.Actor {
	var out []*model.Actor
	for a := range w.Actors() {
		if model.WRange(model.Distance(a.CenterPosition(), pos)) <= r {
			out = append(out, a)
		}
	}
	return out
}

// InflictDamage lowers victim's health and kills it at zero. Actors without
// health ignore damage.
func (w *World) InflictDamage(victim, attacker *model.Actor, amount int) {
	if victim == nil || victim.IsDead() || !victim.IsInWorld() || amount <= 0 {
		return
	}
	h, ok := victim.Health()
	if !ok {
		return
	}
	h.HP -= amount
	w.emit(Event{Type: EventDamage, Actor: victim.ID, Other: actorID(attacker), Player: victim.Owner().Index, Amount: amount, Pos: posArray(victim.CenterPosition())})
	if h.HP <= 0 {
		h.HP = 0
		w.Kill(victim, attacker)
	}
}

func (w *World) PlaySound(name string, pos model.WPos) {
	w.emit(Event{Type: EventSound, Name: name, Pos: posArray(pos)})
}

func (w *World) SpawnEffect(name string, pos model.WPos) {
	w.emit(Event{Type: EventEffect, Name: name, Pos: posArray(pos)})
}

// Kill marks victim dead now and removes it at frame end.
func (w *World) Kill(victim, attacker *model.Actor) {
	if victim == nil || victim.IsDead() {
		return
	}
	victim.MarkDead()
	w.emit(Event{Type: EventKilled, Actor: victim.ID, Other: actorID(attacker), Player: victim.Owner().Index, Name: victim.Name(), Pos: posArray(victim.CenterPosition())})
	w.scheduleRemoval(victim)
}

// Destroy removes a without a death: no killer, no corpse.
func (w *World) Destroy(a *model.Actor) {
	if a == nil || a.IsDead() {
		return
	}
	a.MarkDead()
	w.emit(Event{Type: EventDestroyed, Actor: a.ID, Player: a.Owner().Index, Name: a.Name(), Pos: posArray(a.CenterPosition())})
	w.scheduleRemoval(a)
}

func (w *World) SpawnCorpse(a *model.Actor, sequence string) {
	w.emit(Event{Type: EventCorpse, Actor: a.ID, Player: a.Owner().Index, Name: sequence, Pos: posArray(a.CenterPosition())})
}

// Nudge moves a one cell away from nudger if a usable neighbor exists.
func (w *World) Nudge(a, nudger *model.Actor) {
	if a == nil || a.IsDead() {
		return
	}
	if _, ok := a.Mobile(); !ok {
		return
	}
	cell, ok := movement.NudgeCell(a.Location(), nudger.Location(), w.passable)
	if !ok {
		return
	}
	a.SetPosition(model.CenterOfCell(cell))
	if mob, ok := a.Mobile(); ok {
		mob.Moving = false
	}
	w.emit(Event{Type: EventNudged, Actor: a.ID, Other: nudger.ID, Player: a.Owner().Index, Pos: posArray(a.CenterPosition())})
}

// SpawnActor creates a rule-declared actor at cell. It returns nil when the
// type is unknown or the cell lies outside the map.
func (w *World) SpawnActor(name string, owner *model.Player, cell model.CPos) *model.Actor {
	info, ok := w.rules.Actor(name)
	if !ok || !w.m.Contains(cell) {
		return nil
	}
	a, err := w.addActor(info, owner, model.CenterOfCell(cell))
	if err != nil {
		return nil
	}
	return a
}

// passable is true for in-map ground cells.
func (w *World) passable(c model.CPos) bool {
	return w.m.Contains(c) && model.Contains(w.m.TerrainTargetTypes(c), "Ground")
}

func actorID(a *model.Actor) model.ActorID {
	if a == nil {
		return 0
	}
	return a.ID
}
