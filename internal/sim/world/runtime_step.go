package world

import (
	"slices"
	"time"

	"rtscore.dev/internal/sim/world/kernel/model"
	"rtscore.dev/internal/sim/world/logic/movement"
)

// step runs one tick and returns its digest.
func (w *World) step(orders []Order) string {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.events = w.events[:0]

	// Delayed effects land at the start of the frame they are due in.
	w.runDeferred(nowTick)

	// Orders apply in inbox order.
	w.applyOrders(nowTick, orders)

	w.systemArmaments()
	w.systemMovement()
	w.recomputePower()
	w.systemProduction()
	w.systemCrates()
	w.flushRemovals()

	digest := w.stateDigest(nowTick)
	entry := TickLogEntry{
		Tick:   nowTick,
		Orders: slices.Clone(orders),
		Events: slices.Clone(w.events),
		Digest: digest,
	}
	for _, l := range w.tickLoggers {
		_ = l.WriteTick(entry)
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(WorldMetrics{
		Tick:     nextTick,
		Actors:   len(w.ids),
		Players:  len(w.players),
		Events:   len(entry.Events),
		Deferred: w.deferred.Len(),
		Inbox:    len(w.inbox),
		StepMS:   stepMS,
		Digest:   digest,

		PlayerStatus: w.playerStatus(),
	})
	return digest
}

// systemArmaments reloads every armament and fires at the unit's target.
func (w *World) systemArmaments() {
	for _, id := range slices.Clone(w.ids) {
		a := w.actors[id]
		u := w.units[id]
		if a == nil || u == nil || a.IsDead() {
			continue
		}
		for _, arm := range u.armaments {
			arm.Tick()
		}
		if u.target.Type == model.TargetNone {
			continue
		}
		if !u.target.IsValid() {
			u.target = model.NoTarget
			continue
		}
		for _, arm := range u.armaments {
			arm.CheckFire(w, a, u.target)
		}
	}
}

// systemMovement steps moving actors toward their destination and announces
// those that changed cell, in id order, to every listener.
func (w *World) systemMovement() {
	var moved []*model.Actor
	for _, id := range w.ids {
		a := w.actors[id]
		if a == nil || a.IsDead() {
			continue
		}
		mob, ok := a.Mobile()
		if !ok || !mob.Moving {
			continue
		}
		next, arrived := movement.Step(a.CenterPosition(), mob.Destination, mob.Info.Speed)
		if !w.passable(model.CellContaining(next)) {
			mob.Moving = false
			continue
		}
		if a.SetPosition(next) {
			moved = append(moved, a)
		}
		if arrived {
			mob.Moving = false
		}
	}
	if len(moved) == 0 {
		return
	}
	for _, l := range w.listeners {
		l.PositionMovementAnnouncement(moved)
	}
}

// systemProduction ticks queues in producer id order, then queue type order.
func (w *World) systemProduction() {
	for _, id := range slices.Clone(w.ids) {
		a := w.actors[id]
		if a == nil || a.IsDead() || a.Owner().NonCombatant {
			continue
		}
		for _, q := range w.queues[id] {
			q.Tick()
		}
	}
}

func (w *World) systemCrates() {
	for _, c := range slices.Clone(w.crates) {
		c.Tick(w)
	}
}

// flushRemovals drops actors killed or destroyed this tick. A lost revealer
// can freeze what it was watching, so sight is recomputed afterwards.
func (w *World) flushRemovals() {
	if len(w.removals) == 0 {
		return
	}
	for _, id := range w.removals {
		w.removeActor(id)
	}
	w.removals = w.removals[:0]
	w.shroud.update()
}
