package world

import (
	"rtscore.dev/internal/sim/production"
	"rtscore.dev/internal/sim/world/kernel/model"
)

// Rejection reasons carried on ORDER_REJECTED events.
const (
	rejectRateLimited   = "rate_limited"
	rejectBadPlayer     = "bad_player"
	rejectBadActor      = "bad_actor"
	rejectNotOwner      = "not_owner"
	rejectNotMobile     = "not_mobile"
	rejectBadCell       = "bad_cell"
	rejectInvalidTarget = "invalid_target"
	rejectNoQueue       = "no_queue"
	rejectCannotBuild   = "cannot_build"
	rejectNoItem        = "no_item"
	rejectUnknownKind   = "unknown_kind"
)

func (w *World) applyOrders(nowTick uint64, orders []Order) {
	for _, o := range orders {
		if reason := w.applyOrder(nowTick, o); reason != "" {
			w.emit(Event{Type: EventOrderRejected, Actor: o.Actor, Player: o.Player, Name: string(o.Kind), Reason: reason})
		}
	}
}

// applyOrder returns a rejection reason, or "" if the order took effect.
func (w *World) applyOrder(nowTick uint64, o Order) string {
	p, ok := w.Player(o.Player)
	if !ok || p.NonCombatant {
		return rejectBadPlayer
	}
	if ok, _ := w.orderRL[p.Index].Allow(nowTick, w.cfg.OrderWindowTicks, w.cfg.OrderWindowMax); !ok {
		return rejectRateLimited
	}
	a, ok := w.actors[o.Actor]
	if !ok || a.IsDead() || !a.IsInWorld() {
		return rejectBadActor
	}
	if a.Owner() != p {
		return rejectNotOwner
	}

	switch o.Kind {
	case OrderMove:
		return w.orderMove(a, o)
	case OrderAttack:
		return w.orderAttack(a, o)
	case OrderStop:
		w.units[a.ID].target = model.NoTarget
		if mob, ok := a.Mobile(); ok {
			mob.Moving = false
		}
		return ""
	case OrderStartProduction:
		q := w.queueFor(a, o.Queue, o.Item)
		if q == nil {
			return rejectNoQueue
		}
		if _, err := q.Enqueue(o.Item); err != nil {
			return rejectCannotBuild
		}
		return ""
	case OrderPauseProduction:
		q := w.queueFor(a, o.Queue, o.Item)
		if q == nil {
			return rejectNoQueue
		}
		if !q.Pause(o.Item, o.Paused) {
			return rejectNoItem
		}
		return ""
	case OrderCancelProduction:
		q := w.queueFor(a, o.Queue, o.Item)
		if q == nil {
			return rejectNoQueue
		}
		if !q.Cancel(o.Item) {
			return rejectNoItem
		}
		return ""
	case OrderChangeOwner:
		np, ok := w.Player(o.NewOwner)
		if !ok {
			return rejectBadPlayer
		}
		w.ChangeOwner(a, np)
		return ""
	}
	return rejectUnknownKind
}

func (w *World) orderMove(a *model.Actor, o Order) string {
	mob, ok := a.Mobile()
	if !ok {
		return rejectNotMobile
	}
	if o.Cell == nil {
		return rejectBadCell
	}
	cell := model.CPos{X: o.Cell[0], Y: o.Cell[1]}
	if !w.m.Contains(cell) {
		return rejectBadCell
	}
	mob.Destination = model.CenterOfCell(cell)
	mob.Moving = true
	w.units[a.ID].target = model.NoTarget
	return ""
}

// orderAttack accepts a target if at least one armament may fire on it.
func (w *World) orderAttack(a *model.Actor, o Order) string {
	u := w.units[a.ID]
	if len(u.armaments) == 0 {
		return rejectInvalidTarget
	}
	var t model.Target
	switch {
	case o.Target != 0 && o.Frozen:
		f, ok := w.shroud.frozenActor(a.Owner().Index, o.Target)
		if !ok {
			return rejectInvalidTarget
		}
		t = model.TargetFromFrozen(f)
	case o.Target != 0:
		victim, ok := w.actors[o.Target]
		if !ok {
			return rejectInvalidTarget
		}
		t = model.TargetFromActor(victim)
	case o.Cell != nil:
		t = model.TargetFromCell(model.CPos{X: o.Cell[0], Y: o.Cell[1]})
	default:
		return rejectInvalidTarget
	}
	if !t.IsValid() {
		return rejectInvalidTarget
	}
	for _, arm := range u.armaments {
		if arm.Weapon.IsValidAgainst(t, w.m, a) {
			u.target = t
			return ""
		}
	}
	return rejectInvalidTarget
}

// queueFor finds producer's queue of typ, or the first one able to build
// item when typ is empty.
func (w *World) queueFor(producer *model.Actor, typ, item string) *production.Queue {
	for _, q := range w.queues[producer.ID] {
		if typ != "" && q.Info.Type == typ {
			return q
		}
		if typ == "" && q.CanBuild(item) {
			return q
		}
	}
	return nil
}

// ChangeOwner hands a to np. Production queues hosted by a are cleared since
// their progress belonged to the previous owner.
func (w *World) ChangeOwner(a *model.Actor, np *model.Player) {
	old := a.Owner()
	if old == np {
		return
	}
	if r := w.Roster(old.Index); r != nil {
		r.Remove(a)
	}
	a.SetOwner(np)
	if !np.NonCombatant {
		w.rosters[np.Index].Add(a)
	}
	for _, q := range w.queues[a.ID] {
		if q.Len() > 0 {
			w.emit(Event{Type: EventProductionCleared, Actor: a.ID, Player: old.Index, Name: q.Info.Type, Amount: q.Len()})
		}
		q.OnOwnerChanged()
	}
	w.emit(Event{Type: EventOwnerChanged, Actor: a.ID, Player: np.Index, Amount: old.Index, Pos: posArray(a.CenterPosition())})
	w.shroud.update()
}
