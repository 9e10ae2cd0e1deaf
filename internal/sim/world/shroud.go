package world

import (
	"sort"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// shroud tracks which enemy actors each player can see. An enemy that drops
// out of every revealer's range leaves a frozen snapshot behind; the snapshot
// stays orderable as a target until the actor is seen again or removed.
type shroud struct {
	w *World

	visible []map[model.ActorID]bool
	frozen  []map[model.ActorID]*model.FrozenActor
}

func newShroud(w *World) *shroud {
	s := &shroud{w: w}
	for range w.players {
		s.visible = append(s.visible, map[model.ActorID]bool{})
		s.frozen = append(s.frozen, map[model.ActorID]*model.FrozenActor{})
	}
	return s
}

// PositionMovementAnnouncement recomputes sight. It runs after the crush
// resolver, so actors crushed this tick are already dead and drop out.
func (s *shroud) PositionMovementAnnouncement(moved []*model.Actor) { s.update() }

func (s *shroud) update() {
	for _, p := range s.w.players {
		if p.NonCombatant {
			continue
		}
		seen := map[model.ActorID]bool{}
		for a := range s.w.Actors() {
			if _, ok := a.Targetable(); !ok || p.StanceTowards(a.Owner()) != model.StanceEnemy {
				continue
			}
			if s.revealed(p, a.CenterPosition()) {
				seen[a.ID] = true
			}
		}
		frozen := s.frozen[p.Index]
		for id := range s.visible[p.Index] {
			if seen[id] {
				continue
			}
			if a, ok := s.w.actors[id]; ok && a.IsInWorld() && !a.IsDead() {
				frozen[id] = model.Freeze(a)
			}
		}
		for id := range seen {
			if f, ok := frozen[id]; ok {
				delete(frozen, id)
				s.w.thaw(p, f)
			}
		}
		s.visible[p.Index] = seen
	}
}

// revealed reports whether any of p's own revealers has pos in range.
func (s *shroud) revealed(p *model.Player, pos model.WPos) bool {
	for r := range s.w.Actors() {
		rs := r.Info.RevealsShroud
		if rs == nil || r.Owner() != p {
			continue
		}
		if model.WRange(model.Distance(r.CenterPosition(), pos)) <= rs.Range {
			return true
		}
	}
	return false
}

// forget drops a from every player's view.
func (s *shroud) forget(a *model.Actor) {
	for i := range s.visible {
		delete(s.visible[i], a.ID)
		delete(s.frozen[i], a.ID)
	}
}

func (s *shroud) isVisible(player int, id model.ActorID) bool {
	if player < 0 || player >= len(s.visible) {
		return false
	}
	return s.visible[player][id]
}

func (s *shroud) frozenActor(player int, id model.ActorID) (*model.FrozenActor, bool) {
	if player < 0 || player >= len(s.frozen) {
		return nil, false
	}
	f, ok := s.frozen[player][id]
	return f, ok
}

// frozenIDs lists player's frozen snapshots in id order.
func (s *shroud) frozenIDs(player int) []model.ActorID {
	if player < 0 || player >= len(s.frozen) {
		return nil
	}
	ids := make([]model.ActorID, 0, len(s.frozen[player]))
	for id := range s.frozen[player] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Frozen returns player index's frozen snapshots in id order.
func (w *World) Frozen(index int) []*model.FrozenActor {
	ids := w.shroud.frozenIDs(index)
	out := make([]*model.FrozenActor, 0, len(ids))
	for _, id := range ids {
		f, _ := w.shroud.frozenActor(index, id)
		out = append(out, f)
	}
	return out
}

// IsVisible reports whether player index currently sees enemy actor id.
func (w *World) IsVisible(index int, id model.ActorID) bool { return w.shroud.isVisible(index, id) }

// thaw points p's units that were aiming at f back at the live actor.
func (w *World) thaw(p *model.Player, f *model.FrozenActor) {
	for _, id := range w.ids {
		a := w.actors[id]
		u := w.units[id]
		if a == nil || u == nil || a.Owner() != p {
			continue
		}
		if u.target.Type == model.TargetFrozenActor && u.target.Frozen == f {
			u.target = model.TargetFromActor(f.Actor)
		}
	}
}
