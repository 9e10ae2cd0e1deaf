// Package roster tracks which of a player's actors count toward its army.
package roster

import (
	"iter"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// DefaultValidTypes are the target types admitted when none are configured.
var DefaultValidTypes = []string{"Ground", "Water", "Air"}

// Tracker keeps actors in insertion order. It is not safe for concurrent use.
type Tracker struct {
	ValidTypes []string

	actors []*model.Actor
	index  map[model.ActorID]int
}

func New(validTypes []string) *Tracker {
	if len(validTypes) == 0 {
		validTypes = DefaultValidTypes
	}
	return &Tracker{ValidTypes: validTypes, index: map[model.ActorID]int{}}
}

// Admits reports whether a would be accepted by Add.
func (t *Tracker) Admits(a *model.Actor) bool {
	if a == nil {
		return false
	}
	tg, ok := a.Targetable()
	if !ok {
		return false
	}
	return model.Intersects(t.ValidTypes, tg.TargetTypes())
}

// Add admits a if its target types intersect ValidTypes. Adding a member
// again is a successful no-op.
func (t *Tracker) Add(a *model.Actor) bool {
	if !t.Admits(a) {
		return false
	}
	if _, ok := t.index[a.ID]; ok {
		return true
	}
	t.index[a.ID] = len(t.actors)
	t.actors = append(t.actors, a)
	return true
}

// AddAll attempts every actor and reports whether all were admitted.
func (t *Tracker) AddAll(actors []*model.Actor) bool {
	all := true
	for _, a := range actors {
		if !t.Add(a) {
			all = false
		}
	}
	return all
}

func (t *Tracker) Remove(a *model.Actor) {
	if a == nil {
		return
	}
	i, ok := t.index[a.ID]
	if !ok {
		return
	}
	delete(t.index, a.ID)
	t.actors = append(t.actors[:i:i], t.actors[i+1:]...)
	for j := i; j < len(t.actors); j++ {
		t.index[t.actors[j].ID] = j
	}
}

func (t *Tracker) Contains(a *model.Actor) bool {
	if a == nil {
		return false
	}
	_, ok := t.index[a.ID]
	return ok
}

func (t *Tracker) Len() int { return len(t.actors) }

// Actors yields current members. Membership changes made while iterating are
// not observed by the running iteration.
func (t *Tracker) Actors() iter.Seq[*model.Actor] {
	return func(yield func(*model.Actor) bool) {
		snapshot := t.actors[:len(t.actors):len(t.actors)]
		for _, a := range snapshot {
			if !yield(a) {
				return
			}
		}
	}
}
