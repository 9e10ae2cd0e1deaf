package world

import "container/heap"

type deferredAction struct {
	due uint64
	seq uint64
	fn  func()
}

// deferredQueue orders actions by due tick, then by scheduling order.
type deferredQueue struct {
	items   []deferredAction
	nextSeq uint64
}

func (q *deferredQueue) Len() int { return len(q.items) }

func (q *deferredQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.due != b.due {
		return a.due < b.due
	}
	return a.seq < b.seq
}

func (q *deferredQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *deferredQueue) Push(x any) { q.items = append(q.items, x.(deferredAction)) }

func (q *deferredQueue) Pop() any {
	n := len(q.items) - 1
	it := q.items[n]
	q.items[n] = deferredAction{}
	q.items = q.items[:n]
	return it
}

func (q *deferredQueue) add(due uint64, fn func()) {
	heap.Push(q, deferredAction{due: due, seq: q.nextSeq, fn: fn})
	q.nextSeq++
}

// popDue removes and returns the next action due at or before now.
func (q *deferredQueue) popDue(now uint64) (func(), bool) {
	if len(q.items) == 0 || q.items[0].due > now {
		return nil, false
	}
	return heap.Pop(q).(deferredAction).fn, true
}

// Schedule queues fn to run at the start of tick now+delay. A delay below one
// is treated as one so an action never runs in the tick that scheduled it.
// Beyond the configured limit the action is dropped and reported.
func (w *World) Schedule(delay int, fn func()) {
	if fn == nil {
		return
	}
	if delay < 1 {
		delay = 1
	}
	if w.deferred.Len() >= w.cfg.DeferredActionLimit {
		w.emit(Event{Type: EventScheduleDropped, Amount: delay, Reason: "deferred action limit"})
		return
	}
	w.deferred.add(w.tick.Load()+uint64(delay), fn)
}

// PendingDeferred is the number of actions waiting to run.
func (w *World) PendingDeferred() int { return w.deferred.Len() }

// runDeferred drains every action due at or before now.
func (w *World) runDeferred(now uint64) {
	for {
		fn, ok := w.deferred.popDue(now)
		if !ok {
			return
		}
		fn()
	}
}
