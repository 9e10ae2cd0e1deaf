package world

import (
	"crypto/sha256"
	"encoding/hex"

	"rtscore.dev/internal/sim/world/io/digestcodec"
	"rtscore.dev/internal/sim/world/kernel/model"
)

type hashWriter = digestcodec.Writer

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	w.digestHeader(h, &tmp, nowTick)
	w.digestPlayers(h, &tmp)
	w.digestActors(h, &tmp)
	w.digestQueues(h, &tmp)
	w.digestCrates(h, &tmp)
	w.digestShroud(h, &tmp)

	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestHeader(h hashWriter, tmp *[8]byte, nowTick uint64) {
	digestcodec.WriteU64(h, tmp, nowTick)
	digestcodec.WriteI64(h, tmp, w.cfg.Seed)
	digestcodec.WriteString(h, tmp, w.rules.Digest)
	h.Write(w.rng.State())
	digestcodec.WriteU64(h, tmp, w.rng.Draws())
	digestcodec.WriteU64(h, tmp, uint64(w.nextID))
	digestcodec.WriteInt(h, tmp, w.deferred.Len())
	digestcodec.WriteU64(h, tmp, w.deferred.nextSeq)
}

func (w *World) digestPlayers(h hashWriter, tmp *[8]byte) {
	digestcodec.WriteInt(h, tmp, len(w.players))
	for _, p := range w.players {
		digestcodec.WriteInt(h, tmp, p.Index)
		digestcodec.WriteString(h, tmp, p.Name)
		r := p.Resources
		digestcodec.WriteInt(h, tmp, r.Cash)
		digestcodec.WriteInt(h, tmp, r.Ore)
		digestcodec.WriteInt(h, tmp, r.Earned)
		digestcodec.WriteInt(h, tmp, r.Spent)
		digestcodec.WriteInt(h, tmp, p.Power.Provided)
		digestcodec.WriteInt(h, tmp, p.Power.Drained)
		stances := make(map[int]int, len(p.Stances))
		for k, v := range p.Stances {
			stances[k] = int(v) + 1
		}
		digestcodec.WriteSortedNonZeroIntMap(h, tmp, stances)
		digestcodec.WriteInt(h, tmp, w.rosters[p.Index].Len())
	}
}

func (w *World) digestActors(h hashWriter, tmp *[8]byte) {
	digestcodec.WriteInt(h, tmp, len(w.ids))
	for _, id := range w.ids {
		a := w.actors[id]
		digestcodec.WriteU64(h, tmp, uint64(id))
		digestcodec.WriteString(h, tmp, a.Name())
		digestcodec.WriteInt(h, tmp, a.Owner().Index)
		digestPos(h, tmp, a.CenterPosition())
		digestcodec.WriteBool(h, a.IsDead())
		if hp, ok := a.Health(); ok {
			digestcodec.WriteInt(h, tmp, hp.HP)
		}
		if mob, ok := a.Mobile(); ok {
			digestcodec.WriteBool(h, mob.Moving)
			digestPos(h, tmp, mob.Destination)
		}
		u := w.units[id]
		for _, arm := range u.armaments {
			digestcodec.WriteInt(h, tmp, arm.FireDelay)
			digestcodec.WriteInt(h, tmp, arm.Burst)
		}
		h.Write([]byte{byte(u.target.Type)})
		switch u.target.Type {
		case model.TargetActor:
			digestcodec.WriteU64(h, tmp, uint64(u.target.Actor.ID))
		case model.TargetFrozenActor:
			digestcodec.WriteU64(h, tmp, uint64(u.target.Frozen.ID))
			digestPos(h, tmp, u.target.Frozen.CenterPosition)
		case model.TargetTerrain:
			digestPos(h, tmp, u.target.Pos)
		}
	}
}

func (w *World) digestQueues(h hashWriter, tmp *[8]byte) {
	for _, id := range w.ids {
		for _, q := range w.queues[id] {
			digestcodec.WriteU64(h, tmp, uint64(id))
			digestcodec.WriteString(h, tmp, q.Info.Type)
			digestcodec.WriteInt(h, tmp, q.Len())
			for _, it := range q.Items() {
				digestcodec.WriteString(h, tmp, it.Name)
				digestcodec.WriteInt(h, tmp, it.TotalTime)
				digestcodec.WriteInt(h, tmp, it.RemainingTime)
				digestcodec.WriteInt(h, tmp, it.RemainingCost)
				digestcodec.WriteInt(h, tmp, it.Slowdown)
				h.Write([]byte{
					digestcodec.BoolByte(it.Paused),
					digestcodec.BoolByte(it.Done),
					digestcodec.BoolByte(it.Started),
				})
			}
		}
	}
}

func (w *World) digestCrates(h hashWriter, tmp *[8]byte) {
	for _, c := range w.crates {
		digestcodec.WriteU64(h, tmp, uint64(c.Actor().ID))
		digestcodec.WriteInt(h, tmp, c.Ticks())
		digestcodec.WriteBool(h, c.Collected())
	}
}

func (w *World) digestShroud(h hashWriter, tmp *[8]byte) {
	for _, p := range w.players {
		var seen int
		for _, id := range w.ids {
			if w.shroud.isVisible(p.Index, id) {
				digestcodec.WriteU64(h, tmp, uint64(id))
				seen++
			}
		}
		digestcodec.WriteInt(h, tmp, seen)
		for _, f := range w.Frozen(p.Index) {
			digestcodec.WriteU64(h, tmp, uint64(f.ID))
			digestcodec.WriteInt(h, tmp, f.Owner.Index)
			digestPos(h, tmp, f.CenterPosition)
		}
	}
}

func digestPos(h hashWriter, tmp *[8]byte, p model.WPos) {
	digestcodec.WriteInt(h, tmp, p.X)
	digestcodec.WriteInt(h, tmp, p.Y)
	digestcodec.WriteInt(h, tmp, p.Z)
}
