// Package movement holds the integer stepping rules for ground units.
package movement

import "rtscore.dev/internal/sim/world/kernel/model"

// Step moves from toward to by at most speed world units. It reports the new
// position and whether the destination was reached.
func Step(from, to model.WPos, speed int) (model.WPos, bool) {
	d := to.Sub(from)
	dist := d.HorizontalLength()
	if speed <= 0 {
		return from, dist == 0
	}
	if dist <= speed {
		return to, true
	}
	return model.WPos{
		X: from.X + d.X*speed/dist,
		Y: from.Y + d.Y*speed/dist,
		Z: from.Z,
	}, false
}

// Neighbors in fixed order for determinism.
var Neighbors = []model.CPos{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1},
	{X: 1, Y: 1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: -1},
}

// NudgeCell picks the adjacent cell that gets furthest from away, breaking
// ties by neighbor order. It returns false when no neighbor is usable.
func NudgeCell(start, away model.CPos, usable func(model.CPos) bool) (model.CPos, bool) {
	best := model.CPos{}
	bestDist := int64(-1)
	for _, n := range Neighbors {
		c := start.Add(n.X, n.Y)
		if !usable(c) {
			continue
		}
		dx, dy := int64(c.X-away.X), int64(c.Y-away.Y)
		d := dx*dx + dy*dy
		if d > bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}
