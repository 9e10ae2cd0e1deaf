package weapons

import "rtscore.dev/internal/sim/world/kernel/model"

// Terrain is the map query surface the targeting filter needs.
type Terrain interface {
	Contains(c model.CPos) bool
	CellContaining(p model.WPos) model.CPos
	TerrainTargetTypes(c model.CPos) []string
}

// Env is the world as seen by weapons. All effects are fire-and-forget.
type Env interface {
	Map() Terrain

	// Schedule runs fn at the start of the tick delay ticks from now.
	// Actions scheduled for the same tick run in scheduling order.
	Schedule(delay int, fn func())

	// ActorsInRange returns live in-world actors within r of pos, in id order.
	ActorsInRange(pos model.WPos, r model.WRange) []*model.Actor

	InflictDamage(victim, attacker *model.Actor, amount int)
	PlaySound(name string, pos model.WPos)
	SpawnEffect(name string, pos model.WPos)
}

// Decoder is satisfied by *yaml.Node and lets factories decode their own
// typed configuration without this package depending on the rule loader.
type Decoder interface {
	Decode(v any) error
}
