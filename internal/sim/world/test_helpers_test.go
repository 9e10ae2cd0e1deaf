package world

import (
	"testing"

	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/world/kernel/model"
)

func loadRules(t *testing.T) *rules.Ruleset {
	t.Helper()
	rs, err := rules.Load("../../../configs/rules")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return rs
}

// duelScenario has a neutral owner plus two enemy players A (index 1) and
// B (index 2) on an all-clear map.
func duelScenario(actors ...ScenarioActor) Scenario {
	return Scenario{
		Version: 1,
		Map:     ScenarioMap{Width: 32, Height: 32, Fill: "Clear"},
		Players: []ScenarioPlayer{
			{Name: "Neutral", NonCombatant: true},
			{Name: "A", Cash: 1000, Stances: map[string]string{"B": "Enemy", "Neutral": "Neutral"}},
			{Name: "B", Cash: 1000, Stances: map[string]string{"A": "Enemy", "Neutral": "Neutral"}},
		},
		Actors: actors,
	}
}

func at(typ, owner string, x, y int) ScenarioActor {
	return ScenarioActor{Type: typ, Owner: owner, Cell: [2]int{x, y}}
}

func newTestWorld(t *testing.T, cfg WorldConfig, sc Scenario) *World {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	w, err := New(cfg, loadRules(t), sc)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// captureLogger keeps every tick entry in memory.
type captureLogger struct {
	entries []TickLogEntry
}

func (c *captureLogger) WriteTick(e TickLogEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureLogger) find(typ EventType) []Event {
	var out []Event
	for _, e := range c.entries {
		for _, ev := range e.Events {
			if ev.Type == typ {
				out = append(out, ev)
			}
		}
	}
	return out
}

func actorByName(t *testing.T, w *World, owner int, name string) *model.Actor {
	t.Helper()
	for a := range w.Actors() {
		if a.Owner().Index == owner && a.Name() == name {
			return a
		}
	}
	t.Fatalf("no %s owned by player %d", name, owner)
	return nil
}

func cellOrder(x, y int) *[2]int { return &[2]int{x, y} }
