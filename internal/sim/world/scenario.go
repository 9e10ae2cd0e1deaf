package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the starting state of a match.
type Scenario struct {
	Version int              `yaml:"version"`
	Map     ScenarioMap      `yaml:"map"`
	Players []ScenarioPlayer `yaml:"players"`
	Actors  []ScenarioActor  `yaml:"actors"`
}

type ScenarioMap struct {
	Width  int            `yaml:"width"`
	Height int            `yaml:"height"`
	Fill   string         `yaml:"fill"`
	Areas  []ScenarioArea `yaml:"areas,omitempty"`
}

// ScenarioArea paints a rectangle of cells with one terrain type.
type ScenarioArea struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	W       int    `yaml:"w"`
	H       int    `yaml:"h"`
	Terrain string `yaml:"terrain"`
}

type ScenarioPlayer struct {
	Name         string `yaml:"name"`
	Faction      string `yaml:"faction,omitempty"`
	NonCombatant bool   `yaml:"noncombatant,omitempty"`
	Cash         int    `yaml:"cash,omitempty"`
	Ore          int    `yaml:"ore,omitempty"`
	OreCapacity  int    `yaml:"ore_capacity,omitempty"`
	Home         [2]int `yaml:"home,omitempty"`

	// Stances maps other player names to Ally, Neutral or Enemy.
	Stances map[string]string `yaml:"stances,omitempty"`
}

type ScenarioActor struct {
	Type  string `yaml:"type"`
	Owner string `yaml:"owner"`
	Cell  [2]int `yaml:"cell"`
}

func LoadScenario(path string) (Scenario, error) {
	var sc Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("%s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return sc, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks shape only; rule references are resolved by New.
func (sc Scenario) Validate() error {
	if sc.Version != 1 {
		return fmt.Errorf("unsupported scenario version %d", sc.Version)
	}
	if sc.Map.Width <= 0 || sc.Map.Height <= 0 {
		return fmt.Errorf("bad map size %dx%d", sc.Map.Width, sc.Map.Height)
	}
	if len(sc.Players) == 0 {
		return fmt.Errorf("no players")
	}
	seen := map[string]bool{}
	for _, p := range sc.Players {
		if p.Name == "" {
			return fmt.Errorf("player without name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate player %s", p.Name)
		}
		seen[p.Name] = true
	}
	for _, p := range sc.Players {
		for other := range p.Stances {
			if !seen[other] {
				return fmt.Errorf("player %s: stance toward unknown player %s", p.Name, other)
			}
		}
	}
	for i, a := range sc.Actors {
		if !seen[a.Owner] {
			return fmt.Errorf("actor %d (%s): unknown owner %q", i, a.Type, a.Owner)
		}
	}
	return nil
}
