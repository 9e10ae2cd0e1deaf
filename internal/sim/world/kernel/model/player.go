package model

import (
	"fmt"
	"strings"
)

type Stance uint8

const (
	StanceEnemy Stance = iota
	StanceNeutral
	StanceAlly
)

func (s Stance) String() string {
	switch s {
	case StanceAlly:
		return "Ally"
	case StanceNeutral:
		return "Neutral"
	default:
		return "Enemy"
	}
}

func ParseStance(s string) (Stance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ally", "allies":
		return StanceAlly, nil
	case "neutral":
		return StanceNeutral, nil
	case "enemy", "enemies", "":
		return StanceEnemy, nil
	}
	return StanceEnemy, fmt.Errorf("unknown stance %q", s)
}

type PowerState uint8

const (
	PowerNormal PowerState = iota
	PowerLow
	PowerCritical
)

func (s PowerState) String() string {
	switch s {
	case PowerLow:
		return "Low"
	case PowerCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

// Resources is a player's spendable pool. Ore is spent before cash.
type Resources struct {
	Cash        int
	Ore         int
	OreCapacity int

	Earned int
	Spent  int
}

// TakeCash debits n if the pool can cover it and reports whether it did.
func (r *Resources) TakeCash(n int) bool {
	if n < 0 || r.Cash+r.Ore < n {
		return false
	}
	r.Ore -= n
	if r.Ore < 0 {
		r.Cash += r.Ore
		r.Ore = 0
	}
	r.Spent += n
	return true
}

func (r *Resources) GiveCash(n int) {
	if n <= 0 {
		return
	}
	r.Cash += n
	r.Earned += n
}

// Power tracks provided vs drained power for one player.
type Power struct {
	Provided int
	Drained  int
}

func (p Power) ExcessPower() int { return p.Provided - p.Drained }

func (p Power) State() PowerState {
	if p.Provided >= p.Drained {
		return PowerNormal
	}
	if p.Provided > p.Drained/2 {
		return PowerLow
	}
	return PowerCritical
}

type Player struct {
	Index   int
	Name    string
	Faction string

	// NonCombatant players (the neutral owner of crates and map props) are
	// skipped by production and desire queries.
	NonCombatant bool

	Stances map[int]Stance

	Resources Resources
	Power     Power

	Home CPos
}

func NewPlayer(index int, name string) *Player {
	return &Player{
		Index:   index,
		Name:    name,
		Stances: map[int]Stance{index: StanceAlly},
	}
}

// StanceTowards is p's stance toward other; a player is always its own ally
// and a missing entry means enemy.
func (p *Player) StanceTowards(other *Player) Stance {
	if p == nil || other == nil {
		return StanceNeutral
	}
	if p.Index == other.Index {
		return StanceAlly
	}
	if s, ok := p.Stances[other.Index]; ok {
		return s
	}
	return StanceEnemy
}

func (p *Player) IsAlliedWith(other *Player) bool {
	return p.StanceTowards(other) == StanceAlly
}
