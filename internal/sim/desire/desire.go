// Package desire decides whether an AI build-list entry is already met.
package desire

import (
	"fmt"
	"iter"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// World is the read-only query surface the evaluator needs.
type World interface {
	// Actors yields live in-world actors.
	Actors() iter.Seq[*model.Actor]
}

type Metric uint8

const (
	MetricOwnCount Metric = iota
	MetricOtherCount
	MetricMinimumExcessPower
	MetricCondition
)

func (m Metric) String() string {
	switch m {
	case MetricOwnCount:
		return "OwnCount"
	case MetricOtherCount:
		return "OtherCount"
	case MetricMinimumExcessPower:
		return "MinimumExcessPower"
	case MetricCondition:
		return "Condition"
	}
	return fmt.Sprintf("Metric(%d)", uint8(m))
}

func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "OwnCount":
		return MetricOwnCount, nil
	case "OtherCount":
		return MetricOtherCount, nil
	case "MinimumExcessPower":
		return MetricMinimumExcessPower, nil
	case "Condition":
		return MetricCondition, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Desire is one entry of a build list: what to build and when it no longer
// needs building.
type Desire struct {
	Name          string
	Target        string
	Satisfactions []Satisfaction
}

// CheckSatisfied with no satisfactions means "owns at least one Target".
// Otherwise every satisfaction must hold.
func (d *Desire) CheckSatisfied(w World, desirer *model.Player) bool {
	if len(d.Satisfactions) == 0 {
		return ownCount(w, desirer, d.Target) >= 1
	}
	satisfied := true
	for i := range d.Satisfactions {
		if !d.Satisfactions[i].CheckSatisfied(w, desirer) {
			satisfied = false
		}
	}
	return satisfied
}

// Satisfaction is a single count or threshold check.
type Satisfaction struct {
	Metric      Metric
	Count       int
	Target      string
	OtherStance model.Stance
	Condition   string

	program *vm.Program
}

func NewSatisfaction(m Metric, target string, count int) Satisfaction {
	return Satisfaction{Metric: m, Target: target, Count: count, OtherStance: model.StanceEnemy}
}

// NewCondition compiles src into a Condition satisfaction.
func NewCondition(src string) (Satisfaction, error) {
	s := Satisfaction{Metric: MetricCondition, Count: 1, Condition: src}
	if err := s.compile(); err != nil {
		return Satisfaction{}, err
	}
	return s, nil
}

func (s *Satisfaction) compile() error {
	if s.Condition == "" {
		return fmt.Errorf("condition metric without expression")
	}
	prog, err := expr.Compile(s.Condition, expr.Env(ConditionEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile condition %q: %w", s.Condition, err)
	}
	s.program = prog
	return nil
}

func (s *Satisfaction) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Metric      string `yaml:"Metric"`
		Count       *int   `yaml:"Count"`
		Target      string `yaml:"Target"`
		OtherStance string `yaml:"OtherStance"`
		Condition   string `yaml:"Condition"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	m, err := ParseMetric(raw.Metric)
	if err != nil {
		return err
	}
	stance, err := model.ParseStance(raw.OtherStance)
	if err != nil {
		return err
	}
	*s = Satisfaction{Metric: m, Count: 1, Target: raw.Target, OtherStance: stance, Condition: raw.Condition}
	if raw.Count != nil {
		s.Count = *raw.Count
	}
	switch m {
	case MetricCondition:
		return s.compile()
	case MetricOwnCount, MetricOtherCount:
		if s.Target == "" {
			return fmt.Errorf("%s metric without target", m)
		}
	}
	return nil
}

// CheckSatisfied is a pure query. Unknown metrics never hold.
func (s *Satisfaction) CheckSatisfied(w World, desirer *model.Player) bool {
	switch s.Metric {
	case MetricOwnCount:
		return ownCount(w, desirer, s.Target) >= s.Count
	case MetricOtherCount:
		return otherCount(w, desirer, s.Target, s.OtherStance) >= s.Count
	case MetricMinimumExcessPower:
		return desirer.Power.ExcessPower() >= s.Count
	case MetricCondition:
		return s.evalCondition(w, desirer)
	}
	return false
}

func (s *Satisfaction) evalCondition(w World, desirer *model.Player) bool {
	if s.program == nil {
		return false
	}
	out, err := vm.Run(s.program, NewConditionEnv(w, desirer))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func ownCount(w World, desirer *model.Player, target string) int {
	n := 0
	for a := range w.Actors() {
		if a.Name() == target && a.Owner() == desirer {
			n++
		}
	}
	return n
}

// otherCount counts Target actors of players the desirer regards with stance.
func otherCount(w World, desirer *model.Player, target string, stance model.Stance) int {
	n := 0
	for a := range w.Actors() {
		if a.Name() != target || a.Owner() == nil || a.Owner() == desirer {
			continue
		}
		if desirer.StanceTowards(a.Owner()) == stance {
			n++
		}
	}
	return n
}
