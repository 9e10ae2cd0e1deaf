package desire

import (
	"iter"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"

	"rtscore.dev/internal/sim/world/kernel/model"
)

type fakeWorld struct {
	actors []*model.Actor
}

func (w *fakeWorld) Actors() iter.Seq[*model.Actor] { return slices.Values(w.actors) }

func (w *fakeWorld) add(name string, owner *model.Player) {
	id := model.ActorID(len(w.actors) + 1)
	w.actors = append(w.actors, model.NewActor(id, &model.ActorInfo{Name: name}, owner, model.WPos{}))
}

func setup() (*fakeWorld, *model.Player, *model.Player, *model.Player) {
	me := model.NewPlayer(1, "me")
	foe := model.NewPlayer(2, "foe")
	friend := model.NewPlayer(3, "friend")
	me.Stances[friend.Index] = model.StanceAlly
	return &fakeWorld{}, me, foe, friend
}

func TestEmptySatisfactionsMeansOwnAtLeastOne(t *testing.T) {
	w, me, foe, _ := setup()
	d := Desire{Target: "Barracks"}
	if d.CheckSatisfied(w, me) {
		t.Fatalf("satisfied with no barracks")
	}
	w.add("Barracks", foe)
	if d.CheckSatisfied(w, me) {
		t.Fatalf("enemy barracks satisfied own desire")
	}
	w.add("Barracks", me)
	if !d.CheckSatisfied(w, me) {
		t.Fatalf("not satisfied with own barracks")
	}
}

func TestSatisfactionsAreANDed(t *testing.T) {
	w, me, foe, friend := setup()
	me.Power = model.Power{Provided: 100, Drained: 40}
	w.add("powr", me)
	w.add("powr", me)
	w.add("tent", foe)
	w.add("tent", friend)

	d := Desire{Target: "powr", Satisfactions: []Satisfaction{
		NewSatisfaction(MetricOwnCount, "powr", 2),
		NewSatisfaction(MetricOtherCount, "tent", 1),
		NewSatisfaction(MetricMinimumExcessPower, "", 50),
	}}
	if !d.CheckSatisfied(w, me) {
		t.Fatalf("expected satisfied")
	}

	me.Power.Drained = 60
	if d.CheckSatisfied(w, me) {
		t.Fatalf("excess power 40 < 50 should fail")
	}
}

func TestOtherCountUsesDesirerStance(t *testing.T) {
	w, me, foe, friend := setup()
	w.add("tent", foe)
	w.add("tent", friend)
	w.add("tent", me)

	enemy := NewSatisfaction(MetricOtherCount, "tent", 2)
	if enemy.CheckSatisfied(w, me) {
		t.Fatalf("only one enemy tent exists")
	}
	ally := NewSatisfaction(MetricOtherCount, "tent", 1)
	ally.OtherStance = model.StanceAlly
	if !ally.CheckSatisfied(w, me) {
		t.Fatalf("allied tent not counted")
	}
	ally.Count = 2
	if ally.CheckSatisfied(w, me) {
		t.Fatalf("own tent counted as other")
	}
}

func TestUnknownMetricFailsClosed(t *testing.T) {
	w, me, _, _ := setup()
	w.add("powr", me)
	s := Satisfaction{Metric: Metric(42), Target: "powr", Count: 0}
	if s.CheckSatisfied(w, me) {
		t.Fatalf("unknown metric satisfied")
	}
	if _, err := ParseMetric("MaximumCash"); err == nil {
		t.Fatalf("ParseMetric accepted unknown metric")
	}
}

func TestConditionMetric(t *testing.T) {
	w, me, foe, _ := setup()
	me.Resources.Cash = 800
	w.add("powr", me)
	w.add("ftur", foe)

	cases := []struct {
		src  string
		want bool
	}{
		{`Own("powr") >= 1 && Cash > 500`, true},
		{`Other("ftur", "Enemy") > 0`, true},
		{`Other("ftur", "Ally") > 0`, false},
		{`ExcessPower > 0`, false},
	}
	for _, tc := range cases {
		s, err := NewCondition(tc.src)
		if err != nil {
			t.Fatalf("NewCondition(%q): %v", tc.src, err)
		}
		if got := s.CheckSatisfied(w, me); got != tc.want {
			t.Fatalf("%q = %v want %v", tc.src, got, tc.want)
		}
	}
	if _, err := NewCondition(`Own("powr") + 1`); err == nil {
		t.Fatalf("non-bool condition compiled")
	}
}

func TestSatisfactionYAML(t *testing.T) {
	src := `
Metric: OtherCount
Target: tent
Count: 3
OtherStance: Neutral
`
	var s Satisfaction
	if err := yaml.Unmarshal([]byte(src), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Metric != MetricOtherCount || s.Count != 3 || s.OtherStance != model.StanceNeutral || s.Target != "tent" {
		t.Fatalf("got %+v", s)
	}

	var def Satisfaction
	if err := yaml.Unmarshal([]byte("Target: powr\n"), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if def.Metric != MetricOwnCount || def.Count != 1 || def.OtherStance != model.StanceEnemy {
		t.Fatalf("defaults: %+v", def)
	}

	for _, bad := range []string{"Metric: Bogus\nTarget: x\n", "Target: x\nOtherStance: Frenemy\n", "Metric: Condition\n"} {
		var s Satisfaction
		if err := yaml.Unmarshal([]byte(bad), &s); err == nil {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestBuildListNext(t *testing.T) {
	w, me, _, _ := setup()
	list := BuildList{
		{Target: "powr"},
		{Target: "tent"},
		{Target: "proc"},
	}
	if got := list.Next(w, me); got != "powr" {
		t.Fatalf("Next=%q", got)
	}
	w.add("powr", me)
	w.add("proc", me)
	if got := list.Next(w, me); got != "tent" {
		t.Fatalf("Next=%q", got)
	}
	if got := list.Unsatisfied(w, me); !slices.Equal(got, []string{"tent"}) {
		t.Fatalf("Unsatisfied=%v", got)
	}
	w.add("tent", me)
	if got := list.Next(w, me); got != "" {
		t.Fatalf("Next=%q want empty", got)
	}
}
