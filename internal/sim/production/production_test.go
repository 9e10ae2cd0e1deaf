package production

import (
	"testing"

	"rtscore.dev/internal/sim/world/kernel/model"
)

type fixedTimer struct {
	ticks int
	calls int
}

func (f *fixedTimer) BuildTime(string) int {
	f.calls++
	return f.ticks
}

func richPlayer() *model.Player {
	p := model.NewPlayer(1, "p")
	p.Resources.Cash = 10000
	return p
}

func TestDoneAfterTenCallbackOnEleven(t *testing.T) {
	p := richPlayer()
	fired := 0
	firedAt := 0
	it := NewItem("tent", 100, &fixedTimer{ticks: 10}, 3, func(*Item) { fired++ })

	for tick := 1; tick <= 12; tick++ {
		it.Tick(p)
		if fired == 1 && firedAt == 0 {
			firedAt = tick
		}
		if tick < 10 && it.Done {
			t.Fatalf("done early at tick %d", tick)
		}
		if tick == 10 {
			if !it.Done {
				t.Fatalf("not done after tick 10: remaining=%d", it.RemainingTime)
			}
			if fired != 0 {
				t.Fatalf("callback fired on the tick counters reached zero")
			}
		}
	}
	if firedAt != 11 {
		t.Fatalf("callback fired at tick %d, want 11", firedAt)
	}
	if fired != 1 {
		t.Fatalf("callback fired %d times", fired)
	}
	if p.Resources.Cash != 9900 || it.RemainingCost != 0 {
		t.Fatalf("cash=%d remainingCost=%d", p.Resources.Cash, it.RemainingCost)
	}
	if it.State() != StateCompleted {
		t.Fatalf("state=%v", it.State())
	}
}

func TestBuildTimeResolvedLazily(t *testing.T) {
	timer := &fixedTimer{ticks: 7}
	it := NewItem("e1", 70, timer, 3, nil)
	if timer.calls != 0 || it.TotalTime != 1 || it.State() != StatePending {
		t.Fatalf("resolved before first tick: calls=%d total=%d", timer.calls, it.TotalTime)
	}
	p := richPlayer()
	it.Tick(p)
	it.Tick(p)
	if timer.calls != 1 || it.TotalTime != 7 || it.RemainingTime != 5 {
		t.Fatalf("calls=%d total=%d remaining=%d", timer.calls, it.TotalTime, it.RemainingTime)
	}
}

func TestNonPositiveBuildTimeKeepsPlaceholder(t *testing.T) {
	it := NewItem("e1", 50, &fixedTimer{ticks: 0}, 3, nil)
	it.Tick(richPlayer())
	if !it.Done || it.RemainingCost != 0 {
		t.Fatalf("done=%v remainingCost=%d", it.Done, it.RemainingCost)
	}
}

func TestStallWithoutTimeLoss(t *testing.T) {
	p := model.NewPlayer(1, "p")
	p.Resources.Cash = 20
	it := NewItem("tent", 100, &fixedTimer{ticks: 10}, 3, nil)

	it.Tick(p)
	it.Tick(p)
	if it.RemainingTime != 8 {
		t.Fatalf("remaining=%d after two funded ticks", it.RemainingTime)
	}
	it.Tick(p)
	if it.RemainingTime != 8 || it.RemainingCost != 80 {
		t.Fatalf("stalled tick lost time: remaining=%d cost=%d", it.RemainingTime, it.RemainingCost)
	}
	it.Tick(p)
	if it.RemainingTime != 8 {
		t.Fatalf("progressed without funds")
	}
	p.Resources.GiveCash(100)
	it.Tick(p)
	if it.RemainingTime != 7 || it.RemainingCost != 70 {
		t.Fatalf("remaining=%d cost=%d after funds returned", it.RemainingTime, it.RemainingCost)
	}
}

func TestZeroCostTicksNeverDebit(t *testing.T) {
	p := model.NewPlayer(1, "p")
	it := NewItem("free", 5, &fixedTimer{ticks: 10}, 3, nil)
	// 5/10 == 0 for the first five ticks, so progress needs no cash.
	for i := 0; i < 5; i++ {
		it.Tick(p)
	}
	if it.RemainingTime != 5 || p.Resources.Spent != 0 {
		t.Fatalf("remaining=%d spent=%d", it.RemainingTime, p.Resources.Spent)
	}
	it.Tick(p)
	if it.RemainingTime != 5 {
		t.Fatalf("debited 1 without cash")
	}
}

func TestLowPowerEveryThirdTick(t *testing.T) {
	p := richPlayer()
	p.Power = model.Power{Provided: 10, Drained: 100}
	it := NewItem("tent", 100, &fixedTimer{ticks: 10}, 3, nil)

	var progressed []int
	last := 10
	for tick := 1; tick <= 9; tick++ {
		it.Tick(p)
		if it.RemainingTime != last {
			progressed = append(progressed, tick)
			last = it.RemainingTime
		}
	}
	want := []int{1, 4, 7}
	if len(progressed) != len(want) {
		t.Fatalf("progressed on %v want %v", progressed, want)
	}
	for i := range want {
		if progressed[i] != want[i] {
			t.Fatalf("progressed on %v want %v", progressed, want)
		}
	}
	if got := it.RemainingTimeActual(p.Power.State()); got != 7*3 {
		t.Fatalf("RemainingTimeActual=%d", got)
	}
}

func TestPause(t *testing.T) {
	p := richPlayer()
	it := NewItem("tent", 100, &fixedTimer{ticks: 2}, 3, nil)
	it.Pause(true)
	it.Tick(p)
	it.Tick(p)
	if it.RemainingTime != 2 || it.State() != StatePaused {
		t.Fatalf("paused item progressed: remaining=%d state=%v", it.RemainingTime, it.State())
	}
	it.Pause(false)
	it.Tick(p)
	it.Tick(p)
	if !it.Done {
		t.Fatalf("not done")
	}
	it.Pause(true)
	if it.Paused {
		t.Fatalf("pause accepted after done")
	}
}

func catalog() Catalog {
	infos := map[string]*model.ActorInfo{
		"e1":   {Name: "e1", Valued: &model.ValuedInfo{Cost: 100}, Buildable: &model.BuildableInfo{Queue: []string{"Infantry"}}},
		"dog":  {Name: "dog", Valued: &model.ValuedInfo{Cost: 200}, Buildable: &model.BuildableInfo{Queue: []string{"Infantry"}, BuildDuration: 4}},
		"1tnk": {Name: "1tnk", Valued: &model.ValuedInfo{Cost: 700}, Buildable: &model.BuildableInfo{Queue: []string{"Vehicle"}}},
		"mine": {Name: "mine"},
	}
	return func(name string) (*model.ActorInfo, bool) {
		info, ok := infos[name]
		return info, ok
	}
}

func TestQueueBuildTime(t *testing.T) {
	p := richPlayer()
	q := NewQueue(DefaultQueueInfo("Infantry"), func() *model.Player { return p }, catalog(), nil)
	if got := q.BuildTime("e1"); got != 60 {
		t.Fatalf("BuildTime(e1)=%d want 60", got)
	}
	if got := q.BuildTime("dog"); got != 4 {
		t.Fatalf("BuildTime(dog)=%d want 4", got)
	}
	q.AddBuildTimeModifier(50)
	if got := q.BuildTime("e1"); got != 30 {
		t.Fatalf("modified BuildTime(e1)=%d want 30", got)
	}
	if _, err := q.Enqueue("1tnk"); err == nil {
		t.Fatalf("vehicle accepted by infantry queue")
	}
	if _, err := q.Enqueue("mine"); err == nil {
		t.Fatalf("unbuildable accepted")
	}
}

func TestQueueDeclaredModifiersApplyInOrder(t *testing.T) {
	p := richPlayer()
	info := DefaultQueueInfo("Infantry")
	info.BuildTimeModifiers = []int{50, 150}
	q := NewQueue(info, func() *model.Player { return p }, catalog(), nil)
	// 60 -> 30 -> 45.
	if got := q.BuildTime("e1"); got != 45 {
		t.Fatalf("BuildTime(e1)=%d want 45", got)
	}
	if got := q.BuildTime("dog"); got != 3 {
		t.Fatalf("BuildTime(dog)=%d want 3", got)
	}
}

func TestQueueOnlyHeadTicks(t *testing.T) {
	p := richPlayer()
	var produced []string
	q := NewQueue(DefaultQueueInfo("Infantry"), func() *model.Player { return p }, catalog(),
		func(q *Queue, it *Item) { produced = append(produced, it.Name) })

	first, _ := q.Enqueue("dog")
	second, _ := q.Enqueue("dog")
	for i := 0; i < 4; i++ {
		q.Tick()
	}
	if !first.Done || second.Started {
		t.Fatalf("first done=%v second started=%v", first.Done, second.Started)
	}
	if len(produced) != 0 {
		t.Fatalf("produced early: %v", produced)
	}
	q.Tick()
	if len(produced) != 1 || q.Current() != second {
		t.Fatalf("produced=%v len=%d", produced, q.Len())
	}
	for i := 0; i < 5; i++ {
		q.Tick()
	}
	if len(produced) != 2 || q.Len() != 0 {
		t.Fatalf("produced=%v len=%d", produced, q.Len())
	}
}

func TestQueueCancelRefunds(t *testing.T) {
	p := richPlayer()
	q := NewQueue(DefaultQueueInfo("Infantry"), func() *model.Player { return p }, catalog(), nil)
	q.Enqueue("dog")
	q.Tick()
	q.Tick()
	if p.Resources.Cash != 10000-100 {
		t.Fatalf("cash=%d after two ticks", p.Resources.Cash)
	}
	if !q.Cancel("dog") || q.Len() != 0 {
		t.Fatalf("cancel failed")
	}
	if p.Resources.Cash != 10000 {
		t.Fatalf("cash=%d after refund", p.Resources.Cash)
	}
	if q.Cancel("dog") {
		t.Fatalf("cancel of absent item succeeded")
	}
}

func TestQueueOwnerReresolved(t *testing.T) {
	a := richPlayer()
	b := model.NewPlayer(2, "b")
	b.Resources.Cash = 10000
	owner := a
	q := NewQueue(DefaultQueueInfo("Infantry"), func() *model.Player { return owner }, catalog(), nil)
	q.Enqueue("dog")
	q.Tick()
	owner = b
	q.Tick()
	if a.Resources.Spent != 50 || b.Resources.Spent != 50 {
		t.Fatalf("spent a=%d b=%d", a.Resources.Spent, b.Resources.Spent)
	}
	q.OnOwnerChanged()
	if q.Len() != 0 {
		t.Fatalf("queue not cleared on owner change")
	}
}

func TestQueuePauseByName(t *testing.T) {
	p := richPlayer()
	q := NewQueue(DefaultQueueInfo("Infantry"), func() *model.Player { return p }, catalog(), nil)
	it, _ := q.Enqueue("dog")
	if !q.Pause("dog", true) || !it.Paused {
		t.Fatalf("pause failed")
	}
	if q.Pause("e1", true) {
		t.Fatalf("paused absent item")
	}
}
