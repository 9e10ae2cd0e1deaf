package random

import "testing"

func TestShared_SameSeedSameSequence(t *testing.T) {
	a := New(1337)
	b := New(1337)
	for i := 0; i < 1000; i++ {
		x, y := a.Next(100), b.Next(100)
		if x != y {
			t.Fatalf("draw %d: %d vs %d", i, x, y)
		}
		if x < 0 || x >= 100 {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
	}
	if string(a.State()) != string(b.State()) {
		t.Fatalf("state mismatch after equal draws")
	}
}

func TestShared_NextNonPositive(t *testing.T) {
	s := New(1)
	if got := s.Next(0); got != 0 {
		t.Fatalf("Next(0)=%d", got)
	}
	if s.Draws() != 0 {
		t.Fatalf("Next(0) must not consume state")
	}
}
