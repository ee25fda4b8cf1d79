package rng

import "testing"

func TestZeroSeedStaysZero(t *testing.T) {
	g := New(0)
	for i := 0; i < 4; i++ {
		if v := g.Next(); v != 0 {
			t.Fatalf("draw %d: got %d, want 0", i, v)
		}
	}
}

func TestKnownSequence(t *testing.T) {
	g := New(1)
	if v := g.Next(); v != 48271 {
		t.Fatalf("got %d, want 48271", v)
	}
}

func TestIntnInRange(t *testing.T) {
	g := New(12345)
	for i := 0; i < 100; i++ {
		if v := g.Intn(16); v >= 16 {
			t.Fatalf("Intn(16) = %d, out of range", v)
		}
	}
}
