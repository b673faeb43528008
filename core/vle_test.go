package core

import (
	"math"
	"testing"
)

func TestBubblePointPureComponents(t *testing.T) {
	s := NewAntoineVLE()

	// Pure benzene boils at ~80.1 C, pure toluene at ~110.6 C.
	tB, err := s.BubblePointC(1.0)
	if err != nil {
		t.Fatalf("BubblePointC(1.0): %v", err)
	}
	if math.Abs(tB-80.1) > 0.5 {
		t.Fatalf("benzene bubble point = %v, want ~80.1", tB)
	}

	tT, err := s.BubblePointC(0.0)
	if err != nil {
		t.Fatalf("BubblePointC(0.0): %v", err)
	}
	if math.Abs(tT-110.6) > 0.5 {
		t.Fatalf("toluene bubble point = %v, want ~110.6", tT)
	}
}

func TestBubblePointMonotoneInComposition(t *testing.T) {
	s := NewAntoineVLE()

	prev := math.Inf(1)
	for _, x := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		tc, err := s.BubblePointC(x)
		if err != nil {
			t.Fatalf("BubblePointC(%v): %v", x, err)
		}
		if tc >= prev {
			t.Fatalf("bubble point must fall as benzene fraction rises: T(%v)=%v, previous %v", x, tc, prev)
		}
		prev = tc
	}
}

func TestBubblePointRejectsBadFraction(t *testing.T) {
	s := NewAntoineVLE()
	for _, x := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := s.BubblePointC(x); err == nil {
			t.Fatalf("BubblePointC(%v) should fail", x)
		}
	}
}
