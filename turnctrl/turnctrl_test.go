package turnctrl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacerRunsAllTurns(t *testing.T) {
	p := NewPacer(0, AsFast)

	var seen []int
	p.AddListener(func(turn int) { seen = append(seen, turn) })

	err := p.Run(context.Background(), 5, func(ctx context.Context, turn int) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 5 || seen[0] != 1 || seen[4] != 5 {
		t.Fatalf("listener saw %v, want 1..5", seen)
	}
	if p.Turn() != 5 {
		t.Fatalf("Turn() = %d, want 5", p.Turn())
	}
}

func TestPacerStopsOnStepError(t *testing.T) {
	p := NewPacer(0, AsFast)
	boom := errors.New("boom")

	calls := 0
	err := p.Run(context.Background(), 10, func(ctx context.Context, turn int) error {
		calls++
		if turn == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 3 {
		t.Fatalf("step ran %d times, want 3", calls)
	}
	if p.Turn() != 2 {
		t.Fatalf("Turn() = %d, want 2 committed turns", p.Turn())
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(time.Hour, Paced)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, 3, func(ctx context.Context, turn int) error {
		t.Fatalf("step must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPacerPacedWaitsBetweenTurns(t *testing.T) {
	p := NewPacer(10*time.Millisecond, Paced)

	start := time.Now()
	err := p.Run(context.Background(), 3, func(ctx context.Context, turn int) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("paced run finished in %v, want at least 30ms", elapsed)
	}
}
