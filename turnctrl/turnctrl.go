// Package turnctrl paces a training run's turn loop. Turns are discrete, so
// the pacer only decides when the next turn fires, never what it does.
package turnctrl

import (
	"context"
	"sync"
	"time"
)

// Mode describes how the Pacer advances turns.
type Mode int

const (
	// AsFast executes turns back to back, for batch runs and replays.
	AsFast Mode = iota
	// Paced waits Interval of wall-clock time between turns, for live
	// training where a turn represents a fixed slice of plant time.
	Paced
)

// Pacer drives the turn loop and notifies registered listeners after each
// committed turn.
type Pacer struct {
	mu       sync.RWMutex
	Interval time.Duration
	Mode     Mode

	current   int
	listeners []func(int)
}

// NewPacer constructs a pacer. Interval is ignored in AsFast mode.
func NewPacer(interval time.Duration, mode Mode) *Pacer {
	return &Pacer{Interval: interval, Mode: mode}
}

// Turn returns the last completed turn number.
func (p *Pacer) Turn() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// AddListener registers a callback invoked after every completed turn.
func (p *Pacer) AddListener(fn func(int)) {
	p.listeners = append(p.listeners, fn)
}

// Run executes up to turns iterations of step, pacing them according to the
// mode. It stops early when step returns an error or the context is
// cancelled, returning the cause.
func (p *Pacer) Run(ctx context.Context, turns int, step func(ctx context.Context, turn int) error) error {
	var ticker *time.Ticker
	if p.Mode == Paced && p.Interval > 0 {
		ticker = time.NewTicker(p.Interval)
		defer ticker.Stop()
	}

	for t := 1; t <= turns; t++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := step(ctx, t); err != nil {
			return err
		}

		p.mu.Lock()
		p.current = t
		p.mu.Unlock()

		for _, fn := range p.listeners {
			fn(t)
		}
	}
	return nil
}
