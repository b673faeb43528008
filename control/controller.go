// Package control holds advisory controllers that propose setpoints for the
// next turn. A controller never touches the plant: its output is fed through
// the same move limiter and safety evaluation as a human trainee's moves.
package control

import (
	"context"

	"github.com/signalsfoundry/plant-ots/model"
)

// Controller proposes the next turn's setpoints from the committed state.
// Implementations must not mutate the state map. An error means the caller
// should hold the previous setpoints rather than apply a partial suggestion.
type Controller interface {
	Name() string
	Suggest(ctx context.Context, state model.TagMap) (model.TagMap, error)
}

// clip bounds v to an actuator's hard range.
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
