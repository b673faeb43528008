package core

import (
	"github.com/signalsfoundry/plant-ots/model"
)

// MoveLimiter caps per-turn setpoint moves. Each actuator's requested setpoint
// is pulled into the window [pv - cap, pv + cap] around the current process
// value, then clipped to the actuator's hard range.
type MoveLimiter struct {
	actuators []model.Actuator
}

// NewMoveLimiter builds a limiter over the plant's configured actuators.
func NewMoveLimiter(cfg *model.PlantConfig) *MoveLimiter {
	return &MoveLimiter{actuators: cfg.Actuators}
}

// CapMoves returns the capped setpoints for one turn. The result always holds
// a value for every configured actuator: an absent requested setpoint holds
// the current process value, so the limiter is total and a partial request
// cannot slip an unbounded move through.
func (l *MoveLimiter) CapMoves(requested, state model.TagMap) model.TagMap {
	capped := make(model.TagMap, len(l.actuators))
	for _, a := range l.actuators {
		pv := state[a.PV]
		want, ok := requested[a.Setpoint]
		if !ok {
			want = pv
		}
		v := clampRange(want, pv-a.MoveCap, pv+a.MoveCap)
		capped[a.Setpoint] = clampRange(v, a.Min, a.Max)
	}
	return capped
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
